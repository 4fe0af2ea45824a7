// Package packio abstracts where pack files are read from and written to.
// Paths are slash-separated and relative to the reader or writer root.
package packio

import (
	"errors"
	"io"
	"path"
	"strings"
	"time"
)

// ErrNotFound is returned when a path does not exist in a reader.
var ErrNotFound = errors.New("file not found")

// Reader provides read access to a directory tree or an archive.
type Reader interface {
	// EnumerateFiles lists files directly inside dir whose base name matches
	// the glob pattern ("" or "*" matches everything).
	EnumerateFiles(dir, pattern string) ([]string, error)
	// EnumerateDirectories lists directories directly inside dir.
	EnumerateDirectories(dir, pattern string) ([]string, error)
	FileExists(p string) bool
	Open(p string) (io.ReadCloser, error)
	// WriteTime returns the modification time, or false when unknown.
	WriteTime(p string) (time.Time, bool)
}

// Stream is a staged output file. Nothing is visible to readers of the
// destination until Commit succeeds; Abort discards the staged data.
type Stream interface {
	io.Writer
	Commit() error
	Abort()
}

// Writer provides staged write access to a directory tree or an archive.
type Writer interface {
	Open(p string) (Stream, error)
	FileExists(p string) bool
	WriteTime(p string) (time.Time, bool)
	// ReadFile reads back a committed file, or returns ErrNotFound.
	ReadFile(p string) ([]byte, error)
	// Clean deletes all previous output.
	Clean() error
	// Prepare creates the output root.
	Prepare() error
	// Close flushes archive writers. Directory writers have nothing to flush.
	Close() error
}

// Clean normalizes a path to the slash-separated relative form used here.
func Clean(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}

func match(pattern, name string) bool {
	if pattern == "" || pattern == "*" {
		return true
	}
	ok, err := path.Match(pattern, name)
	return err == nil && ok
}

// Walk visits every file below dir, depth first, in lexical order.
func Walk(r Reader, dir string, fn func(p string) error) error {
	files, err := r.EnumerateFiles(dir, "*")
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := fn(f); err != nil {
			return err
		}
	}
	dirs, err := r.EnumerateDirectories(dir, "*")
	if err != nil {
		return err
	}
	for _, d := range dirs {
		if err := Walk(r, d, fn); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile reads a whole file from a reader.
func ReadFile(r Reader, p string) ([]byte, error) {
	rc, err := r.Open(p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// WriteFile stages and commits a whole file.
func WriteFile(w Writer, p string, data []byte) error {
	s, err := w.Open(p)
	if err != nil {
		return err
	}
	if _, err := s.Write(data); err != nil {
		s.Abort()
		return err
	}
	return s.Commit()
}

// Copy streams a file from a reader into a writer.
func Copy(r Reader, w Writer, src, dst string) error {
	rc, err := r.Open(src)
	if err != nil {
		return err
	}
	defer rc.Close()

	s, err := w.Open(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(s, rc); err != nil {
		s.Abort()
		return err
	}
	return s.Commit()
}
