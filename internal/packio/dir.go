package packio

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"time"
)

// DirReader reads from a plain directory.
type DirReader struct {
	Root string
}

// NewDirReader creates a reader rooted at root.
func NewDirReader(root string) *DirReader {
	return &DirReader{Root: root}
}

func (r *DirReader) full(p string) string {
	return filepath.Join(r.Root, filepath.FromSlash(Clean(p)))
}

func (r *DirReader) list(dir, pattern string, wantDir bool) ([]string, error) {
	entries, err := os.ReadDir(r.full(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("packio: list %s: %w", dir, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() != wantDir || !match(pattern, e.Name()) {
			continue
		}
		out = append(out, path.Join(Clean(dir), e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func (r *DirReader) EnumerateFiles(dir, pattern string) ([]string, error) {
	return r.list(dir, pattern, false)
}

func (r *DirReader) EnumerateDirectories(dir, pattern string) ([]string, error) {
	return r.list(dir, pattern, true)
}

func (r *DirReader) FileExists(p string) bool {
	info, err := os.Stat(r.full(p))
	return err == nil && !info.IsDir()
}

func (r *DirReader) Open(p string) (io.ReadCloser, error) {
	f, err := os.Open(r.full(p))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("packio: open %s: %w", p, ErrNotFound)
		}
		return nil, fmt.Errorf("packio: open %s: %w", p, err)
	}
	return f, nil
}

func (r *DirReader) WriteTime(p string) (time.Time, bool) {
	info, err := os.Stat(r.full(p))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// DirWriter writes into a plain directory. Each stream is written to a
// temporary file beside its destination and renamed on commit.
type DirWriter struct {
	Root string
}

// NewDirWriter creates a writer rooted at root.
func NewDirWriter(root string) *DirWriter {
	return &DirWriter{Root: root}
}

func (w *DirWriter) full(p string) string {
	return filepath.Join(w.Root, filepath.FromSlash(Clean(p)))
}

func (w *DirWriter) Open(p string) (Stream, error) {
	dst := w.full(p)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return nil, fmt.Errorf("packio: create dir for %s: %w", p, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("packio: stage %s: %w", p, err)
	}
	return &fileStream{tmp: tmp, dst: dst}, nil
}

func (w *DirWriter) FileExists(p string) bool {
	info, err := os.Stat(w.full(p))
	return err == nil && !info.IsDir()
}

func (w *DirWriter) WriteTime(p string) (time.Time, bool) {
	info, err := os.Stat(w.full(p))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

func (w *DirWriter) ReadFile(p string) ([]byte, error) {
	data, err := os.ReadFile(w.full(p))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("packio: %s: %w", p, ErrNotFound)
	}
	return data, err
}

func (w *DirWriter) Clean() error {
	entries, err := os.ReadDir(w.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("packio: clean %s: %w", w.Root, err)
	}
	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(w.Root, e.Name())); err != nil {
			return fmt.Errorf("packio: clean %s: %w", e.Name(), err)
		}
	}
	return nil
}

func (w *DirWriter) Prepare() error {
	return os.MkdirAll(w.Root, 0755)
}

func (w *DirWriter) Close() error {
	return nil
}

type fileStream struct {
	tmp  *os.File
	dst  string
	done bool
}

func (s *fileStream) Write(p []byte) (int, error) {
	return s.tmp.Write(p)
}

func (s *fileStream) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := s.tmp.Close(); err != nil {
		os.Remove(s.tmp.Name())
		return fmt.Errorf("packio: close %s: %w", s.dst, err)
	}
	if err := os.Rename(s.tmp.Name(), s.dst); err != nil {
		os.Remove(s.tmp.Name())
		return fmt.Errorf("packio: publish %s: %w", s.dst, err)
	}
	return nil
}

func (s *fileStream) Abort() {
	if s.done {
		return
	}
	s.done = true
	s.tmp.Close()
	os.Remove(s.tmp.Name())
}
