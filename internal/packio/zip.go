package packio

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/zip"
)

// ZipReader reads from a zip archive.
type ZipReader struct {
	closer io.Closer
	files  map[string]*zip.File
	dirs   map[string]bool
}

// OpenZipReader opens an archive on disk.
func OpenZipReader(name string) (*ZipReader, error) {
	rc, err := zip.OpenReader(name)
	if err != nil {
		return nil, fmt.Errorf("packio: open zip %s: %w", name, err)
	}
	r := newZipReader(&rc.Reader)
	r.closer = rc
	return r, nil
}

// NewZipReader reads an archive from memory or any io.ReaderAt.
func NewZipReader(ra io.ReaderAt, size int64) (*ZipReader, error) {
	zr, err := zip.NewReader(ra, size)
	if err != nil {
		return nil, fmt.Errorf("packio: read zip: %w", err)
	}
	return newZipReader(zr), nil
}

func newZipReader(zr *zip.Reader) *ZipReader {
	r := &ZipReader{
		files: make(map[string]*zip.File),
		dirs:  map[string]bool{"": true},
	}
	for _, f := range zr.File {
		name := Clean(f.Name)
		if strings.HasSuffix(f.Name, "/") {
			r.addDir(name)
			continue
		}
		r.files[name] = f
		r.addDir(path.Dir(name))
	}
	return r
}

func (r *ZipReader) addDir(d string) {
	for d != "." && d != "" && !r.dirs[d] {
		r.dirs[d] = true
		d = path.Dir(d)
	}
}

// Close releases the underlying archive file, if any.
func (r *ZipReader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func parentOf(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}

func (r *ZipReader) EnumerateFiles(dir, pattern string) ([]string, error) {
	dir = Clean(dir)
	var out []string
	for name := range r.files {
		if parentOf(name) == dir && match(pattern, path.Base(name)) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ZipReader) EnumerateDirectories(dir, pattern string) ([]string, error) {
	dir = Clean(dir)
	var out []string
	for name := range r.dirs {
		if name == "" || parentOf(name) != dir {
			continue
		}
		if match(pattern, path.Base(name)) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *ZipReader) FileExists(p string) bool {
	_, ok := r.files[Clean(p)]
	return ok
}

func (r *ZipReader) Open(p string) (io.ReadCloser, error) {
	f, ok := r.files[Clean(p)]
	if !ok {
		return nil, fmt.Errorf("packio: open %s: %w", p, ErrNotFound)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("packio: open %s: %w", p, err)
	}
	return rc, nil
}

func (r *ZipReader) WriteTime(p string) (time.Time, bool) {
	f, ok := r.files[Clean(p)]
	if !ok || f.Modified.IsZero() {
		return time.Time{}, false
	}
	return f.Modified, true
}

// ZipWriter collects committed streams in memory and writes the archive on
// Close. A zip output is always rebuilt in full, so WriteTime only reports
// entries committed during the current run.
type ZipWriter struct {
	Path string

	mu      sync.Mutex
	entries map[string]zipEntry
	now     func() time.Time
}

type zipEntry struct {
	data     []byte
	modified time.Time
}

// NewZipWriter creates a writer that produces the archive at name.
func NewZipWriter(name string) *ZipWriter {
	return &ZipWriter{
		Path:    name,
		entries: make(map[string]zipEntry),
		now:     time.Now,
	}
}

func (w *ZipWriter) Open(p string) (Stream, error) {
	return &zipStream{w: w, name: Clean(p)}, nil
}

func (w *ZipWriter) FileExists(p string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.entries[Clean(p)]
	return ok
}

func (w *ZipWriter) WriteTime(p string) (time.Time, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[Clean(p)]
	return e.modified, ok
}

// ReadFile returns an entry committed during the current run.
func (w *ZipWriter) ReadFile(p string) ([]byte, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	e, ok := w.entries[Clean(p)]
	if !ok {
		return nil, fmt.Errorf("packio: %s: %w", p, ErrNotFound)
	}
	return bytes.Clone(e.data), nil
}

func (w *ZipWriter) Clean() error {
	w.mu.Lock()
	w.entries = make(map[string]zipEntry)
	w.mu.Unlock()
	if err := os.Remove(w.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("packio: clean %s: %w", w.Path, err)
	}
	return nil
}

func (w *ZipWriter) Prepare() error {
	return os.MkdirAll(filepath.Dir(w.Path), 0755)
}

// Close writes every committed entry to the archive, replacing it atomically.
func (w *ZipWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	names := make([]string, 0, len(w.entries))
	for name := range w.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	tmp, err := os.CreateTemp(filepath.Dir(w.Path), "."+filepath.Base(w.Path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("packio: stage %s: %w", w.Path, err)
	}
	defer os.Remove(tmp.Name())

	zw := zip.NewWriter(tmp)
	for _, name := range names {
		e := w.entries[name]
		fw, err := zw.CreateHeader(&zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: e.modified,
		})
		if err != nil {
			tmp.Close()
			return fmt.Errorf("packio: add %s: %w", name, err)
		}
		if _, err := fw.Write(e.data); err != nil {
			tmp.Close()
			return fmt.Errorf("packio: write %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		tmp.Close()
		return fmt.Errorf("packio: finish %s: %w", w.Path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("packio: close %s: %w", w.Path, err)
	}
	return os.Rename(tmp.Name(), w.Path)
}

type zipStream struct {
	w    *ZipWriter
	name string
	buf  bytes.Buffer
	done bool
}

func (s *zipStream) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *zipStream) Commit() error {
	if s.done {
		return nil
	}
	s.done = true
	s.w.mu.Lock()
	s.w.entries[s.name] = zipEntry{data: s.buf.Bytes(), modified: s.w.now()}
	s.w.mu.Unlock()
	return nil
}

func (s *zipStream) Abort() {
	s.done = true
	s.buf.Reset()
}
