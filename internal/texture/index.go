package texture

import (
	"strings"

	"pixelgraph/internal/naming"
	"pixelgraph/internal/packio"
)

// Index maps lower-case image stems in one directory to their paths. When
// several files share a stem the extension earliest in
// naming.ImageExtensions wins.
type Index struct {
	entries map[string]string
}

// BuildIndex scans the images directly inside dir.
func BuildIndex(r packio.Reader, dir string) (*Index, error) {
	files, err := r.EnumerateFiles(dir, "*")
	if err != nil {
		return nil, err
	}
	idx := &Index{entries: make(map[string]string)}
	for _, f := range files {
		idx.Add(f)
	}
	return idx, nil
}

// Add records one file. Non-image files are ignored.
func (idx *Index) Add(p string) {
	if !naming.IsImage(p) {
		return
	}
	stem := strings.ToLower(naming.Stem(p))
	existing, ok := idx.entries[stem]
	if !ok || extRank(naming.Ext(p)) < extRank(naming.Ext(existing)) {
		idx.entries[stem] = p
	}
}

func extRank(ext string) int {
	for i, e := range naming.ImageExtensions {
		if e == ext {
			return i
		}
	}
	return len(naming.ImageExtensions)
}

// ResolvePath returns the path for a stem, or ("", false).
func (idx *Index) ResolvePath(stem string) (string, bool) {
	p, ok := idx.entries[strings.ToLower(stem)]
	return p, ok
}

// Find returns the first stem in stems that resolves.
func (idx *Index) Find(stems []string) (string, bool) {
	for _, s := range stems {
		if p, ok := idx.ResolvePath(s); ok {
			return p, true
		}
	}
	return "", false
}

// Paths returns every indexed path.
func (idx *Index) Paths() []string {
	out := make([]string, 0, len(idx.entries))
	for _, p := range idx.entries {
		out = append(out, p)
	}
	return out
}

// Len returns the number of indexed images.
func (idx *Index) Len() int {
	return len(idx.entries)
}
