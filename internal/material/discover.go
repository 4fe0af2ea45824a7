package material

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/naming"
	"pixelgraph/internal/packio"
)

// DiscoverOptions controls material discovery.
type DiscoverOptions struct {
	// Edition selects the global naming suffixes.
	Edition encoding.Edition
	// AutoMaterial treats directories holding tag-named images as local
	// materials even without a mat.yml.
	AutoMaterial bool
	// SkipDir prunes directories from the scan, such as an output folder
	// inside the project.
	SkipDir func(dir string) bool
}

// Discovery is the result of scanning a project tree.
type Discovery struct {
	Materials []*Properties
	// Sources lists the input files that belong to each material, keyed by
	// the material document path.
	Sources map[string][]string
	// Untracked lists every file not owned by a material.
	Untracked []string
}

// Discover scans root for local materials, global materials and untracked
// files.
func Discover(r packio.Reader, root string, opts DiscoverOptions) (*Discovery, error) {
	d := &Discovery{Sources: make(map[string][]string)}
	if err := d.scan(r, packio.Clean(root), opts); err != nil {
		return nil, err
	}
	sort.Slice(d.Materials, func(i, j int) bool {
		return d.Materials[i].DocumentPath() < d.Materials[j].DocumentPath()
	})
	sort.Strings(d.Untracked)
	return d, nil
}

func (d *Discovery) scan(r packio.Reader, dir string, opts DiscoverOptions) error {
	files, err := r.EnumerateFiles(dir, "*")
	if err != nil {
		return fmt.Errorf("material: scan %s: %w", dir, err)
	}

	if dir != "" && (hasFile(files, LocalFileName) || (opts.AutoMaterial && hasTaggedImage(files))) {
		return d.addLocal(r, dir, files)
	}

	owned := make(map[string]bool)
	policy := naming.Policy{Edition: opts.Edition}
	for _, f := range files {
		base := path.Base(f)
		if !strings.HasSuffix(base, GlobalSuffix) {
			continue
		}
		p, err := Load(r, f)
		if err != nil {
			return err
		}
		owned[f] = true
		sources := []string{f}
		for _, img := range files {
			if !naming.IsImage(img) {
				continue
			}
			if name, _ := policy.SplitGlobal(naming.Stem(img)); name == p.Name {
				owned[img] = true
				sources = append(sources, img)
			}
		}
		d.Materials = append(d.Materials, p)
		d.Sources[p.DocumentPath()] = sources
	}
	for _, f := range files {
		if !owned[f] {
			d.Untracked = append(d.Untracked, f)
		}
	}

	dirs, err := r.EnumerateDirectories(dir, "*")
	if err != nil {
		return fmt.Errorf("material: scan %s: %w", dir, err)
	}
	for _, sub := range dirs {
		if strings.HasPrefix(path.Base(sub), ".") {
			continue
		}
		if opts.SkipDir != nil && opts.SkipDir(sub) {
			continue
		}
		if err := d.scan(r, sub, opts); err != nil {
			return err
		}
	}
	return nil
}

func (d *Discovery) addLocal(r packio.Reader, dir string, files []string) error {
	var p *Properties
	doc := path.Join(dir, LocalFileName)
	if r.FileExists(doc) {
		var err error
		if p, err = Load(r, doc); err != nil {
			return err
		}
	} else {
		p = &Properties{Name: path.Base(dir), LocalPath: parentDir(dir), Local: true}
	}
	d.Materials = append(d.Materials, p)
	d.Sources[p.DocumentPath()] = files
	return nil
}

func hasFile(files []string, name string) bool {
	for _, f := range files {
		if path.Base(f) == name {
			return true
		}
	}
	return false
}

func hasTaggedImage(files []string) bool {
	for _, f := range files {
		if !naming.IsImage(f) {
			continue
		}
		if _, ok := naming.LocalTag(naming.Stem(f)); ok {
			return true
		}
	}
	return false
}
