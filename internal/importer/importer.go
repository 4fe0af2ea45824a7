// Package importer turns a published resource pack into a project: global
// texture sets become local material directories in the project format.
package importer

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"sync"

	"go.uber.org/zap"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/graph"
	"pixelgraph/internal/material"
	"pixelgraph/internal/minecraft"
	"pixelgraph/internal/naming"
	"pixelgraph/internal/packio"
	"pixelgraph/internal/texture"
)

// Options configures an import.
type Options struct {
	// Reader is rooted at the pack, either a directory or an archive.
	Reader packio.Reader
	// Writer receives the project.
	Writer packio.Writer

	// Source is the encoding the pack was published in.
	Source *encoding.PackEncoding
	// Target is the project input encoding.
	Target *encoding.PackEncoding

	Workers int
	Logger  *zap.Logger
}

// Summary counts what an import produced.
type Summary struct {
	Materials int
	Copied    int
	Failed    int
	Errors    []error
}

type textureSet struct {
	dir, name string
	files     []string
}

// Importer converts packs into projects.
type Importer struct {
	opt    Options
	log    *zap.Logger
	images *texture.ImageCache
}

// New creates an importer.
func New(opt Options) *Importer {
	log := opt.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opt.Workers <= 0 {
		opt.Workers = 1
	}
	return &Importer{opt: opt, log: log, images: texture.NewImageCache()}
}

// Run imports the whole pack.
func (im *Importer) Run(ctx context.Context) (*Summary, error) {
	if err := im.opt.Writer.Prepare(); err != nil {
		return nil, fmt.Errorf("importer: prepare: %w", err)
	}
	sets, others, err := im.scan()
	if err != nil {
		return nil, err
	}
	im.log.Info("importing",
		zap.Int("materials", len(sets)),
		zap.Int("files", len(others)),
		zap.String("from", im.opt.Source.Name),
		zap.String("to", im.opt.Target.Name))

	queue := material.NewSaveQueue(im.opt.Writer, im.log)
	sum := &Summary{}
	var mu sync.Mutex
	record := func(err error, isMaterial bool) {
		mu.Lock()
		defer mu.Unlock()
		switch {
		case err != nil:
			sum.Failed++
			sum.Errors = append(sum.Errors, err)
		case isMaterial:
			sum.Materials++
		default:
			sum.Copied++
		}
	}

	total := len(sets) + len(others)
	idx := make(chan int, im.opt.Workers*2)
	var wg sync.WaitGroup
	for w := 0; w < im.opt.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				if ctx.Err() != nil {
					continue
				}
				if i < len(sets) {
					record(im.importSet(ctx, sets[i], queue), true)
				} else {
					f := others[i-len(sets)]
					record(packio.Copy(im.opt.Reader, im.opt.Writer, f, f), false)
				}
			}
		}()
	}
	for i := 0; i < total; i++ {
		idx <- i
	}
	close(idx)
	wg.Wait()

	if err := queue.Close(); err != nil {
		return sum, err
	}
	if err := ctx.Err(); err != nil {
		return sum, err
	}
	im.log.Info("import complete",
		zap.Int("materials", sum.Materials),
		zap.Int("copied", sum.Copied),
		zap.Int("failed", sum.Failed))
	return sum, nil
}

// scan groups the images under block, item and entity texture directories
// into global texture sets. Every other file is returned for copying.
func (im *Importer) scan() ([]textureSet, []string, error) {
	policy := naming.Policy{Edition: im.opt.Source.Edition}
	groups := make(map[string]*textureSet)
	var others []string

	err := packio.Walk(im.opt.Reader, "", func(p string) error {
		switch minecraft.CategoryOf(p) {
		case minecraft.CategoryBlock, minecraft.CategoryItem, minecraft.CategoryEntity:
		default:
			others = append(others, p)
			return nil
		}
		if !naming.IsImage(p) {
			others = append(others, p)
			return nil
		}
		dir := path.Dir(p)
		if dir == "." {
			dir = ""
		}
		name, _ := policy.SplitGlobal(naming.Stem(p))
		key := path.Join(dir, name)
		set, ok := groups[key]
		if !ok {
			set = &textureSet{dir: dir, name: name}
			groups[key] = set
		}
		set.files = append(set.files, p)
		return nil
	})
	if err != nil {
		return nil, nil, fmt.Errorf("importer: scan: %w", err)
	}

	sets := make([]textureSet, 0, len(groups))
	for _, s := range groups {
		sets = append(sets, *s)
	}
	sort.Slice(sets, func(i, j int) bool {
		return path.Join(sets[i].dir, sets[i].name) < path.Join(sets[j].dir, sets[j].name)
	})
	return sets, others, nil
}

// importSet rebuilds one global texture set as a local material.
func (im *Importer) importSet(ctx context.Context, set textureSet, queue *material.SaveQueue) error {
	src := &material.Properties{Name: set.name, LocalPath: set.dir}
	c := &graph.Context{
		Reader:      im.opt.Reader,
		Writer:      im.opt.Writer,
		Input:       im.opt.Source,
		Output:      im.opt.Target,
		Profile:     graph.DefaultProfile(),
		Material:    src,
		Images:      im.images,
		OutputLocal: true,
		Logger:      im.log,
	}
	b, err := graph.NewBuilder(c)
	if err != nil {
		return fmt.Errorf("importer: %s: %w", set.name, err)
	}
	defer b.Close()

	res, err := b.BuildMaterial(ctx)
	if err != nil {
		return fmt.Errorf("importer: %s: %w", set.name, err)
	}
	if len(res.Written) == 0 {
		return fmt.Errorf("importer: %s: %w", set.name, graph.ErrSourceEmpty)
	}

	local := &material.Properties{Name: set.name, LocalPath: set.dir, Local: true}
	queue.Enqueue(local.DocumentPath(), local)
	im.log.Debug("material imported",
		zap.String("material", local.DocumentPath()),
		zap.Int("sources", len(set.files)),
		zap.Int("files", len(res.Written)))
	return nil
}

// Err joins the per-item errors of a summary.
func (s *Summary) Err() error {
	return errors.Join(s.Errors...)
}
