package graph

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"go.uber.org/zap"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/packio"
	"pixelgraph/internal/texture"
)

// Output is a staged file. Nothing is visible in the destination until
// Commit.
type Output struct {
	Path   string
	stream packio.Stream
}

// Commit publishes the staged file.
func (o *Output) Commit() error {
	return o.stream.Commit()
}

// Abort discards the staged file.
func (o *Output) Abort() {
	o.stream.Abort()
}

// Builder composes the textures of one material.
type Builder struct {
	ctx      *Context
	graph    *Graph
	prepared bool
}

// NewBuilder creates a builder for a material.
func NewBuilder(c *Context) (*Builder, error) {
	g, err := NewGraph(c)
	if err != nil {
		return nil, err
	}
	return &Builder{ctx: c, graph: g}, nil
}

// Graph exposes the underlying channel graph.
func (b *Builder) Graph() *Graph {
	return b.graph
}

// Close releases cached images.
func (b *Builder) Close() {
	b.graph.Close()
}

// Prepare resolves all channels. BuildTexture and BuildMaterial call it when
// needed.
func (b *Builder) Prepare(ctx context.Context) error {
	if b.prepared {
		return nil
	}
	if err := b.graph.Prepare(ctx); err != nil {
		return err
	}
	b.prepared = true
	return nil
}

// BuildTexture renders one output texture into staged streams. A CTM material
// yields one output per tile. It returns ErrSourceEmpty when every channel of
// the texture falls back to a default.
func (b *Builder) BuildTexture(ctx context.Context, tag encoding.Tag) ([]*Output, error) {
	if err := b.Prepare(ctx); err != nil {
		return nil, err
	}
	img, err := b.Render(ctx, tag)
	if err != nil {
		return nil, err
	}

	if layout, ok := b.ctx.ctmLayout(); ok {
		tiles, err := splitTiles(img, layout)
		if err != nil {
			return nil, fmt.Errorf("graph: %s %s: %w", b.ctx.Material.Name, tag, err)
		}
		var outs []*Output
		for i, tile := range tiles {
			o, err := b.encode(b.ctx.ctmTilePath(tag, i), tile)
			if err != nil {
				abortAll(outs)
				return nil, err
			}
			outs = append(outs, o)
		}
		return outs, nil
	}

	o, err := b.encode(b.ctx.OutputPath(tag), img)
	if err != nil {
		return nil, err
	}
	return []*Output{o}, nil
}

func (b *Builder) encode(p string, img image.Image) (*Output, error) {
	s, err := b.ctx.Writer.Open(p)
	if err != nil {
		return nil, err
	}
	if err := texture.Encode(s, img, b.ctx.Profile.Codec); err != nil {
		s.Abort()
		return nil, fmt.Errorf("graph: write %s: %w", p, err)
	}
	return &Output{Path: p, stream: s}, nil
}

// Render composes a texture in memory. Channels sharing a plane are layered
// in channel order; default-sourced channels only fill planes no other
// channel wrote. Unassigned alpha is opaque and single-plane textures are
// written as grayscale.
func (b *Builder) Render(ctx context.Context, tag encoding.Tag) (*image.NRGBA, error) {
	if err := b.Prepare(ctx); err != nil {
		return nil, err
	}
	out := b.ctx.Output
	channels := out.ChannelsFor(tag)

	var explicit, defaults []encoding.Channel
	for _, ch := range channels {
		switch src := b.graph.ChannelSource(ch); {
		case src.explicit():
			explicit = append(explicit, ch)
		case src == SourceDefault:
			defaults = append(defaults, ch)
		}
	}
	if len(explicit) == 0 {
		return nil, fmt.Errorf("graph: %s %s: %w", b.ctx.Material.Name, tag, ErrSourceEmpty)
	}
	layers := append(defaults, explicit...)

	gray := !out.Encodes(tag, encoding.Green) && !out.Encodes(tag, encoding.Blue)
	w, h := b.graph.Size()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	fillRow := func(y int) {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < w; x++ {
			var px [4]uint8
			var set [4]bool
			for _, ch := range layers {
				if v, ok := b.graph.ResolveChannelValue(ch, x, y); ok {
					pl := out.Get(ch).Plane
					px[pl] = v
					set[pl] = true
				}
			}
			if !set[encoding.Alpha] {
				px[encoding.Alpha] = 255
			}
			if gray {
				px[encoding.Green] = px[encoding.Red]
				px[encoding.Blue] = px[encoding.Red]
			}
			copy(row[x*4:x*4+4], px[:])
		}
	}

	if err := parallelRows(ctx, h, b.ctx.workers(), fillRow); err != nil {
		return nil, err
	}
	return img, nil
}

// parallelRows calls fn for every row using up to workers goroutines.
func parallelRows(ctx context.Context, rows, workers int, fn func(y int)) error {
	if workers > rows {
		workers = rows
	}
	if workers < 1 {
		workers = 1
	}
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for y := w; y < rows; y += workers {
				if err := ctx.Err(); err != nil {
					errs[w] = err
					return
				}
				fn(y)
			}
		}(w)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// BuildResult lists what BuildMaterial published.
type BuildResult struct {
	Written []string
	Skipped []encoding.Tag
}

// BuildMaterial builds every texture and companion file of the material.
// Outputs are committed together at the end; on failure or cancellation all
// staged outputs are discarded.
func (b *Builder) BuildMaterial(ctx context.Context) (*BuildResult, error) {
	if err := b.Prepare(ctx); err != nil {
		return nil, err
	}
	log := b.ctx.logger()
	res := &BuildResult{}
	var staged []*Output
	var textures []encoding.Tag

	for _, tag := range b.ctx.Output.Tags() {
		outs, err := b.BuildTexture(ctx, tag)
		if errors.Is(err, ErrSourceEmpty) {
			log.Debug("texture skipped", zap.String("material", b.ctx.Material.Name), zap.String("tag", string(tag)))
			res.Skipped = append(res.Skipped, tag)
			continue
		}
		if err != nil {
			abortAll(staged)
			return nil, err
		}
		staged = append(staged, outs...)
		textures = append(textures, tag)
	}

	companions, err := b.companions(textures)
	if err != nil {
		abortAll(staged)
		return nil, err
	}
	staged = append(staged, companions...)

	if err := ctx.Err(); err != nil {
		abortAll(staged)
		return nil, err
	}
	for i, o := range staged {
		if err := o.Commit(); err != nil {
			abortAll(staged[i+1:])
			return nil, fmt.Errorf("graph: commit %s: %w", o.Path, err)
		}
		res.Written = append(res.Written, o.Path)
	}
	return res, nil
}

func abortAll(outs []*Output) {
	for _, o := range outs {
		o.Abort()
	}
}
