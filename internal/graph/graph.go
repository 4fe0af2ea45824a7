package graph

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"path"

	"go.uber.org/zap"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/generate"
	"pixelgraph/internal/naming"
	"pixelgraph/internal/texture"
)

// ErrSourceEmpty is returned for a texture whose channels all fall back to
// defaults. Only that texture is skipped.
var ErrSourceEmpty = errors.New("no source for texture")

// Source records where a prepared channel came from.
type Source int

const (
	SourceNone Source = iota
	SourceDefault
	SourceGenerated
	SourceTexture
	SourceValue
)

func (s Source) String() string {
	switch s {
	case SourceDefault:
		return "default"
	case SourceGenerated:
		return "generated"
	case SourceTexture:
		return "texture"
	case SourceValue:
		return "value"
	}
	return "none"
}

// explicit reports whether the source came from the material rather than a
// fallback.
func (s Source) explicit() bool {
	return s == SourceValue || s == SourceTexture || s == SourceGenerated
}

type plane struct {
	// values holds channel values at output resolution; NaN marks absent
	// texels.
	values *generate.Grid
	source Source
}

// Graph resolves the channels of one material at one output size.
type Graph struct {
	ctx   *Context
	input *encoding.PackEncoding
	index *texture.Index

	width, height int

	planes   map[encoding.Channel]*plane
	visiting map[encoding.Channel]bool
	normals  *generate.NormalGrids

	acquired []string
	sources  map[string]bool
}

// NewGraph creates an unprepared graph for a material.
func NewGraph(c *Context) (*Graph, error) {
	input, err := c.InputEncoding()
	if err != nil {
		return nil, err
	}
	idx, err := texture.BuildIndex(c.Reader, c.SourceDir())
	if err != nil {
		return nil, fmt.Errorf("graph: index %s: %w", c.SourceDir(), err)
	}
	if c.Generators == nil {
		c.Generators = generate.DefaultRegistry()
	}
	if c.Images == nil {
		c.Images = texture.NewImageCache()
	}
	return &Graph{
		ctx:      c,
		input:    input,
		index:    idx,
		planes:   make(map[encoding.Channel]*plane),
		visiting: make(map[encoding.Channel]bool),
		sources:  make(map[string]bool),
	}, nil
}

// Size returns the prepared output size.
func (g *Graph) Size() (int, int) {
	return g.width, g.height
}

// Sources lists the input files that were read.
func (g *Graph) Sources() []string {
	out := make([]string, 0, len(g.sources))
	for p := range g.sources {
		out = append(out, p)
	}
	return out
}

// ChannelSource reports where a prepared channel came from.
func (g *Graph) ChannelSource(ch encoding.Channel) Source {
	if p := g.planes[ch]; p != nil {
		return p.source
	}
	return SourceNone
}

// Close releases cached source images.
func (g *Graph) Close() {
	for _, key := range g.acquired {
		g.ctx.Images.Release(key)
	}
	g.acquired = nil
}

// Prepare sizes the output and resolves every channel of the output
// encoding.
func (g *Graph) Prepare(ctx context.Context) error {
	if err := g.ctx.Generators.Validate(); err != nil {
		return err
	}
	if err := g.chooseSize(); err != nil {
		return err
	}
	for _, ch := range g.ctx.Output.Channels() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := g.resolve(ctx, ch); err != nil {
			return err
		}
	}
	return nil
}

// ResolveChannelValue returns the encoded pixel value of a channel at (x, y),
// or false when the channel is not present there.
func (g *Graph) ResolveChannelValue(ch encoding.Channel, x, y int) (uint8, bool) {
	p := g.planes[ch]
	props := g.ctx.Output.Get(ch)
	if p == nil || p.values == nil || props == nil {
		return 0, false
	}
	v := p.values.At(x, y)
	if math.IsNaN(v) {
		return 0, false
	}
	scale := 1.0
	if !ch.IsNormal() {
		scale = g.ctx.Material.ChannelScale(ch)
	}
	return EncodeValue(props, v, scale)
}

// chooseSize picks the output size from the profile, the material and the
// largest source image.
func (g *Graph) chooseSize() error {
	srcW, srcH := 0, 0
	for _, tag := range g.input.Tags() {
		p, ok := g.findTexture(tag, "")
		if !ok {
			continue
		}
		img, err := g.load(p, 0, 0, encoding.SamplerDefault, false)
		if err != nil {
			return err
		}
		b := img.Bounds()
		if b.Dx() > srcW {
			srcW, srcH = b.Dx(), b.Dy()
		}
	}

	mat := g.ctx.Material
	prof := g.ctx.Profile
	if srcW == 0 {
		g.width, g.height = 1, 1
		if mat.Size != nil && *mat.Size > 0 {
			g.width, g.height = *mat.Size, *mat.Size
		}
		return nil
	}

	resize := mat.Resize == nil || *mat.Resize
	g.width, g.height = prof.TargetSize(g.ctx.Category(), srcW, srcH, resize)
	return nil
}

// findTexture locates the input file for a tag. override names a file stem
// or a path relative to the source directory.
func (g *Graph) findTexture(tag encoding.Tag, override string) (string, bool) {
	if override != "" {
		if naming.IsImage(override) {
			p := path.Join(g.ctx.SourceDir(), override)
			if g.ctx.Reader.FileExists(p) {
				return p, true
			}
		}
		return g.index.ResolvePath(override)
	}
	stems := g.ctx.InputPolicy(g.input.Edition).InputStems(tag, g.ctx.Material.Name)
	return g.index.Find(stems)
}

// load fetches a source image, resized to w x h unless w is zero.
func (g *Graph) load(p string, w, h int, sampler encoding.Sampler, premultiplied bool) (*image.NRGBA, error) {
	full := "full:" + p
	src, err := g.ctx.Images.Acquire(full, func() (*image.NRGBA, error) {
		return texture.Load(g.ctx.Reader, p)
	})
	if err != nil {
		return nil, err
	}
	g.acquired = append(g.acquired, full)
	g.sources[p] = true
	if w == 0 {
		return src, nil
	}

	key := fmt.Sprintf("%s@%dx%d:%s:%v", p, w, h, sampler, premultiplied)
	img, err := g.ctx.Images.Acquire(key, func() (*image.NRGBA, error) {
		if premultiplied {
			return texture.ResizePremultiplied(src, w, h, sampler), nil
		}
		return texture.Resize(src, w, h, sampler), nil
	})
	if err != nil {
		return nil, err
	}
	g.acquired = append(g.acquired, key)
	return img, nil
}

func (g *Graph) samplerFor(ch encoding.Channel, in *encoding.ChannelProperties) encoding.Sampler {
	if in != nil && in.Sampler == encoding.SamplerNearest {
		return encoding.SamplerNearest
	}
	if out := g.ctx.Output.Get(ch); out != nil && out.Sampler == encoding.SamplerNearest {
		return encoding.SamplerNearest
	}
	if g.ctx.Profile.Sampler != encoding.SamplerDefault {
		return g.ctx.Profile.Sampler
	}
	return encoding.SamplerBicubic
}

// resolve prepares a channel, trying in order: explicit material value,
// input texture, generator, default.
func (g *Graph) resolve(ctx context.Context, ch encoding.Channel) (*plane, error) {
	if p, ok := g.planes[ch]; ok {
		return p, nil
	}
	if g.visiting[ch] {
		return nil, fmt.Errorf("graph: resolve %s: %w", ch, generate.ErrCyclicDependency)
	}
	g.visiting[ch] = true
	defer delete(g.visiting, ch)

	var p *plane
	var err error
	if ch.IsNormal() {
		err = g.resolveNormals(ctx)
		p = g.planes[ch]
	} else {
		p, err = g.resolveScalar(ctx, ch)
		if err == nil {
			g.planes[ch] = p
		}
	}
	if err != nil {
		return nil, err
	}
	g.ctx.logger().Debug("channel resolved",
		zap.String("material", g.ctx.Material.Name),
		zap.String("channel", string(ch)),
		zap.Stringer("source", p.source))
	return p, nil
}

func (g *Graph) resolveScalar(ctx context.Context, ch encoding.Channel) (*plane, error) {
	if v, ok := g.ctx.Material.ChannelValue(ch); ok {
		return &plane{values: generate.Filled(g.width, g.height, v), source: SourceValue}, nil
	}

	grid, err := g.fromInput(ch)
	if err != nil {
		return nil, err
	}
	if grid == nil {
		grid, err = g.fromAlternate(ch)
		if err != nil {
			return nil, err
		}
	}
	if grid != nil {
		if ch == encoding.Height {
			grid = g.postHeight(grid)
		}
		return &plane{values: grid, source: SourceTexture}, nil
	}

	if node, ok := g.ctx.Generators.Lookup(ch); ok {
		grid, err := g.generate(ctx, node)
		if err != nil {
			return nil, err
		}
		if grid != nil {
			return &plane{values: grid, source: SourceGenerated}, nil
		}
	}

	if v, ok := g.defaultValue(ch); ok {
		return &plane{values: generate.Filled(g.width, g.height, v), source: SourceDefault}, nil
	}
	return &plane{source: SourceNone}, nil
}

func (g *Graph) defaultValue(ch encoding.Channel) (float64, bool) {
	if out := g.ctx.Output.Get(ch); out != nil {
		return out.Default(ch)
	}
	return ch.Default()
}

// fromInput decodes a channel from its input texture, or returns nil when the
// input encoding does not store it or the file is missing.
func (g *Graph) fromInput(ch encoding.Channel) (*generate.Grid, error) {
	props := g.input.Get(ch)
	override, _ := g.ctx.Material.ChannelTexture(ch)
	if props == nil {
		if override == "" {
			return nil, nil
		}
		props = g.ctx.Output.Get(ch)
		if props == nil {
			return nil, nil
		}
	}
	p, ok := g.findTexture(props.Texture, override)
	if !ok {
		return nil, nil
	}
	img, err := g.load(p, g.width, g.height, g.samplerFor(ch, props), ch.IsColor() || ch == encoding.Opacity)
	if err != nil {
		return nil, err
	}
	return decodePlane(img, props), nil
}

func decodePlane(img *image.NRGBA, props *encoding.ChannelProperties) *generate.Grid {
	b := img.Bounds()
	out := generate.NewGrid(b.Dx(), b.Dy())
	off := int(props.Plane)
	for y := 0; y < b.Dy(); y++ {
		row := img.Pix[y*img.Stride:]
		for x := 0; x < b.Dx(); x++ {
			v, ok := DecodeValue(props, row[x*4+off])
			if !ok {
				v = math.NaN()
			}
			out.Set(x, y, v)
		}
	}
	return out
}

// fromAlternate derives a channel from a related input channel: smooth and
// rough are complements, and any HCM index implies metal.
func (g *Graph) fromAlternate(ch encoding.Channel) (*generate.Grid, error) {
	var other encoding.Channel
	switch ch {
	case encoding.Smooth:
		other = encoding.Rough
	case encoding.Rough:
		other = encoding.Smooth
	case encoding.Metal:
		other = encoding.HCM
	default:
		return nil, nil
	}
	src, err := g.fromInput(other)
	if err != nil || src == nil {
		return nil, err
	}
	out := generate.NewGrid(src.W, src.H)
	for i, v := range src.Pix {
		switch {
		case ch == encoding.Metal && math.IsNaN(v):
			out.Pix[i] = 0
		case ch == encoding.Metal:
			out.Pix[i] = 1
		case math.IsNaN(v):
			out.Pix[i] = math.NaN()
		default:
			out.Pix[i] = 1 - v
		}
	}
	return out, nil
}

func (g *Graph) postHeight(h *generate.Grid) *generate.Grid {
	hp := g.ctx.Material.Height
	if g.ctx.Profile.AutoLevelHeight || (hp != nil && hp.AutoLevel != nil && *hp.AutoLevel) {
		h = generate.AutoLevel(withDefault(h, 1))
	}
	if hp != nil && hp.EdgeFadeSize != nil && *hp.EdgeFadeSize > 0 {
		strength := 1.0
		if hp.EdgeFadeStrength != nil {
			strength = *hp.EdgeFadeStrength
		}
		h = generate.EdgeFade(withDefault(h, 1), generate.EdgeFadeOptions{Size: *hp.EdgeFadeSize, Strength: strength})
	}
	return h
}

// withDefault replaces absent texels with v.
func withDefault(g *generate.Grid, v float64) *generate.Grid {
	out := g.Clone()
	for i, x := range out.Pix {
		if math.IsNaN(x) {
			out.Pix[i] = v
		}
	}
	return out
}

// generate runs a generator node when every prerequisite resolves from a
// non-default source. It returns nil when the generator cannot run.
func (g *Graph) generate(ctx context.Context, node generate.Node) (*generate.Grid, error) {
	for _, dep := range node.Requires {
		p, err := g.resolve(ctx, dep)
		if err != nil {
			return nil, err
		}
		if !p.source.explicit() {
			return nil, nil
		}
	}

	switch node.Channel {
	case encoding.Occlusion:
		height := withDefault(g.planes[encoding.Height].values, 1)
		var emissive *generate.Grid
		if p, err := g.resolve(ctx, encoding.Emissive); err == nil && p.source.explicit() {
			emissive = withDefault(p.values, 0)
		}
		opt := g.occlusionOptions()
		return generate.Occlusion(ctx, height, emissive, opt)
	case encoding.NormalX, encoding.NormalY, encoding.NormalZ:
		n, err := g.generatedNormals()
		if err != nil {
			return nil, err
		}
		switch node.Channel {
		case encoding.NormalX:
			return n.X, nil
		case encoding.NormalY:
			return n.Y, nil
		}
		return n.Z, nil
	}
	return nil, fmt.Errorf("graph: no generator for %s", node.Channel)
}

func (g *Graph) occlusionOptions() generate.OcclusionOptions {
	opt := g.ctx.Profile.Occlusion
	if opt.Steps == 0 {
		opt = generate.DefaultOcclusion()
	}
	opt.Wrap = g.ctx.Material.IsWrapped()
	if o := g.ctx.Material.Occlusion; o != nil {
		if o.Steps != nil {
			opt.Steps = *o.Steps
		}
		if o.Quality != nil {
			opt.Quality = *o.Quality
		}
		if o.ZBias != nil {
			opt.ZBias = *o.ZBias
		}
		if o.ZScale != nil {
			opt.ZScale = *o.ZScale
		}
		if o.EmissiveThreshold != nil {
			opt.EmissiveThreshold = *o.EmissiveThreshold
		}
	}
	return opt
}

func (g *Graph) generatedNormals() (*generate.NormalGrids, error) {
	if g.normals != nil {
		return g.normals, nil
	}
	prof := g.ctx.Profile
	opt := generate.NormalOptions{
		Method:   prof.NormalMethod,
		Strength: prof.NormalStrength,
		Wrap:     g.ctx.Material.IsWrapped(),
	}
	multi := prof.MultiFrequency
	if n := g.ctx.Material.Normal; n != nil {
		if n.Method != nil {
			m, err := generate.ParseNormalMethod(*n.Method)
			if err != nil {
				return nil, fmt.Errorf("graph: material %s: %w", g.ctx.Material.Name, err)
			}
			opt.Method = m
		}
		if n.Strength != nil {
			opt.Strength = *n.Strength
		}
		if n.MultiFrequency != nil {
			multi = *n.MultiFrequency
		}
	}
	if multi {
		opt.Stages = generate.DefaultStages
	}
	normals, err := generate.Normals(withDefault(g.planes[encoding.Height].values, 1), opt)
	if err != nil {
		return nil, err
	}
	g.normals = normals
	return normals, nil
}
