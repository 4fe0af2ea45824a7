// Package graph resolves material channels and composes them into the
// textures of an output encoding.
package graph

import (
	"fmt"
	"math"
	"path"
	"runtime"

	"go.uber.org/zap"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/format"
	"pixelgraph/internal/generate"
	"pixelgraph/internal/material"
	"pixelgraph/internal/minecraft"
	"pixelgraph/internal/naming"
	"pixelgraph/internal/packio"
	"pixelgraph/internal/texture"
)

// Profile holds the publish settings that shape every texture.
type Profile struct {
	Edition encoding.Edition

	// TextureSize forces the output width of every texture. Block and item
	// sizes apply to their categories when TextureSize is zero.
	TextureSize      int
	BlockTextureSize int
	ItemTextureSize  int
	// TextureScale multiplies the source size when no explicit size applies.
	TextureScale float64

	Sampler encoding.Sampler
	Codec   texture.Codec

	NormalMethod   generate.NormalMethod
	NormalStrength float64
	MultiFrequency bool
	Occlusion      generate.OcclusionOptions

	AutoLevelHeight bool
	// Workers bounds the goroutines filling one texture.
	Workers int
}

// DefaultProfile returns the settings used when a project sets none.
func DefaultProfile() Profile {
	return Profile{
		Edition:        encoding.Java,
		Sampler:        encoding.SamplerBicubic,
		Codec:          texture.PNG,
		NormalMethod:   generate.Sobel3,
		NormalStrength: 1,
		Occlusion:      generate.DefaultOcclusion(),
		Workers:        runtime.NumCPU(),
	}
}

// TargetSize returns the output size of a texture with the given source size.
// TextureSize wins over the category sizes; TextureScale applies when neither
// is set. Aspect ratio is kept. With resize false the source size is used.
func (p Profile) TargetSize(cat minecraft.Category, srcW, srcH int, resize bool) (int, int) {
	if !resize || srcW <= 0 || srcH <= 0 {
		return srcW, srcH
	}
	target := p.TextureSize
	if target == 0 {
		switch cat {
		case minecraft.CategoryBlock:
			target = p.BlockTextureSize
		case minecraft.CategoryItem:
			target = p.ItemTextureSize
		}
	}
	switch {
	case target > 0:
		return target, max(1, int(math.Round(float64(target)*float64(srcH)/float64(srcW))))
	case p.TextureScale > 0:
		return max(1, int(math.Round(float64(srcW)*p.TextureScale))), max(1, int(math.Round(float64(srcH)*p.TextureScale)))
	}
	return srcW, srcH
}

// Context carries everything needed to build one material. It is created per
// material and never persisted.
type Context struct {
	Reader packio.Reader
	Writer packio.Writer

	Input   *encoding.PackEncoding
	Output  *encoding.PackEncoding
	Profile Profile

	Material   *material.Properties
	Images     *texture.ImageCache
	Generators *generate.Registry

	// OutputLocal writes textures into per-material directories.
	OutputLocal bool
	Logger      *zap.Logger
}

// InputEncoding returns the material's input format override, or the project
// input encoding.
func (c *Context) InputEncoding() (*encoding.PackEncoding, error) {
	if f := c.Material.InputFormat; f != nil && *f != "" {
		e, err := format.New(*f)
		if err != nil {
			return nil, fmt.Errorf("graph: material %s: %w", c.Material.Name, err)
		}
		return e, nil
	}
	return c.Input, nil
}

// InputPolicy names the material's source files.
func (c *Context) InputPolicy(edition encoding.Edition) naming.Policy {
	return naming.Policy{Local: c.Material.Local, Edition: edition}
}

// OutputPolicy names the published files.
func (c *Context) OutputPolicy() naming.Policy {
	return naming.Policy{Local: c.OutputLocal, Edition: c.Output.Edition}
}

// SourceDir is the directory holding the material's source textures.
func (c *Context) SourceDir() string {
	return naming.Policy{Local: c.Material.Local}.Dir(c.Material.LocalPath, c.Material.Name)
}

// OutputPath returns the published path of a tag.
func (c *Context) OutputPath(tag encoding.Tag) string {
	return c.OutputPolicy().OutputPath(c.Material.LocalPath, c.Material.Name, tag, c.Profile.Codec.Ext())
}

// OutputDir returns the directory the material publishes into.
func (c *Context) OutputDir() string {
	return c.OutputPolicy().Dir(c.Material.LocalPath, c.Material.Name)
}

// Category classifies the material by its location.
func (c *Context) Category() minecraft.Category {
	return minecraft.CategoryOf(path.Join(c.Material.LocalPath, c.Material.Name))
}

func (c *Context) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}

func (c *Context) workers() int {
	if c.Profile.Workers <= 0 {
		return 1
	}
	return c.Profile.Workers
}
