package config

import (
	"fmt"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/format"
	"pixelgraph/internal/generate"
	"pixelgraph/internal/graph"
	"pixelgraph/internal/texture"
)

// OutputEncoding returns the encoding the profile publishes.
func (p *ProfileConfig) OutputEncoding() (*encoding.PackEncoding, error) {
	return format.New(p.Format)
}

// GraphProfile converts the profile into builder settings.
func (p *ProfileConfig) GraphProfile(workers int) (graph.Profile, error) {
	out := graph.DefaultProfile()

	edition, err := format.Edition(p.Format)
	if err != nil {
		return out, err
	}
	out.Edition = edition

	if out.Sampler, err = encoding.ParseSampler(p.Sampler); err != nil {
		return out, fmt.Errorf("config: profile %s: %w", p.Name, err)
	}
	if out.Codec, err = texture.ParseCodec(p.ImageEncoding); err != nil {
		return out, fmt.Errorf("config: profile %s: %w", p.Name, err)
	}
	if out.NormalMethod, err = generate.ParseNormalMethod(p.NormalMethod); err != nil {
		return out, fmt.Errorf("config: profile %s: %w", p.Name, err)
	}
	if out.Sampler == encoding.SamplerDefault {
		out.Sampler = encoding.SamplerBicubic
	}

	out.TextureSize = p.TextureSize
	out.BlockTextureSize = p.BlockTextureSize
	out.ItemTextureSize = p.ItemTextureSize
	out.TextureScale = p.TextureScale
	if p.NormalStrength > 0 {
		out.NormalStrength = p.NormalStrength
	}
	out.MultiFrequency = p.MultiFrequency
	out.AutoLevelHeight = p.AutoLevelHeight

	occ := p.Occlusion
	if occ.Steps > 0 {
		out.Occlusion.Steps = occ.Steps
	}
	if occ.Quality > 0 {
		out.Occlusion.Quality = occ.Quality
	}
	if occ.ZBias > 0 {
		out.Occlusion.ZBias = occ.ZBias
	}
	if occ.ZScale > 0 {
		out.Occlusion.ZScale = occ.ZScale
	}
	if occ.EmissiveThreshold > 0 {
		out.Occlusion.EmissiveThreshold = occ.EmissiveThreshold
	}

	if workers > 0 {
		out.Workers = workers
	}
	return out, nil
}
