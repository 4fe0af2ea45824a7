package graph

import (
	"encoding/json"
	"fmt"
	"path"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/naming"
)

type mcmeta struct {
	Animation animationMeta `json:"animation"`
}

type animationMeta struct {
	FrameTime   int   `json:"frametime,omitempty"`
	Interpolate bool  `json:"interpolate,omitempty"`
	Frames      []int `json:"frames,omitempty"`
}

type textureSet struct {
	FormatVersion string            `json:"format_version"`
	TextureSet    textureSetEntries `json:"minecraft:texture_set"`
}

type textureSetEntries struct {
	Color     string `json:"color,omitempty"`
	MER       string `json:"metalness_emissive_roughness,omitempty"`
	MERS      string `json:"metalness_emissive_roughness_subsurface,omitempty"`
	Normal    string `json:"normal,omitempty"`
	Heightmap string `json:"heightmap,omitempty"`
}

// companions stages the metadata files that accompany the textures:
// animation .mcmeta files, OptiFine CTM properties and Bedrock texture sets.
func (b *Builder) companions(textures []encoding.Tag) ([]*Output, error) {
	c := b.ctx
	var outs []*Output
	add := func(p string, data []byte) error {
		s, err := c.Writer.Open(p)
		if err != nil {
			return err
		}
		if _, err := s.Write(data); err != nil {
			s.Abort()
			return fmt.Errorf("graph: write %s: %w", p, err)
		}
		outs = append(outs, &Output{Path: p, stream: s})
		return nil
	}

	layout, isCTM := c.ctmLayout()

	if anim := c.Material.Animation; anim != nil && !isCTM {
		meta := mcmeta{Animation: animationMeta{Frames: anim.Frames}}
		if anim.FrameTime != nil {
			meta.Animation.FrameTime = *anim.FrameTime
		}
		if anim.Interpolate != nil {
			meta.Animation.Interpolate = *anim.Interpolate
		}
		data, err := json.MarshalIndent(meta, "", "  ")
		if err != nil {
			return nil, err
		}
		for _, tag := range textures {
			if err := add(c.OutputPath(tag)+".mcmeta", data); err != nil {
				abortAll(outs)
				return nil, err
			}
		}
	}

	if isCTM && len(textures) > 0 {
		if err := add(c.ctmPropertiesPath(), c.ctmProperties(layout)); err != nil {
			abortAll(outs)
			return nil, err
		}
	}

	if c.Output.Edition == encoding.Bedrock && len(textures) > 0 {
		data, err := json.MarshalIndent(c.textureSet(textures), "", "  ")
		if err != nil {
			abortAll(outs)
			return nil, err
		}
		p := path.Join(c.OutputDir(), c.Material.Name+".texture_set.json")
		if err := add(p, data); err != nil {
			abortAll(outs)
			return nil, err
		}
	}
	return outs, nil
}

// textureSet lists the emitted Bedrock layers by file stem. A texture set
// holds either a normal map or a height map, so normal wins.
func (c *Context) textureSet(textures []encoding.Tag) textureSet {
	policy := naming.Policy{Edition: encoding.Bedrock}
	stem := func(tag encoding.Tag) string {
		return naming.Stem(policy.FileName(tag, c.Material.Name, c.Profile.Codec.Ext()))
	}
	set := textureSet{FormatVersion: "1.16.100"}
	for _, tag := range textures {
		switch tag {
		case encoding.TagColor:
			set.TextureSet.Color = stem(tag)
		case encoding.TagMER:
			set.TextureSet.MER = stem(tag)
		case encoding.TagMERS:
			set.TextureSet.MERS = stem(tag)
			set.FormatVersion = "1.21.30"
		case encoding.TagNormal:
			set.TextureSet.Normal = stem(tag)
		case encoding.TagHeight:
			set.TextureSet.Heightmap = stem(tag)
		}
	}
	if set.TextureSet.Normal != "" {
		set.TextureSet.Heightmap = ""
	}
	return set
}
