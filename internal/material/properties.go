// Package material reads, writes and discovers material property documents.
package material

import (
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/packio"
)

// LocalFileName is the property document of a local material.
const LocalFileName = "mat.yml"

// GlobalSuffix names the property document of a global material.
const GlobalSuffix = ".mat.yml"

// Properties holds the per-material settings. Every document field is a
// pointer so that fields absent on read stay absent on write.
type Properties struct {
	// Name, LocalPath and Local come from the document location.
	Name      string `yaml:"-"`
	LocalPath string `yaml:"-"`
	Local     bool   `yaml:"-"`

	Alias       *string `yaml:"alias,omitempty"`
	InputFormat *string `yaml:"input_format,omitempty"`
	Wrap        *bool   `yaml:"wrap,omitempty"`
	Resize      *bool   `yaml:"resize,omitempty"`
	Size        *int    `yaml:"size,omitempty"`
	Model       *string `yaml:"model,omitempty"`

	Channels  map[encoding.Channel]*ChannelOverride `yaml:"channels,omitempty"`
	Normal    *NormalProperties                     `yaml:"normal,omitempty"`
	Occlusion *OcclusionProperties                  `yaml:"occlusion,omitempty"`
	Height    *HeightProperties                     `yaml:"height,omitempty"`
	CTM       *CTMProperties                        `yaml:"ctm,omitempty"`
	Color     *ColorProperties                      `yaml:"color,omitempty"`
	Animation *AnimationProperties                  `yaml:"animation,omitempty"`
}

// ChannelOverride replaces or adjusts one channel.
type ChannelOverride struct {
	Value   *float64 `yaml:"value,omitempty"`
	Scale   *float64 `yaml:"scale,omitempty"`
	Texture *string  `yaml:"texture,omitempty"`
}

// NormalProperties controls normal generation from height.
type NormalProperties struct {
	Method         *string  `yaml:"method,omitempty"`
	Strength       *float64 `yaml:"strength,omitempty"`
	MultiFrequency *bool    `yaml:"multi_frequency,omitempty"`
}

// OcclusionProperties controls ambient occlusion generation.
type OcclusionProperties struct {
	Steps             *int     `yaml:"steps,omitempty"`
	Quality           *float64 `yaml:"quality,omitempty"`
	ZBias             *float64 `yaml:"z_bias,omitempty"`
	ZScale            *float64 `yaml:"z_scale,omitempty"`
	EmissiveThreshold *float64 `yaml:"emissive_threshold,omitempty"`
}

// HeightProperties controls height post-processing.
type HeightProperties struct {
	AutoLevel        *bool    `yaml:"auto_level,omitempty"`
	EdgeFadeSize     *int     `yaml:"edge_fade_size,omitempty"`
	EdgeFadeStrength *float64 `yaml:"edge_fade_strength,omitempty"`
}

// CTMProperties describes a connected-texture sheet.
type CTMProperties struct {
	Method      *string `yaml:"method,omitempty"`
	Width       *int    `yaml:"width,omitempty"`
	Height      *int    `yaml:"height,omitempty"`
	MatchBlocks *string `yaml:"match_blocks,omitempty"`
	MatchTiles  *string `yaml:"match_tiles,omitempty"`
	Tiles       *string `yaml:"tiles,omitempty"`
	Placeholder *bool   `yaml:"placeholder,omitempty"`
}

// ColorProperties tints the color texture.
type ColorProperties struct {
	Tint  *string `yaml:"tint,omitempty"`
	Blend *string `yaml:"blend,omitempty"`
}

// AnimationProperties is written as a .png.mcmeta companion.
type AnimationProperties struct {
	FrameTime   *int  `yaml:"frametime,omitempty"`
	Interpolate *bool `yaml:"interpolate,omitempty"`
	Frames      []int `yaml:"frames,omitempty"`
}

// DisplayName returns the alias if set, otherwise the material name.
func (p *Properties) DisplayName() string {
	if p.Alias != nil && *p.Alias != "" {
		return *p.Alias
	}
	return p.Name
}

// DocumentPath returns where the property document lives.
func (p *Properties) DocumentPath() string {
	if p.Local {
		return path.Join(p.LocalPath, p.Name, LocalFileName)
	}
	return path.Join(p.LocalPath, p.Name+GlobalSuffix)
}

// IsWrapped reports whether sampling wraps at texture edges. Defaults to true.
func (p *Properties) IsWrapped() bool {
	return p.Wrap == nil || *p.Wrap
}

// ChannelValue returns the explicit constant of a channel, if any.
func (p *Properties) ChannelValue(ch encoding.Channel) (float64, bool) {
	o := p.Channels[ch]
	if o == nil || o.Value == nil {
		return 0, false
	}
	return *o.Value, true
}

// ChannelScale returns the scale applied to a channel, 1 when unset.
func (p *Properties) ChannelScale(ch encoding.Channel) float64 {
	o := p.Channels[ch]
	if o == nil || o.Scale == nil {
		return 1
	}
	return *o.Scale
}

// ChannelTexture returns the texture override of a channel, if any.
func (p *Properties) ChannelTexture(ch encoding.Channel) (string, bool) {
	o := p.Channels[ch]
	if o == nil || o.Texture == nil || *o.Texture == "" {
		return "", false
	}
	return *o.Texture, true
}

// SetChannelValue sets an explicit channel constant.
func (p *Properties) SetChannelValue(ch encoding.Channel, v float64) {
	p.override(ch).Value = &v
}

// SetChannelScale sets a channel scale.
func (p *Properties) SetChannelScale(ch encoding.Channel, v float64) {
	p.override(ch).Scale = &v
}

func (p *Properties) override(ch encoding.Channel) *ChannelOverride {
	if p.Channels == nil {
		p.Channels = make(map[encoding.Channel]*ChannelOverride)
	}
	o := p.Channels[ch]
	if o == nil {
		o = &ChannelOverride{}
		p.Channels[ch] = o
	}
	return o
}

// HasChannelValues reports whether any channel has an explicit constant.
func (p *Properties) HasChannelValues() bool {
	for _, o := range p.Channels {
		if o != nil && o.Value != nil {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (p *Properties) Clone() *Properties {
	data, err := yaml.Marshal(p)
	if err != nil {
		panic(fmt.Sprintf("material: clone %s: %v", p.Name, err))
	}
	out := &Properties{}
	if err := yaml.Unmarshal(data, out); err != nil {
		panic(fmt.Sprintf("material: clone %s: %v", p.Name, err))
	}
	out.Name = p.Name
	out.LocalPath = p.LocalPath
	out.Local = p.Local
	return out
}

// Parse decodes a property document.
func Parse(data []byte) (*Properties, error) {
	p := &Properties{}
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, err
	}
	for ch := range p.Channels {
		if !ch.Valid() {
			return nil, fmt.Errorf("unknown channel %q", ch)
		}
	}
	return p, nil
}

// Marshal encodes a property document.
func Marshal(p *Properties) ([]byte, error) {
	return yaml.Marshal(p)
}

// Load reads the document at docPath. Name, LocalPath and Local are derived
// from the path.
func Load(r packio.Reader, docPath string) (*Properties, error) {
	data, err := packio.ReadFile(r, docPath)
	if err != nil {
		return nil, fmt.Errorf("material: read %s: %w", docPath, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("material: parse %s: %w", docPath, err)
	}
	docPath = packio.Clean(docPath)
	base := path.Base(docPath)
	if base == LocalFileName {
		dir := path.Dir(docPath)
		p.Local = true
		p.Name = path.Base(dir)
		p.LocalPath = parentDir(dir)
	} else {
		p.Name = strings.TrimSuffix(base, GlobalSuffix)
		p.LocalPath = parentDir(docPath)
	}
	return p, nil
}

// Save writes p to docPath.
func Save(w packio.Writer, docPath string, p *Properties) error {
	data, err := Marshal(p)
	if err != nil {
		return fmt.Errorf("material: encode %s: %w", docPath, err)
	}
	if err := packio.WriteFile(w, docPath, data); err != nil {
		return fmt.Errorf("material: write %s: %w", docPath, err)
	}
	return nil
}

func parentDir(p string) string {
	d := path.Dir(p)
	if d == "." {
		return ""
	}
	return d
}
