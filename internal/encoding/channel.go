// Package encoding describes logical material channels and how a pack format
// stores them in texture planes.
package encoding

import "fmt"

// Channel identifies one logical scalar quantity of a material.
type Channel string

const (
	Opacity    Channel = "opacity"
	ColorRed   Channel = "color-red"
	ColorGreen Channel = "color-green"
	ColorBlue  Channel = "color-blue"
	Height     Channel = "height"
	NormalX    Channel = "normal-x"
	NormalY    Channel = "normal-y"
	NormalZ    Channel = "normal-z"
	Occlusion  Channel = "occlusion"
	Smooth     Channel = "smooth"
	Rough      Channel = "rough"
	F0         Channel = "f0"
	HCM        Channel = "hcm"
	Metal      Channel = "metal"
	Porosity   Channel = "porosity"
	SSS        Channel = "sss"
	Emissive   Channel = "emissive"
)

// AllChannels lists every channel in layering order. When two channels share
// a texture plane the later one wins wherever it is present.
var AllChannels = []Channel{
	Opacity,
	ColorRed, ColorGreen, ColorBlue,
	Height,
	NormalX, NormalY, NormalZ,
	Occlusion,
	Smooth, Rough,
	F0, Metal, HCM,
	Porosity, SSS,
	Emissive,
}

var channelDefaults = map[Channel]float64{
	Opacity:    1,
	ColorRed:   0,
	ColorGreen: 0,
	ColorBlue:  0,
	Height:     1,
	NormalX:    0,
	NormalY:    0,
	NormalZ:    1,
	Occlusion:  0,
	Smooth:     0,
	Rough:      1,
	F0:         0.04,
	Metal:      0,
	Porosity:   0,
	SSS:        0,
	Emissive:   0,
}

// Default returns the identity default of a channel. HCM has none.
func (c Channel) Default() (float64, bool) {
	v, ok := channelDefaults[c]
	return v, ok
}

// IsNormal reports whether c is one of the normal vector components.
func (c Channel) IsNormal() bool {
	return c == NormalX || c == NormalY || c == NormalZ
}

// IsColor reports whether c is an albedo component.
func (c Channel) IsColor() bool {
	return c == ColorRed || c == ColorGreen || c == ColorBlue
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	for _, ch := range AllChannels {
		if ch == c {
			return true
		}
	}
	return false
}

// ParseChannel converts a channel name to a Channel.
func ParseChannel(s string) (Channel, error) {
	c := Channel(s)
	if !c.Valid() {
		return "", fmt.Errorf("encoding: unknown channel %q", s)
	}
	return c, nil
}

// ColorPlane selects one 8-bit plane of an RGBA texel.
type ColorPlane int

const (
	Red ColorPlane = iota
	Green
	Blue
	Alpha
)

func (p ColorPlane) String() string {
	switch p {
	case Red:
		return "r"
	case Green:
		return "g"
	case Blue:
		return "b"
	case Alpha:
		return "a"
	}
	return fmt.Sprintf("plane(%d)", int(p))
}

// ParsePlane converts "r", "g", "b" or "a" to a ColorPlane.
func ParsePlane(s string) (ColorPlane, error) {
	switch s {
	case "r", "red":
		return Red, nil
	case "g", "green":
		return Green, nil
	case "b", "blue":
		return Blue, nil
	case "a", "alpha":
		return Alpha, nil
	}
	return 0, fmt.Errorf("encoding: unknown color plane %q", s)
}

// Sampler names a resampling filter.
type Sampler string

const (
	SamplerDefault  Sampler = ""
	SamplerNearest  Sampler = "nearest"
	SamplerBilinear Sampler = "bilinear"
	SamplerBicubic  Sampler = "bicubic"
	SamplerLanczos  Sampler = "lanczos"
)

// ParseSampler validates a sampler name. An empty name selects the default.
func ParseSampler(s string) (Sampler, error) {
	switch Sampler(s) {
	case SamplerDefault, SamplerNearest, SamplerBilinear, SamplerBicubic, SamplerLanczos:
		return Sampler(s), nil
	}
	return "", fmt.Errorf("encoding: unknown sampler %q", s)
}
