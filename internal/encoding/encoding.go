package encoding

import (
	"fmt"
	"math"
)

// ChannelProperties describes where a channel lives in a format and how its
// value maps onto 8-bit pixel values.
type ChannelProperties struct {
	Texture Tag
	Plane   ColorPlane

	// MinValue..MaxValue is the value domain that RangeMin..RangeMax encodes.
	MinValue float64
	MaxValue float64
	RangeMin int
	RangeMax int

	// Shift is an 8-bit offset applied after range mapping, wrapping at 256.
	Shift int
	// Power is a gamma exponent applied to the normalized value on encode.
	Power  float64
	Invert bool
	// Binary channels decode to MaxValue anywhere inside the range and only
	// encode values in the upper half of the value domain.
	Binary bool
	// EnableClipping treats raw values outside RangeMin..RangeMax as absent
	// and clips encoded values to the range.
	EnableClipping bool
	// OmitMin skips encoding values at MinValue so a lower layer on the same
	// plane shows through.
	OmitMin bool

	DefaultValue *float64
	Sampler      Sampler
}

// Default returns the format default, falling back to the channel default.
func (p *ChannelProperties) Default(ch Channel) (float64, bool) {
	if p != nil && p.DefaultValue != nil {
		return *p.DefaultValue, true
	}
	return ch.Default()
}

// HasPower reports whether Power differs meaningfully from 1.
func (p *ChannelProperties) HasPower() bool {
	return p.Power > 0 && math.Abs(p.Power-1) > 1e-6
}

// Clone returns a copy that shares no pointers with p.
func (p *ChannelProperties) Clone() *ChannelProperties {
	if p == nil {
		return nil
	}
	out := *p
	if p.DefaultValue != nil {
		v := *p.DefaultValue
		out.DefaultValue = &v
	}
	return &out
}

// PackEncoding is a named assignment of channels to texture planes.
type PackEncoding struct {
	Name     string
	Edition  Edition
	channels map[Channel]*ChannelProperties
}

// NewPackEncoding creates an empty encoding.
func NewPackEncoding(name string, edition Edition) *PackEncoding {
	return &PackEncoding{
		Name:     name,
		Edition:  edition,
		channels: make(map[Channel]*ChannelProperties),
	}
}

// Get returns the properties of a channel, or nil when the format does not
// encode it.
func (e *PackEncoding) Get(ch Channel) *ChannelProperties {
	return e.channels[ch]
}

// Set assigns (or clears, when p is nil) the properties of a channel.
func (e *PackEncoding) Set(ch Channel, p *ChannelProperties) {
	if p == nil {
		delete(e.channels, ch)
		return
	}
	e.channels[ch] = p
}

// Channels returns the encoded channels in layering order.
func (e *PackEncoding) Channels() []Channel {
	var out []Channel
	for _, ch := range AllChannels {
		if e.channels[ch] != nil {
			out = append(out, ch)
		}
	}
	return out
}

// Tags returns the distinct texture tags used by the encoding, ordered by
// their first channel.
func (e *PackEncoding) Tags() []Tag {
	seen := make(map[Tag]bool)
	var out []Tag
	for _, ch := range e.Channels() {
		t := e.channels[ch].Texture
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// ChannelsFor returns the channels stored in the given texture.
func (e *PackEncoding) ChannelsFor(tag Tag) []Channel {
	var out []Channel
	for _, ch := range e.Channels() {
		if e.channels[ch].Texture == tag {
			out = append(out, ch)
		}
	}
	return out
}

// Encodes reports whether any channel maps to the given texture plane.
func (e *PackEncoding) Encodes(tag Tag, plane ColorPlane) bool {
	for _, p := range e.channels {
		if p.Texture == tag && p.Plane == plane {
			return true
		}
	}
	return false
}

// Clone returns a deep copy.
func (e *PackEncoding) Clone() *PackEncoding {
	out := NewPackEncoding(e.Name, e.Edition)
	for ch, p := range e.channels {
		out.channels[ch] = p.Clone()
	}
	return out
}

// Validate checks that channels sharing a texture plane are intentionally
// layered: every channel on a shared plane must be clipped or binary.
func (e *PackEncoding) Validate() error {
	type slot struct {
		tag   Tag
		plane ColorPlane
	}
	shared := make(map[slot][]Channel)
	for _, ch := range e.Channels() {
		p := e.channels[ch]
		if p.RangeMin < 0 || p.RangeMax > 255 || p.RangeMin > p.RangeMax {
			return fmt.Errorf("encoding: %s: channel %s has invalid range %d..%d", e.Name, ch, p.RangeMin, p.RangeMax)
		}
		s := slot{p.Texture, p.Plane}
		shared[s] = append(shared[s], ch)
	}
	for s, chs := range shared {
		if len(chs) < 2 {
			continue
		}
		for _, ch := range chs {
			p := e.channels[ch]
			if !p.EnableClipping && !p.Binary {
				return fmt.Errorf("encoding: %s: %s.%s is shared by %v but %s is not clipped", e.Name, s.tag, s.plane, chs, ch)
			}
		}
	}
	return nil
}
