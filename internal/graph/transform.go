package graph

import (
	"math"

	"pixelgraph/internal/encoding"
)

const epsilon = 1e-6

// normalize maps a value into the unit range of the channel domain. An empty
// domain passes the value through unchanged.
func normalize(p *encoding.ChannelProperties, v float64) float64 {
	span := p.MaxValue - p.MinValue
	if math.Abs(span) < epsilon {
		return v
	}
	return (v - p.MinValue) / span
}

func denormalize(p *encoding.ChannelProperties, t float64) float64 {
	span := p.MaxValue - p.MinValue
	if math.Abs(span) < epsilon {
		return t
	}
	return p.MinValue + t*span
}

// EncodeValue converts a channel value into the pixel value stored by p. The
// chain is: normalize, clamp below zero, power, scale, clamp to the domain of
// clipped channels, invert, range remap, round to byte, shift. It reports
// false for a zero OmitMin value or a Binary value below its threshold,
// which lets a lower layer on the same plane show through.
func EncodeValue(p *encoding.ChannelProperties, value, scale float64) (uint8, bool) {
	if math.IsNaN(value) {
		return 0, false
	}

	t := normalize(p, value)
	if t < 0 {
		t = 0
	}
	if p.HasPower() {
		t = math.Pow(t, p.Power)
	}
	t *= scale

	if p.OmitMin && t <= epsilon {
		return 0, false
	}
	if p.EnableClipping && t > 1 {
		t = 1
	}
	if p.Binary {
		if t < 0.5 {
			return 0, false
		}
		t = 1
	}
	if p.Invert {
		t = 1 - t
	}

	b := float64(p.RangeMin) + t*float64(p.RangeMax-p.RangeMin)
	if p.EnableClipping {
		b = math.Max(float64(p.RangeMin), math.Min(float64(p.RangeMax), b))
	}
	return shift(clampToByte(b), p.Shift), true
}

// DecodeValue is the inverse of EncodeValue for input pixels. Raw values
// outside the range of a clipped channel are not present; binary channels
// decode to MaxValue inside their range and MinValue outside it.
func DecodeValue(p *encoding.ChannelProperties, raw uint8) (float64, bool) {
	b := int(shift(raw, -p.Shift))

	inRange := b >= p.RangeMin && b <= p.RangeMax
	if !inRange && p.EnableClipping {
		return 0, false
	}
	if p.Binary {
		if inRange {
			return p.MaxValue, true
		}
		return p.MinValue, true
	}
	if b < p.RangeMin {
		b = p.RangeMin
	} else if b > p.RangeMax {
		b = p.RangeMax
	}

	var t float64
	if span := p.RangeMax - p.RangeMin; span > 0 {
		t = float64(b-p.RangeMin) / float64(span)
	}
	if p.Invert {
		t = 1 - t
	}
	if p.HasPower() {
		t = math.Pow(t, 1/p.Power)
	}
	return denormalize(p, t), true
}

// clampToByte rounds to the nearest byte value.
func clampToByte(v float64) uint8 {
	v += 0.5
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

// shift adds s to b with 8-bit wraparound.
func shift(b uint8, s int) uint8 {
	return uint8(((int(b)+s)%256 + 256) % 256)
}
