// Package format is the catalog of pack formats. Every definition is plain
// data built fresh on each call, so callers may modify what they receive.
package format

import (
	"errors"
	"fmt"

	"pixelgraph/internal/encoding"
)

// ErrUnknownFormat is returned for format names the catalog does not define.
var ErrUnknownFormat = errors.New("unknown format")

const (
	Raw    = "raw"
	Lab11  = "lab-1.1"
	Lab12  = "lab-1.2"
	Lab13  = "lab-1.3"
	OldPBR = "old-pbr"
	RTX    = "rtx"
	MERS   = "mers"
)

var names = []string{Raw, Lab11, Lab12, Lab13, OldPBR, RTX, MERS}

// Names lists every format in the catalog.
func Names() []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}

// Edition returns the Minecraft edition a format targets.
func Edition(name string) (encoding.Edition, error) {
	switch name {
	case RTX, MERS:
		return encoding.Bedrock, nil
	case Raw, Lab11, Lab12, Lab13, OldPBR:
		return encoding.Java, nil
	}
	return "", fmt.Errorf("format: %q: %w", name, ErrUnknownFormat)
}

// New returns a fresh encoding for the named format.
func New(name string) (*encoding.PackEncoding, error) {
	var e *encoding.PackEncoding
	switch name {
	case Raw:
		e = raw()
	case Lab11:
		e = lab11()
	case Lab12:
		e = lab12()
	case Lab13:
		e = lab13()
	case OldPBR:
		e = oldPBR()
	case RTX:
		e = rtx()
	case MERS:
		e = mers()
	default:
		return nil, fmt.Errorf("format: %q: %w", name, ErrUnknownFormat)
	}
	return e, nil
}

// unit maps 0..1 onto the full byte range.
func unit(tag encoding.Tag, plane encoding.ColorPlane) *encoding.ChannelProperties {
	return &encoding.ChannelProperties{
		Texture:  tag,
		Plane:    plane,
		MinValue: 0,
		MaxValue: 1,
		RangeMin: 0,
		RangeMax: 255,
		Power:    1,
	}
}

// normalXY maps -1..1 onto 0..254 so a flat normal lands on 127.
func normalXY(plane encoding.ColorPlane) *encoding.ChannelProperties {
	return &encoding.ChannelProperties{
		Texture:  encoding.TagNormal,
		Plane:    plane,
		MinValue: -1,
		MaxValue: 1,
		RangeMin: 0,
		RangeMax: 254,
		Power:    1,
	}
}

func normalZ() *encoding.ChannelProperties {
	return unit(encoding.TagNormal, encoding.Blue)
}

func clipped(p *encoding.ChannelProperties, rangeMin, rangeMax int, minValue, maxValue float64) *encoding.ChannelProperties {
	p.RangeMin = rangeMin
	p.RangeMax = rangeMax
	p.MinValue = minValue
	p.MaxValue = maxValue
	p.EnableClipping = true
	return p
}

func inverted(p *encoding.ChannelProperties) *encoding.ChannelProperties {
	p.Invert = true
	return p
}

func nearest(p *encoding.ChannelProperties) *encoding.ChannelProperties {
	p.Sampler = encoding.SamplerNearest
	return p
}

func color(e *encoding.PackEncoding) {
	e.Set(encoding.ColorRed, unit(encoding.TagColor, encoding.Red))
	e.Set(encoding.ColorGreen, unit(encoding.TagColor, encoding.Green))
	e.Set(encoding.ColorBlue, unit(encoding.TagColor, encoding.Blue))
	e.Set(encoding.Opacity, unit(encoding.TagColor, encoding.Alpha))
}

func raw() *encoding.PackEncoding {
	e := encoding.NewPackEncoding(Raw, encoding.Java)
	color(e)
	e.Set(encoding.Height, unit(encoding.TagHeight, encoding.Red))
	e.Set(encoding.NormalX, normalXY(encoding.Red))
	e.Set(encoding.NormalY, normalXY(encoding.Green))
	e.Set(encoding.NormalZ, normalZ())
	e.Set(encoding.Occlusion, unit(encoding.TagOcclusion, encoding.Red))
	e.Set(encoding.Smooth, unit(encoding.TagSmooth, encoding.Red))
	e.Set(encoding.Rough, unit(encoding.TagRough, encoding.Red))
	e.Set(encoding.Metal, unit(encoding.TagMetal, encoding.Red))
	e.Set(encoding.F0, unit(encoding.TagF0, encoding.Red))

	hcm := unit(encoding.TagHCM, encoding.Red)
	hcm.MaxValue = 255
	e.Set(encoding.HCM, nearest(hcm))

	e.Set(encoding.Porosity, unit(encoding.TagPorosity, encoding.Red))
	e.Set(encoding.SSS, unit(encoding.TagSSS, encoding.Red))
	e.Set(encoding.Emissive, unit(encoding.TagEmissive, encoding.Red))
	return e
}

// labSpecular fills the specular texture layout shared by LAB 1.2 and 1.3.
func labSpecular(e *encoding.PackEncoding) {
	e.Set(encoding.Smooth, unit(encoding.TagSpecular, encoding.Red))
	e.Set(encoding.F0, clipped(unit(encoding.TagSpecular, encoding.Green), 0, 229, 0, 229.0/255.0))

	metal := unit(encoding.TagSpecular, encoding.Green)
	metal.RangeMin = 230
	metal.Binary = true
	e.Set(encoding.Metal, nearest(metal))

	porosity := clipped(unit(encoding.TagSpecular, encoding.Blue), 0, 64, 0, 1)
	e.Set(encoding.Porosity, porosity)

	sss := clipped(unit(encoding.TagSpecular, encoding.Blue), 65, 255, 0, 1)
	sss.OmitMin = true
	e.Set(encoding.SSS, sss)
}

func lab13() *encoding.PackEncoding {
	e := encoding.NewPackEncoding(Lab13, encoding.Java)
	color(e)
	e.Set(encoding.NormalX, normalXY(encoding.Red))
	e.Set(encoding.NormalY, normalXY(encoding.Green))
	e.Set(encoding.Occlusion, inverted(unit(encoding.TagNormal, encoding.Blue)))
	e.Set(encoding.Height, unit(encoding.TagNormal, encoding.Alpha))

	labSpecular(e)
	hcm := clipped(unit(encoding.TagSpecular, encoding.Green), 230, 254, 230, 254)
	e.Set(encoding.HCM, nearest(hcm))

	// Emissive 255 means "none"; every other value is shifted down by one.
	emissive := unit(encoding.TagSpecular, encoding.Alpha)
	emissive.Shift = -1
	e.Set(encoding.Emissive, emissive)
	return e
}

func lab12() *encoding.PackEncoding {
	e := encoding.NewPackEncoding(Lab12, encoding.Java)
	color(e)
	e.Set(encoding.NormalX, normalXY(encoding.Red))
	e.Set(encoding.NormalY, normalXY(encoding.Green))
	e.Set(encoding.NormalZ, normalZ())
	e.Set(encoding.Height, unit(encoding.TagNormal, encoding.Alpha))

	labSpecular(e)
	e.Set(encoding.Emissive, clipped(unit(encoding.TagSpecular, encoding.Alpha), 0, 254, 0, 1))
	return e
}

func lab11() *encoding.PackEncoding {
	e := encoding.NewPackEncoding(Lab11, encoding.Java)
	color(e)
	e.Set(encoding.NormalX, normalXY(encoding.Red))
	e.Set(encoding.NormalY, normalXY(encoding.Green))
	e.Set(encoding.NormalZ, normalZ())
	e.Set(encoding.Height, unit(encoding.TagNormal, encoding.Alpha))
	e.Set(encoding.Smooth, unit(encoding.TagSpecular, encoding.Red))
	e.Set(encoding.Metal, unit(encoding.TagSpecular, encoding.Green))
	e.Set(encoding.Porosity, clipped(unit(encoding.TagSpecular, encoding.Blue), 0, 64, 0, 1))

	sss := clipped(unit(encoding.TagSpecular, encoding.Blue), 65, 255, 0, 1)
	sss.OmitMin = true
	e.Set(encoding.SSS, sss)

	e.Set(encoding.Emissive, unit(encoding.TagSpecular, encoding.Alpha))
	return e
}

func oldPBR() *encoding.PackEncoding {
	e := encoding.NewPackEncoding(OldPBR, encoding.Java)
	color(e)
	e.Set(encoding.NormalX, normalXY(encoding.Red))
	e.Set(encoding.NormalY, normalXY(encoding.Green))
	e.Set(encoding.NormalZ, normalZ())
	e.Set(encoding.Height, unit(encoding.TagNormal, encoding.Alpha))
	e.Set(encoding.Smooth, unit(encoding.TagSpecular, encoding.Red))
	e.Set(encoding.Metal, unit(encoding.TagSpecular, encoding.Green))
	e.Set(encoding.Emissive, unit(encoding.TagSpecular, encoding.Blue))
	return e
}

func bedrockBase(name string, mer encoding.Tag) *encoding.PackEncoding {
	e := encoding.NewPackEncoding(name, encoding.Bedrock)
	color(e)
	e.Set(encoding.NormalX, normalXY(encoding.Red))
	e.Set(encoding.NormalY, normalXY(encoding.Green))
	e.Set(encoding.NormalZ, normalZ())
	e.Set(encoding.Height, unit(encoding.TagHeight, encoding.Red))
	e.Set(encoding.Metal, unit(mer, encoding.Red))
	e.Set(encoding.Emissive, unit(mer, encoding.Green))
	e.Set(encoding.Rough, unit(mer, encoding.Blue))
	return e
}

func rtx() *encoding.PackEncoding {
	return bedrockBase(RTX, encoding.TagMER)
}

func mers() *encoding.PackEncoding {
	e := bedrockBase(MERS, encoding.TagMERS)
	e.Set(encoding.SSS, unit(encoding.TagMERS, encoding.Alpha))
	return e
}
