package texture

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"pixelgraph/internal/encoding"
)

// Lanczos is a three-lobe Lanczos kernel.
var Lanczos = &draw.Kernel{
	Support: 3,
	At: func(t float64) float64 {
		if t == 0 {
			return 1
		}
		if t < 0 {
			t = -t
		}
		if t >= 3 {
			return 0
		}
		pt := math.Pi * t
		return 3 * math.Sin(pt) * math.Sin(pt/3) / (pt * pt)
	},
}

// Scaler returns the x/image scaler for a sampler. Bicubic is the default.
func Scaler(s encoding.Sampler) draw.Scaler {
	switch s {
	case encoding.SamplerNearest:
		return draw.NearestNeighbor
	case encoding.SamplerBilinear:
		return draw.BiLinear
	case encoding.SamplerLanczos:
		return Lanczos
	}
	return draw.CatmullRom
}

// Resize scales img to w x h, treating the alpha plane as data: RGB and
// alpha are resampled independently, so texels with zero alpha keep their
// color. The input is returned unchanged when it already has that size.
func Resize(img *image.NRGBA, w, h int, s encoding.Sampler) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}

	// Opaque RGB so the scaler's premultiplication is a no-op.
	rgb := image.NewRGBA(b)
	alpha := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := rgb.PixOffset(x, y)
			rgb.Pix[di] = img.Pix[si]
			rgb.Pix[di+1] = img.Pix[si+1]
			rgb.Pix[di+2] = img.Pix[si+2]
			rgb.Pix[di+3] = 255
			alpha.Pix[alpha.PixOffset(x, y)] = img.Pix[si+3]
		}
	}

	r := image.Rect(0, 0, w, h)
	scaler := Scaler(s)
	dstRGB := image.NewRGBA(r)
	scaler.Scale(dstRGB, r, rgb, b, draw.Src, nil)
	dstAlpha := image.NewGray(r)
	scaler.Scale(dstAlpha, r, alpha, b, draw.Src, nil)

	dst := image.NewNRGBA(r)
	for i := 0; i < w*h; i++ {
		copy(dst.Pix[i*4:i*4+3], dstRGB.Pix[i*4:i*4+3])
		dst.Pix[i*4+3] = dstAlpha.Pix[i]
	}
	return dst
}

// ResizePremultiplied scales a color texture with premultiplied alpha so
// transparent texels do not bleed dark fringes into their neighbours.
func ResizePremultiplied(img *image.NRGBA, w, h int, s encoding.Sampler) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() == w && b.Dy() == h {
		return img
	}
	if s == encoding.SamplerNearest {
		return Resize(img, w, h, s)
	}

	premul := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			si := img.PixOffset(x, y)
			di := premul.PixOffset(x, y)
			a := float64(img.Pix[si+3]) / 255.0
			premul.Pix[di] = uint8(float64(img.Pix[si])*a + 0.5)
			premul.Pix[di+1] = uint8(float64(img.Pix[si+1])*a + 0.5)
			premul.Pix[di+2] = uint8(float64(img.Pix[si+2])*a + 0.5)
			premul.Pix[di+3] = img.Pix[si+3]
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	Scaler(s).Scale(dst, dst.Bounds(), premul, premul.Bounds(), draw.Src, nil)

	result := image.NewNRGBA(dst.Bounds())
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			si := dst.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float64(dst.Pix[si+3])
			if a > 1 {
				inv := 255.0 / a
				result.Pix[di] = clamp8(float64(dst.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float64(dst.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float64(dst.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = dst.Pix[si+3]
		}
	}
	return result
}

func clamp8(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
