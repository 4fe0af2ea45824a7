// Package generate derives channels that a material does not supply from
// channels it does: normals and occlusion from height, plus height
// post-processing.
package generate

import "math"

// Grid is a dense plane of float64 samples, row-major.
type Grid struct {
	W, H int
	Pix  []float64
}

// NewGrid allocates a zeroed grid.
func NewGrid(w, h int) *Grid {
	return &Grid{W: w, H: h, Pix: make([]float64, w*h)}
}

// Filled allocates a grid where every sample is v.
func Filled(w, h int, v float64) *Grid {
	g := NewGrid(w, h)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func (g *Grid) At(x, y int) float64 {
	return g.Pix[y*g.W+x]
}

func (g *Grid) Set(x, y int, v float64) {
	g.Pix[y*g.W+x] = v
}

// Clone returns an independent copy.
func (g *Grid) Clone() *Grid {
	out := &Grid{W: g.W, H: g.H, Pix: make([]float64, len(g.Pix))}
	copy(out.Pix, g.Pix)
	return out
}

// AtEdge reads a sample, wrapping or clamping out-of-range coordinates.
func (g *Grid) AtEdge(x, y int, wrap bool) float64 {
	if wrap {
		x = ((x % g.W) + g.W) % g.W
		y = ((y % g.H) + g.H) % g.H
	} else {
		x = clampInt(x, 0, g.W-1)
		y = clampInt(y, 0, g.H-1)
	}
	return g.Pix[y*g.W+x]
}

// Sample performs bilinear filtering at pixel-space coordinates, where
// integer coordinates address sample centers.
func (g *Grid) Sample(fx, fy float64, wrap bool) float64 {
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	return g.AtEdge(x0, y0, wrap)*w00 +
		g.AtEdge(x0+1, y0, wrap)*w10 +
		g.AtEdge(x0, y0+1, wrap)*w01 +
		g.AtEdge(x0+1, y0+1, wrap)*w11
}

// Downsample box-averages f x f blocks. Partial blocks at the border
// average what they cover.
func (g *Grid) Downsample(f int) *Grid {
	if f <= 1 {
		return g.Clone()
	}
	w := (g.W + f - 1) / f
	h := (g.H + f - 1) / f
	out := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var sum float64
			n := 0
			for sy := y * f; sy < (y+1)*f && sy < g.H; sy++ {
				for sx := x * f; sx < (x+1)*f && sx < g.W; sx++ {
					sum += g.At(sx, sy)
					n++
				}
			}
			out.Set(x, y, sum/float64(n))
		}
	}
	return out
}

// Upsample resizes to w x h with bilinear filtering.
func (g *Grid) Upsample(w, h int, wrap bool) *Grid {
	out := NewGrid(w, h)
	sx := float64(g.W) / float64(w)
	sy := float64(g.H) / float64(h)
	for y := 0; y < h; y++ {
		fy := (float64(y)+0.5)*sy - 0.5
		for x := 0; x < w; x++ {
			fx := (float64(x)+0.5)*sx - 0.5
			out.Set(x, y, g.Sample(fx, fy, wrap))
		}
	}
	return out
}

// MinMax returns the smallest and largest sample.
func (g *Grid) MinMax() (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range g.Pix {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
