package generate

// AutoLevel stretches the grid so its range covers 0..1. Flat grids are
// returned unchanged.
func AutoLevel(g *Grid) *Grid {
	lo, hi := g.MinMax()
	if hi-lo < 1e-9 {
		return g
	}
	out := NewGrid(g.W, g.H)
	for i, v := range g.Pix {
		out.Pix[i] = (v - lo) / (hi - lo)
	}
	return out
}

// EdgeFadeOptions configures EdgeFade.
type EdgeFadeOptions struct {
	// Size is the fade width in texels.
	Size     int
	Strength float64
}

// EdgeFade attenuates height toward zero within Size texels of the border:
// h' = h * (1 - strength * (1 - d/size)), d being the distance to the nearest
// edge.
func EdgeFade(g *Grid, opt EdgeFadeOptions) *Grid {
	if opt.Size <= 0 || opt.Strength == 0 {
		return g
	}
	size := float64(opt.Size)
	out := g.Clone()
	for y := 0; y < g.H; y++ {
		for x := 0; x < g.W; x++ {
			d := float64(min(x, y, g.W-1-x, g.H-1-y))
			if d >= size {
				continue
			}
			f := 1 - opt.Strength*(1-d/size)
			out.Set(x, y, g.At(x, y)*clamp01(f))
		}
	}
	return out
}
