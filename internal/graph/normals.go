package graph

import (
	"context"
	"math"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/generate"
)

// resolveNormals prepares the three normal channels together so the stored
// vector stays unit length. Z is rebuilt from X and Y when the input does not
// store it.
func (g *Graph) resolveNormals(ctx context.Context) error {
	mat := g.ctx.Material
	var grids [3]*generate.Grid
	channels := [3]encoding.Channel{encoding.NormalX, encoding.NormalY, encoding.NormalZ}
	source := SourceNone

	for i, ch := range channels {
		if v, ok := mat.ChannelValue(ch); ok {
			grids[i] = generate.Filled(g.width, g.height, v)
			source = max(source, SourceValue)
			continue
		}
		grid, err := g.fromInput(ch)
		if err != nil {
			return err
		}
		if grid != nil {
			grids[i] = grid
			source = max(source, SourceTexture)
		}
	}

	if grids[0] == nil && grids[1] == nil {
		grids = [3]*generate.Grid{}
		source = SourceNone
		if node, ok := g.ctx.Generators.Lookup(encoding.NormalX); ok {
			x, err := g.generate(ctx, node)
			if err != nil {
				return err
			}
			if x != nil {
				grids = [3]*generate.Grid{g.normals.X, g.normals.Y, g.normals.Z}
				source = SourceGenerated
			}
		}
	}

	if source == SourceNone {
		for i, ch := range channels {
			v, _ := g.defaultValue(ch)
			grids[i] = generate.Filled(g.width, g.height, v)
		}
		source = SourceDefault
	}

	sx := mat.ChannelScale(encoding.NormalX)
	sy := mat.ChannelScale(encoding.NormalY)
	out := [3]*generate.Grid{
		generate.NewGrid(g.width, g.height),
		generate.NewGrid(g.width, g.height),
		generate.NewGrid(g.width, g.height),
	}
	for i := range out[0].Pix {
		x := sampleOr(grids[0], i, 0)
		y := sampleOr(grids[1], i, 0)
		var z float64
		if grids[2] != nil && !math.IsNaN(grids[2].Pix[i]) {
			z = grids[2].Pix[i]
		} else {
			z = math.Sqrt(math.Max(0, 1-x*x-y*y))
		}
		x *= sx
		y *= sy
		l := math.Sqrt(x*x + y*y + z*z)
		if l < epsilon {
			x, y, z, l = 0, 0, 1, 1
		}
		out[0].Pix[i] = x / l
		out[1].Pix[i] = y / l
		out[2].Pix[i] = z / l
	}

	for i, ch := range channels {
		g.planes[ch] = &plane{values: out[i], source: source}
	}
	return nil
}

func sampleOr(grid *generate.Grid, i int, fallback float64) float64 {
	if grid == nil {
		return fallback
	}
	if v := grid.Pix[i]; !math.IsNaN(v) {
		return v
	}
	return fallback
}
