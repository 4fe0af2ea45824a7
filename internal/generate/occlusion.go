package generate

import (
	"context"
	"math"
)

// OcclusionOptions configures Occlusion.
type OcclusionOptions struct {
	// Steps is the number of one-texel march steps per ray.
	Steps int
	// Quality scales the ray count between 4 and 64.
	Quality float64
	// ZBias lifts the ray origin above the surface.
	ZBias float64
	// ZScale converts 0..1 height into texels.
	ZScale float64
	// EmissiveThreshold zeroes occlusion where emissive exceeds it.
	EmissiveThreshold float64
	Wrap              bool
}

// DefaultOcclusion returns the options used when a material sets none.
func DefaultOcclusion() OcclusionOptions {
	return OcclusionOptions{
		Steps:             16,
		Quality:           0.5,
		ZBias:             0.01,
		ZScale:            4,
		EmissiveThreshold: 0.5,
		Wrap:              true,
	}
}

type ray struct {
	dx, dy, dz float64
}

func occlusionRays(quality float64) []ray {
	n := int(math.Round(quality * 64))
	if n < 4 {
		n = 4
	}
	if n > 64 {
		n = 64
	}
	elevations := []float64{math.Pi / 8, math.Pi / 4, 3 * math.Pi / 8}
	rays := make([]ray, n)
	golden := math.Pi * (3 - math.Sqrt(5))
	for i := range rays {
		phi := float64(i) * golden
		theta := elevations[i%len(elevations)]
		c := math.Cos(theta)
		rays[i] = ray{dx: math.Cos(phi) * c, dy: math.Sin(phi) * c, dz: math.Sin(theta)}
	}
	return rays
}

// Occlusion estimates ambient occlusion (0 open, 1 fully occluded) by
// marching rays across the height field. emissive may be nil. The context is
// checked once per row.
func Occlusion(ctx context.Context, height, emissive *Grid, opt OcclusionOptions) (*Grid, error) {
	if opt.Steps <= 0 {
		opt.Steps = 16
	}
	if opt.ZScale == 0 {
		opt.ZScale = 1
	}
	rays := occlusionRays(opt.Quality)
	out := NewGrid(height.W, height.H)

	for y := 0; y < height.H; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < height.W; x++ {
			if emissive != nil && emissive.At(x, y) > opt.EmissiveThreshold {
				continue
			}
			z0 := height.At(x, y)*opt.ZScale + opt.ZBias
			hits := 0
			for _, r := range rays {
				for s := 1; s <= opt.Steps; s++ {
					fs := float64(s)
					px := float64(x) + r.dx*fs
					py := float64(y) + r.dy*fs
					if !opt.Wrap && (px < 0 || py < 0 || px > float64(height.W-1) || py > float64(height.H-1)) {
						break
					}
					if height.Sample(px, py, opt.Wrap)*opt.ZScale > z0+r.dz*fs {
						hits++
						break
					}
				}
			}
			out.Set(x, y, float64(hits)/float64(len(rays)))
		}
	}
	return out, nil
}
