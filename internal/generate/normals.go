package generate

import (
	"fmt"
	"math"
)

// NormalMethod selects the gradient filter used to derive normals.
type NormalMethod string

const (
	// Sobel3 is the classic 3x3 Sobel filter.
	Sobel3 NormalMethod = "sobel3"
	// SobelHigh uses Scharr weights, which keep more fine detail.
	SobelHigh NormalMethod = "sobel-high"
	// SobelLow is a 5x5 Sobel filter, smoother than Sobel3.
	SobelLow NormalMethod = "sobel-low"
	// Variance fits a least-squares plane to the 3x3 neighbourhood.
	Variance NormalMethod = "variance"
)

// ParseNormalMethod validates a method name. An empty name selects Sobel3.
func ParseNormalMethod(s string) (NormalMethod, error) {
	switch NormalMethod(s) {
	case "":
		return Sobel3, nil
	case Sobel3, SobelHigh, SobelLow, Variance:
		return NormalMethod(s), nil
	}
	return "", fmt.Errorf("generate: unknown normal method %q", s)
}

// FrequencyStage is one scale of a multi-frequency normal pass.
type FrequencyStage struct {
	// Scale divides each axis of the height map before filtering.
	Scale    int
	Strength float64
	Weight   float64
}

// DefaultStages filter at full, half and quarter resolution per axis.
var DefaultStages = []FrequencyStage{
	{Scale: 1, Strength: 1, Weight: 1},
	{Scale: 2, Strength: 1, Weight: 0.5},
	{Scale: 4, Strength: 1, Weight: 0.25},
}

// NormalOptions configures Normals.
type NormalOptions struct {
	Method   NormalMethod
	Strength float64
	Wrap     bool
	// Stages enables multi-frequency filtering when non-empty.
	Stages []FrequencyStage
}

// NormalGrids holds the normal components: X and Y in -1..1, Z in 0..1.
type NormalGrids struct {
	X, Y, Z *Grid
}

// Normals derives a unit normal per texel from a height map.
func Normals(height *Grid, opt NormalOptions) (*NormalGrids, error) {
	method := opt.Method
	if method == "" {
		method = Sobel3
	}
	strength := opt.Strength
	if strength == 0 {
		strength = 1
	}

	stages := opt.Stages
	if len(stages) == 0 {
		stages = []FrequencyStage{{Scale: 1, Strength: 1, Weight: 1}}
	}

	gx := NewGrid(height.W, height.H)
	gy := NewGrid(height.W, height.H)
	for _, st := range stages {
		src := height
		if st.Scale > 1 {
			src = height.Downsample(st.Scale)
		}
		sx, sy, err := gradient(src, method, opt.Wrap)
		if err != nil {
			return nil, err
		}
		if src != height {
			sx = sx.Upsample(height.W, height.H, opt.Wrap)
			sy = sy.Upsample(height.W, height.H, opt.Wrap)
		}
		k := st.Strength * st.Weight
		for i := range gx.Pix {
			gx.Pix[i] += sx.Pix[i] * k
			gy.Pix[i] += sy.Pix[i] * k
		}
	}

	out := &NormalGrids{
		X: NewGrid(height.W, height.H),
		Y: NewGrid(height.W, height.H),
		Z: NewGrid(height.W, height.H),
	}
	for i := range gx.Pix {
		x := -gx.Pix[i] * strength
		y := gy.Pix[i] * strength
		l := math.Sqrt(x*x + y*y + 1)
		out.X.Pix[i] = x / l
		out.Y.Pix[i] = y / l
		out.Z.Pix[i] = 1 / l
	}
	return out, nil
}

type kernel struct {
	radius int
	// weights[dy+radius][dx+radius] for the x derivative; the y derivative
	// uses the transpose.
	weights [][]float64
	norm    float64
}

var kernels = map[NormalMethod]kernel{
	Sobel3: {1, [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}, 8},
	SobelHigh: {1, [][]float64{
		{-3, 0, 3},
		{-10, 0, 10},
		{-3, 0, 3},
	}, 32},
	SobelLow: {2, [][]float64{
		{-1, -2, 0, 2, 1},
		{-4, -8, 0, 8, 4},
		{-6, -12, 0, 12, 6},
		{-4, -8, 0, 8, 4},
		{-1, -2, 0, 2, 1},
	}, 128},
	Variance: {1, [][]float64{
		{-1, 0, 1},
		{-1, 0, 1},
		{-1, 0, 1},
	}, 6},
}

// gradient returns the height slope per texel along x and y.
func gradient(h *Grid, method NormalMethod, wrap bool) (*Grid, *Grid, error) {
	k, ok := kernels[method]
	if !ok {
		return nil, nil, fmt.Errorf("generate: unknown normal method %q", method)
	}
	gx := NewGrid(h.W, h.H)
	gy := NewGrid(h.W, h.H)
	r := k.radius
	for y := 0; y < h.H; y++ {
		for x := 0; x < h.W; x++ {
			var sx, sy float64
			for j := -r; j <= r; j++ {
				for i := -r; i <= r; i++ {
					v := h.AtEdge(x+i, y+j, wrap)
					sx += v * k.weights[j+r][i+r]
					sy += v * k.weights[i+r][j+r]
				}
			}
			gx.Set(x, y, sx/k.norm)
			gy.Set(x, y, sy/k.norm)
		}
	}
	return gx, gy, nil
}
