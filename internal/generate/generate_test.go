package generate

import (
	"context"
	"errors"
	"math"
	"testing"

	"pixelgraph/internal/encoding"
)

func ramp(w, h int) *Grid {
	g := NewGrid(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g.Set(x, y, float64(x)/float64(w-1))
		}
	}
	return g
}

func TestNormalsFlatFromUniformHeight(t *testing.T) {
	methods := []NormalMethod{Sobel3, SobelHigh, SobelLow, Variance}
	for _, m := range methods {
		t.Run(string(m), func(t *testing.T) {
			n, err := Normals(Filled(8, 8, 0.5), NormalOptions{Method: m, Strength: 3, Wrap: true, Stages: DefaultStages})
			if err != nil {
				t.Fatalf("normals: %v", err)
			}
			for i := range n.Z.Pix {
				if math.Abs(n.X.Pix[i]) > 1e-9 || math.Abs(n.Y.Pix[i]) > 1e-9 || math.Abs(n.Z.Pix[i]-1) > 1e-9 {
					t.Fatalf("expected (0,0,1) at %d, got (%v,%v,%v)", i, n.X.Pix[i], n.Y.Pix[i], n.Z.Pix[i])
				}
			}
		})
	}
}

func TestNormalsSlope(t *testing.T) {
	n, err := Normals(ramp(9, 4), NormalOptions{Method: Sobel3, Strength: 8})
	if err != nil {
		t.Fatalf("normals: %v", err)
	}
	// Rising to the right tilts the normal toward -x.
	x, y, z := n.X.At(4, 2), n.Y.At(4, 2), n.Z.At(4, 2)
	if x >= 0 {
		t.Errorf("expected negative x on rising ramp, got %v", x)
	}
	if math.Abs(y) > 1e-9 {
		t.Errorf("expected zero y, got %v", y)
	}
	if l := math.Sqrt(x*x + y*y + z*z); math.Abs(l-1) > 1e-9 {
		t.Errorf("expected unit normal, got length %v", l)
	}
}

func TestParseNormalMethod(t *testing.T) {
	if m, err := ParseNormalMethod(""); err != nil || m != Sobel3 {
		t.Errorf("expected sobel3 default, got %s (%v)", m, err)
	}
	if _, err := ParseNormalMethod("fft"); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestOcclusion(t *testing.T) {
	ctx := context.Background()
	opt := DefaultOcclusion()

	flat, err := Occlusion(ctx, Filled(6, 6, 0.5), nil, opt)
	if err != nil {
		t.Fatalf("occlusion: %v", err)
	}
	for i, v := range flat.Pix {
		if v != 0 {
			t.Fatalf("expected no occlusion on flat height at %d, got %v", i, v)
		}
	}

	pit := Filled(9, 9, 1)
	pit.Set(4, 4, 0)
	occ, err := Occlusion(ctx, pit, nil, opt)
	if err != nil {
		t.Fatalf("occlusion: %v", err)
	}
	if occ.At(4, 4) <= 0.5 {
		t.Errorf("expected pit to be mostly occluded, got %v", occ.At(4, 4))
	}

	emissive := NewGrid(9, 9)
	emissive.Set(4, 4, 1)
	lit, _ := Occlusion(ctx, pit, emissive, opt)
	if lit.At(4, 4) != 0 {
		t.Errorf("expected emissive texel to be unoccluded, got %v", lit.At(4, 4))
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Occlusion(canceled, pit, nil, opt); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestAutoLevel(t *testing.T) {
	g := NewGrid(3, 1)
	g.Pix = []float64{0.25, 0.5, 0.75}
	out := AutoLevel(g)
	want := []float64{0, 0.5, 1}
	for i := range want {
		if math.Abs(out.Pix[i]-want[i]) > 1e-9 {
			t.Errorf("expected %v at %d, got %v", want[i], i, out.Pix[i])
		}
	}

	flat := Filled(2, 2, 0.3)
	if AutoLevel(flat) != flat {
		t.Error("expected flat grid to be returned unchanged")
	}
}

func TestEdgeFade(t *testing.T) {
	out := EdgeFade(Filled(8, 8, 1), EdgeFadeOptions{Size: 2, Strength: 1})
	tests := []struct {
		x, y int
		want float64
	}{
		{0, 0, 0},
		{1, 4, 0.5},
		{4, 4, 1},
		{7, 3, 0},
	}
	for _, tt := range tests {
		if got := out.At(tt.x, tt.y); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("expected %v at (%d,%d), got %v", tt.want, tt.x, tt.y, got)
		}
	}
}

func TestDownsampleUpsample(t *testing.T) {
	g := Filled(8, 8, 0.5)
	d := g.Downsample(4)
	if d.W != 2 || d.H != 2 || math.Abs(d.At(1, 1)-0.5) > 1e-9 {
		t.Errorf("expected 2x2 of 0.5, got %dx%d %v", d.W, d.H, d.Pix)
	}
	u := d.Upsample(8, 8, true)
	for _, v := range u.Pix {
		if math.Abs(v-0.5) > 1e-9 {
			t.Fatalf("expected 0.5 after upsample, got %v", v)
		}
	}
}

func TestRegistryValidate(t *testing.T) {
	if err := DefaultRegistry().Validate(); err != nil {
		t.Errorf("expected default registry to validate, got %v", err)
	}

	cyclic := NewRegistry(
		Node{Channel: encoding.Height, Requires: []encoding.Channel{encoding.NormalX}},
		Node{Channel: encoding.NormalX, Requires: []encoding.Channel{encoding.Height}},
	)
	if err := cyclic.Validate(); !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected ErrCyclicDependency, got %v", err)
	}

	self := NewRegistry(Node{Channel: encoding.Occlusion, Requires: []encoding.Channel{encoding.Occlusion}})
	if err := self.Validate(); !errors.Is(err, ErrCyclicDependency) {
		t.Errorf("expected self dependency to be rejected, got %v", err)
	}
}
