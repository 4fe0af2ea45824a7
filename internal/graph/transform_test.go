package graph

import (
	"testing"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/format"
)

func mustFormat(t *testing.T, name string) *encoding.PackEncoding {
	t.Helper()
	e, err := format.New(name)
	if err != nil {
		t.Fatalf("format %s: %v", name, err)
	}
	return e
}

func TestIdentityPassthrough(t *testing.T) {
	raw := mustFormat(t, format.Raw)
	props := raw.Get(encoding.Smooth)
	for v := 0; v < 256; v++ {
		value, ok := DecodeValue(props, uint8(v))
		if !ok {
			t.Fatalf("expected %d to decode", v)
		}
		got, ok := EncodeValue(props, value, 1)
		if !ok || int(got) != v {
			t.Errorf("expected %d, got %d (%v)", v, got, ok)
		}
		if b := clampToByte(float64(v) / 255 * 255); int(b) != v {
			t.Errorf("expected clampToByte to keep %d, got %d", v, b)
		}
	}
}

func TestNormalPassthrough(t *testing.T) {
	lab := mustFormat(t, format.Lab12)
	tests := []struct {
		ch   encoding.Channel
		raw  uint8
		want float64
	}{
		{encoding.NormalX, 127, 0},
		{encoding.NormalY, 127, 0},
		{encoding.NormalZ, 255, 1},
		{encoding.NormalX, 0, -1},
		{encoding.NormalX, 254, 1},
	}
	for _, tt := range tests {
		props := lab.Get(tt.ch)
		v, ok := DecodeValue(props, tt.raw)
		if !ok || v != tt.want {
			t.Errorf("%s: expected %d to decode to %v, got %v (%v)", tt.ch, tt.raw, tt.want, v, ok)
		}
		b, ok := EncodeValue(props, v, 1)
		if !ok || b != tt.raw {
			t.Errorf("%s: expected %v to encode to %d, got %d", tt.ch, v, tt.raw, b)
		}
	}
}

func TestPorosityScale(t *testing.T) {
	props := mustFormat(t, format.Raw).Get(encoding.Porosity)
	tests := []struct {
		raw   uint8
		scale float64
		want  uint8
	}{
		{100, 2, 200},
		{200, 0.01, 2},
		{200, 2, 255},
		{0, 5, 0},
	}
	for _, tt := range tests {
		v, _ := DecodeValue(props, tt.raw)
		if got, _ := EncodeValue(props, v, tt.scale); got != tt.want {
			t.Errorf("expected %d x %v = %d, got %d", tt.raw, tt.scale, tt.want, got)
		}
	}
}

func TestLab13MetalBoundary(t *testing.T) {
	lab := mustFormat(t, format.Lab13)
	raw := mustFormat(t, format.Raw)

	tests := []struct {
		in   uint8
		want uint8
	}{
		{0, 0},
		{229, 0},
		{230, 255},
		{255, 255},
	}
	for _, tt := range tests {
		v, ok := DecodeValue(lab.Get(encoding.Metal), tt.in)
		if !ok {
			t.Fatalf("expected metal %d to decode", tt.in)
		}
		if got, _ := EncodeValue(raw.Get(encoding.Metal), v, 1); got != tt.want {
			t.Errorf("expected %d -> %d, got %d", tt.in, tt.want, got)
		}
	}

	if _, ok := DecodeValue(lab.Get(encoding.F0), 230); ok {
		t.Error("expected f0 to be absent above 229")
	}
	if got, ok := EncodeValue(lab.Get(encoding.Metal), 0, 1); ok {
		t.Errorf("expected non-metal to leave the plane to f0, got %d", got)
	}
	if got, _ := EncodeValue(lab.Get(encoding.Metal), 1, 1); got != 255 {
		t.Errorf("expected metal to encode 255, got %d", got)
	}
}

func TestLab13Emissive(t *testing.T) {
	lab := mustFormat(t, format.Lab13)
	raw := mustFormat(t, format.Raw)

	tests := []struct {
		raw  uint8
		want uint8
	}{
		{0, 255},
		{1, 0},
		{255, 254},
	}
	for _, tt := range tests {
		v, _ := DecodeValue(raw.Get(encoding.Emissive), tt.raw)
		got, ok := EncodeValue(lab.Get(encoding.Emissive), v, 1)
		if !ok || got != tt.want {
			t.Errorf("expected raw %d -> %d, got %d", tt.raw, tt.want, got)
		}
		back, _ := DecodeValue(lab.Get(encoding.Emissive), got)
		if rt, _ := EncodeValue(raw.Get(encoding.Emissive), back, 1); rt != tt.raw {
			t.Errorf("expected round trip to %d, got %d", tt.raw, rt)
		}
	}
}

func TestClippedLayers(t *testing.T) {
	lab := mustFormat(t, format.Lab13)

	if b, ok := EncodeValue(lab.Get(encoding.Porosity), 1, 1); !ok || b != 64 {
		t.Errorf("expected full porosity at 64, got %d (%v)", b, ok)
	}
	if _, ok := EncodeValue(lab.Get(encoding.SSS), 0, 1); ok {
		t.Error("expected zero sss to leave porosity visible")
	}
	if b, ok := EncodeValue(lab.Get(encoding.SSS), 1, 1); !ok || b != 255 {
		t.Errorf("expected full sss at 255, got %d (%v)", b, ok)
	}
	if _, ok := DecodeValue(lab.Get(encoding.Porosity), 65); ok {
		t.Error("expected porosity absent above 64")
	}
	if b, _ := EncodeValue(lab.Get(encoding.Occlusion), 0, 1); b != 255 {
		t.Errorf("expected no occlusion to encode 255, got %d", b)
	}
}

func TestClippedValuesSaturate(t *testing.T) {
	lab := mustFormat(t, format.Lab13)
	raw := mustFormat(t, format.Raw)

	f0, ok := DecodeValue(raw.Get(encoding.F0), 240)
	if !ok {
		t.Fatal("expected raw f0 to decode")
	}
	if b, ok := EncodeValue(lab.Get(encoding.F0), f0, 1); !ok || b != 229 {
		t.Errorf("expected f0 above the range to clamp to 229, got %d (%v)", b, ok)
	}

	tests := []struct {
		name  string
		value float64
		scale float64
		want  uint8
	}{
		{"scaled past full", 0.8, 2, 64},
		{"full", 1, 1, 64},
		{"half", 0.5, 1, 32},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, ok := EncodeValue(lab.Get(encoding.Porosity), tt.value, tt.scale)
			if !ok || b != tt.want {
				t.Errorf("expected porosity %d, got %d (%v)", tt.want, b, ok)
			}
		})
	}
}

func TestShiftWraps(t *testing.T) {
	if shift(0, -1) != 255 || shift(255, 1) != 0 || shift(10, 0) != 10 {
		t.Error("expected 8-bit wraparound")
	}
}
