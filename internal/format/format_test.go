package format

import (
	"errors"
	"testing"

	"pixelgraph/internal/encoding"
)

func TestAllFormatsValidate(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			e, err := New(name)
			if err != nil {
				t.Fatalf("failed to build %s: %v", name, err)
			}
			if e.Name != name {
				t.Errorf("expected name %s, got %s", name, e.Name)
			}
			if err := e.Validate(); err != nil {
				t.Errorf("expected %s to validate, got %v", name, err)
			}
			edition, err := Edition(name)
			if err != nil {
				t.Fatalf("edition lookup failed: %v", err)
			}
			if e.Edition != edition {
				t.Errorf("expected edition %s, got %s", edition, e.Edition)
			}
		})
	}
}

func TestUnknownFormat(t *testing.T) {
	_, err := New("lab-9.9")
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat, got %v", err)
	}
	if _, err := Edition("nope"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("expected ErrUnknownFormat from Edition, got %v", err)
	}
}

func TestNewReturnsIndependentCopies(t *testing.T) {
	a, _ := New(Lab13)
	b, _ := New(Lab13)
	a.Get(encoding.Smooth).Invert = true
	if b.Get(encoding.Smooth).Invert {
		t.Error("expected catalog definitions to be independent")
	}
}

func TestLab13Layout(t *testing.T) {
	e, _ := New(Lab13)

	tests := []struct {
		ch    encoding.Channel
		tag   encoding.Tag
		plane encoding.ColorPlane
	}{
		{encoding.NormalX, encoding.TagNormal, encoding.Red},
		{encoding.NormalY, encoding.TagNormal, encoding.Green},
		{encoding.Occlusion, encoding.TagNormal, encoding.Blue},
		{encoding.Height, encoding.TagNormal, encoding.Alpha},
		{encoding.Smooth, encoding.TagSpecular, encoding.Red},
		{encoding.F0, encoding.TagSpecular, encoding.Green},
		{encoding.Metal, encoding.TagSpecular, encoding.Green},
		{encoding.HCM, encoding.TagSpecular, encoding.Green},
		{encoding.Porosity, encoding.TagSpecular, encoding.Blue},
		{encoding.SSS, encoding.TagSpecular, encoding.Blue},
		{encoding.Emissive, encoding.TagSpecular, encoding.Alpha},
	}

	for _, tt := range tests {
		t.Run(string(tt.ch), func(t *testing.T) {
			p := e.Get(tt.ch)
			if p == nil {
				t.Fatalf("expected %s to be encoded", tt.ch)
			}
			if p.Texture != tt.tag || p.Plane != tt.plane {
				t.Errorf("expected %s.%s, got %s.%s", tt.tag, tt.plane, p.Texture, p.Plane)
			}
		})
	}

	if e.Get(encoding.NormalZ) != nil {
		t.Error("expected lab-1.3 to leave normal-z implicit")
	}
	if got := e.Get(encoding.Metal).RangeMin; got != 230 {
		t.Errorf("expected metal range to start at 230, got %d", got)
	}
	if e.Get(encoding.HCM).Sampler != encoding.SamplerNearest {
		t.Error("expected hcm to use nearest sampling")
	}
}

func TestBedrockTags(t *testing.T) {
	e, _ := New(RTX)
	tags := e.Tags()
	want := map[encoding.Tag]bool{
		encoding.TagColor:  true,
		encoding.TagHeight: true,
		encoding.TagNormal: true,
		encoding.TagMER:    true,
	}
	if len(tags) != len(want) {
		t.Fatalf("expected %d tags, got %v", len(want), tags)
	}
	for _, tag := range tags {
		if !want[tag] {
			t.Errorf("unexpected tag %s", tag)
		}
	}
}
