package encoding

import "testing"

func TestChannelDefaults(t *testing.T) {
	tests := []struct {
		ch   Channel
		want float64
		ok   bool
	}{
		{Opacity, 1, true},
		{Height, 1, true},
		{NormalZ, 1, true},
		{Rough, 1, true},
		{F0, 0.04, true},
		{HCM, 0, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.ch), func(t *testing.T) {
			got, ok := tt.ch.Default()
			if ok != tt.ok {
				t.Fatalf("expected ok=%v, got %v", tt.ok, ok)
			}
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFormatDefaultOverridesChannelDefault(t *testing.T) {
	v := 0.25
	p := &ChannelProperties{DefaultValue: &v}
	got, ok := p.Default(Smooth)
	if !ok || got != 0.25 {
		t.Errorf("expected 0.25, got %v (ok=%v)", got, ok)
	}

	var nilProps *ChannelProperties
	got, ok = nilProps.Default(Rough)
	if !ok || got != 1 {
		t.Errorf("expected channel default 1, got %v (ok=%v)", got, ok)
	}
}

func TestTagsAndChannelsFor(t *testing.T) {
	e := NewPackEncoding("test", Java)
	e.Set(Smooth, &ChannelProperties{Texture: TagSpecular, Plane: Red, RangeMax: 255, MaxValue: 1})
	e.Set(NormalX, &ChannelProperties{Texture: TagNormal, Plane: Red, RangeMax: 254, MinValue: -1, MaxValue: 1})
	e.Set(Height, &ChannelProperties{Texture: TagNormal, Plane: Alpha, RangeMax: 255, MaxValue: 1})

	tags := e.Tags()
	if len(tags) != 2 || tags[0] != TagNormal || tags[1] != TagSpecular {
		t.Errorf("expected [normal specular], got %v", tags)
	}

	chs := e.ChannelsFor(TagNormal)
	if len(chs) != 2 || chs[0] != Height || chs[1] != NormalX {
		t.Errorf("expected [height normal-x], got %v", chs)
	}

	if !e.Encodes(TagNormal, Alpha) {
		t.Error("expected normal alpha to be encoded")
	}
	if e.Encodes(TagNormal, Blue) {
		t.Error("expected normal blue to be unassigned")
	}
}

func TestValidateLayering(t *testing.T) {
	e := NewPackEncoding("layered", Java)
	e.Set(F0, &ChannelProperties{Texture: TagSpecular, Plane: Green, RangeMax: 229, EnableClipping: true})
	e.Set(Metal, &ChannelProperties{Texture: TagSpecular, Plane: Green, RangeMin: 230, RangeMax: 255, Binary: true})
	if err := e.Validate(); err != nil {
		t.Errorf("expected layered channels to validate, got %v", err)
	}

	e.Set(Smooth, &ChannelProperties{Texture: TagSpecular, Plane: Green, RangeMax: 255})
	if err := e.Validate(); err == nil {
		t.Error("expected error for unclipped channel on a shared plane")
	}
}

func TestCloneIsDeep(t *testing.T) {
	v := 0.5
	e := NewPackEncoding("orig", Java)
	e.Set(Smooth, &ChannelProperties{Texture: TagSpecular, DefaultValue: &v})

	c := e.Clone()
	*c.Get(Smooth).DefaultValue = 0.9
	c.Get(Smooth).Texture = TagSmooth

	if *e.Get(Smooth).DefaultValue != 0.5 {
		t.Errorf("expected original default 0.5, got %v", *e.Get(Smooth).DefaultValue)
	}
	if e.Get(Smooth).Texture != TagSpecular {
		t.Errorf("expected original texture specular, got %s", e.Get(Smooth).Texture)
	}
}

func TestParsers(t *testing.T) {
	if _, err := ParseChannel("bogus"); err == nil {
		t.Error("expected error for unknown channel")
	}
	if ch, err := ParseChannel("normal-y"); err != nil || ch != NormalY {
		t.Errorf("expected normal-y, got %v (%v)", ch, err)
	}
	if p, err := ParsePlane("a"); err != nil || p != Alpha {
		t.Errorf("expected alpha, got %v (%v)", p, err)
	}
	if _, err := ParseSampler("box"); err == nil {
		t.Error("expected error for unknown sampler")
	}
}
