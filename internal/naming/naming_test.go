package naming

import (
	"testing"

	"pixelgraph/internal/encoding"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		name   string
		policy Policy
		tag    encoding.Tag
		want   string
	}{
		{"java color", Policy{Edition: encoding.Java}, encoding.TagColor, "textures/block/stone.png"},
		{"java normal", Policy{Edition: encoding.Java}, encoding.TagNormal, "textures/block/stone_n.png"},
		{"java specular", Policy{Edition: encoding.Java}, encoding.TagSpecular, "textures/block/stone_s.png"},
		{"bedrock normal", Policy{Edition: encoding.Bedrock}, encoding.TagNormal, "textures/block/stone_normal.png"},
		{"bedrock height", Policy{Edition: encoding.Bedrock}, encoding.TagHeight, "textures/block/stone_heightmap.png"},
		{"bedrock mer", Policy{Edition: encoding.Bedrock}, encoding.TagMER, "textures/block/stone_mer.png"},
		{"local normal", Policy{Local: true}, encoding.TagNormal, "textures/block/stone/normal.png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.policy.OutputPath("textures/block", "stone", tt.tag, "png")
			if got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestSplitGlobal(t *testing.T) {
	java := Policy{Edition: encoding.Java}
	tests := []struct {
		stem string
		name string
		tag  encoding.Tag
	}{
		{"stone", "stone", encoding.TagColor},
		{"stone_n", "stone", encoding.TagNormal},
		{"stone_s", "stone", encoding.TagSpecular},
		{"oak_log_top_e", "oak_log_top", encoding.TagEmissive},
		{"glass_mers", "glass", encoding.TagMERS},
		{"_n", "_n", encoding.TagColor},
	}

	for _, tt := range tests {
		t.Run(tt.stem, func(t *testing.T) {
			name, tag := java.SplitGlobal(tt.stem)
			if name != tt.name || tag != tt.tag {
				t.Errorf("expected (%s, %s), got (%s, %s)", tt.name, tt.tag, name, tag)
			}
		})
	}

	bedrock := Policy{Edition: encoding.Bedrock}
	if name, tag := bedrock.SplitGlobal("dirt_heightmap"); name != "dirt" || tag != encoding.TagHeight {
		t.Errorf("expected (dirt, height), got (%s, %s)", name, tag)
	}
}

func TestLocalAliases(t *testing.T) {
	local := Policy{Local: true}
	stems := local.InputStems(encoding.TagColor, "ignored")
	if len(stems) == 0 || stems[0] != "color" {
		t.Errorf("expected color first, got %v", stems)
	}

	if tag, ok := LocalTag("Albedo"); !ok || tag != encoding.TagColor {
		t.Errorf("expected albedo to map to color, got %s (%v)", tag, ok)
	}
	if _, ok := LocalTag("readme"); ok {
		t.Error("expected readme to be unknown")
	}
}

func TestIsImage(t *testing.T) {
	if !IsImage("a/b/stone.PNG") {
		t.Error("expected .PNG to be an image")
	}
	if IsImage("pack.mcmeta") {
		t.Error("expected .mcmeta not to be an image")
	}
	if Stem("a/b/stone_n.png") != "stone_n" {
		t.Errorf("unexpected stem %s", Stem("a/b/stone_n.png"))
	}
}
