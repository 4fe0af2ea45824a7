package minecraft

import "testing"

func TestPackFormat(t *testing.T) {
	tests := []struct {
		version string
		want    int
		ok      bool
	}{
		{"", LatestJavaPackFormat, true},
		{"1.13", 4, true},
		{"1.16.5", 6, true},
		{"1.19.2", 9, true},
		{"1.20.1", 15, true},
		{"1.21.1", 34, true},
		{"1.12.2", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			got, ok := PackFormat(tt.version)
			if got != tt.want || ok != tt.ok {
				t.Errorf("expected (%d, %v), got (%d, %v)", tt.want, tt.ok, got, ok)
			}
		})
	}
}

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		path string
		want Category
	}{
		{"assets/minecraft/textures/block/stone", CategoryBlock},
		{"assets\\minecraft\\textures\\item\\apple", CategoryItem},
		{"assets/minecraft/textures/entity/creeper/creeper", CategoryEntity},
		{"assets/minecraft/textures/misc/pumpkinblur", CategoryUnknown},
		{"textures/blocks/dirt", CategoryBlock},
		{"pack", CategoryUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := CategoryOf(tt.path); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
