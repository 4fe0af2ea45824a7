// Package minecraft holds read-only lookup tables about the game: pack
// format numbers and which textures are blocks or items.
package minecraft

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// Category classifies a texture by the game object it belongs to.
type Category string

const (
	CategoryUnknown Category = ""
	CategoryBlock   Category = "block"
	CategoryItem    Category = "item"
	CategoryEntity  Category = "entity"
	CategoryGUI     Category = "gui"
)

// LatestJavaPackFormat is written when no game version is configured.
const LatestJavaPackFormat = 34

type versionFormat struct {
	version string
	format  int
}

var packFormats = sync.OnceValue(func() []versionFormat {
	table := []versionFormat{
		{"1.13", 4},
		{"1.15", 5},
		{"1.16.2", 6},
		{"1.17", 7},
		{"1.18", 8},
		{"1.19", 9},
		{"1.19.3", 12},
		{"1.19.4", 13},
		{"1.20", 15},
		{"1.20.2", 18},
		{"1.20.3", 22},
		{"1.20.5", 32},
		{"1.21", 34},
	}
	sort.Slice(table, func(i, j int) bool {
		return compareVersions(table[i].version, table[j].version) < 0
	})
	return table
})

// PackFormat returns the Java pack_format for a game version. Versions between
// two table entries use the older entry. An empty version yields the latest.
func PackFormat(version string) (int, bool) {
	if version == "" {
		return LatestJavaPackFormat, true
	}
	table := packFormats()
	format, ok := 0, false
	for _, vf := range table {
		if compareVersions(vf.version, version) <= 0 {
			format, ok = vf.format, true
		}
	}
	return format, ok
}

func compareVersions(a, b string) int {
	pa := strings.Split(a, ".")
	pb := strings.Split(b, ".")
	for i := 0; i < len(pa) || i < len(pb); i++ {
		var x, y int
		if i < len(pa) {
			x = atoi(pa[i])
		}
		if i < len(pb) {
			y = atoi(pb[i])
		}
		if x != y {
			if x < y {
				return -1
			}
			return 1
		}
	}
	return 0
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		if c < '0' || c > '9' {
			break
		}
		n = n*10 + int(c-'0')
	}
	return n
}

var categoryDirs = sync.OnceValue(func() map[string]Category {
	return map[string]Category{
		"block":    CategoryBlock,
		"blocks":   CategoryBlock,
		"item":     CategoryItem,
		"items":    CategoryItem,
		"entity":   CategoryEntity,
		"gui":      CategoryGUI,
		"painting": CategoryBlock,
	}
})

// CategoryOf classifies a texture path such as
// "assets/minecraft/textures/block/stone". Paths outside a textures
// directory are unknown.
func CategoryOf(p string) Category {
	parts := strings.Split(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
	for i := 0; i+1 < len(parts); i++ {
		if parts[i] != "textures" {
			continue
		}
		if c, ok := categoryDirs()[strings.ToLower(parts[i+1])]; ok {
			return c
		}
		return CategoryUnknown
	}
	return CategoryUnknown
}
