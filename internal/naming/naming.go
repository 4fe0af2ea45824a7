// Package naming maps texture tags to file names. Local materials keep their
// textures in their own directory ("stone/normal.png"); global materials sit
// next to each other with a per-tag suffix ("stone_n.png").
package naming

import (
	"path"
	"strings"

	"pixelgraph/internal/encoding"
)

// ImageExtensions are the extensions recognized as texture images, in lookup
// priority order.
var ImageExtensions = []string{"png", "tga", "jpg", "jpeg", "bmp", "webp", "tif", "tiff"}

var javaSuffix = map[encoding.Tag]string{
	encoding.TagColor:     "",
	encoding.TagOpacity:   "_opacity",
	encoding.TagHeight:    "_h",
	encoding.TagNormal:    "_n",
	encoding.TagOcclusion: "_ao",
	encoding.TagSpecular:  "_s",
	encoding.TagSmooth:    "_smooth",
	encoding.TagRough:     "_rough",
	encoding.TagMetal:     "_metal",
	encoding.TagF0:        "_f0",
	encoding.TagHCM:       "_hcm",
	encoding.TagPorosity:  "_porosity",
	encoding.TagSSS:       "_sss",
	encoding.TagEmissive:  "_e",
	encoding.TagMER:       "_mer",
	encoding.TagMERS:      "_mers",
}

var bedrockSuffix = map[encoding.Tag]string{
	encoding.TagHeight: "_heightmap",
	encoding.TagNormal: "_normal",
}

var localAliases = map[encoding.Tag][]string{
	encoding.TagColor:     {"color", "albedo", "diffuse"},
	encoding.TagHeight:    {"height", "bump"},
	encoding.TagOcclusion: {"occlusion", "ao"},
	encoding.TagSmooth:    {"smooth", "smoothness"},
	encoding.TagRough:     {"rough", "roughness"},
	encoding.TagEmissive:  {"emissive", "emission"},
}

// Policy selects local or global naming for one edition.
type Policy struct {
	Local   bool
	Edition encoding.Edition
}

func (p Policy) suffix(tag encoding.Tag) string {
	if p.Edition == encoding.Bedrock {
		if s, ok := bedrockSuffix[tag]; ok {
			return s
		}
	}
	if s, ok := javaSuffix[tag]; ok {
		return s
	}
	return "_" + string(tag)
}

// InputStems returns candidate file stems (no extension) for a tag, most
// preferred first.
func (p Policy) InputStems(tag encoding.Tag, name string) []string {
	if p.Local {
		if aliases, ok := localAliases[tag]; ok {
			return append([]string(nil), aliases...)
		}
		return []string{string(tag)}
	}
	return []string{name + p.suffix(tag)}
}

// FileName returns the output file name of a tag.
func (p Policy) FileName(tag encoding.Tag, name, ext string) string {
	if p.Local {
		return string(tag) + "." + ext
	}
	return name + p.suffix(tag) + "." + ext
}

// Dir returns the directory holding a material's textures.
func (p Policy) Dir(localPath, name string) string {
	if p.Local {
		return path.Join(localPath, name)
	}
	return localPath
}

// OutputPath joins Dir and FileName.
func (p Policy) OutputPath(localPath, name string, tag encoding.Tag, ext string) string {
	return path.Join(p.Dir(localPath, name), p.FileName(tag, name, ext))
}

// SplitGlobal splits a global texture stem into material name and tag. A stem
// without a known suffix is the color texture.
func (p Policy) SplitGlobal(stem string) (string, encoding.Tag) {
	best := ""
	bestTag := encoding.TagColor
	for _, tag := range encoding.AllTags {
		s := p.suffix(tag)
		if s == "" || len(s) <= len(best) {
			continue
		}
		if strings.HasSuffix(stem, s) && len(stem) > len(s) {
			best = s
			bestTag = tag
		}
	}
	return strings.TrimSuffix(stem, best), bestTag
}

// LocalTag returns the tag a local texture stem stands for.
func LocalTag(stem string) (encoding.Tag, bool) {
	stem = strings.ToLower(stem)
	for _, tag := range encoding.AllTags {
		for _, s := range (Policy{Local: true}).InputStems(tag, "") {
			if s == stem {
				return tag, true
			}
		}
	}
	return "", false
}

// IsImage reports whether a path has a recognized image extension.
func IsImage(p string) bool {
	ext := Ext(p)
	for _, e := range ImageExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Ext returns the lower-case extension without the dot.
func Ext(p string) string {
	return strings.ToLower(strings.TrimPrefix(path.Ext(p), "."))
}

// Stem returns the base name without extension.
func Stem(p string) string {
	base := path.Base(p)
	return strings.TrimSuffix(base, path.Ext(base))
}
