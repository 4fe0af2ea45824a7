package publish

import (
	"context"
	"fmt"
	"path"
	"strings"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/minecraft"
	"pixelgraph/internal/naming"
	"pixelgraph/internal/packio"
	"pixelgraph/internal/texture"
)

const packMetaFile = "pack.mcmeta"

// matches reports whether p is named by one of the patterns. A pattern
// matches the full path, the base name, or any parent directory.
func matches(patterns []string, p string) bool {
	for _, pat := range patterns {
		pat = packio.Clean(pat)
		if pat == "" {
			continue
		}
		if ok, _ := path.Match(pat, p); ok {
			return true
		}
		if ok, _ := path.Match(pat, path.Base(p)); ok {
			return true
		}
		if strings.HasPrefix(p, pat+"/") {
			return true
		}
	}
	return false
}

func (p *Publisher) excluded(f string) bool {
	if f == packMetaFile && p.opt.Output.Edition == encoding.Java {
		return true
	}
	return matches(p.opt.Exclude, f)
}

func (p *Publisher) isGenericImage(f string) bool {
	if matches(p.opt.IgnorePaths, f) {
		return false
	}
	ext := naming.Ext(f)
	for _, e := range p.opt.ImageExtensions {
		if strings.EqualFold(strings.TrimPrefix(e, "."), ext) {
			return true
		}
	}
	return false
}

// imageOutputPath keeps the location of an image and switches its extension
// to the output codec.
func (p *Publisher) imageOutputPath(f string) string {
	return strings.TrimSuffix(f, path.Ext(f)) + "." + p.opt.Profile.Codec.Ext()
}

// publishFile publishes one file that belongs to no material.
func (p *Publisher) publishFile(ctx context.Context, f string) Result {
	res := Result{Name: f, Kind: KindFile}
	generic := p.isGenericImage(f)
	dst := f
	if generic {
		res.Kind = KindImage
		dst = p.imageOutputPath(f)
	}

	if p.upToDate([]string{f}, []string{dst}) {
		res.State = UpToDate
		res.Written = []string{dst}
		return res
	}
	if err := ctx.Err(); err != nil {
		res.State = Canceled
		return res
	}

	var err error
	if generic {
		err = p.publishImage(f, dst)
	} else {
		err = packio.Copy(p.opt.Reader, p.opt.Writer, f, dst)
	}
	if err != nil {
		return p.fail(res, fmt.Errorf("publish: %s: %w", f, err))
	}
	res.State = Published
	res.Written = []string{dst}
	return res
}

// publishImage resizes an image to the profile size for its category and
// re-encodes it.
func (p *Publisher) publishImage(src, dst string) error {
	img, err := texture.Load(p.opt.Reader, src)
	if err != nil {
		return err
	}
	b := img.Bounds()
	w, h := p.opt.Profile.TargetSize(minecraft.CategoryOf(src), b.Dx(), b.Dy(), true)
	if w != b.Dx() || h != b.Dy() {
		img = texture.ResizePremultiplied(img, w, h, p.opt.Profile.Sampler)
	}

	s, err := p.opt.Writer.Open(dst)
	if err != nil {
		return err
	}
	if err := texture.Encode(s, img, p.opt.Profile.Codec); err != nil {
		s.Abort()
		return err
	}
	return s.Commit()
}
