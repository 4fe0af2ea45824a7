package texture

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/packio"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDecodeRoundTrip(t *testing.T) {
	src := solid(4, 2, color.NRGBA{10, 20, 30, 128})
	var buf bytes.Buffer
	if err := Encode(&buf, src, PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := Decode(&buf, ".png")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 2 {
		t.Errorf("expected 4x2, got %v", img.Bounds())
	}
	if got := img.NRGBAAt(3, 1); got != (color.NRGBA{10, 20, 30, 128}) {
		t.Errorf("expected pixel preserved, got %v", got)
	}
}

func TestDecodeGrayGetsOpaqueAlpha(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	gray.SetGray(1, 1, color.Gray{Y: 77})
	var buf bytes.Buffer
	png.Encode(&buf, gray)

	img, err := Decode(&buf, "png")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{77, 77, 77, 255}) {
		t.Errorf("expected {77 77 77 255}, got %v", got)
	}
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode(bytes.NewReader([]byte("definitely not an image")), "")
	if !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
	if !errors.Is(err, image.ErrFormat) {
		t.Errorf("expected image.ErrFormat to be wrapped, got %v", err)
	}
	if _, err := Decode(bytes.NewReader([]byte("GIF89a")), ".gif"); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec for gif, got %v", err)
	}

	var buf bytes.Buffer
	png.Encode(&buf, solid(8, 8, color.NRGBA{A: 255}))
	truncated := buf.Bytes()[:buf.Len()/2]
	if _, err := Decode(bytes.NewReader(truncated), "png"); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("expected ErrMalformedImage, got %v", err)
	}
	if _, err := Decode(bytes.NewReader([]byte{0, 0}), "tga"); !errors.Is(err, ErrMalformedImage) {
		t.Errorf("expected ErrMalformedImage for a short tga, got %v", err)
	}
}

func TestDecodeFormats(t *testing.T) {
	// Column 2 gets its own color so JPEG chroma blocks stay uniform.
	src := solid(3, 2, color.NRGBA{200, 100, 50, 255})
	src.SetNRGBA(2, 0, color.NRGBA{10, 220, 90, 255})
	src.SetNRGBA(2, 1, color.NRGBA{10, 220, 90, 255})

	tests := []struct {
		ext       string
		encode    func(io.Writer, image.Image) error
		tolerance int
	}{
		{"png", png.Encode, 0},
		{"jpg", func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 100}) }, 12},
		{"bmp", bmp.Encode, 0},
		{"tiff", func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) }, 0},
		{"webp", func(w io.Writer, m image.Image) error { return Encode(w, m, WebP) }, 0},
		{"tga", tga.Encode, 0},
	}
	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.encode(&buf, src); err != nil {
				t.Fatalf("encode: %v", err)
			}
			img, err := Decode(bytes.NewReader(buf.Bytes()), "."+tt.ext)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
				t.Fatalf("expected 3x2, got %v", img.Bounds())
			}
			for _, p := range []image.Point{{0, 0}, {2, 1}} {
				want, got := src.NRGBAAt(p.X, p.Y), img.NRGBAAt(p.X, p.Y)
				if !near(want, got, tt.tolerance) {
					t.Errorf("expected %v at %v, got %v", want, p, got)
				}
			}
		})
	}
}

func TestDecodeTrustsSignatureOverExtension(t *testing.T) {
	var buf bytes.Buffer
	png.Encode(&buf, solid(2, 2, color.NRGBA{1, 2, 3, 255}))

	for _, ext := range []string{"", ".jpg", ".webp"} {
		img, err := Decode(bytes.NewReader(buf.Bytes()), ext)
		if err != nil {
			t.Fatalf("decode png named %q: %v", ext, err)
		}
		if got := img.NRGBAAt(1, 1); got != (color.NRGBA{1, 2, 3, 255}) {
			t.Errorf("expected {1 2 3 255}, got %v", got)
		}
	}
}

func TestLoadTGA(t *testing.T) {
	root := t.TempDir()
	f, err := os.Create(filepath.Join(root, "color.tga"))
	if err != nil {
		t.Fatal(err)
	}
	if err := tga.Encode(f, solid(2, 2, color.NRGBA{40, 80, 120, 160})); err != nil {
		t.Fatal(err)
	}
	f.Close()

	img, err := Load(packio.NewDirReader(root), "color.tga")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got := img.NRGBAAt(1, 0); got != (color.NRGBA{40, 80, 120, 160}) {
		t.Errorf("expected {40 80 120 160}, got %v", got)
	}
}

func near(a, b color.NRGBA, tolerance int) bool {
	d := func(x, y uint8) bool {
		diff := int(x) - int(y)
		return diff <= tolerance && diff >= -tolerance
	}
	return d(a.R, b.R) && d(a.G, b.G) && d(a.B, b.B) && d(a.A, b.A)
}

func TestEncodeWebP(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, solid(4, 4, color.NRGBA{200, 100, 50, 255}), WebP); err != nil {
		t.Fatalf("encode: %v", err)
	}
	img, err := Decode(&buf, "webp")
	if err != nil {
		t.Fatalf("decode webp: %v", err)
	}
	if img.Bounds().Dx() != 4 {
		t.Errorf("expected width 4, got %d", img.Bounds().Dx())
	}
}

func TestParseCodec(t *testing.T) {
	if c, err := ParseCodec(""); err != nil || c != PNG {
		t.Errorf("expected png default, got %s (%v)", c, err)
	}
	if _, err := ParseCodec("gif"); !errors.Is(err, ErrUnsupportedCodec) {
		t.Errorf("expected ErrUnsupportedCodec, got %v", err)
	}
}

func TestResize(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	src.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	src.SetNRGBA(1, 0, color.NRGBA{0, 255, 0, 255})
	src.SetNRGBA(0, 1, color.NRGBA{0, 0, 255, 255})
	src.SetNRGBA(1, 1, color.NRGBA{255, 255, 255, 255})

	if Resize(src, 2, 2, encoding.SamplerBicubic) != src {
		t.Error("expected same-size resize to return input")
	}

	samplers := []encoding.Sampler{
		encoding.SamplerNearest,
		encoding.SamplerBilinear,
		encoding.SamplerBicubic,
		encoding.SamplerLanczos,
	}
	for _, s := range samplers {
		t.Run(string(s), func(t *testing.T) {
			out := Resize(src, 8, 4, s)
			if out.Bounds().Dx() != 8 || out.Bounds().Dy() != 4 {
				t.Errorf("expected 8x4, got %v", out.Bounds())
			}
		})
	}

	near := Resize(src, 4, 4, encoding.SamplerNearest)
	if got := near.NRGBAAt(1, 1); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("expected nearest to keep exact texels, got %v", got)
	}
}

func TestResizeKeepsColorUnderZeroAlpha(t *testing.T) {
	tests := []struct {
		name    string
		texel   color.NRGBA
		sampler encoding.Sampler
	}{
		{"normal with zero height", color.NRGBA{127, 127, 255, 0}, encoding.SamplerBicubic},
		{"specular without emission", color.NRGBA{0, 200, 0, 0}, encoding.SamplerBilinear},
		{"nearest", color.NRGBA{90, 10, 30, 0}, encoding.SamplerNearest},
		{"lanczos", color.NRGBA{127, 127, 255, 0}, encoding.SamplerLanczos},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Resize(solid(2, 2, tt.texel), 4, 4, tt.sampler)
			for _, p := range []image.Point{{0, 0}, {1, 2}, {3, 3}} {
				if got := out.NRGBAAt(p.X, p.Y); !near(got, tt.texel, 1) {
					t.Errorf("expected %v at %v, got %v", tt.texel, p, got)
				}
			}
		})
	}
}

func TestResizeScalesAlphaIndependently(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.SetNRGBA(0, 0, color.NRGBA{100, 100, 100, 0})
	src.SetNRGBA(1, 0, color.NRGBA{100, 100, 100, 200})

	out := Resize(src, 4, 1, encoding.SamplerNearest)
	if got := out.NRGBAAt(0, 0); got != (color.NRGBA{100, 100, 100, 0}) {
		t.Errorf("expected {100 100 100 0}, got %v", got)
	}
	if got := out.NRGBAAt(3, 0); got != (color.NRGBA{100, 100, 100, 200}) {
		t.Errorf("expected {100 100 100 200}, got %v", got)
	}
}

func TestResizePremultipliedNoDarkFringe(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if x < 2 {
				src.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
			} else {
				src.SetNRGBA(x, y, color.NRGBA{0, 0, 0, 0})
			}
		}
	}
	out := ResizePremultiplied(src, 2, 2, encoding.SamplerBilinear)
	for x := 0; x < 2; x++ {
		c := out.NRGBAAt(x, 0)
		if c.A > 0 && c.R < 250 {
			t.Errorf("expected white color under partial alpha at x=%d, got %v", x, c)
		}
	}
}

func TestCacheRefcount(t *testing.T) {
	c := NewCache[string, int]()
	var loads atomic.Int32
	load := func() (int, error) {
		loads.Add(1)
		return 42, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Acquire("k", load)
			if err != nil || v != 42 {
				t.Errorf("expected 42, got %d (%v)", v, err)
			}
		}()
	}
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("expected a single load, got %d", loads.Load())
	}
	for i := 0; i < 7; i++ {
		c.Release("k")
	}
	if c.Len() != 1 {
		t.Errorf("expected entry alive with one ref, got %d entries", c.Len())
	}
	c.Release("k")
	if c.Len() != 0 {
		t.Errorf("expected eviction at zero refs, got %d entries", c.Len())
	}
}

func TestCacheDoesNotKeepErrors(t *testing.T) {
	c := NewCache[string, int]()
	boom := errors.New("boom")
	if _, err := c.Acquire("k", func() (int, error) { return 0, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("expected failed load to be dropped, got %d entries", c.Len())
	}
	v, err := c.Acquire("k", func() (int, error) { return 7, nil })
	if err != nil || v != 7 {
		t.Errorf("expected retry to load 7, got %d (%v)", v, err)
	}
}

func TestIndexPrefersPNG(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "stone")
	os.MkdirAll(dir, 0755)
	for _, name := range []string{"Color.tga", "color.png", "normal.jpg", "mat.yml"} {
		os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644)
	}

	idx, err := BuildIndex(packio.NewDirReader(root), "stone")
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	if idx.Len() != 2 {
		t.Errorf("expected 2 stems, got %d", idx.Len())
	}
	if p, ok := idx.ResolvePath("COLOR"); !ok || p != "stone/color.png" {
		t.Errorf("expected stone/color.png, got %s (%v)", p, ok)
	}
	if p, ok := idx.Find([]string{"albedo", "normal"}); !ok || p != "stone/normal.jpg" {
		t.Errorf("expected stone/normal.jpg, got %s (%v)", p, ok)
	}
}
