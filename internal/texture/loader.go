package texture

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"path"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"pixelgraph/internal/packio"
)

var (
	// ErrMalformedImage is returned for images that cannot be decoded or have
	// no pixels.
	ErrMalformedImage = errors.New("malformed image")
	// ErrUnsupportedCodec is returned for unknown image formats.
	ErrUnsupportedCodec = errors.New("unsupported image codec")
)

// Codec names an output image encoding.
type Codec string

const (
	PNG  Codec = "png"
	WebP Codec = "webp"
)

// ParseCodec validates a codec name. An empty name selects PNG.
func ParseCodec(s string) (Codec, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return PNG, nil
	case "webp":
		return WebP, nil
	}
	return "", fmt.Errorf("texture: %q: %w", s, ErrUnsupportedCodec)
}

// Ext returns the file extension written for the codec.
func (c Codec) Ext() string {
	if c == WebP {
		return "webp"
	}
	return "png"
}

type decodeFunc func(io.Reader) (image.Image, error)

// decoders are keyed by lower-case extension. The tga package registers
// itself with an empty signature, which would claim every input, so
// image.Decode is never used.
var decoders = map[string]decodeFunc{
	"png":  png.Decode,
	"jpg":  jpeg.Decode,
	"jpeg": jpeg.Decode,
	"bmp":  bmp.Decode,
	"tif":  tiff.Decode,
	"tiff": tiff.Decode,
	"webp": webp.Decode,
	"tga":  tga.Decode,
}

// signatures identify formats by content. TGA has none and is only chosen
// by extension.
var signatures = []struct {
	ext, magic string
}{
	{"png", "\x89PNG\r\n\x1a\n"},
	{"jpg", "\xff\xd8\xff"},
	{"bmp", "BM"},
	{"tiff", "II*\x00"},
	{"tiff", "MM\x00*"},
	{"webp", "RIFF????WEBP"},
}

func sniff(br *bufio.Reader) string {
	for _, sig := range signatures {
		head, err := br.Peek(len(sig.magic))
		if err != nil {
			continue
		}
		match := true
		for i := range head {
			if sig.magic[i] != '?' && sig.magic[i] != head[i] {
				match = false
				break
			}
		}
		if match {
			return sig.ext
		}
	}
	return ""
}

// Decode reads an image and returns it as NRGBA. ext is the file extension
// (with or without the dot); the content signature wins over it, except for
// TGA which has no signature. An empty ext relies on the signature alone.
func Decode(r io.Reader, ext string) (*image.NRGBA, error) {
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	br := bufio.NewReader(r)

	format := ext
	if ext != "tga" {
		if sniffed := sniff(br); sniffed != "" {
			format = sniffed
		}
	}
	decode, ok := decoders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnsupportedCodec, ext, image.ErrFormat)
	}

	img, err := decode(br)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedImage, format, err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrMalformedImage)
	}
	return toNRGBA(img), nil
}

// Load decodes an image from a pack reader.
func Load(r packio.Reader, p string) (*image.NRGBA, error) {
	rc, err := r.Open(p)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	img, err := Decode(rc, path.Ext(p))
	if err != nil {
		return nil, fmt.Errorf("texture: decode %s: %w", p, err)
	}
	return img, nil
}

// Encode writes img with the given codec.
func Encode(w io.Writer, img image.Image, codec Codec) error {
	switch codec {
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("texture: encode webp: %w", err)
		}
	case PNG, "":
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		if err := enc.Encode(w, img); err != nil {
			return fmt.Errorf("texture: encode png: %w", err)
		}
	default:
		return fmt.Errorf("texture: %q: %w", codec, ErrUnsupportedCodec)
	}
	return nil
}

// toNRGBA converts any image to NRGBA with its origin at (0, 0).
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray, *image.Gray16:
		// No alpha; draw sets it to 255.
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	default:
		for y := 0; y < b.Dy(); y++ {
			for x := 0; x < b.Dx(); x++ {
				c := color.NRGBAModel.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				i := dst.PixOffset(x, y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
