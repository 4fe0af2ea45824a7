package graph

import (
	"fmt"
	"image"
	"image/draw"
	"path"
	"strconv"
	"strings"

	"pixelgraph/internal/encoding"
	"pixelgraph/internal/naming"
)

// ctmLayout describes how a connected-texture sheet is cut into tiles.
type ctmLayout struct {
	// method is the OptiFine method name.
	method     string
	cols, rows int
	count      int
}

var ctmMethods = map[string]ctmLayout{
	"full":       {"ctm", 12, 4, 47},
	"compact":    {"ctm_compact", 5, 1, 5},
	"horizontal": {"horizontal", 4, 1, 4},
	"vertical":   {"vertical", 1, 4, 4},
	"top":        {"top", 1, 1, 1},
	"fixed":      {"fixed", 1, 1, 1},
	"random":     {"random", 0, 0, 0},
	"repeat":     {"repeat", 0, 0, 0},
}

// CTMMethod translates a material CTM method to its OptiFine name.
func CTMMethod(method string) (string, bool) {
	l, ok := ctmMethods[strings.ToLower(method)]
	return l.method, ok
}

// ctmLayout returns the tile layout of a Java CTM material.
func (c *Context) ctmLayout() (ctmLayout, bool) {
	ctm := c.Material.CTM
	if ctm == nil || ctm.Method == nil || c.Output.Edition != encoding.Java {
		return ctmLayout{}, false
	}
	l, ok := ctmMethods[strings.ToLower(*ctm.Method)]
	if !ok {
		return ctmLayout{}, false
	}
	if l.cols == 0 {
		l.cols, l.rows = 1, 1
		if ctm.Width != nil && *ctm.Width > 0 {
			l.cols = *ctm.Width
		}
		if ctm.Height != nil && *ctm.Height > 0 {
			l.rows = *ctm.Height
		}
		l.count = l.cols * l.rows
	}
	return l, true
}

// ctmTilePath names tile i of a tag: "<dir>/<name>/<i><suffix>.<ext>".
func (c *Context) ctmTilePath(tag encoding.Tag, i int) string {
	global := naming.Policy{Edition: c.Output.Edition}
	file := strconv.Itoa(i) + global.FileName(tag, "", c.Profile.Codec.Ext())
	return path.Join(c.Material.LocalPath, c.Material.Name, file)
}

func (c *Context) ctmPropertiesPath() string {
	return path.Join(c.Material.LocalPath, c.Material.Name, c.Material.Name+".properties")
}

// splitTiles cuts a sheet into layout.count tiles in row-major order.
func splitTiles(img *image.NRGBA, l ctmLayout) ([]*image.NRGBA, error) {
	b := img.Bounds()
	tw, th := b.Dx()/l.cols, b.Dy()/l.rows
	if tw == 0 || th == 0 {
		return nil, fmt.Errorf("sheet %dx%d is too small for %dx%d tiles", b.Dx(), b.Dy(), l.cols, l.rows)
	}
	tiles := make([]*image.NRGBA, 0, l.count)
	for i := 0; i < l.count; i++ {
		col, row := i%l.cols, i/l.cols
		src := image.Rect(col*tw, row*th, (col+1)*tw, (row+1)*th).Add(b.Min)
		tile := image.NewNRGBA(image.Rect(0, 0, tw, th))
		draw.Draw(tile, tile.Bounds(), img, src.Min, draw.Src)
		tiles = append(tiles, tile)
	}
	return tiles, nil
}

// ctmProperties renders an OptiFine .properties file.
func (c *Context) ctmProperties(l ctmLayout) []byte {
	ctm := c.Material.CTM
	var sb strings.Builder
	fmt.Fprintf(&sb, "method=%s\n", l.method)
	if ctm.Tiles != nil && *ctm.Tiles != "" {
		fmt.Fprintf(&sb, "tiles=%s\n", *ctm.Tiles)
	} else if l.count == 1 {
		sb.WriteString("tiles=0\n")
	} else {
		fmt.Fprintf(&sb, "tiles=0-%d\n", l.count-1)
	}
	switch {
	case ctm.MatchBlocks != nil && *ctm.MatchBlocks != "":
		fmt.Fprintf(&sb, "matchBlocks=%s\n", *ctm.MatchBlocks)
	case ctm.MatchTiles != nil && *ctm.MatchTiles != "":
		fmt.Fprintf(&sb, "matchTiles=%s\n", *ctm.MatchTiles)
	default:
		fmt.Fprintf(&sb, "matchTiles=%s\n", c.Material.Name)
	}
	if l.method == "repeat" {
		fmt.Fprintf(&sb, "width=%d\nheight=%d\n", l.cols, l.rows)
	}
	return []byte(sb.String())
}
