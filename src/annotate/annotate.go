// Package annotate draws OCR polygons onto a copy of the recognized image.
package annotate

import (
	"image"
	"image/color"
	"log"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"imgpaste/src/geom"
)

// DefaultColor is used when no colour, or an unparsable one, is configured.
const DefaultColor = "#ff0000"

// Style controls how outlines are drawn.
type Style struct {
	Color string // hex, e.g. "#ff0000"
	Width int    // stroke width in pixels, 1 when <= 0
}

// ParseColor converts a hex colour string, falling back to DefaultColor.
func ParseColor(hex string) color.NRGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		if hex != "" {
			log.Printf("annotate: invalid colour %q, using %s: %v", hex, DefaultColor, err)
		}
		c, _ = colorful.Hex(DefaultColor)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

// Outline returns a copy of img with every polygon stroked as a closed
// outline, in the order given. Polygon coordinates are relative to the image's
// top-left corner, which is also the origin of the returned copy. img is
// never modified. Empty polygons are skipped.
func Outline(img image.Image, polys []geom.Polygon, style Style) *image.NRGBA {
	dst := imaging.Clone(img)
	if len(polys) == 0 {
		return dst
	}
	width := style.Width
	if width <= 0 {
		width = 1
	}

	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	scanner.SetColor(ParseColor(style.Color))
	stroker := rasterx.NewStroker(b.Dx(), b.Dy(), scanner)
	stroker.SetStroke(fixed.I(width), fixed.I(4), rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.Miter)

	for _, p := range polys {
		if len(p) == 0 {
			continue
		}
		// Vertices sit on pixel centres so odd widths cover whole pixels.
		stroker.Start(rasterx.ToFixedP(p[0].X+0.5, p[0].Y+0.5))
		for _, v := range p[1:] {
			stroker.Line(rasterx.ToFixedP(v.X+0.5, v.Y+0.5))
		}
		stroker.Stop(true)
	}
	stroker.Draw()
	return dst
}
