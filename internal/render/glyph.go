package render

import (
	"fmt"
	"image"
	"image/color"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
)

// scissorSVG is the trim handle icon, drawn in currentColor.
const scissorSVG = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 64 64">
<circle cx="14" cy="14" r="9" fill="none" stroke="currentColor" stroke-width="5"/>
<circle cx="14" cy="50" r="9" fill="none" stroke="currentColor" stroke-width="5"/>
<path d="M21 19 L60 48 L56 52 L19 24 Z" fill="currentColor"/>
<path d="M21 45 L60 16 L56 12 L19 40 Z" fill="currentColor"/>
<circle cx="32" cy="32" r="3" fill="currentColor"/>
</svg>`

// GlyphSize is the edge length of the rasterized scissor glyph.
const GlyphSize = 40

// Dash pattern and width of the trim guide lines.
var (
	guideDashes = []float64{5, 5}
	guideWidth  = 2.0
)

// rasterizeGlyph renders the scissor icon in col into a size×size image
// with a transparent background.
func rasterizeGlyph(col color.RGBA, size int) (*image.RGBA, error) {
	hex := fmt.Sprintf("#%02x%02x%02x", col.R, col.G, col.B)
	icon, err := oksvg.ReadReplacingCurrentColor(strings.NewReader(scissorSVG), hex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scissor glyph: %w", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, dst, dst.Bounds())
	dasher := rasterx.NewDasher(size, size, scanner)
	icon.Draw(dasher, float64(col.A)/255)
	return dst, nil
}

// strokeGuide draws a dashed horizontal line from (x0, y) to (x1, y).
func strokeGuide(dst *image.RGBA, x0, x1, y float64, col color.RGBA) {
	b := dst.Bounds()
	scanner := rasterx.NewScannerGV(b.Dx(), b.Dy(), dst, b)
	dasher := rasterx.NewDasher(b.Dx(), b.Dy(), scanner)
	dasher.SetStroke(fixed.Int26_6(guideWidth*64), 0, rasterx.ButtCap, nil, rasterx.FlatGap, rasterx.MiterClip, guideDashes, 0)
	dasher.SetColor(col)
	dasher.Start(rasterx.ToFixedP(x0, y))
	dasher.Line(rasterx.ToFixedP(x1, y))
	dasher.Stop(false)
	dasher.Draw()
}
