// Package render draws the image stack onto the surface.
package render

import (
	"image"
	"image/color"
	"math"

	"image-stacker/internal/stack"
	"image-stacker/pkg/colorutil"

	"golang.org/x/image/draw"
)

// Compositor produces the surface image for a stack. Every call to Render
// redraws the whole surface from scratch.
type Compositor struct {
	Background  color.RGBA // Surface fill; transparent by default
	HandleColor color.RGBA // Scissor glyph and guide line colour

	// Scaler maps source pixels onto rendered rectangles.
	Scaler draw.Scaler

	glyph *image.RGBA
}

// NewCompositor creates a compositor drawing trim affordances in handleColor.
func NewCompositor(background, handleColor color.RGBA) (*Compositor, error) {
	glyph, err := rasterizeGlyph(handleColor, GlyphSize)
	if err != nil {
		return nil, err
	}
	return &Compositor{
		Background:  background,
		HandleColor: handleColor,
		Scaler:      draw.ApproxBiLinear,
		glyph:       glyph,
	}, nil
}

// MustCompositor is like NewCompositor with the default colours and panics
// if the glyph cannot be built.
func MustCompositor() *Compositor {
	c, err := NewCompositor(colorutil.Transparent, colorutil.Red)
	if err != nil {
		panic(err)
	}
	return c
}

// Render enforces the single editable tail on s and draws every entity in
// stacking order. Editable entities also get trim affordances.
func (c *Compositor) Render(s *stack.Stack) *image.RGBA {
	w := int(math.Ceil(s.Width))
	h := int(math.Ceil(s.Height))
	out := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	if c.Background.A != 0 {
		draw.Draw(out, out.Bounds(), &image.Uniform{C: c.Background}, image.Point{}, draw.Src)
	}

	s.EnforceTail()

	for _, e := range s.Entities {
		c.drawEntity(out, e)
		if !e.Fixed {
			c.drawAffordances(out, e)
		}
	}
	return out
}

// drawEntity copies the visible part of e onto out, blended with the
// entity's opacity.
func (c *Compositor) drawEntity(out *image.RGBA, e *stack.Entity) {
	if e.Source == nil || e.VisibleHeight() <= 0 {
		return
	}

	dr := e.VisibleRect().Pixels()
	sr := e.SourceRect().Pixels().Add(e.Source.Bounds().Min).Intersect(e.Source.Bounds())
	if dr.Empty() || sr.Empty() {
		return
	}

	if e.Opacity >= 1 {
		c.Scaler.Scale(out, dr, e.Source, sr, draw.Over, nil)
		return
	}

	// Scale into a scratch buffer first so the opacity applies to the
	// scaled pixels only and nothing else on the surface.
	tmp := image.NewRGBA(image.Rect(0, 0, dr.Dx(), dr.Dy()))
	c.Scaler.Scale(tmp, tmp.Bounds(), e.Source, sr, draw.Src, nil)
	mask := image.NewUniform(color.Alpha{A: uint8(math.Round(clamp01(e.Opacity) * 255))})
	draw.DrawMask(out, dr, tmp, image.Point{}, mask, image.Point{}, draw.Over)
}

// drawAffordances draws the scissor glyphs and dashed guides at the top and
// visible-bottom edges of e.
func (c *Compositor) drawAffordances(out *image.RGBA, e *stack.Entity) {
	x0, x1 := e.X, e.X+e.Width
	for _, y := range []float64{e.Y, e.VisibleBottom()} {
		strokeGuide(out, x0, x1, y, c.HandleColor)
		c.drawGlyph(out, e.Bounds().CenterX(), y)
	}
}

// drawGlyph centers the scissor glyph on (cx, cy).
func (c *Compositor) drawGlyph(out *image.RGBA, cx, cy float64) {
	if c.glyph == nil {
		return
	}
	gb := c.glyph.Bounds()
	at := image.Pt(int(math.Round(cx))-gb.Dx()/2, int(math.Round(cy))-gb.Dy()/2)
	draw.Draw(out, gb.Add(at), c.glyph, gb.Min, draw.Over)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
