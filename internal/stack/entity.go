// Package stack holds the vertical image stack: per-image geometry and trim,
// the stacking rule used when images are added and the surface sizing that
// keeps every image on the drawing surface.
package stack

import (
	"image"

	"image-stacker/pkg/geometry"

	"github.com/google/uuid"
)

// Opacity levels for fixed and editable entities.
const (
	OpacityFixed  = 1.0
	OpacityActive = 0.5
)

// Entity is one image placed on the surface.
type Entity struct {
	ID     uuid.UUID
	Name   string      // Display name, usually the source file name
	Source image.Image // Decoded raster, never modified

	// Placement on the surface. Only Y changes after creation (dragging).
	X, Y float64

	// Rendered size. May be smaller than the natural size of Source.
	Width, Height float64

	trimTop    float64
	trimBottom float64

	Opacity float64
	Fixed   bool
}

// NaturalWidth returns the intrinsic width of the source raster.
func (e *Entity) NaturalWidth() int {
	if e.Source == nil {
		return 0
	}
	return e.Source.Bounds().Dx()
}

// NaturalHeight returns the intrinsic height of the source raster.
func (e *Entity) NaturalHeight() int {
	if e.Source == nil {
		return 0
	}
	return e.Source.Bounds().Dy()
}

// Scale returns the factor converting rendered units into source pixels.
func (e *Entity) Scale() float64 {
	if e.Width == 0 {
		return 1
	}
	return float64(e.NaturalWidth()) / e.Width
}

// TrimTop returns the amount cut from the top edge, in rendered units.
func (e *Entity) TrimTop() float64 { return e.trimTop }

// TrimBottom returns the amount cut from the bottom edge, in rendered units.
func (e *Entity) TrimBottom() float64 { return e.trimBottom }

// VisibleHeight is the rendered height left after both trims.
func (e *Entity) VisibleHeight() float64 {
	return e.Height - e.trimTop - e.trimBottom
}

// VisibleBottom is the surface y coordinate of the trimmed bottom edge.
func (e *Entity) VisibleBottom() float64 {
	return e.Y + e.VisibleHeight()
}

// Bounds returns the untrimmed rectangle used for drag hit-testing.
func (e *Entity) Bounds() geometry.Rect {
	return geometry.NewRect(e.X, e.Y, e.Width, e.Height)
}

// VisibleRect returns the trimmed rectangle the image occupies on the surface.
func (e *Entity) VisibleRect() geometry.Rect {
	return geometry.NewRect(e.X, e.Y, e.Width, e.VisibleHeight())
}

// SourceRect returns the region of Source that maps onto VisibleRect.
func (e *Entity) SourceRect() geometry.Rect {
	s := e.Scale()
	return geometry.NewRect(0, e.trimTop*s, float64(e.NaturalWidth()), e.VisibleHeight()*s)
}

// fix marks the entity as no longer editable.
func (e *Entity) fix() {
	e.Fixed = true
	e.Opacity = OpacityFixed
}

// open makes the entity editable again.
func (e *Entity) open() {
	e.Fixed = false
	e.Opacity = OpacityActive
}
