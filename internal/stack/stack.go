package stack

import (
	"image"
	"slices"

	"image-stacker/pkg/geometry"

	"github.com/google/uuid"
	"gonum.org/v1/gonum/floats"
)

// Stack is the ordered sequence of entities together with the size of the
// surface they are drawn on. Insertion order is stacking order, top to bottom.
type Stack struct {
	Entities []*Entity

	// Surface size. Width is constant; Height grows and shrinks with content.
	Width  float64
	Height float64

	// MaxWidth is the widest an entity may be rendered.
	MaxWidth float64
}

// New creates an empty stack on a surface of the given size. Images wider
// than width are downscaled to it.
func New(width, initialHeight float64) *Stack {
	return &Stack{
		Width:    width,
		Height:   initialHeight,
		MaxWidth: width,
	}
}

// Len returns the number of entities.
func (s *Stack) Len() int {
	return len(s.Entities)
}

// At returns the entity at index i, or nil if i is out of range.
func (s *Stack) At(i int) *Entity {
	if i < 0 || i >= len(s.Entities) {
		return nil
	}
	return s.Entities[i]
}

// Last returns the bottom-most entity, or nil if the stack is empty.
func (s *Stack) Last() *Entity {
	return s.At(len(s.Entities) - 1)
}

// Add places a decoded raster below the current last entity and appends it.
// The new entity starts editable and half transparent. A nil raster is
// ignored.
func (s *Stack) Add(name string, src image.Image) *Entity {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	size := geometry.NewSize(float64(b.Dx()), float64(b.Dy())).FitWidth(s.MaxWidth)

	e := &Entity{
		ID:      uuid.New(),
		Name:    name,
		Source:  src,
		Width:   size.Width,
		Height:  size.Height,
		Opacity: OpacityActive,
	}

	if last := s.Last(); last == nil {
		s.Height = e.Height
	} else {
		// Placement is fixed now; later edits of earlier entities don't move it.
		e.Y = last.VisibleBottom()
		s.GrowToFit(e.Y + e.Height)
	}

	s.Entities = append(s.Entities, e)
	return e
}

// Fix makes entity i immutable and collapses any slack below the content.
func (s *Stack) Fix(i int) bool {
	e := s.At(i)
	if e == nil {
		return false
	}
	e.fix()
	s.ShrinkToContentMax()
	return true
}

// Unfix re-opens the last entity for editing. Only the last entity may be
// unfixed; other indices are ignored.
func (s *Stack) Unfix(i int) bool {
	if i != len(s.Entities)-1 {
		return false
	}
	e := s.At(i)
	if e == nil {
		return false
	}
	e.open()
	return true
}

// Remove deletes entity i. The entity that becomes last is re-opened.
func (s *Stack) Remove(i int) bool {
	if s.At(i) == nil {
		return false
	}
	s.Entities = slices.Delete(s.Entities, i, i+1)
	if last := s.Last(); last != nil {
		last.open()
	}
	return true
}

// GrowToFit raises the surface height to y if y lies below it.
func (s *Stack) GrowToFit(y float64) {
	if y > s.Height {
		s.Height = y
	}
}

// ShrinkToContentMax sets the surface height to the lowest visible bottom.
// An empty stack keeps its current height.
func (s *Stack) ShrinkToContentMax() {
	if len(s.Entities) == 0 {
		return
	}
	bottoms := make([]float64, len(s.Entities))
	for i, e := range s.Entities {
		bottoms[i] = e.VisibleBottom()
	}
	s.Height = floats.Max(bottoms)
}

// EnforceTail fixes every entity except the last. The last entity keeps its
// fixed flag and gets the matching opacity.
func (s *Stack) EnforceTail() {
	n := len(s.Entities)
	for i, e := range s.Entities {
		if i < n-1 || e.Fixed {
			e.fix()
			continue
		}
		e.Opacity = OpacityActive
	}
}

// AllFixed reports whether no entity is editable. An empty stack counts as
// fixed.
func (s *Stack) AllFixed() bool {
	for _, e := range s.Entities {
		if !e.Fixed {
			return false
		}
	}
	return true
}

// Editable returns the index of the editable entity, or -1.
func (s *Stack) Editable() int {
	if last := s.Last(); last != nil && !last.Fixed {
		return len(s.Entities) - 1
	}
	return -1
}
