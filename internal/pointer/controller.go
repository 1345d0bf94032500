// Package pointer turns raw pointer events on the surface into drag and trim
// edits of the editable entity.
package pointer

import (
	"image-stacker/internal/stack"
	"image-stacker/pkg/geometry"
)

// HandleZone is the distance from an edge, in surface units, within which a
// press grabs the trim handle instead of the image.
const HandleZone = 20

// Handle identifies which edge of an entity is being trimmed.
type Handle int

const (
	HandleTop Handle = iota
	HandleBottom
)

func (h Handle) String() string {
	switch h {
	case HandleTop:
		return "top"
	case HandleBottom:
		return "bottom"
	default:
		return "unknown"
	}
}

// State is the interaction state: one of Idle, Dragging or Trimming.
type State interface {
	isState()
}

// Idle means no gesture is in progress.
type Idle struct{}

// Dragging moves entity Index vertically.
type Dragging struct {
	Index int
}

// Trimming moves one trim edge of entity Index.
type Trimming struct {
	Index  int
	Handle Handle
}

func (Idle) isState()     {}
func (Dragging) isState() {}
func (Trimming) isState() {}

// Controller is the pointer state machine. It mutates the stack it was
// created with and calls OnChange after every edit.
type Controller struct {
	stack *stack.Stack
	state State
	refY  float64

	// OnChange is called after each mutation so the owner can redraw.
	OnChange func()
}

// NewController creates an idle controller operating on s.
func NewController(s *stack.Stack) *Controller {
	return &Controller{stack: s, state: Idle{}}
}

// State returns the current interaction state.
func (c *Controller) State() State {
	return c.state
}

// Probe reports the gesture a press at (x, y) would start, without starting
// it. Entities are scanned bottom-up; the scan ends at the first fixed
// entity. Idle means nothing can be grabbed there.
func (c *Controller) Probe(x, y float64) State {
	p := geometry.NewPoint2D(x, y)
	for i := c.stack.Len() - 1; i >= 0; i-- {
		e := c.stack.At(i)
		if e.Fixed {
			break
		}
		switch {
		case geometry.NearLine(y, e.Y, HandleZone):
			return Trimming{Index: i, Handle: HandleTop}
		case geometry.NearLine(y, e.VisibleBottom(), HandleZone):
			return Trimming{Index: i, Handle: HandleBottom}
		case e.Bounds().Contains(p):
			return Dragging{Index: i}
		}
	}
	return Idle{}
}

// Down starts a gesture at surface coordinates (x, y). Returns true if a
// gesture started.
func (c *Controller) Down(x, y float64) bool {
	st := c.Probe(x, y)
	if _, idle := st.(Idle); idle {
		return false
	}
	c.state = st
	c.refY = y
	return true
}

// Move continues the current gesture. Deltas are measured from the previous
// pointer position, not from where the gesture started.
func (c *Controller) Move(x, y float64) bool {
	var e *stack.Entity
	switch st := c.state.(type) {
	case Dragging:
		e = c.target(st.Index)
		if e == nil {
			return false
		}
		e.Y += y - c.refY
		c.stack.GrowToFit(e.Y + e.Height)
	case Trimming:
		e = c.target(st.Index)
		if e == nil {
			return false
		}
		dy := y - c.refY
		if st.Handle == HandleTop {
			stack.SetTrimTop(e, e.TrimTop()+dy)
		} else {
			// Dragging the bottom edge down reveals more of the image.
			stack.SetTrimBottom(e, max(0, e.TrimBottom()-dy))
			c.stack.GrowToFit(e.VisibleBottom())
		}
	default:
		return false
	}
	c.refY = y
	c.changed()
	return true
}

// Up ends any gesture.
func (c *Controller) Up() {
	c.state = Idle{}
}

// Leave ends any gesture when the pointer exits the surface.
func (c *Controller) Leave() {
	c.state = Idle{}
}

// target returns the entity at i, dropping back to Idle if it vanished or
// became fixed mid-gesture.
func (c *Controller) target(i int) *stack.Entity {
	e := c.stack.At(i)
	if e == nil || e.Fixed {
		c.state = Idle{}
		return nil
	}
	return e
}

func (c *Controller) changed() {
	if c.OnChange != nil {
		c.OnChange()
	}
}
