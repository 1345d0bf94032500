// Package canvas provides the zoomable stacking surface widget.
package canvas

import (
	"image"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	xdraw "golang.org/x/image/draw"

	"image-stacker/internal/pointer"
)

const (
	minZoom  = 0.1
	maxZoom  = 10.0
	zoomStep = 1.25
)

// Handler receives pointer input in surface coordinates.
type Handler interface {
	PointerDown(x, y float64) bool
	PointerMove(x, y float64) bool
	PointerUp()
	PointerLeave()
	Probe(x, y float64) pointer.State
}

// StackCanvas shows the rendered surface inside a scroll container and
// forwards pointer input to a Handler.
type StackCanvas struct {
	handler Handler

	mu    sync.Mutex
	frame *image.RGBA

	zoom    float64
	raster  *canvas.Raster
	content *surfaceContent
	scroll  *container.Scroll
	wrapper *zoomScroll

	onZoomChange func(zoom float64)
}

// NewStackCanvas creates a canvas that reports pointer input to h.
func NewStackCanvas(h Handler) *StackCanvas {
	sc := &StackCanvas{handler: h, zoom: 1.0}

	sc.raster = canvas.NewRaster(sc.draw)
	sc.raster.ScaleMode = canvas.ImageScalePixels

	sc.content = newSurfaceContent(sc)
	sc.scroll = container.NewScroll(sc.content)
	sc.wrapper = newZoomScroll(sc.scroll, sc)

	return sc
}

// Container returns the widget to place in a layout.
func (sc *StackCanvas) Container() fyne.CanvasObject {
	return sc.wrapper
}

// SetFrame replaces the displayed surface.
func (sc *StackCanvas) SetFrame(img *image.RGBA) {
	sc.mu.Lock()
	sc.frame = img
	sc.mu.Unlock()
	sc.updateContentSize()
	sc.raster.Refresh()
}

// Frame returns the displayed surface.
func (sc *StackCanvas) Frame() *image.RGBA {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.frame
}

// Zoom returns the current zoom factor.
func (sc *StackCanvas) Zoom() float64 {
	return sc.zoom
}

// SetZoom sets the zoom factor, clamped to [0.1, 10].
func (sc *StackCanvas) SetZoom(z float64) {
	if z < minZoom {
		z = minZoom
	}
	if z > maxZoom {
		z = maxZoom
	}
	if z == sc.zoom {
		return
	}
	sc.zoom = z
	sc.updateContentSize()
	sc.raster.Refresh()
	if sc.onZoomChange != nil {
		sc.onZoomChange(z)
	}
}

// ZoomIn increases zoom by one step.
func (sc *StackCanvas) ZoomIn() {
	sc.SetZoom(sc.zoom * zoomStep)
}

// ZoomOut decreases zoom by one step.
func (sc *StackCanvas) ZoomOut() {
	sc.SetZoom(sc.zoom / zoomStep)
}

// FitWidth picks the zoom that shows the full surface width in the viewport.
func (sc *StackCanvas) FitWidth() {
	frame := sc.Frame()
	if frame == nil || frame.Bounds().Dx() == 0 {
		return
	}
	view := sc.scroll.Size().Width
	if view <= 0 {
		return
	}
	sc.SetZoom(float64(view) / float64(frame.Bounds().Dx()))
}

// OnZoomChange registers a callback for zoom changes.
func (sc *StackCanvas) OnZoomChange(fn func(zoom float64)) {
	sc.onZoomChange = fn
}

// toSurface converts a position on the content widget to surface units.
func (sc *StackCanvas) toSurface(p fyne.Position) (float64, float64) {
	return float64(p.X) / sc.zoom, float64(p.Y) / sc.zoom
}

func (sc *StackCanvas) updateContentSize() {
	frame := sc.Frame()
	var size fyne.Size
	if frame != nil {
		b := frame.Bounds()
		size = fyne.NewSize(float32(float64(b.Dx())*sc.zoom), float32(float64(b.Dy())*sc.zoom))
	}
	sc.content.setSize(size)
	sc.scroll.Refresh()
}

// draw produces the raster at the requested pixel size.
func (sc *StackCanvas) draw(w, h int) image.Image {
	frame := sc.Frame()
	if frame == nil || w <= 0 || h <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if frame.Bounds().Dx() == w && frame.Bounds().Dy() == h {
		return frame
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), frame, frame.Bounds(), xdraw.Src, nil)
	return dst
}

// zoomScroll wraps the scroll container. Scrolling with the shortcut
// modifier held zooms, plain scrolling pans.
type zoomScroll struct {
	widget.BaseWidget
	scroll *container.Scroll
	sc     *StackCanvas
}

func newZoomScroll(scroll *container.Scroll, sc *StackCanvas) *zoomScroll {
	z := &zoomScroll{scroll: scroll, sc: sc}
	z.ExtendBaseWidget(z)
	return z
}

func (z *zoomScroll) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(z.scroll)
}

// Scrolled implements fyne.Scrollable.
func (z *zoomScroll) Scrolled(ev *fyne.ScrollEvent) {
	if !zoomModifierHeld() {
		z.scroll.Scrolled(ev)
		return
	}
	if ev.Scrolled.DY > 0 {
		z.sc.ZoomIn()
	} else if ev.Scrolled.DY < 0 {
		z.sc.ZoomOut()
	}
}

func zoomModifierHeld() bool {
	app := fyne.CurrentApp()
	if app == nil {
		return false
	}
	d, ok := app.Driver().(desktop.Driver)
	if !ok {
		return false
	}
	return d.CurrentKeyModifiers()&fyne.KeyModifierShortcutDefault != 0
}

// surfaceContent is the scrolled widget holding the raster. It receives
// pointer events in its own coordinate space, so scroll offsets are
// already accounted for.
type surfaceContent struct {
	widget.BaseWidget
	sc      *StackCanvas
	minSize fyne.Size

	pressed   bool
	lastHover fyne.Position
}

var (
	_ desktop.Mouseable  = (*surfaceContent)(nil)
	_ desktop.Hoverable  = (*surfaceContent)(nil)
	_ desktop.Cursorable = (*surfaceContent)(nil)
	_ fyne.Draggable     = (*surfaceContent)(nil)
	_ fyne.Scrollable    = (*surfaceContent)(nil)
)

func newSurfaceContent(sc *StackCanvas) *surfaceContent {
	c := &surfaceContent{sc: sc}
	c.ExtendBaseWidget(c)
	return c
}

func (c *surfaceContent) setSize(s fyne.Size) {
	c.minSize = s
	c.Resize(s)
}

func (c *surfaceContent) MinSize() fyne.Size {
	return c.minSize
}

func (c *surfaceContent) CreateRenderer() fyne.WidgetRenderer {
	return &surfaceRenderer{content: c}
}

// MouseDown implements desktop.Mouseable.
func (c *surfaceContent) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.pressed = true
	c.sc.handler.PointerDown(c.sc.toSurface(ev.Position))
}

// MouseUp implements desktop.Mouseable.
func (c *surfaceContent) MouseUp(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	c.release()
}

// Dragged implements fyne.Draggable. Moves are absolute, so a position
// that also arrives through MouseMoved does not double the edit.
func (c *surfaceContent) Dragged(ev *fyne.DragEvent) {
	c.sc.handler.PointerMove(c.sc.toSurface(ev.Position))
}

// DragEnd implements fyne.Draggable.
func (c *surfaceContent) DragEnd() {
	c.release()
}

// Scrolled implements fyne.Scrollable. The event would otherwise stop at
// the inner scroll container and never reach the zoom wrapper.
func (c *surfaceContent) Scrolled(ev *fyne.ScrollEvent) {
	c.sc.wrapper.Scrolled(ev)
}

// MouseIn implements desktop.Hoverable.
func (c *surfaceContent) MouseIn(*desktop.MouseEvent) {}

// MouseMoved implements desktop.Hoverable.
func (c *surfaceContent) MouseMoved(ev *desktop.MouseEvent) {
	if c.pressed {
		c.sc.handler.PointerMove(c.sc.toSurface(ev.Position))
	}
	c.lastHover = ev.Position
}

// MouseOut implements desktop.Hoverable.
func (c *surfaceContent) MouseOut() {
	c.pressed = false
	c.sc.handler.PointerLeave()
}

// Cursor implements desktop.Cursorable.
func (c *surfaceContent) Cursor() desktop.Cursor {
	switch c.sc.handler.Probe(c.sc.toSurface(c.lastHover)).(type) {
	case pointer.Trimming:
		return desktop.VResizeCursor
	case pointer.Dragging:
		return desktop.PointerCursor
	default:
		return desktop.DefaultCursor
	}
}

func (c *surfaceContent) release() {
	if !c.pressed {
		return
	}
	c.pressed = false
	c.sc.handler.PointerUp()
}

type surfaceRenderer struct {
	content *surfaceContent
}

func (r *surfaceRenderer) Layout(size fyne.Size) {
	r.content.sc.raster.Resize(size)
	r.content.sc.raster.Move(fyne.NewPos(0, 0))
}

func (r *surfaceRenderer) MinSize() fyne.Size {
	return r.content.minSize
}

func (r *surfaceRenderer) Refresh() {
	r.content.sc.raster.Refresh()
}

func (r *surfaceRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.content.sc.raster}
}

func (r *surfaceRenderer) Destroy() {}
