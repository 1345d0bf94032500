// Package app provides application lifecycle management, configuration, and events.
package app

import (
	"context"
	"image"
	"io"
	"sync"

	"go.uber.org/zap"

	"image-stacker/internal/config"
	"image-stacker/internal/export"
	imgsrc "image-stacker/internal/image"
	"image-stacker/internal/intake"
	"image-stacker/internal/pointer"
	"image-stacker/internal/render"
	"image-stacker/internal/stack"
)

// State owns the image stack and serializes every edit. Pointer events,
// control commands and intake deliveries may arrive on any goroutine.
type State struct {
	mu sync.Mutex

	log        *zap.Logger
	cfg        config.Config
	stack      *stack.Stack
	controller *pointer.Controller
	compositor *render.Compositor
	exporter   *export.Exporter
	intake     *intake.Queue

	frame *image.RGBA
	dirty bool
	gen   uint64 // bumped by every redraw

	// pmu orders publication; published is the newest generation sent.
	pmu       sync.Mutex
	published uint64

	lmu       sync.RWMutex
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	// EventRendered carries the new surface frame (*image.RGBA).
	EventRendered EventType = iota
	// EventControlsChanged carries the rebuilt control rows ([]ImageControl).
	EventControlsChanged
	// EventExportAvailability carries whether export is enabled (bool).
	EventExportAvailability
	// EventImageAdded carries the name of the appended image (string).
	EventImageAdded
	// EventExportRequested is emitted by the export command (nil).
	EventExportRequested
	// EventError carries a failure the user should see (error).
	EventError
)

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates the application state from cfg.
func NewState(cfg config.Config, log *zap.Logger) (*State, error) {
	if log == nil {
		log = zap.NewNop()
	}
	comp, err := render.NewCompositor(cfg.BackgroundColor(), cfg.HandleColor())
	if err != nil {
		return nil, err
	}

	s := &State{
		log:        log,
		cfg:        cfg,
		stack:      stack.New(cfg.Surface.MaxWidth, cfg.Surface.InitialHeight),
		compositor: comp,
		exporter:   export.New(log, comp, cfg.Export.Dir),
		listeners:  make(map[EventType][]EventListener),
	}
	s.controller = pointer.NewController(s.stack)
	s.controller.OnChange = func() { s.dirty = true }
	s.intake = intake.New(log, s.deliver)
	s.frame = comp.Render(s.stack)
	return s, nil
}

// Config returns the configuration the state was created with.
func (s *State) Config() config.Config {
	return s.cfg
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.lmu.Lock()
	defer s.lmu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.lmu.RLock()
	listeners := s.listeners[event]
	s.lmu.RUnlock()

	for _, listener := range listeners {
		listener(data)
	}
}

// update is the outcome of one edit, published once the lock is released.
type update struct {
	gen      uint64
	frame    *image.RGBA
	controls []ImageControl
	ready    bool
}

// redraw renders the stack and snapshots what listeners need. Caller holds mu.
func (s *State) redraw() update {
	s.frame = s.compositor.Render(s.stack)
	s.dirty = false
	s.gen++
	return update{
		gen:      s.gen,
		frame:    s.frame,
		controls: s.controls(),
		ready:    export.Ready(s.stack),
	}
}

// publish sends u to listeners unless a newer redraw has already been
// published. Listeners must not edit the state.
func (s *State) publish(u update) {
	s.pmu.Lock()
	defer s.pmu.Unlock()
	if u.gen <= s.published {
		return
	}
	s.published = u.gen
	s.Emit(EventRendered, u.frame)
	s.Emit(EventControlsChanged, u.controls)
	s.Emit(EventExportAvailability, u.ready)
}

// Refresh re-renders and republishes the current state.
func (s *State) Refresh() {
	s.mu.Lock()
	u := s.redraw()
	s.mu.Unlock()
	s.publish(u)
}

// Frame returns the most recently rendered surface.
func (s *State) Frame() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frame
}

// Len returns the number of stacked images.
func (s *State) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Len()
}

// SurfaceSize returns the current surface dimensions.
func (s *State) SurfaceSize() (width, height float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stack.Width, s.stack.Height
}

// ExportReady reports whether every image is fixed.
func (s *State) ExportReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.Ready(s.stack)
}

// AddImage appends a decoded image to the bottom of the stack.
func (s *State) AddImage(src *imgsrc.Source) {
	if src == nil || src.Image == nil {
		return
	}
	s.mu.Lock()
	e := s.stack.Add(src.Name, src.Image)
	name := e.Name
	fields := []zap.Field{zap.String("name", name), zap.Stringer("id", e.ID),
		zap.Float64("y", e.Y), zap.Float64("width", e.Width), zap.Float64("height", e.Height)}
	u := s.redraw()
	s.mu.Unlock()

	s.log.Info("Image added", fields...)
	s.Emit(EventImageAdded, name)
	s.publish(u)
}

// deliver is the intake callback; images arrive in drop order.
func (s *State) deliver(src *imgsrc.Source) {
	s.AddImage(src)
}

// AddSources decodes sources in the background and appends them in the
// given order. Decode failures are emitted as EventError once the batch
// settles. The returned batch can be waited on.
func (s *State) AddSources(ctx context.Context, sources []intake.Source) *intake.Batch {
	b := s.intake.Submit(ctx, sources)
	go func() {
		if err := b.Wait(); err != nil {
			s.Emit(EventError, err)
		}
	}()
	return b
}

// AddFiles is AddSources for paths on disk.
func (s *State) AddFiles(ctx context.Context, paths ...string) *intake.Batch {
	sources := make([]intake.Source, len(paths))
	for i, p := range paths {
		sources[i] = intake.FileSource(p)
	}
	return s.AddSources(ctx, sources)
}

// PointerDown starts a drag or trim gesture at surface coordinates.
func (s *State) PointerDown(x, y float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	started := s.controller.Down(x, y)
	if started {
		s.log.Debug("Gesture started", zap.Any("state", s.controller.State()))
	}
	return started
}

// PointerMove continues the current gesture and redraws if anything moved.
func (s *State) PointerMove(x, y float64) bool {
	s.mu.Lock()
	s.controller.Move(x, y)
	if !s.dirty {
		s.mu.Unlock()
		return false
	}
	u := s.redraw()
	s.mu.Unlock()
	s.publish(u)
	return true
}

// PointerUp ends the current gesture.
func (s *State) PointerUp() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Up()
}

// PointerLeave ends the current gesture when the pointer leaves the surface.
func (s *State) PointerLeave() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller.Leave()
}

// Probe reports what a press at (x, y) would grab.
func (s *State) Probe(x, y float64) pointer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Probe(x, y)
}

// Gesture returns the current pointer state.
func (s *State) Gesture() pointer.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.State()
}

// edit runs fn under the lock and redraws if it reports a change.
func (s *State) edit(op string, index int, fn func() bool) bool {
	s.mu.Lock()
	if !fn() {
		s.mu.Unlock()
		s.log.Debug("Ignored command", zap.String("op", op), zap.Int("index", index))
		return false
	}
	u := s.redraw()
	s.mu.Unlock()

	s.log.Info("Command applied", zap.String("op", op), zap.Int("index", index))
	s.publish(u)
	return true
}

// Fix makes image i immutable and shrinks the surface to its content.
func (s *State) Fix(i int) bool {
	return s.edit("fix", i, func() bool { return s.stack.Fix(i) })
}

// Unfix re-opens the last image for editing.
func (s *State) Unfix(i int) bool {
	return s.edit("unfix", i, func() bool { return s.stack.Unfix(i) })
}

// Remove deletes image i. The new last image becomes editable.
func (s *State) Remove(i int) bool {
	return s.edit("remove", i, func() bool { return s.stack.Remove(i) })
}

// Export writes the surface as PNG to w.
func (s *State) Export(w io.Writer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exporter.Write(w, s.stack)
}

// ExportFile saves the surface as PNG to path and returns the path written.
func (s *State) ExportFile(path string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exporter.Save(path, s.stack)
}

// SuggestedFileName returns a default export file name.
func (s *State) SuggestedFileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return export.FileName(s.stack)
}

// Wait blocks until every submitted file has been added or dropped.
func (s *State) Wait() {
	s.intake.Wait()
}
