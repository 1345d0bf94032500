// Package export writes the finished surface as a PNG image.
package export

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"image-stacker/internal/render"
	"image-stacker/internal/stack"
)

// ErrNotReady is returned while some image is still editable.
var ErrNotReady = errors.New("every image must be fixed before export")

// DefaultName is used when the stack has nothing to name the file after.
const DefaultName = "stack.png"

// Exporter renders a stack without trim affordances and encodes it.
type Exporter struct {
	log        *zap.Logger
	compositor *render.Compositor

	// Dir is where Save puts files given without a directory.
	Dir string
}

// New creates an exporter drawing with c.
func New(log *zap.Logger, c *render.Compositor, dir string) *Exporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Exporter{
		log:        log.Named("export"),
		compositor: c,
		Dir:        dir,
	}
}

// Ready reports whether s can be exported.
func Ready(s *stack.Stack) bool {
	return s.AllFixed()
}

// Snapshot renders the current surface. Only a fully fixed stack can be
// captured, so the image never contains handles or half transparent layers.
func (e *Exporter) Snapshot(s *stack.Stack) (*image.RGBA, error) {
	if !Ready(s) {
		return nil, ErrNotReady
	}
	return e.compositor.Render(s), nil
}

// Write encodes the surface of s as PNG into w.
func (e *Exporter) Write(w io.Writer, s *stack.Stack) error {
	img, err := e.Snapshot(s)
	if err != nil {
		return err
	}
	if err := imaging.Encode(w, img, imaging.PNG); err != nil {
		return fmt.Errorf("failed to encode PNG: %w", err)
	}
	e.log.Info("Exported surface", zap.Int("images", s.Len()),
		zap.Int("width", img.Bounds().Dx()), zap.Int("height", img.Bounds().Dy()))
	return nil
}

// Save writes the surface to path. A bare file name is placed in Dir and an
// empty path uses FileName. The written path is returned.
func (e *Exporter) Save(path string, s *stack.Stack) (string, error) {
	if !Ready(s) {
		return "", ErrNotReady
	}
	if path == "" {
		path = FileName(s)
	}
	if e.Dir != "" && filepath.Base(path) == path {
		path = filepath.Join(e.Dir, path)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := e.Write(f, s); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("failed to close %s: %w", path, err)
	}
	e.log.Debug("Saved", zap.String("path", path))
	return path, nil
}

// FileName suggests a file name derived from the first image of s.
func FileName(s *stack.Stack) string {
	first := s.At(0)
	if first == nil || first.Name == "" {
		return DefaultName
	}
	base := strings.TrimSuffix(first.Name, filepath.Ext(first.Name))
	name := slug.Make(base)
	if name == "" {
		return DefaultName
	}
	return name + "-stacked.png"
}
