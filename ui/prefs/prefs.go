// Package prefs stores editor preferences in the Fyne preference store.
package prefs

import (
	"path/filepath"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

const (
	keyLastDir      = "lastDirectory"
	keyZoom         = "zoom"
	keyWindowWidth  = "windowWidth"
	keyWindowHeight = "windowHeight"
)

// Default window size when none has been stored.
const (
	DefaultWindowWidth  = 1400
	DefaultWindowHeight = 900
)

// Prefs is a typed view over fyne.Preferences.
type Prefs struct {
	store fyne.Preferences
}

// New wraps the given preference store.
func New(store fyne.Preferences) *Prefs {
	return &Prefs{store: store}
}

// LastDir returns the directory of the last opened or saved file, or "".
func (p *Prefs) LastDir() string {
	return p.store.String(keyLastDir)
}

// LastDirURI returns LastDir as a listable URI, or nil if unset or gone.
func (p *Prefs) LastDirURI() fyne.ListableURI {
	dir := p.LastDir()
	if dir == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(dir))
	if err != nil {
		return nil
	}
	return listable
}

// RememberFile stores the directory containing path.
func (p *Prefs) RememberFile(path string) {
	if path == "" {
		return
	}
	p.store.SetString(keyLastDir, filepath.Dir(path))
}

// Zoom returns the stored canvas zoom, or 1.
func (p *Prefs) Zoom() float64 {
	return p.store.FloatWithFallback(keyZoom, 1.0)
}

// SetZoom stores the canvas zoom.
func (p *Prefs) SetZoom(z float64) {
	p.store.SetFloat(keyZoom, z)
}

// WindowSize returns the stored window size.
func (p *Prefs) WindowSize() fyne.Size {
	w := p.store.FloatWithFallback(keyWindowWidth, DefaultWindowWidth)
	h := p.store.FloatWithFallback(keyWindowHeight, DefaultWindowHeight)
	return fyne.NewSize(float32(w), float32(h))
}

// SetWindowSize stores the window size. Empty sizes are ignored.
func (p *Prefs) SetWindowSize(s fyne.Size) {
	if s.Width <= 0 || s.Height <= 0 {
		return
	}
	p.store.SetFloat(keyWindowWidth, float64(s.Width))
	p.store.SetFloat(keyWindowHeight, float64(s.Height))
}
