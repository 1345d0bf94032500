package app

import (
	"image"

	"github.com/google/uuid"
)

// Command is one button of the controls panel.
type Command struct {
	Label   string
	Enabled bool

	// OnActivate runs the command for the image at index.
	OnActivate func(index int)
}

// Activate runs the command if it is enabled.
func (c Command) Activate(index int) {
	if c.Enabled && c.OnActivate != nil {
		c.OnActivate(index)
	}
}

// ImageControl is the control row of one stacked image.
type ImageControl struct {
	Index    int
	ID       uuid.UUID
	Name     string
	Source   image.Image
	Fixed    bool
	Editable bool

	Fix    Command
	Unfix  Command
	Remove Command
}

// Button labels.
const (
	LabelFix    = "Fix"
	LabelUnfix  = "Unfix"
	LabelRemove = "Remove"
	LabelExport = "Download image"
)

// Controls returns one control row per image, in stacking order.
func (s *State) Controls() []ImageControl {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controls()
}

// controls builds the rows. Caller holds mu.
func (s *State) controls() []ImageControl {
	n := s.stack.Len()
	rows := make([]ImageControl, 0, n)
	for i, e := range s.stack.Entities {
		last := i == n-1
		rows = append(rows, ImageControl{
			Index:    i,
			ID:       e.ID,
			Name:     e.Name,
			Source:   e.Source,
			Fixed:    e.Fixed,
			Editable: last && !e.Fixed,
			Fix: Command{
				Label:      LabelFix,
				Enabled:    !e.Fixed,
				OnActivate: func(i int) { s.Fix(i) },
			},
			Unfix: Command{
				Label:      LabelUnfix,
				Enabled:    last && e.Fixed,
				OnActivate: func(i int) { s.Unfix(i) },
			},
			Remove: Command{
				Label:      LabelRemove,
				Enabled:    true,
				OnActivate: func(i int) { s.Remove(i) },
			},
		})
	}
	return rows
}

// ExportCommand returns the export button. It is enabled once every image
// is fixed and asks the UI for a destination through EventExportRequested.
func (s *State) ExportCommand() Command {
	return Command{
		Label:      LabelExport,
		Enabled:    s.ExportReady(),
		OnActivate: func(int) { s.Emit(EventExportRequested, nil) },
	}
}
