// Package panels provides the side panels of the main window.
package panels

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/google/uuid"

	"image-stacker/internal/app"
	imgsrc "image-stacker/internal/image"
)

const thumbSize = 64

// ImagesPanel lists the stacked images with their Fix, Unfix and Remove
// buttons, and holds the export button.
type ImagesPanel struct {
	state *app.State

	rows      *fyne.Container
	empty     *widget.Label
	count     *widget.Label
	exportBtn *widget.Button
	content   fyne.CanvasObject

	// Thumbnails are keyed by entity ID so rebuilding rows stays cheap.
	thumbs map[uuid.UUID]image.Image

	controls []app.ImageControl
}

// NewImagesPanel creates the panel and subscribes it to state updates.
func NewImagesPanel(state *app.State) *ImagesPanel {
	p := &ImagesPanel{
		state:  state,
		thumbs: make(map[uuid.UUID]image.Image),
	}

	p.empty = widget.NewLabel("Drop images here or use File > Add Images…")
	p.empty.Wrapping = fyne.TextWrapWord
	p.count = widget.NewLabel("")
	p.rows = container.NewVBox()

	export := state.ExportCommand()
	p.exportBtn = widget.NewButton(export.Label, func() {
		p.state.ExportCommand().Activate(0)
	})
	p.exportBtn.Importance = widget.HighImportance

	p.content = container.NewBorder(
		p.count,
		container.NewPadded(p.exportBtn),
		nil, nil,
		container.NewVScroll(container.NewVBox(p.empty, p.rows)),
	)

	state.On(app.EventControlsChanged, func(data interface{}) {
		if rows, ok := data.([]app.ImageControl); ok {
			p.SetControls(rows)
		}
	})
	state.On(app.EventExportAvailability, func(data interface{}) {
		if ready, ok := data.(bool); ok {
			p.setExportEnabled(ready)
		}
	})

	p.SetControls(state.Controls())
	p.setExportEnabled(export.Enabled)
	return p
}

// Container returns the panel widget.
func (p *ImagesPanel) Container() fyne.CanvasObject {
	return p.content
}

// SetControls rebuilds the rows.
func (p *ImagesPanel) SetControls(rows []app.ImageControl) {
	p.controls = rows

	live := make(map[uuid.UUID]bool, len(rows))
	objects := make([]fyne.CanvasObject, 0, len(rows))
	for _, row := range rows {
		live[row.ID] = true
		objects = append(objects, p.buildRow(row))
	}
	for id := range p.thumbs {
		if !live[id] {
			delete(p.thumbs, id)
		}
	}

	p.rows.Objects = objects
	p.rows.Refresh()

	if len(rows) == 0 {
		p.empty.Show()
		p.count.SetText("No images")
	} else {
		p.empty.Hide()
		p.count.SetText(fmt.Sprintf("%d image(s)", len(rows)))
	}
}

func (p *ImagesPanel) buildRow(row app.ImageControl) fyne.CanvasObject {
	thumb := canvas.NewImageFromImage(p.thumbnail(row))
	thumb.FillMode = canvas.ImageFillContain
	thumb.SetMinSize(fyne.NewSize(thumbSize, thumbSize))

	name := widget.NewLabel(row.Name)
	name.Truncation = fyne.TextTruncateEllipsis

	status := "fixed"
	if !row.Fixed {
		status = "editing"
	}
	info := container.NewVBox(name, widget.NewLabel(status))

	buttons := container.NewHBox(
		commandButton(row.Fix, row.Index),
		commandButton(row.Unfix, row.Index),
		commandButton(row.Remove, row.Index),
	)

	return container.NewBorder(nil, buttons, thumb, nil, info)
}

func (p *ImagesPanel) thumbnail(row app.ImageControl) image.Image {
	if t, ok := p.thumbs[row.ID]; ok {
		return t
	}
	t := imgsrc.Thumbnail(row.Source, thumbSize)
	if t == nil {
		t = image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	p.thumbs[row.ID] = t
	return t
}

func (p *ImagesPanel) setExportEnabled(ready bool) {
	if ready {
		p.exportBtn.Enable()
	} else {
		p.exportBtn.Disable()
	}
}

// commandButton makes a button that runs cmd for the image at index.
func commandButton(cmd app.Command, index int) *widget.Button {
	btn := widget.NewButton(cmd.Label, func() { cmd.Activate(index) })
	if !cmd.Enabled {
		btn.Disable()
	}
	return btn
}
