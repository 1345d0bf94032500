// Package mainwindow provides the main application window.
package mainwindow

import (
	"context"
	"fmt"
	"image"
	"io"
	"sort"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"image-stacker/internal/app"
	imgsrc "image-stacker/internal/image"
	"image-stacker/internal/intake"
	"image-stacker/internal/version"
	"image-stacker/ui/canvas"
	"image-stacker/ui/panels"
	"image-stacker/ui/prefs"
)

const title = "Image Stacker"

// MainWindow is the primary application window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	state *app.State
	prefs *prefs.Prefs
	log   *zap.Logger

	canvas      *canvas.StackCanvas
	imagesPanel *panels.ImagesPanel
	statusBar   *widget.Label
	zoomLabel   *widget.Label

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new main window.
func New(fyneApp fyne.App, state *app.State, log *zap.Logger) *MainWindow {
	win := fyneApp.NewWindow(title)
	ctx, cancel := context.WithCancel(context.Background())

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		state:  state,
		prefs:  prefs.New(fyneApp.Preferences()),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()

	win.Resize(mw.prefs.WindowSize())
	win.SetOnDropped(mw.onDropped)
	win.SetCloseIntercept(mw.onClose)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewStackCanvas(mw.state)
	mw.canvas.SetFrame(mw.state.Frame())

	mw.imagesPanel = panels.NewImagesPanel(mw.state)
	mw.statusBar = widget.NewLabel("Ready")
	mw.zoomLabel = widget.NewLabel("")

	mw.canvas.OnZoomChange(func(z float64) {
		mw.prefs.SetZoom(z)
		mw.updateZoomLabel()
	})
	mw.canvas.SetZoom(mw.prefs.Zoom())
	mw.updateZoomLabel()

	canvasArea := container.NewBorder(
		mw.createToolbar(),
		nil,
		nil,
		nil,
		mw.canvas.Container(),
	)

	split := container.NewHSplit(mw.imagesPanel.Container(), canvasArea)
	split.SetOffset(0.25)

	content := container.NewBorder(
		nil,
		container.NewPadded(mw.statusBar),
		nil,
		nil,
		split,
	)
	mw.SetContent(content)
}

// createToolbar creates the toolbar with zoom controls.
func (mw *MainWindow) createToolbar() fyne.CanvasObject {
	return container.NewHBox(
		widget.NewButton("Add Images…", mw.onAddImages),
		widget.NewSeparator(),
		widget.NewLabel("Zoom:"),
		widget.NewButton("-", mw.canvas.ZoomOut),
		widget.NewButton("+", mw.canvas.ZoomIn),
		widget.NewButton("Fit", mw.canvas.FitWidth),
		widget.NewButton("1:1", func() { mw.canvas.SetZoom(1.0) }),
		mw.zoomLabel,
	)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Add Images…", mw.onAddImages),
		fyne.NewMenuItem("Add Folder…", mw.onAddFolder),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export…", func() { mw.state.ExportCommand().Activate(0) }),
	)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", mw.canvas.ZoomIn),
		fyne.NewMenuItem("Zoom Out", mw.canvas.ZoomOut),
		fyne.NewMenuItem("Fit Width", mw.canvas.FitWidth),
		fyne.NewMenuItem("Actual Size", func() { mw.canvas.SetZoom(1.0) }),
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for application events.
func (mw *MainWindow) setupEventHandlers() {
	mw.state.On(app.EventRendered, func(data interface{}) {
		if frame, ok := data.(*image.RGBA); ok {
			mw.canvas.SetFrame(frame)
		}
	})

	mw.state.On(app.EventImageAdded, func(data interface{}) {
		if name, ok := data.(string); ok {
			mw.updateStatus(fmt.Sprintf("Added %s (%d images)", name, mw.state.Len()))
		}
	})

	mw.state.On(app.EventExportRequested, func(interface{}) {
		mw.onExport()
	})

	mw.state.On(app.EventError, func(data interface{}) {
		if err, ok := data.(error); ok {
			mw.showError(err)
		}
	})
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) updateZoomLabel() {
	mw.zoomLabel.SetText(fmt.Sprintf("%.0f%%", mw.canvas.Zoom()*100))
}

func (mw *MainWindow) showError(err error) {
	mw.log.Warn("Reporting error", zap.Error(err))
	mw.updateStatus(err.Error())
	dialog.ShowError(err, mw.Window)
}

// AddFiles queues files from disk, in the given order.
func (mw *MainWindow) AddFiles(paths ...string) *intake.Batch {
	if len(paths) > 0 {
		mw.prefs.RememberFile(paths[len(paths)-1])
	}
	return mw.state.AddFiles(mw.ctx, paths...)
}

// addURIs queues URIs in the given order.
func (mw *MainWindow) addURIs(uris []fyne.URI) *intake.Batch {
	sources := make([]intake.Source, 0, len(uris))
	for _, u := range uris {
		sources = append(sources, uriSource(u))
	}
	if len(uris) > 0 && uris[len(uris)-1].Scheme() == "file" {
		mw.prefs.RememberFile(uris[len(uris)-1].Path())
	}
	mw.updateStatus(fmt.Sprintf("Loading %d file(s)…", len(sources)))
	return mw.state.AddSources(mw.ctx, sources)
}

// uriSource reads u through the Fyne storage layer.
func uriSource(u fyne.URI) intake.Source {
	return intake.Source{
		Name: u.Name(),
		Open: func() (io.ReadCloser, error) { return storage.Reader(u) },
	}
}

// onDropped handles files dropped on the window. Folders are skipped.
func (mw *MainWindow) onDropped(_ fyne.Position, uris []fyne.URI) {
	files := make([]fyne.URI, 0, len(uris))
	for _, u := range uris {
		if ok, err := storage.CanList(u); err == nil && ok {
			mw.log.Debug("Skipping dropped folder", zap.String("uri", u.String()))
			continue
		}
		files = append(files, u)
	}
	mw.addURIs(files)
}

// Menu action handlers

func (mw *MainWindow) onAddImages() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if reader == nil {
			return
		}
		reader.Close()
		mw.addURIs([]fyne.URI{reader.URI()})
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(imgsrc.SupportedFormats()))
	if loc := mw.prefs.LastDirURI(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onAddFolder() {
	fd := dialog.NewFolderOpen(func(dir fyne.ListableURI, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if dir == nil {
			return
		}
		uris, err := folderImages(dir)
		if err != nil {
			mw.showError(err)
			return
		}
		if len(uris) == 0 {
			mw.updateStatus("No images in " + dir.Name())
			return
		}
		mw.addURIs(uris)
	}, mw.Window)
	if loc := mw.prefs.LastDirURI(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// folderImages lists the image files in dir in natural name order.
func folderImages(dir fyne.ListableURI) ([]fyne.URI, error) {
	entries, err := dir.List()
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir.Name(), err)
	}
	byName := make(map[string]fyne.URI, len(entries))
	names := make([]string, 0, len(entries))
	for _, u := range entries {
		if !imgsrc.IsSupportedFormat(u.Name()) {
			continue
		}
		byName[u.Name()] = u
		names = append(names, u.Name())
	}
	sort.Sort(natural.StringSlice(names))

	uris := make([]fyne.URI, len(names))
	for i, n := range names {
		uris[i] = byName[n]
	}
	return uris, nil
}

func (mw *MainWindow) onExport() {
	fd := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			mw.showError(err)
			return
		}
		if writer == nil {
			return
		}
		mw.exportTo(writer)
	}, mw.Window)
	fd.SetFileName(mw.state.SuggestedFileName())
	fd.SetFilter(storage.NewExtensionFileFilter([]string{".png"}))
	if loc := mw.prefs.LastDirURI(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

// exportTo writes the PNG to writer and closes it.
func (mw *MainWindow) exportTo(writer fyne.URIWriteCloser) {
	err := mw.state.Export(writer)
	err = multierr.Append(err, writer.Close())
	if err != nil {
		mw.showError(fmt.Errorf("export failed: %w", err))
		return
	}
	if writer.URI().Scheme() == "file" {
		mw.prefs.RememberFile(writer.URI().Path())
	}
	mw.updateStatus("Exported " + writer.URI().Name())
}

func (mw *MainWindow) onClose() {
	mw.prefs.SetWindowSize(mw.Canvas().Size())
	mw.cancel()
	mw.Close()
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+title,
		fmt.Sprintf("%s v%s\n\n"+
			"Stack images vertically, trim them and export one PNG.\n\n"+
			"Built: %s\n"+
			"Commit: %s",
			title, version.Version, version.BuildTime, version.GitCommit),
		mw.Window)
}
