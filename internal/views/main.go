package views

import (
	"image"

	"papercut/internal/models"
	"papercut/internal/views/components"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
)

// MainView is the posterizer window: panes on top, band controls on the side.
type MainView struct {
	window        fyne.Window
	mainContainer *fyne.Container
	toolbar       *components.Toolbar
	controls      *components.BandControls
	panes         *components.PaneGrid
	statusBar     *components.StatusBar

	// Event handlers - connected to controller
	saveHandler       func()
	quitHandler       func()
	loadSchemeHandler func()
	saveSchemeHandler func()
}

// Layout configures how the window is built.
type Layout struct {
	BandCount  int
	Vertical   bool
	PaneWidth  int
	PaneHeight int
}

func NewMainView(window fyne.Window, layout Layout) *MainView {
	view := &MainView{
		window: window,
	}

	view.initializeComponents(layout)
	view.buildLayout()
	view.setupEventHandlers()

	return view
}

func (mv *MainView) initializeComponents(layout Layout) {
	mv.toolbar = components.NewToolbar()
	mv.controls = components.NewBandControls(layout.BandCount)
	mv.panes = components.NewPaneGrid(layout.Vertical, layout.PaneWidth, layout.PaneHeight)
	mv.statusBar = components.NewStatusBar()
}

func (mv *MainView) buildLayout() {
	controls := container.NewVScroll(mv.controls.GetContainer())
	controls.SetMinSize(fyne.NewSize(320, 0))

	mv.mainContainer = container.NewBorder(
		mv.toolbar.GetContainer(),
		mv.statusBar.GetContainer(),
		nil,
		controls,
		mv.panes.GetContainer(),
	)

	mv.window.SetContent(mv.mainContainer)
}

func (mv *MainView) setupEventHandlers() {
	mv.toolbar.SetSaveHandler(func() { call(mv.saveHandler) })
	mv.toolbar.SetQuitHandler(func() { call(mv.quitHandler) })
	mv.toolbar.SetLoadSchemeHandler(func() { call(mv.loadSchemeHandler) })
	mv.toolbar.SetSaveSchemeHandler(func() { call(mv.saveSchemeHandler) })

	mv.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		if ev.Name == fyne.KeyEscape {
			call(mv.quitHandler)
		}
	})
	mv.window.Canvas().SetOnTypedRune(func(r rune) {
		if r == 's' {
			call(mv.saveHandler)
		}
	})
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

// Event handler setters - called by controller

func (mv *MainView) SetSaveHandler(handler func()) { mv.saveHandler = handler }
func (mv *MainView) SetQuitHandler(handler func()) { mv.quitHandler = handler }
func (mv *MainView) SetLoadSchemeHandler(handler func()) { mv.loadSchemeHandler = handler }
func (mv *MainView) SetSaveSchemeHandler(handler func()) { mv.saveSchemeHandler = handler }

// SetControlsChangedHandler registers the per-frame callback for slider movement.
func (mv *MainView) SetControlsChangedHandler(handler func()) {
	mv.controls.SetChangeHandler(handler)
}

// UI update methods - called by controller on the UI goroutine

func (mv *MainView) Breakpoints() []int { return mv.controls.Breakpoints() }
func (mv *MainView) Colors() models.ColorAssignment { return mv.controls.Colors() }
func (mv *MainView) SetBreakpoints(values []int) { mv.controls.SetBreakpoints(values) }
func (mv *MainView) SetColors(colors models.ColorAssignment) { mv.controls.SetColors(colors) }
func (mv *MainView) ShowBands(bands []models.Band) { mv.controls.ShowBands(bands) }
func (mv *MainView) ShowPane(name string, img image.Image) { mv.panes.SetPane(name, img) }
func (mv *MainView) SetStatus(status string) { mv.statusBar.SetStatus(status) }
func (mv *MainView) SetCoverage(shares []float64) { mv.statusBar.SetCoverage(shares) }
func (mv *MainView) SetImageInfo(w, h, channels int, format string) { mv.statusBar.SetImageInfo(w, h, channels, format) }

func (mv *MainView) ShowError(title string, err error) {
	dialog.ShowError(err, mv.window)
	mv.statusBar.SetStatus(title)
}

// ShowImageOpenDialog asks for a photo, offering only the supported extensions.
func (mv *MainView) ShowImageOpenDialog(extensions []string, callback func(fyne.URIReadCloser, error)) {
	d := dialog.NewFileOpen(callback, mv.window)
	d.SetFilter(storage.NewExtensionFileFilter(extensions))
	d.Show()
}

func (mv *MainView) Close() {
	mv.window.Close()
}
