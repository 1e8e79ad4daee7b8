package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Toolbar offers the keyboard actions as buttons plus the colour scheme actions.
type Toolbar struct {
	container        *fyne.Container
	saveButton       *widget.Button
	quitButton       *widget.Button
	loadSchemeButton *widget.Button
	saveSchemeButton *widget.Button

	saveHandler       func()
	quitHandler       func()
	loadSchemeHandler func()
	saveSchemeHandler func()
}

func NewToolbar() *Toolbar {
	t := &Toolbar{}
	t.createComponents()
	t.buildLayout()
	return t
}

func (t *Toolbar) createComponents() {
	t.saveButton = widget.NewButton("Save and close (s)", func() { call(t.saveHandler) })
	t.saveButton.Importance = widget.HighImportance

	t.quitButton = widget.NewButton("Close (Esc)", func() { call(t.quitHandler) })

	t.loadSchemeButton = widget.NewButton("Load scheme", func() { call(t.loadSchemeHandler) })
	t.saveSchemeButton = widget.NewButton("Save scheme", func() { call(t.saveSchemeHandler) })
}

func call(handler func()) {
	if handler != nil {
		handler()
	}
}

func (t *Toolbar) buildLayout() {
	t.container = container.NewHBox(
		t.saveButton,
		t.quitButton,
		widget.NewSeparator(),
		t.loadSchemeButton,
		t.saveSchemeButton,
	)
}

func (t *Toolbar) SetSaveHandler(handler func()) { t.saveHandler = handler }
func (t *Toolbar) SetQuitHandler(handler func()) { t.quitHandler = handler }
func (t *Toolbar) SetLoadSchemeHandler(handler func()) { t.loadSchemeHandler = handler }
func (t *Toolbar) SetSaveSchemeHandler(handler func()) { t.saveSchemeHandler = handler }

func (t *Toolbar) GetContainer() *fyne.Container {
	return t.container
}
