package components

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

type pane struct {
	box   *fyne.Container
	image *canvas.Image
}

// PaneGrid stacks named image panes horizontally or vertically, in the order they first appear.
type PaneGrid struct {
	container *container.Scroll
	stack     *fyne.Container
	panes     map[string]*pane
	order     []string
	size      fyne.Size
}

func NewPaneGrid(vertical bool, paneWidth, paneHeight int) *PaneGrid {
	pg := &PaneGrid{
		panes: make(map[string]*pane),
		size:  fyne.NewSize(float32(paneWidth), float32(paneHeight)),
	}

	if vertical {
		pg.stack = container.NewVBox()
		pg.container = container.NewVScroll(pg.stack)
	} else {
		pg.stack = container.NewHBox()
		pg.container = container.NewHScroll(pg.stack)
	}
	return pg
}

// SetPane shows img under name, creating the pane on first use.
func (pg *PaneGrid) SetPane(name string, img image.Image) {
	p, ok := pg.panes[name]
	if !ok {
		p = pg.newPane(name, img)
		pg.panes[name] = p
		pg.order = append(pg.order, name)
		pg.stack.Add(p.box)
		return
	}

	p.image.Image = img
	p.image.Refresh()
}

func (pg *PaneGrid) newPane(name string, img image.Image) *pane {
	ci := canvas.NewImageFromImage(img)
	ci.FillMode = canvas.ImageFillContain
	ci.ScaleMode = canvas.ImageScaleSmooth
	ci.SetMinSize(pg.size)

	title := widget.NewRichTextFromMarkdown("**" + name + "**")
	return &pane{
		box:   container.NewBorder(title, nil, nil, nil, ci),
		image: ci,
	}
}

// Names lists the panes in display order.
func (pg *PaneGrid) Names() []string {
	return append([]string(nil), pg.order...)
}

func (pg *PaneGrid) GetContainer() *container.Scroll {
	return pg.container
}
