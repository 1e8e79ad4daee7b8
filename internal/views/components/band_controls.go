package components

import (
	"fmt"

	"papercut/internal/models"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// BandControls holds one slider per breakpoint and an R, G, B slider triple per band.
type BandControls struct {
	container   *fyne.Container
	breakpoints []*widget.Slider
	colors      [][3]*widget.Slider
	swatches    []*widget.Label

	changeHandler func()

	// set while values are pushed from code so slider callbacks do not start a frame
	syncing bool
}

func NewBandControls(bandCount int) *BandControls {
	bc := &BandControls{}
	bc.createComponents(bandCount)
	bc.buildLayout()
	return bc
}

func (bc *BandControls) createComponents(bandCount int) {
	initial := models.DefaultBreakpointsFor(bandCount)

	bc.breakpoints = make([]*widget.Slider, bandCount-1)
	for i := range bc.breakpoints {
		bc.breakpoints[i] = bc.newSlider(float64(initial[i]))
	}

	bc.colors = make([][3]*widget.Slider, bandCount)
	bc.swatches = make([]*widget.Label, bandCount)
	for i := range bc.colors {
		for ch := range bc.colors[i] {
			bc.colors[i][ch] = bc.newSlider(0)
		}
		bc.swatches[i] = widget.NewLabel(models.Black.Hex())
	}
}

func (bc *BandControls) newSlider(value float64) *widget.Slider {
	s := widget.NewSlider(models.MinIntensity, models.MaxIntensity)
	s.Step = 1
	s.Value = value
	s.OnChanged = func(float64) {
		if bc.syncing || bc.changeHandler == nil {
			return
		}
		bc.changeHandler()
	}
	return s
}

func (bc *BandControls) buildLayout() {
	breakpointForm := widget.NewForm()
	for i, s := range bc.breakpoints {
		breakpointForm.Append(fmt.Sprintf("b%d", i+1), s)
	}

	bands := container.NewVBox()
	for i, rgb := range bc.colors {
		form := widget.NewForm(
			widget.NewFormItem("R", rgb[0]),
			widget.NewFormItem("G", rgb[1]),
			widget.NewFormItem("B", rgb[2]),
		)
		title := models.Band{Index: i}.Label()
		bands.Add(widget.NewCard(title, "", container.NewBorder(bc.swatches[i], nil, nil, nil, form)))
	}

	bc.container = container.NewVBox(
		widget.NewCard("Breakpoints", "", breakpointForm),
		bands,
	)
}

// SetChangeHandler registers the callback run after any user-driven slider change.
func (bc *BandControls) SetChangeHandler(handler func()) {
	bc.changeHandler = handler
}

// Breakpoints reads the raw breakpoint slider positions.
func (bc *BandControls) Breakpoints() []int {
	out := make([]int, len(bc.breakpoints))
	for i, s := range bc.breakpoints {
		out[i] = int(s.Value)
	}
	return out
}

// Colors reads the colour slider triples.
func (bc *BandControls) Colors() models.ColorAssignment {
	out := models.NewColorAssignment(len(bc.colors))
	for i, rgb := range bc.colors {
		out[i] = models.Color{R: uint8(rgb[0].Value), G: uint8(rgb[1].Value), B: uint8(rgb[2].Value)}
	}
	return out
}

// SetBreakpoints moves the breakpoint sliders without triggering the change handler.
func (bc *BandControls) SetBreakpoints(values []int) {
	bc.syncing = true
	defer func() { bc.syncing = false }()

	for i := 0; i < len(values) && i < len(bc.breakpoints); i++ {
		bc.breakpoints[i].SetValue(float64(values[i]))
	}
}

// SetColors moves the colour sliders without triggering the change handler.
func (bc *BandControls) SetColors(colors models.ColorAssignment) {
	bc.syncing = true
	defer func() { bc.syncing = false }()

	for i := 0; i < len(colors) && i < len(bc.colors); i++ {
		c := colors[i]
		bc.colors[i][0].SetValue(float64(c.R))
		bc.colors[i][1].SetValue(float64(c.G))
		bc.colors[i][2].SetValue(float64(c.B))
		bc.swatches[i].SetText(c.Hex())
	}
}

// ShowBands labels each colour card with its current range and colour.
func (bc *BandControls) ShowBands(bands []models.Band) {
	for _, b := range bands {
		if b.Index >= len(bc.swatches) {
			continue
		}
		text := fmt.Sprintf("%s  %s", b.Color.Hex(), b.Range.Key())
		if b.Empty() {
			text += "  (empty)"
		}
		bc.swatches[b.Index].SetText(text)
	}
}

func (bc *BandControls) GetContainer() *fyne.Container {
	return bc.container
}
