package components

import (
	"fmt"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusBar displays the session status, the photo and the share of pixels in each band.
type StatusBar struct {
	container     *fyne.Container
	statusLabel   *widget.Label
	imageInfo     *widget.Label
	coverageLabel *widget.Label
}

func NewStatusBar() *StatusBar {
	sb := &StatusBar{}
	sb.createComponents()
	sb.buildLayout()
	return sb
}

func (sb *StatusBar) createComponents() {
	sb.statusLabel = widget.NewLabel("Ready")
	sb.imageInfo = widget.NewLabel("No image loaded")
	sb.coverageLabel = widget.NewLabel("")
	sb.coverageLabel.Truncation = fyne.TextTruncateEllipsis
}

func (sb *StatusBar) buildLayout() {
	sb.container = container.NewBorder(nil, nil,
		container.NewHBox(sb.statusLabel, widget.NewSeparator(), sb.imageInfo, widget.NewSeparator()),
		nil,
		sb.coverageLabel,
	)
}

func (sb *StatusBar) SetStatus(status string) {
	sb.statusLabel.SetText(status)
}

func (sb *StatusBar) SetImageInfo(width, height, channels int, format string) {
	sb.imageInfo.SetText(fmt.Sprintf("Image: %dx%d, %d channels, %s", width, height, channels, format))
}

// SetCoverage shows each band's share of the photo as a percentage.
func (sb *StatusBar) SetCoverage(shares []float64) {
	parts := make([]string, len(shares))
	for i, s := range shares {
		parts[i] = fmt.Sprintf("%d:%.0f%%", i+1, s*100)
	}
	sb.coverageLabel.SetText(strings.Join(parts, " "))
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}
