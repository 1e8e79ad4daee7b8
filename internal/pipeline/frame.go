// Package pipeline renders one posterized frame from a grayscale image and a set of bands.
package pipeline

import (
	"fmt"
	"time"

	"papercut/internal/logger"
	"papercut/internal/models"
	"papercut/internal/opencv/safe"
	"papercut/internal/processing/mask"
	"papercut/internal/processing/paper"
)

// Frame owns every Mat produced for one render. Close releases them all.
type Frame struct {
	Bands     []models.Band
	Masks     []*safe.Mat
	Layers    []*safe.Mat
	Composite *safe.Mat
}

// Coverage reports the number of pixels selected by each band.
func (f *Frame) Coverage() []int {
	out := make([]int, len(f.Masks))
	for i, m := range f.Masks {
		out[i] = mask.Coverage(m)
	}
	return out
}

func (f *Frame) Close() {
	if f == nil {
		return
	}
	safe.CloseAll(f.Masks)
	safe.CloseAll(f.Layers)
	f.Composite.Close()
	f.Masks, f.Layers, f.Composite = nil, nil, nil
}

// RenderFrame builds a mask and a coloured layer per band and sums the layers into the composite.
// gray must be the three-channel replicated grayscale.
func RenderFrame(gray *safe.Mat, bands []models.Band) (*Frame, error) {
	if len(bands) == 0 {
		return nil, fmt.Errorf("render needs at least one band")
	}

	masks, err := mask.BuildAll(gray, bands)
	if err != nil {
		return nil, fmt.Errorf("band masks: %w", err)
	}

	f := &Frame{Bands: bands, Masks: masks, Layers: make([]*safe.Mat, 0, len(bands))}
	for i, b := range bands {
		layer, err := paper.Layer(b.Color, masks[i])
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("layer %s: %w", b.Label(), err)
		}
		f.Layers = append(f.Layers, layer)
	}

	composite, err := paper.Composite(f.Layers)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("composite: %w", err)
	}
	f.Composite = composite
	return f, nil
}

// Renderer wraps RenderFrame with logging.
type Renderer struct {
	logger logger.Logger
}

func NewRenderer(log logger.Logger) *Renderer {
	return &Renderer{logger: log}
}

func (r *Renderer) Render(gray *safe.Mat, bands []models.Band) (*Frame, error) {
	start := time.Now()

	f, err := RenderFrame(gray, bands)
	if err != nil {
		r.logger.Error("Renderer", err, map[string]interface{}{
			"bands": len(bands),
		})
		return nil, err
	}

	r.logger.Debug("Renderer", "frame rendered", map[string]interface{}{
		"bands":    len(bands),
		"width":    gray.Cols(),
		"height":   gray.Rows(),
		"duration": time.Since(start).String(),
		"coverage": f.Coverage(),
	})
	return f, nil
}
