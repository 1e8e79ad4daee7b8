// Package paper produces the coloured paper layers of a posterized frame and composites them.
package paper

import (
	"fmt"

	"papercut/internal/models"
	"papercut/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// ScalarOf converts an RGB colour into the BGR scalar OpenCV expects.
func ScalarOf(c models.Color) gocv.Scalar {
	return gocv.NewScalar(float64(c.B), float64(c.G), float64(c.R), 0)
}

// NewPaper returns a rows x cols three-channel image filled with c.
func NewPaper(c models.Color, rows, cols int) (*safe.Mat, error) {
	return safe.NewMatFromScalar(ScalarOf(c), rows, cols, gocv.MatTypeCV8UC3, "paper")
}

// MaskPaper keeps the paper colour where mask is on and black elsewhere.
func MaskPaper(paper, mask *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateChannels(paper, 3, "mask paper"); err != nil {
		return nil, err
	}
	if err := safe.ValidateChannels(mask, 1, "mask paper"); err != nil {
		return nil, err
	}
	if err := safe.ValidateSameSize(paper, mask, "mask paper"); err != nil {
		return nil, err
	}

	layer, err := safe.Zeros(paper.Rows(), paper.Cols(), gocv.MatTypeCV8UC3, "layer")
	if err != nil {
		return nil, err
	}
	gocv.BitwiseOrWithMask(paper.GetMat(), paper.GetMat(), layer.GetMatPtr(), mask.GetMat())
	return layer, nil
}

// Layer is NewPaper followed by MaskPaper.
func Layer(c models.Color, mask *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(mask, "layer"); err != nil {
		return nil, err
	}

	p, err := NewPaper(c, mask.Rows(), mask.Cols())
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return MaskPaper(p, mask)
}

// Composite sums layers per channel, saturating at 255.
func Composite(layers []*safe.Mat) (*safe.Mat, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("composite needs at least one layer")
	}
	if err := safe.ValidateChannels(layers[0], 3, "composite"); err != nil {
		return nil, err
	}

	out, err := safe.Zeros(layers[0].Rows(), layers[0].Cols(), gocv.MatTypeCV8UC3, "composite")
	if err != nil {
		return nil, err
	}

	for i, l := range layers {
		if err := safe.ValidateChannels(l, 3, "composite"); err != nil {
			out.Close()
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		if err := safe.ValidateSameSize(out, l, "composite"); err != nil {
			out.Close()
			return nil, fmt.Errorf("layer %d: %w", i+1, err)
		}
		gocv.Add(out.GetMat(), l.GetMat(), out.GetMatPtr())
	}
	return out, nil
}
