// Package mask selects the pixels of a grayscale image that fall inside an intensity band.
package mask

import (
	"fmt"

	"papercut/internal/models"
	"papercut/internal/opencv/safe"

	"gocv.io/x/gocv"
)

const (
	// On marks a selected pixel.
	On uint8 = 255
	// Off marks an unselected pixel.
	Off uint8 = 0
)

// Build returns a single-channel mask that is On exactly where every channel of gray lies
// in [r.Lower, r.Upper]. An empty range yields an all-Off mask.
func Build(gray *safe.Mat, r models.Range) (*safe.Mat, error) {
	if err := safe.ValidateChannels(gray, 3, "band mask"); err != nil {
		return nil, err
	}

	if r.Empty() {
		return safe.Zeros(gray.Rows(), gray.Cols(), gocv.MatTypeCV8UC1, "mask")
	}

	lower := float64(r.Lower)
	upper := float64(r.Upper)

	dst := gocv.NewMat()
	gocv.InRangeWithScalar(gray.GetMat(),
		gocv.NewScalar(lower, lower, lower, 0),
		gocv.NewScalar(upper, upper, upper, 0),
		&dst)

	m, err := safe.Adopt(dst, "mask")
	if err != nil {
		return nil, fmt.Errorf("mask for %s: %w", r, err)
	}
	return m, nil
}

// BuildAll builds one mask per band, in band order. On failure every mask built so far is released.
func BuildAll(gray *safe.Mat, bands []models.Band) ([]*safe.Mat, error) {
	masks := make([]*safe.Mat, 0, len(bands))
	for _, b := range bands {
		m, err := Build(gray, b.Range)
		if err != nil {
			safe.CloseAll(masks)
			return nil, fmt.Errorf("band %d: %w", b.Index+1, err)
		}
		masks = append(masks, m)
	}
	return masks, nil
}

// Coverage counts the On pixels of m.
func Coverage(m *safe.Mat) int {
	if m == nil || m.Empty() {
		return 0
	}
	return gocv.CountNonZero(m.GetMat())
}
