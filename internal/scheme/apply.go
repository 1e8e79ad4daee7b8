package scheme

import (
	"fmt"

	"papercut/internal/opencv/safe"
	"papercut/internal/processing/filters"
	"papercut/internal/processing/paper"

	"gocv.io/x/gocv"
)

// Apply paints every entry of s onto img in order. Pixels are selected by the intensity img had
// before the first entry was painted, and a later entry overwrites an earlier one where both match.
func Apply(img *safe.Mat, s *Scheme) error {
	if s == nil {
		return ErrNilScheme
	}
	if err := safe.ValidateChannels(img, 3, "apply color scheme"); err != nil {
		return err
	}

	intensity, err := filters.ConvertToGrayscale(img)
	if err != nil {
		return fmt.Errorf("scheme intensity: %w", err)
	}
	defer intensity.Close()

	for _, e := range s.Entries {
		if e.Range.Empty() {
			continue
		}
		if err := paintEntry(img, intensity, e); err != nil {
			return fmt.Errorf("apply %s: %w", e.Range, err)
		}
	}
	return nil
}

func paintEntry(img, intensity *safe.Mat, e Entry) error {
	lower := float64(e.Range.Lower)
	upper := float64(e.Range.Upper)

	m := gocv.NewMat()
	defer m.Close()
	gocv.InRangeWithScalar(intensity.GetMat(),
		gocv.NewScalar(lower, lower, lower, 0),
		gocv.NewScalar(upper, upper, upper, 0),
		&m)

	layer, err := paper.NewPaper(e.Color, img.Rows(), img.Cols())
	if err != nil {
		return err
	}
	defer layer.Close()

	src := layer.GetMat()
	src.CopyToWithMask(img.GetMatPtr(), m)
	return nil
}
