package filters

import (
	"fmt"

	"papercut/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Grayscale holds the luminance of a photo twice: as a single intensity channel
// and replicated into three identical channels for colour operations.
type Grayscale struct {
	Intensity  *safe.Mat
	Replicated *safe.Mat
}

func (g *Grayscale) Close() {
	if g == nil {
		return
	}
	g.Intensity.Close()
	g.Replicated.Close()
}

// GrayscaleConverter derives the grayscale rendition of a BGR photo.
type GrayscaleConverter struct {
	smoothing Smoothing
}

func NewGrayscaleConverter() *GrayscaleConverter {
	return &GrayscaleConverter{}
}

// WithSmoothing sets the smoothing applied to the intensity channel before replication.
func (g *GrayscaleConverter) WithSmoothing(s Smoothing) *GrayscaleConverter {
	g.smoothing = s
	return g
}

func (g *GrayscaleConverter) Name() string {
	return "grayscale_converter"
}

// Derive computes intensity with the standard luma weights and replicates it to three channels.
// Each output pixel satisfies R = G = B = intensity.
func (g *GrayscaleConverter) Derive(src *safe.Mat) (*Grayscale, error) {
	intensity, err := ConvertToGrayscale(src)
	if err != nil {
		return nil, err
	}

	if g.smoothing.Enabled() {
		smoothed, err := g.smoothing.Apply(intensity)
		intensity.Close()
		if err != nil {
			return nil, fmt.Errorf("smoothing failed: %w", err)
		}
		intensity = smoothed
	}

	replicated, err := safe.NewMatWithTag(src.Rows(), src.Cols(), gocv.MatTypeCV8UC3, "grayscale")
	if err != nil {
		intensity.Close()
		return nil, fmt.Errorf("replicated grayscale allocation failed: %w", err)
	}
	if err := safe.ValidateColorConversion(intensity, gocv.ColorGrayToBGR); err != nil {
		intensity.Close()
		replicated.Close()
		return nil, err
	}
	gocv.CvtColor(intensity.GetMat(), replicated.GetMatPtr(), gocv.ColorGrayToBGR)

	return &Grayscale{Intensity: intensity, Replicated: replicated}, nil
}

// ConvertToGrayscale reduces a 1, 3 or 4 channel Mat to a single intensity channel.
func ConvertToGrayscale(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateMatForOperation(src, "grayscale conversion"); err != nil {
		return nil, err
	}

	if src.Channels() == 1 {
		return src.CloneWithTag("intensity")
	}

	dst, err := safe.NewMatWithTag(src.Rows(), src.Cols(), gocv.MatTypeCV8UC1, "intensity")
	if err != nil {
		return nil, fmt.Errorf("destination Mat creation failed: %w", err)
	}

	switch src.Channels() {
	case 3:
		if err := safe.ValidateColorConversion(src, gocv.ColorBGRToGray); err != nil {
			dst.Close()
			return nil, err
		}
		gocv.CvtColor(src.GetMat(), dst.GetMatPtr(), gocv.ColorBGRToGray)
	case 4:
		if err := safe.ValidateColorConversion(src, gocv.ColorBGRAToBGR); err != nil {
			dst.Close()
			return nil, err
		}
		tempBGR := gocv.NewMat()
		defer tempBGR.Close()
		gocv.CvtColor(src.GetMat(), &tempBGR, gocv.ColorBGRAToBGR)
		gocv.CvtColor(tempBGR, dst.GetMatPtr(), gocv.ColorBGRToGray)
	default:
		dst.Close()
		return nil, fmt.Errorf("unsupported channel count for grayscale conversion: %d", src.Channels())
	}

	return dst, nil
}
