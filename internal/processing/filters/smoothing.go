package filters

import (
	"fmt"
	"image"

	"papercut/internal/opencv/safe"

	"gocv.io/x/gocv"
)

// Smoothing softens the intensity image before banding so band edges follow shapes instead of
// grain. The zero value leaves the image untouched.
type Smoothing struct {
	// Sigma of the Gaussian blur; 0 disables it.
	Sigma float64
	// Despeckle runs a median filter, removing isolated pixels that would become paper crumbs.
	Despeckle bool
}

func (s Smoothing) Enabled() bool {
	return s.Sigma > 0 || s.Despeckle
}

// Apply returns a new single-channel Mat; src is not modified.
func (s Smoothing) Apply(src *safe.Mat) (*safe.Mat, error) {
	if err := safe.ValidateChannels(src, 1, "smoothing"); err != nil {
		return nil, err
	}

	out, err := src.CloneWithTag("smoothed")
	if err != nil {
		return nil, err
	}

	if s.Sigma > 0 {
		blurred, err := gaussianBlur(out, s.Sigma)
		out.Close()
		if err != nil {
			return nil, err
		}
		out = blurred
	}

	if s.Despeckle {
		filtered, err := medianBlur(out)
		out.Close()
		if err != nil {
			return nil, err
		}
		out = filtered
	}

	return out, nil
}

func gaussianBlur(src *safe.Mat, sigma float64) (*safe.Mat, error) {
	dst, err := safe.NewMatWithTag(src.Rows(), src.Cols(), src.Type(), "gaussian")
	if err != nil {
		return nil, fmt.Errorf("failed to create destination Mat: %w", err)
	}

	kernelSize := int(sigma*6) + 1
	if kernelSize%2 == 0 {
		kernelSize++
	}
	kernelSize = max(3, min(kernelSize, 15))

	gocv.GaussianBlur(src.GetMat(), dst.GetMatPtr(), image.Point{X: kernelSize, Y: kernelSize}, sigma, sigma, gocv.BorderDefault)
	return dst, nil
}

func medianBlur(src *safe.Mat) (*safe.Mat, error) {
	kernelSize := 3
	if src.Rows()*src.Cols() > 1000000 {
		kernelSize = 5
	}

	dst, err := safe.NewMatWithTag(src.Rows(), src.Cols(), src.Type(), "median")
	if err != nil {
		return nil, fmt.Errorf("failed to create result Mat: %w", err)
	}

	gocv.MedianBlur(src.GetMat(), dst.GetMatPtr(), kernelSize)
	return dst, nil
}
