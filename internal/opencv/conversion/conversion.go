package conversion

import (
	"fmt"
	"image"
	"image/color"

	"papercut/internal/opencv/safe"

	"github.com/nfnt/resize"
	"gocv.io/x/gocv"
)

// MatToImage converts a 1, 3 or 4 channel Mat to a Go image. Single-channel Mats become *image.Gray.
func MatToImage(src *safe.Mat) (image.Image, error) {
	if err := safe.ValidateMatForOperation(src, "Mat to image conversion"); err != nil {
		return nil, err
	}

	switch src.Channels() {
	case 1:
		return matToGray(src)
	case 3, 4:
		mat := src.GetMat()
		img, err := mat.ToImage()
		if err != nil {
			return nil, fmt.Errorf("Mat to image conversion failed: %w", err)
		}
		return img, nil
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", src.Channels())
	}
}

// MatToGray converts a mask or intensity Mat to *image.Gray.
func MatToGray(src *safe.Mat) (*image.Gray, error) {
	if err := safe.ValidateChannels(src, 1, "Mat to gray conversion"); err != nil {
		return nil, err
	}
	return matToGray(src)
}

func matToGray(src *safe.Mat) (*image.Gray, error) {
	rows, cols := src.Rows(), src.Cols()
	mat := src.GetMat()

	data, err := mat.DataPtrUint8()
	if err != nil || !mat.IsContinuous() || len(data) < rows*cols {
		return matToGraySlow(src, rows, cols)
	}

	img := image.NewGray(image.Rect(0, 0, cols, rows))
	copy(img.Pix, data[:rows*cols])
	return img, nil
}

func matToGraySlow(src *safe.Mat, rows, cols int) (*image.Gray, error) {
	img := image.NewGray(image.Rect(0, 0, cols, rows))

	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			value, err := src.GetUCharAt(y, x)
			if err != nil {
				return nil, fmt.Errorf("pixel access failed at (%d,%d): %w", x, y, err)
			}
			img.SetGray(x, y, color.Gray{Y: value})
		}
	}

	return img, nil
}

// ImageToMat converts a Go image to a three-channel BGR Mat.
func ImageToMat(img image.Image) (*safe.Mat, error) {
	if img == nil {
		return nil, fmt.Errorf("input image is nil")
	}

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, fmt.Errorf("image to Mat conversion failed: %w", err)
	}

	return safe.Adopt(mat, "image")
}

// Thumbnail converts src to an image that fits in maxWidth x maxHeight, keeping the aspect ratio.
func Thumbnail(src *safe.Mat, maxWidth, maxHeight int) (image.Image, error) {
	img, err := MatToImage(src)
	if err != nil {
		return nil, err
	}

	if maxWidth <= 0 || maxHeight <= 0 {
		return img, nil
	}

	return resize.Thumbnail(uint(maxWidth), uint(maxHeight), img, resize.Lanczos3), nil
}
