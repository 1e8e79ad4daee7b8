package services

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"papercut/internal/logger"
	"papercut/internal/models"
	"papercut/internal/opencv/safe"

	"fyne.io/fyne/v2"
	"gocv.io/x/gocv"
)

const (
	GrayscaleOutput  = "photo_grayscale_1.jpg"
	CustomizedOutput = "photo_customized_1.jpg"
	VectorOutput     = "photo_customized_1.svg"
)

var (
	// ErrNoImage means no image was selected or the file could not be read.
	ErrNoImage = errors.New("no image")
	// ErrDecode means the bytes are not a decodable colour image.
	ErrDecode = errors.New("image decode failed")
	// ErrWrite means an output file could not be written.
	ErrWrite = errors.New("image write failed")
)

// ImageService loads the source photo and writes the result images.
type ImageService struct {
	logger logger.Logger
}

func NewImageService(log logger.Logger) *ImageService {
	return &ImageService{logger: log}
}

// LoadFile reads and decodes the image at path.
func (is *ImageService) LoadFile(ctx context.Context, path string) (*models.ImageData, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: no path given", ErrNoImage)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoImage, err)
	}

	return is.LoadBytes(ctx, data, path)
}

// LoadImage reads and decodes the image behind a file dialog selection.
func (is *ImageService) LoadImage(ctx context.Context, reader fyne.URIReadCloser) (*models.ImageData, error) {
	if reader == nil {
		return nil, fmt.Errorf("%w: selection cancelled", ErrNoImage)
	}
	defer reader.Close()

	data, err := io.ReadAll(bufio.NewReader(reader))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read image data: %v", ErrNoImage, err)
	}

	return is.LoadBytes(ctx, data, reader.URI().Path())
}

// LoadBytes decodes data as a three-channel BGR image. name is used for the format and for logs.
func (is *ImageService) LoadBytes(ctx context.Context, data []byte, name string) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	startTime := time.Now()

	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrDecode, name)
	}

	decoded, err := gocv.IMDecode(data, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}

	mat, err := safe.Adopt(decoded, "source")
	if err != nil {
		return nil, fmt.Errorf("%w: %s decoded to an empty image", ErrDecode, name)
	}

	if err := safe.ValidateDimensions(mat.Cols(), mat.Rows(), "load image"); err != nil {
		mat.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, name, err)
	}

	if mat.Channels() != 3 {
		channels := mat.Channels()
		mat.Close()
		return nil, fmt.Errorf("%w: %s has %d channels, want 3", ErrDecode, name, channels)
	}

	img := &models.ImageData{
		Mat:      mat,
		Width:    mat.Cols(),
		Height:   mat.Rows(),
		Channels: mat.Channels(),
		Format:   determineFormat(strings.ToLower(filepath.Ext(name))),
		Path:     name,
		FileSize: int64(len(data)),
		LoadTime: time.Now(),
	}

	is.logger.Info("ImageService", "image loaded", map[string]interface{}{
		"path":     name,
		"width":    img.Width,
		"height":   img.Height,
		"format":   img.Format,
		"bytes":    img.FileSize,
		"mat_id":   mat.ID(),
		"duration": time.Since(startTime).String(),
	})

	return img, nil
}

// SaveResults writes the grayscale and customized images into dir under their fixed names,
// overwriting existing files. It returns the paths written.
func (is *ImageService) SaveResults(dir string, grayscale, customized *safe.Mat) ([]string, error) {
	outputs := []struct {
		name string
		mat  *safe.Mat
	}{
		{GrayscaleOutput, grayscale},
		{CustomizedOutput, customized},
	}

	written := make([]string, 0, len(outputs))
	for _, o := range outputs {
		path := filepath.Join(dir, o.name)
		if err := is.WriteImage(path, o.mat); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	is.logger.Info("ImageService", "results saved", map[string]interface{}{
		"files": written,
	})
	return written, nil
}

// WriteImage encodes mat to path, the format following the extension.
func (is *ImageService) WriteImage(path string, mat *safe.Mat) error {
	if err := safe.ValidateMatForOperation(mat, "write image"); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrWrite, path, err)
	}

	if !gocv.IMWrite(path, mat.GetMat()) {
		return fmt.Errorf("%w: %s", ErrWrite, path)
	}
	return nil
}

func determineFormat(extension string) string {
	switch extension {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".png":
		return "png"
	case ".bmp":
		return "bmp"
	case ".tiff", ".tif":
		return "tiff"
	default:
		return "unknown"
	}
}

// SupportedExtensions lists the extensions offered by the open dialog.
func SupportedExtensions() []string {
	return []string{".jpg", ".jpeg", ".png"}
}
