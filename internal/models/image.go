package models

import (
	"time"

	"papercut/internal/opencv/safe"
)

// ImageData is a decoded photo together with where it came from.
type ImageData struct {
	Mat      *safe.Mat
	Width    int
	Height   int
	Channels int
	Format   string
	Path     string
	FileSize int64
	LoadTime time.Time
}

func (d *ImageData) Close() {
	if d == nil {
		return
	}
	d.Mat.Close()
}
