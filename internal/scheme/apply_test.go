package scheme

import (
	"testing"

	"papercut/internal/models"
	"papercut/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func grayPixels(t *testing.T, values ...uint8) *safe.Mat {
	t.Helper()
	data := make([]byte, 0, len(values)*3)
	for _, v := range values {
		data = append(data, v, v, v)
	}
	m, err := safe.NewMatFromBytes(1, len(values), gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func bgr(c models.Color) []uint8 {
	return []uint8{c.B, c.G, c.R}
}

func TestApply_LaterEntryWins(t *testing.T) {
	img := grayPixels(t, 50)

	s := &Scheme{Entries: []Entry{
		{Range: models.Range{Lower: 0, Upper: 100}, Color: models.Red},
		{Range: models.Range{Lower: 40, Upper: 150}, Color: models.Blue},
	}}
	require.NoError(t, Apply(img, s))

	px, err := img.GetPixel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, bgr(models.Blue), px)
}

func TestApply_SelectsByOriginalIntensity(t *testing.T) {
	img := grayPixels(t, 10, 200)

	// White repaints the first pixel; the second entry must not see it as bright.
	s := &Scheme{Entries: []Entry{
		{Range: models.Range{Lower: 0, Upper: 20}, Color: models.White},
		{Range: models.Range{Lower: 150, Upper: 255}, Color: models.Green},
	}}
	require.NoError(t, Apply(img, s))

	first, err := img.GetPixel(0, 0)
	require.NoError(t, err)
	second, err := img.GetPixel(0, 1)
	require.NoError(t, err)
	assert.Equal(t, bgr(models.White), first)
	assert.Equal(t, bgr(models.Green), second)
}

func TestApply_UnmatchedPixelsUntouched(t *testing.T) {
	img := grayPixels(t, 30, 90)

	s := &Scheme{Entries: []Entry{
		{Range: models.Range{Lower: 80, Upper: 100}, Color: models.Red},
		{Range: models.Range{Lower: 60, Upper: 59}, Color: models.Blue},
	}}
	require.NoError(t, Apply(img, s))

	untouched, err := img.GetPixel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{30, 30, 30}, untouched)
}

func TestApply_NilScheme(t *testing.T) {
	img := grayPixels(t, 77)

	assert.ErrorIs(t, Apply(img, nil), ErrNilScheme)

	px, err := img.GetPixel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{77, 77, 77}, px)
}
