package pipeline

import (
	"testing"

	"papercut/internal/logger"
	"papercut/internal/models"
	"papercut/internal/opencv/safe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func grayGrid(t *testing.T, rows, cols int, values ...uint8) *safe.Mat {
	t.Helper()
	data := make([]byte, 0, len(values)*3)
	for _, v := range values {
		data = append(data, v, v, v)
	}
	m, err := safe.NewMatFromBytes(rows, cols, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)
	t.Cleanup(m.Close)
	return m
}

func paletteOf(n int) models.ColorAssignment {
	colors := models.NewColorAssignment(n)
	for i := range colors {
		colors[i] = models.Color{R: uint8(10 * (i + 1)), G: uint8(5 * i), B: uint8(200 - 15*i)}
	}
	return colors
}

func TestRenderFrame_EachPixelTakesItsBandColour(t *testing.T) {
	gray := grayGrid(t, 2, 2, 10, 60, 130, 200)

	bs, err := models.NewBreakpointSet(10, models.DefaultBreakpoints)
	require.NoError(t, err)
	colors := paletteOf(10)
	bands := models.BuildBands(bs, colors)

	f, err := RenderFrame(gray, bands)
	require.NoError(t, err)
	defer f.Close()

	require.Len(t, f.Masks, 10)
	require.Len(t, f.Layers, 10)

	expected := map[[2]int]int{{0, 0}: 0, {0, 1}: 1, {1, 0}: 3, {1, 1}: 4}
	for pos, band := range expected {
		px, err := f.Composite.GetPixel(pos[0], pos[1])
		require.NoError(t, err)
		c := colors[band]
		assert.Equal(t, []uint8{c.B, c.G, c.R}, px, "pixel %v", pos)
	}

	assert.Equal(t, []int{1, 1, 0, 1, 1, 0, 0, 0, 0, 0}, f.Coverage())
}

func TestRenderFrame_BlackBandsLeaveBlack(t *testing.T) {
	gray := grayGrid(t, 1, 2, 0, 255)

	bs, err := models.NewBreakpointSet(2, []int{127})
	require.NoError(t, err)
	bands := models.BuildBands(bs, models.ColorAssignment{models.Black, models.White})

	f, err := RenderFrame(gray, bands)
	require.NoError(t, err)
	defer f.Close()

	dark, err := f.Composite.GetPixel(0, 0)
	require.NoError(t, err)
	light, err := f.Composite.GetPixel(0, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 0}, dark)
	assert.Equal(t, []uint8{255, 255, 255}, light)
}

func TestRenderFrame_NoBands(t *testing.T) {
	gray := grayGrid(t, 1, 1, 0)
	_, err := RenderFrame(gray, nil)
	assert.Error(t, err)
}

func TestRenderer_Render(t *testing.T) {
	gray := grayGrid(t, 1, 3, 0, 128, 255)

	bs, err := models.NewBreakpointSet(3, []int{100, 200})
	require.NoError(t, err)

	f, err := NewRenderer(logger.Nop()).Render(gray, models.BuildBands(bs, paletteOf(3)))
	require.NoError(t, err)

	assert.Equal(t, []int{1, 1, 1}, f.Coverage())

	f.Close()
	assert.Nil(t, f.Composite)
}
