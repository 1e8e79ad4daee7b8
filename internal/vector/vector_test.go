package vector

import (
	"bytes"
	"image"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"papercut/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func squareMask(size, from, to int) *image.Gray {
	m := image.NewGray(image.Rect(0, 0, size, size))
	for y := from; y < to; y++ {
		for x := from; x < to; x++ {
			m.Pix[y*m.Stride+x] = 255
		}
	}
	return m
}

func TestTraceMask_Square(t *testing.T) {
	tr, err := TraceMask(squareMask(32, 8, 24))
	require.NoError(t, err)
	assert.False(t, tr.Empty())
}

func TestTraceMask_EmptyMask(t *testing.T) {
	tr, err := TraceMask(image.NewGray(image.Rect(0, 0, 16, 16)))
	require.NoError(t, err)
	assert.True(t, tr.Empty())

	_, err = TraceMask(nil)
	assert.Error(t, err)
}

func TestExport_OneGroupPerNonEmptyBand(t *testing.T) {
	var buf bytes.Buffer

	groups, err := Export(&buf, 32, 32, []Layer{
		{Color: models.Red, Mask: squareMask(32, 8, 24)},
		{Color: models.Blue, Mask: image.NewGray(image.Rect(0, 0, 32, 32))},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, groups)

	out := buf.String()
	assert.Contains(t, out, `fill="#ff0000"`)
	assert.Contains(t, out, `id="band-01"`)
	assert.NotContains(t, out, `id="band-02"`)
	assert.Contains(t, out, "<path")
	assert.True(t, strings.HasSuffix(strings.TrimSpace(out), "</svg>"))
}

func TestExtract_NestedPaths(t *testing.T) {
	doc := `<?xml version="1.0"?>
<svg xmlns="http://www.w3.org/2000/svg" width="4" height="4">
<g transform="translate(0,4) scale(0.1,-0.1)"><path d="M0 0 L1 1z"/><path d=" "/></g>
</svg>`
	tr, err := extract([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "translate(0,4) scale(0.1,-0.1)", tr.Transform)
	assert.Equal(t, []string{"M0 0 L1 1z"}, tr.Paths)
}

func TestExportFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.svg")

	groups, err := ExportFile(path, 16, 16, []Layer{{Color: models.Green, Mask: squareMask(16, 2, 10)}})
	require.NoError(t, err)
	assert.Equal(t, 1, groups)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	_, err = ExportFile(filepath.Join(t.TempDir(), "missing", "out.svg"), 16, 16, nil)
	assert.Error(t, err)
}
