package scheme

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"papercut/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveLoad_RoundTripKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)

	want := &Scheme{Entries: []Entry{
		{Range: models.Range{Lower: 200, Upper: 255}, Color: models.Color{R: 1, G: 2, B: 3}},
		{Range: models.Range{Lower: 0, Upper: 50}, Color: models.Red},
		{Range: models.Range{Lower: 51, Upper: 50}, Color: models.Blue},
	}}
	require.NoError(t, Save(want, path))

	got, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestSave_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.json")

	s := &Scheme{Entries: []Entry{
		{Range: models.Range{Lower: 0, Upper: 50}, Color: models.Color{R: 255, G: 128}},
	}}
	require.NoError(t, Save(s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"(0, 50)": [255, 128, 0]}`, string(data))
}

func TestSave_UnwritablePath(t *testing.T) {
	err := Save(&Scheme{}, filepath.Join(t.TempDir(), "missing", "scheme.json"))
	assert.Error(t, err)
	assert.ErrorIs(t, Save(nil, "unused.json"), ErrNilScheme)
}

func TestLoad_MissingFile(t *testing.T) {
	s, found, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, s)
}

func TestLoad_Malformed(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"(0, 50)": [1, 2, 3]`,
		"array":           `[[0, 50]]`,
		"bad key":         `{"0-50": [1, 2, 3]}`,
		"three bounds":    `{"(0, 5, 9)": [1, 2, 3]}`,
		"bound too large": `{"(0, 256)": [1, 2, 3]}`,
		"short value":     `{"(0, 50)": [1, 2]}`,
		"component range": `{"(0, 50)": [1, 2, 300]}`,
		"float component": `{"(0, 50)": [1.5, 2, 3]}`,
		"trailing":        `{"(0, 50)": [1, 2, 3]} {}`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "scheme.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			s, found, err := Load(path)
			assert.Nil(t, s)
			assert.True(t, found)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, path, decodeErr.Path)
		})
	}
}

func TestLoad_EmptyObject(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scheme.json")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	s, found, err := Load(path)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 0, s.Len())
}

func TestParseKey(t *testing.T) {
	r, err := ParseKey("( 12 ,34)")
	require.NoError(t, err)
	assert.Equal(t, models.Range{Lower: 12, Upper: 34}, r)

	_, err = ParseKey("(a, 1)")
	assert.Error(t, err)
	_, err = ParseKey("12, 34")
	assert.Error(t, err)
}

func TestMarshal_NilScheme(t *testing.T) {
	_, err := Marshal(nil)
	assert.ErrorIs(t, err, ErrNilScheme)
}
