package controllers

import (
	"image"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"papercut/internal/config"
	"papercut/internal/logger"
	"papercut/internal/models"
	"papercut/internal/opencv/safe"
	"papercut/internal/scheme"
	"papercut/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

type fakeControls struct {
	breakpoints []int
	colors      models.ColorAssignment
	bands       []models.Band
	syncs       int
}

func (f *fakeControls) Breakpoints() []int             { return slices.Clone(f.breakpoints) }
func (f *fakeControls) Colors() models.ColorAssignment { return f.colors.Clone() }
func (f *fakeControls) ShowBands(bands []models.Band)  { f.bands = bands }

func (f *fakeControls) SetBreakpoints(values []int) {
	f.breakpoints = slices.Clone(values)
	f.syncs++
}

func (f *fakeControls) SetColors(colors models.ColorAssignment) {
	f.colors = colors.Clone()
}

type fakeDisplay struct {
	panes    map[string]image.Image
	coverage []float64
	status   string
	errors   []string
	closed   int
}

func newFakeDisplay() *fakeDisplay {
	return &fakeDisplay{panes: make(map[string]image.Image)}
}

func (f *fakeDisplay) ShowPane(name string, img image.Image) { f.panes[name] = img }
func (f *fakeDisplay) SetStatus(status string)               { f.status = status }
func (f *fakeDisplay) SetCoverage(shares []float64)          { f.coverage = shares }
func (f *fakeDisplay) SetImageInfo(int, int, int, string)    {}
func (f *fakeDisplay) ShowError(title string, err error)     { f.errors = append(f.errors, title) }
func (f *fakeDisplay) Close()                                { f.closed++ }

// grayPhoto is a 2x2 BGR image whose pixels are the neutral grays 10, 60, 130 and 200.
func grayPhoto(t *testing.T) *models.ImageData {
	t.Helper()

	var data []byte
	for _, v := range []byte{10, 60, 130, 200} {
		data = append(data, v, v, v)
	}
	m, err := safe.NewMatFromBytes(2, 2, gocv.MatTypeCV8UC3, data)
	require.NoError(t, err)

	return &models.ImageData{Mat: m, Width: 2, Height: 2, Channels: 3, Format: "png", Path: "gray.png"}
}

func newLoop(t *testing.T, cfg *config.Config, dir string) (*FrameLoop, *fakeControls, *fakeDisplay) {
	t.Helper()

	log := logger.Nop()
	fl := NewFrameLoop(cfg, dir, log, services.NewImageService(log))
	controls := &fakeControls{}
	display := newFakeDisplay()
	fl.Attach(controls, display)
	t.Cleanup(fl.Close)
	return fl, controls, display
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.DefaultConfig()
	cfg.SchemePath = filepath.Join(t.TempDir(), "color_scheme.json")
	cfg.SetBandColors(models.ColorAssignment{
		models.Red, models.Green, models.Blue, models.White, models.Red,
		models.Green, models.Blue, models.White, models.Red, models.Green,
	})
	return cfg
}

func TestStart_RendersInitialFrame(t *testing.T) {
	fl, controls, display := newLoop(t, testConfig(t), t.TempDir())

	require.NoError(t, fl.Start(grayPhoto(t)))

	assert.Equal(t, models.DefaultBreakpoints, controls.breakpoints)
	assert.Len(t, controls.bands, 10)

	for _, name := range []string{PaneOriginal, PaneGrayscale, PaneCustomized, "Color01 part", "Color10 part"} {
		assert.Contains(t, display.panes, name)
	}
	assert.NotContains(t, display.panes, PaneScheme)

	frame := fl.Frame()
	require.NotNil(t, frame)
	assert.Equal(t, []int{1, 1, 0, 1, 1, 0, 0, 0, 0, 0}, frame.Coverage())

	require.Len(t, display.coverage, 10)
	assert.InDelta(t, 0.25, display.coverage[0], 1e-9)
	assert.InDelta(t, 0.0, display.coverage[2], 1e-9)
	assert.Equal(t, "Frame 1", display.status)

	px, err := frame.Composite.GetPixel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0, 0, 255}, px)
}

func TestTick_ResyncsCorrectedBreakpoints(t *testing.T) {
	fl, controls, _ := newLoop(t, testConfig(t), t.TempDir())
	require.NoError(t, fl.Start(grayPhoto(t)))

	syncs := controls.syncs
	controls.breakpoints = []int{50, 85, 127, 170, 210, 230, 240, 255, 250}
	require.NoError(t, fl.Tick())

	assert.Equal(t, syncs+1, controls.syncs)
	assert.Equal(t, []int{50, 85, 127, 170, 210, 230, 240, 249, 250}, controls.breakpoints)

	syncs = controls.syncs
	require.NoError(t, fl.Tick())
	assert.Equal(t, syncs, controls.syncs, "corrected values need no resync")
}

func TestTick_FollowsColorChanges(t *testing.T) {
	fl, controls, _ := newLoop(t, testConfig(t), t.TempDir())
	require.NoError(t, fl.Start(grayPhoto(t)))

	controls.colors[0] = models.Blue
	require.NoError(t, fl.Tick())

	px, err := fl.Frame().Composite.GetPixel(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []uint8{255, 0, 0}, px)
}

func TestSave_WritesOutputsAndCloses(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig(t)
	cfg.SaveScheme = true
	cfg.SVGExport = true

	fl, _, display := newLoop(t, cfg, dir)
	require.NoError(t, fl.Start(grayPhoto(t)))

	require.NoError(t, fl.Save())

	for _, name := range []string{services.GrayscaleOutput, services.CustomizedOutput, services.VectorOutput} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
	assert.FileExists(t, cfg.SchemePath)
	assert.True(t, fl.Closed())
	assert.Equal(t, 1, display.closed)

	s, found, err := scheme.Load(cfg.SchemePath)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 10, s.Len())
}

func TestSave_FailureKeepsSessionOpen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	fl, _, display := newLoop(t, testConfig(t), dir)
	require.NoError(t, fl.Start(grayPhoto(t)))

	err := fl.Save()
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrWrite)
	assert.False(t, fl.Closed())
	assert.Zero(t, display.closed)
	assert.Equal(t, []string{"Save failed"}, display.errors)
}

func TestQuit_ClosesWithoutWriting(t *testing.T) {
	dir := t.TempDir()
	fl, _, display := newLoop(t, testConfig(t), dir)
	require.NoError(t, fl.Start(grayPhoto(t)))

	fl.Quit()
	fl.Quit()

	assert.True(t, fl.Closed())
	assert.Equal(t, 1, display.closed)
	assert.NoFileExists(t, filepath.Join(dir, services.GrayscaleOutput))
	assert.NoError(t, fl.Tick())
}

func TestStart_LoadsSchemeIntoControls(t *testing.T) {
	cfg := testConfig(t)
	cfg.LoadScheme = true

	bs, err := models.NewBreakpointSet(10, []int{20, 85, 127, 170, 210, 230, 240, 245, 250})
	require.NoError(t, err)
	colors := models.NewColorAssignment(10)
	colors[0] = models.Blue
	require.NoError(t, scheme.Save(scheme.FromBands(models.BuildBands(bs, colors)), cfg.SchemePath))

	fl, controls, display := newLoop(t, cfg, t.TempDir())
	require.NoError(t, fl.Start(grayPhoto(t)))

	assert.Equal(t, bs.Values(), controls.breakpoints)
	assert.Equal(t, models.Blue, controls.colors[0])
	assert.Contains(t, display.panes, PaneScheme)
	assert.Empty(t, display.errors)
}

func TestStart_MalformedSchemeKeepsDefaults(t *testing.T) {
	cfg := testConfig(t)
	cfg.LoadScheme = true
	require.NoError(t, os.WriteFile(cfg.SchemePath, []byte("{not json"), 0o644))

	fl, controls, display := newLoop(t, cfg, t.TempDir())
	require.NoError(t, fl.Start(grayPhoto(t)))

	assert.Equal(t, models.DefaultBreakpoints, controls.breakpoints)
	assert.Equal(t, models.Red, controls.colors[0])
	assert.Equal(t, []string{"Color scheme not loaded"}, display.errors)
	assert.NotNil(t, fl.Frame())
}

func TestStart_MissingSchemeIsNotAnError(t *testing.T) {
	cfg := testConfig(t)
	cfg.LoadScheme = true

	fl, _, display := newLoop(t, cfg, t.TempDir())
	require.NoError(t, fl.Start(grayPhoto(t)))

	assert.Empty(t, display.errors)
	assert.NotContains(t, display.panes, PaneScheme)
}

func TestStart_AutoBreakpointsFollowHistogram(t *testing.T) {
	cfg := testConfig(t)
	cfg.AutoBreakpoints = true

	fl, controls, _ := newLoop(t, cfg, t.TempDir())
	require.NoError(t, fl.Start(grayPhoto(t)))

	assert.Equal(t, models.Clamp(controls.breakpoints), controls.breakpoints)
	assert.Len(t, controls.breakpoints, 9)
}

func TestSave_WritesSettingsWithScheme(t *testing.T) {
	cfg := testConfig(t)
	cfg.SaveScheme = true
	configPath := filepath.Join(t.TempDir(), "papercut.toml")

	fl, controls, _ := newLoop(t, cfg, t.TempDir())
	fl.WithConfigPath(configPath)
	require.NoError(t, fl.Start(grayPhoto(t)))

	controls.breakpoints[0] = 40
	controls.colors[1] = models.White
	require.NoError(t, fl.Tick())
	require.NoError(t, fl.Save())

	saved, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 10, saved.BandCount)
	assert.Equal(t, 40, saved.Breakpoints[0])
	assert.Equal(t, models.White, saved.BandColors()[1])
	assert.Equal(t, models.Red, saved.BandColors()[0])
}

func TestSave_SkipsSettingsWithoutScheme(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "papercut.toml")

	fl, _, _ := newLoop(t, testConfig(t), t.TempDir())
	fl.WithConfigPath(configPath)
	require.NoError(t, fl.Start(grayPhoto(t)))
	require.NoError(t, fl.Save())

	assert.NoFileExists(t, configPath)
}
