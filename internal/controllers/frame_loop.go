// Package controllers drives the interactive session: one frame per control change.
package controllers

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"sync"
	"sync/atomic"

	"papercut/internal/config"
	"papercut/internal/logger"
	"papercut/internal/models"
	"papercut/internal/opencv/conversion"
	"papercut/internal/opencv/safe"
	"papercut/internal/palette"
	"papercut/internal/pipeline"
	"papercut/internal/processing/filters"
	"papercut/internal/scheme"
	"papercut/internal/services"
	"papercut/internal/vector"
)

const (
	PaneOriginal   = "Original"
	PaneGrayscale  = "Grayscale"
	PaneCustomized = "Customized"
	PaneScheme     = "Scheme preview"
)

// Controls is the set of sliders the loop reads each frame and resynchronizes after correction.
type Controls interface {
	Breakpoints() []int
	Colors() models.ColorAssignment
	SetBreakpoints(values []int)
	SetColors(colors models.ColorAssignment)
	ShowBands(bands []models.Band)
}

// Display shows the frame outputs.
type Display interface {
	ShowPane(name string, img image.Image)
	SetStatus(status string)
	SetCoverage(shares []float64)
	SetImageInfo(width, height, channels int, format string)
	ShowError(title string, err error)
	Close()
}

// FrameLoop owns the session state: the source photo, its grayscale rendition, the corrected
// breakpoints and the last rendered frame. All methods run on the UI goroutine.
type FrameLoop struct {
	cfg          *config.Config
	outputDir    string
	logger       logger.Logger
	imageService *services.ImageService
	renderer     *pipeline.Renderer

	controls Controls
	display  Display

	source      *models.ImageData
	gray        *filters.Grayscale
	hist        []float64
	breakpoints *models.BreakpointSet
	frame       *pipeline.Frame
	frames      int

	// configPath receives the final bands when save_scheme is set; empty disables it.
	configPath string

	closeOnce sync.Once
	closed    atomic.Bool
}

func NewFrameLoop(cfg *config.Config, outputDir string, log logger.Logger, imageService *services.ImageService) *FrameLoop {
	return &FrameLoop{
		cfg:          cfg,
		outputDir:    outputDir,
		logger:       log,
		imageService: imageService,
		renderer:     pipeline.NewRenderer(log),
	}
}

// WithConfigPath makes a save with save_scheme set also write the final band count,
// breakpoints and colours back to the config file at path.
func (fl *FrameLoop) WithConfigPath(path string) *FrameLoop {
	fl.configPath = path
	return fl
}

// Attach connects the loop to its controls and display.
func (fl *FrameLoop) Attach(controls Controls, display Display) {
	fl.controls = controls
	fl.display = display
}

// Start takes ownership of source, seeds the controls and renders the initial frame.
func (fl *FrameLoop) Start(source *models.ImageData) error {
	if fl.controls == nil || fl.display == nil {
		return fmt.Errorf("frame loop started before Attach")
	}

	gray, err := filters.NewGrayscaleConverter().WithSmoothing(fl.cfg.IntensitySmoothing()).Derive(source.Mat)
	if err != nil {
		source.Close()
		return fmt.Errorf("grayscale: %w", err)
	}
	fl.source = source
	fl.gray = gray

	if grayImg, err := conversion.MatToGray(gray.Intensity); err == nil {
		fl.hist = palette.Histogram(grayImg)
	} else {
		fl.logger.Warning("FrameLoop", "intensity histogram unavailable", map[string]interface{}{
			"error": err.Error(),
		})
	}

	initial, colors := fl.seed()

	bs, err := models.NewBreakpointSet(fl.cfg.BandCount, initial)
	if err != nil {
		return err
	}
	fl.breakpoints = bs

	fl.controls.SetBreakpoints(bs.Values())
	fl.controls.SetColors(colors)

	fl.display.SetImageInfo(source.Width, source.Height, source.Channels, source.Format)
	fl.showMat(PaneOriginal, source)
	fl.showGray()

	if fl.cfg.LoadScheme {
		fl.LoadScheme()
	}

	return fl.Tick()
}

// seed picks the initial breakpoints and colours: config, then optional suggestions from the photo.
func (fl *FrameLoop) seed() ([]int, models.ColorAssignment) {
	n := fl.cfg.BandCount
	breakpoints := fl.cfg.Breakpoints
	colors := fl.cfg.BandColors()

	if fl.cfg.AutoBreakpoints && fl.hist != nil {
		breakpoints = palette.QuantileBreakpoints(fl.hist, n)
		fl.logger.Info("FrameLoop", "breakpoints seeded from histogram", map[string]interface{}{
			"breakpoints": breakpoints,
		})
	}

	if method := fl.cfg.PaletteMethod(); method != palette.MethodNone {
		img, err := conversion.MatToImage(fl.source.Mat)
		if err == nil {
			var suggested models.ColorAssignment
			suggested, err = palette.Suggest(img, n, method)
			if err == nil {
				colors = suggested
				fl.logger.Info("FrameLoop", "palette suggested", map[string]interface{}{
					"method": method.String(),
					"colors": hexes(colors),
				})
			}
		}
		if err != nil {
			fl.logger.Warning("FrameLoop", "palette suggestion failed", map[string]interface{}{
				"method": method.String(),
				"error":  err.Error(),
			})
		}
	}

	return breakpoints, colors
}

// Tick runs one frame: read and correct the controls, render, display.
func (fl *FrameLoop) Tick() error {
	if fl.closed.Load() || fl.gray == nil {
		return nil
	}

	raw := fl.controls.Breakpoints()
	corrected, changed, err := fl.breakpoints.Update(raw)
	if err != nil {
		return err
	}
	if changed {
		fl.controls.SetBreakpoints(corrected)
		fl.logger.Debug("FrameLoop", "breakpoints corrected", map[string]interface{}{
			"raw":       raw,
			"corrected": corrected,
		})
	}

	colors := fl.controls.Colors()
	bands := models.BuildBands(fl.breakpoints, colors)

	frame, err := fl.renderer.Render(fl.gray.Replicated, bands)
	if err != nil {
		fl.display.ShowError("Render failed", err)
		return err
	}
	fl.frame.Close()
	fl.frame = frame
	fl.frames++

	fl.logger.Debug("FrameLoop", "frame", map[string]interface{}{
		"frame":       fl.frames,
		"breakpoints": corrected,
		"colors":      hexes(colors),
	})

	fl.controls.ShowBands(bands)
	fl.showFrame()
	return nil
}

func (fl *FrameLoop) showFrame() {
	fl.showSafe(PaneCustomized, fl.frame.Composite)
	for i, layer := range fl.frame.Layers {
		fl.showSafe(fmt.Sprintf("%s part", fl.frame.Bands[i].Label()), layer)
	}

	if fl.hist != nil {
		ranges := make([]models.Range, len(fl.frame.Bands))
		for i, b := range fl.frame.Bands {
			ranges[i] = b.Range
		}
		fl.display.SetCoverage(palette.Share(fl.hist, ranges))
	}
	fl.display.SetStatus(fmt.Sprintf("Frame %d", fl.frames))
}

// Save writes the grayscale and customized images, the optional vector rendition and the
// optional scheme, then closes the session. On a write failure the session stays open.
func (fl *FrameLoop) Save() error {
	if fl.closed.Load() || fl.frame == nil {
		return nil
	}

	written, err := fl.imageService.SaveResults(fl.outputDir, fl.gray.Replicated, fl.frame.Composite)
	if err != nil {
		fl.logger.Error("FrameLoop", err, map[string]interface{}{
			"written": written,
		})
		fl.display.ShowError("Save failed", err)
		return err
	}

	if fl.cfg.SVGExport {
		if err := fl.exportVector(); err != nil {
			fl.logger.Error("FrameLoop", err, nil)
			fl.display.ShowError("Vector export failed", err)
			return err
		}
	}

	if fl.cfg.SaveScheme {
		if err := fl.SaveScheme(); err != nil {
			return err
		}
		if err := fl.saveSettings(); err != nil {
			return err
		}
	}

	fl.logger.Info("FrameLoop", "session saved", map[string]interface{}{
		"files":  written,
		"frames": fl.frames,
	})
	fl.Close()
	return nil
}

func (fl *FrameLoop) exportVector() error {
	layers := make([]vector.Layer, 0, len(fl.frame.Masks))
	for i, m := range fl.frame.Masks {
		gray, err := conversion.MatToGray(m)
		if err != nil {
			return fmt.Errorf("%s mask: %w", fl.frame.Bands[i].Label(), err)
		}
		layers = append(layers, vector.Layer{Color: fl.frame.Bands[i].Color, Mask: gray})
	}

	path := filepath.Join(fl.outputDir, services.VectorOutput)
	groups, err := vector.ExportFile(path, fl.gray.Replicated.Cols(), fl.gray.Replicated.Rows(), layers)
	if err != nil {
		return fmt.Errorf("%w: %v", services.ErrWrite, err)
	}

	fl.logger.Info("FrameLoop", "vector export written", map[string]interface{}{
		"path":   path,
		"groups": groups,
	})
	return nil
}

// saveSettings writes the live band count, breakpoints and colours into the config file.
func (fl *FrameLoop) saveSettings() error {
	if fl.configPath == "" {
		return nil
	}

	colors := make(models.ColorAssignment, len(fl.frame.Bands))
	for i, b := range fl.frame.Bands {
		colors[i] = b.Color
	}
	fl.cfg.BandCount = len(fl.frame.Bands)
	fl.cfg.Breakpoints = fl.breakpoints.Values()
	fl.cfg.SetBandColors(colors)

	if err := fl.cfg.Save(fl.configPath); err != nil {
		fl.logger.Error("FrameLoop", err, map[string]interface{}{
			"path": fl.configPath,
		})
		fl.display.ShowError("Saving settings failed", err)
		return err
	}

	fl.logger.Info("FrameLoop", "settings saved", map[string]interface{}{
		"path": fl.configPath,
	})
	return nil
}

// Quit closes the session without saving.
func (fl *FrameLoop) Quit() {
	fl.logger.Info("FrameLoop", "session closed without saving", map[string]interface{}{
		"frames": fl.frames,
	})
	fl.Close()
}

// SaveScheme persists the live bands to the configured scheme path.
func (fl *FrameLoop) SaveScheme() error {
	if fl.frame == nil {
		return nil
	}

	s := scheme.FromBands(fl.frame.Bands)
	if err := scheme.Save(s, fl.cfg.SchemePath); err != nil {
		fl.logger.Error("FrameLoop", err, map[string]interface{}{
			"path": fl.cfg.SchemePath,
		})
		fl.display.ShowError("Saving color scheme failed", err)
		return err
	}

	fl.logger.Info("FrameLoop", "color scheme saved", map[string]interface{}{
		"path":    fl.cfg.SchemePath,
		"entries": s.Len(),
	})
	return nil
}

// LoadScheme reads the configured scheme, previews it on the grayscale image and seeds the
// controls from it. A missing file is logged; a malformed file is reported and the controls
// keep their values.
func (fl *FrameLoop) LoadScheme() {
	if fl.closed.Load() || fl.gray == nil {
		return
	}
	path := fl.cfg.SchemePath

	s, found, err := scheme.Load(path)
	switch {
	case err != nil:
		fl.logger.Error("FrameLoop", err, map[string]interface{}{
			"path":      path,
			"malformed": errors.Is(err, scheme.ErrMalformed),
		})
		fl.display.ShowError("Color scheme not loaded", err)
		return
	case !found:
		fl.logger.Info("FrameLoop", "no color scheme found, using defaults", map[string]interface{}{
			"path": path,
		})
		return
	}

	fl.previewScheme(s)

	n := fl.breakpoints.BandCount()
	fl.controls.SetColors(s.Colors(n))
	if breakpoints, ok := s.Breakpoints(n); ok {
		fl.controls.SetBreakpoints(breakpoints)
	}

	fl.logger.Info("FrameLoop", "color scheme loaded", map[string]interface{}{
		"path":    path,
		"entries": s.Len(),
	})
}

func (fl *FrameLoop) previewScheme(s *scheme.Scheme) {
	preview, err := fl.gray.Replicated.CloneWithTag("scheme preview")
	if err != nil {
		fl.logger.Error("FrameLoop", err, nil)
		return
	}
	defer preview.Close()

	if err := scheme.Apply(preview, s); err != nil {
		fl.logger.Error("FrameLoop", err, nil)
		fl.display.ShowError("Color scheme not applied", err)
		return
	}
	fl.showSafe(PaneScheme, preview)
}

// Close releases every Mat of the session and closes the display. It is safe to call again,
// including from the display's own close callback.
func (fl *FrameLoop) Close() {
	first := false
	fl.closeOnce.Do(func() {
		first = true
		fl.closed.Store(true)
		fl.frame.Close()
		fl.frame = nil
		fl.gray.Close()
		fl.source.Close()
	})
	if first && fl.display != nil {
		fl.display.Close()
	}
}

// Shutdown lets the shutdown manager close the session.
func (fl *FrameLoop) Shutdown() {
	fl.Close()
}

func (fl *FrameLoop) Closed() bool {
	return fl.closed.Load()
}

// Frame exposes the last rendered frame.
func (fl *FrameLoop) Frame() *pipeline.Frame {
	return fl.frame
}

func (fl *FrameLoop) showGray() {
	fl.showSafe(PaneGrayscale, fl.gray.Replicated)
}

func (fl *FrameLoop) showMat(name string, img *models.ImageData) {
	fl.showSafe(name, img.Mat)
}

// showSafe converts mat to a pane-sized image. Conversion failures only cost the pane.
func (fl *FrameLoop) showSafe(name string, mat *safe.Mat) {
	img, err := conversion.Thumbnail(mat, fl.cfg.PaneWidth, fl.cfg.PaneHeight)
	if err != nil {
		fl.logger.Warning("FrameLoop", "pane not updated", map[string]interface{}{
			"pane":  name,
			"mat":   mat.Tag(),
			"error": err.Error(),
		})
		return
	}
	fl.display.ShowPane(name, img)
}

func hexes(colors models.ColorAssignment) []string {
	out := make([]string, len(colors))
	for i, c := range colors {
		out[i] = c.Hex()
	}
	return out
}
