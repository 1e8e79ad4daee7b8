// Package config holds the startup choices of a session. Values come from a TOML file and can
// be overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"papercut/internal/models"
	"papercut/internal/palette"
	"papercut/internal/processing/filters"
	"papercut/internal/scheme"

	"github.com/BurntSushi/toml"
)

const (
	LayoutHorizontal = "horizontal"
	LayoutVertical   = "vertical"

	DefaultPaneWidth  = 400
	DefaultPaneHeight = 300

	// MaxSmoothing caps the blur sigma; larger values merge every band edge.
	MaxSmoothing = 5.0
)

type Config struct {
	Image string `toml:"image"`

	// Color scheme persistence
	SchemePath string `toml:"scheme_path"`
	LoadScheme bool   `toml:"load_scheme"`
	SaveScheme bool   `toml:"save_scheme"`

	Layout     string `toml:"layout"`
	PaneWidth  int    `toml:"pane_width"`
	PaneHeight int    `toml:"pane_height"`

	BandCount       int      `toml:"band_count"`
	Breakpoints     []int    `toml:"breakpoints"`
	Colors          []string `toml:"colors"`
	AutoPalette     string   `toml:"auto_palette"`
	AutoBreakpoints bool     `toml:"auto_breakpoints"`

	// Intensity smoothing before banding
	Smoothing float64 `toml:"smoothing"`
	Despeckle bool    `toml:"despeckle"`

	SVGExport bool `toml:"svg_export"`

	LogLevel string `toml:"log_level"`
	LogJSON  bool   `toml:"log_json"`
}

func DefaultConfig() *Config {
	return &Config{
		SchemePath:  scheme.DefaultPath,
		Layout:      LayoutHorizontal,
		PaneWidth:   DefaultPaneWidth,
		PaneHeight:  DefaultPaneHeight,
		BandCount:   models.DefaultBandCount,
		Breakpoints: models.DefaultBreakpointsFor(models.DefaultBandCount),
		LogLevel:    "info",
	}
}

// Validate clamps and normalizes values to safe ranges. It fails only on values that cannot be
// repaired: colours that do not parse and unknown palette methods.
func (c *Config) Validate() error {
	if c.SchemePath == "" {
		c.SchemePath = scheme.DefaultPath
	}

	c.Layout = strings.ToLower(strings.TrimSpace(c.Layout))
	if c.Layout != LayoutVertical {
		c.Layout = LayoutHorizontal
	}

	if c.PaneWidth <= 0 {
		c.PaneWidth = DefaultPaneWidth
	}
	if c.PaneHeight <= 0 {
		c.PaneHeight = DefaultPaneHeight
	}

	if c.BandCount == 0 {
		c.BandCount = models.DefaultBandCount
	}
	c.BandCount = min(max(c.BandCount, models.MinBandCount), models.MaxBandCount)

	if len(c.Breakpoints) != c.BandCount-1 {
		c.Breakpoints = models.DefaultBreakpointsFor(c.BandCount)
	} else {
		c.Breakpoints = models.Clamp(c.Breakpoints)
	}

	c.Smoothing = min(max(c.Smoothing, 0), MaxSmoothing)

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	var errs []error
	for i, s := range c.Colors {
		if _, err := models.ParseHexColor(s); err != nil {
			errs = append(errs, fmt.Errorf("colors[%d]: %w", i, err))
		}
	}
	if _, err := palette.ParseMethod(c.AutoPalette); err != nil {
		errs = append(errs, fmt.Errorf("auto_palette: %w", err))
	}
	return errors.Join(errs...)
}

func (c *Config) Vertical() bool {
	return c.Layout == LayoutVertical
}

// BandColors returns the configured colours for BandCount bands, black where none is set or
// the value does not parse.
func (c *Config) BandColors() models.ColorAssignment {
	colors := models.NewColorAssignment(c.BandCount)
	for i := 0; i < len(colors) && i < len(c.Colors); i++ {
		if col, err := models.ParseHexColor(c.Colors[i]); err == nil {
			colors[i] = col
		}
	}
	return colors
}

// SetBandColors stores colors as hex strings.
func (c *Config) SetBandColors(colors models.ColorAssignment) {
	c.Colors = make([]string, len(colors))
	for i, col := range colors {
		c.Colors[i] = col.Hex()
	}
}

// IntensitySmoothing is the smoothing applied before banding.
func (c *Config) IntensitySmoothing() filters.Smoothing {
	return filters.Smoothing{Sigma: c.Smoothing, Despeckle: c.Despeckle}
}

// PaletteMethod is the parsed AutoPalette value.
func (c *Config) PaletteMethod() palette.Method {
	m, _ := palette.ParseMethod(c.AutoPalette)
	return m
}

// Load reads configuration from the given TOML file. If the file does not exist it returns
// DefaultConfig(). On a decode error it returns defaults with the error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	_, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return DefaultConfig(), fmt.Errorf("config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to the given path in TOML format.
func (c *Config) Save(path string) error {
	_ = c.Validate()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(c)
}
