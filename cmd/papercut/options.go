package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"strings"

	"papercut/internal/config"
)

// options are the command-line values. Only flags the user actually set override the config file.
type options struct {
	configPath      string
	image           string
	schemePath      string
	loadScheme      bool
	saveScheme      bool
	layout          string
	bands           int
	autoPalette     string
	autoBreakpoints bool
	svg             bool
	smoothing       float64
	despeckle       bool
	prompt          bool
	logJSON         bool

	set map[string]bool
}

func parseOptions(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{set: make(map[string]bool)}

	fs.StringVar(&o.configPath, "config", "papercut.toml", "TOML configuration file")
	fs.StringVar(&o.image, "image", "", "photo to posterize; a file dialog opens when empty")
	fs.StringVar(&o.schemePath, "scheme", "", "color scheme file")
	fs.BoolVar(&o.loadScheme, "load-scheme", false, "load the color scheme at startup")
	fs.BoolVar(&o.saveScheme, "save-scheme", false, "save the color scheme on exit")
	fs.StringVar(&o.layout, "layout", "", "pane stacking: horizontal or vertical")
	fs.IntVar(&o.bands, "bands", 0, "number of bands (2-10)")
	fs.StringVar(&o.autoPalette, "auto-palette", "", "seed colors from the photo: dominantcolor or kmeans")
	fs.BoolVar(&o.autoBreakpoints, "auto-breakpoints", false, "seed breakpoints from the intensity histogram")
	fs.BoolVar(&o.svg, "svg", false, "also export the result as layered SVG on save")
	fs.Float64Var(&o.smoothing, "smoothing", 0, "Gaussian blur sigma applied before banding (0 disables)")
	fs.BoolVar(&o.despeckle, "despeckle", false, "median filter the grayscale before banding")
	fs.BoolVar(&o.prompt, "prompt", false, "ask the startup questions on stdin")
	fs.BoolVar(&o.logJSON, "log-json", false, "log as JSON")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { o.set[f.Name] = true })
	return o, nil
}

// apply overrides cfg with every flag that was set and revalidates it.
func (o *options) apply(cfg *config.Config) error {
	if o.set["image"] {
		cfg.Image = o.image
	}
	if o.set["scheme"] {
		cfg.SchemePath = o.schemePath
	}
	if o.set["load-scheme"] {
		cfg.LoadScheme = o.loadScheme
	}
	if o.set["save-scheme"] {
		cfg.SaveScheme = o.saveScheme
	}
	if o.set["layout"] {
		cfg.Layout = o.layout
	}
	if o.set["bands"] && o.bands != cfg.BandCount {
		cfg.BandCount = o.bands
		cfg.Breakpoints = nil
	}
	if o.set["auto-palette"] {
		cfg.AutoPalette = o.autoPalette
	}
	if o.set["auto-breakpoints"] {
		cfg.AutoBreakpoints = o.autoBreakpoints
	}
	if o.set["svg"] {
		cfg.SVGExport = o.svg
	}
	if o.set["smoothing"] {
		cfg.Smoothing = o.smoothing
	}
	if o.set["despeckle"] {
		cfg.Despeckle = o.despeckle
	}
	if o.set["log-json"] {
		cfg.LogJSON = o.logJSON
	}
	return cfg.Validate()
}

// askStartup asks the three startup questions, keeping the configured value on an empty answer.
func askStartup(in io.Reader, out io.Writer, cfg *config.Config) error {
	r := bufio.NewReader(in)

	var err error
	if cfg.LoadScheme, err = askYesNo(r, out, "Load color scheme from "+cfg.SchemePath, cfg.LoadScheme); err != nil {
		return err
	}
	if cfg.SaveScheme, err = askYesNo(r, out, "Save color scheme on exit", cfg.SaveScheme); err != nil {
		return err
	}

	vertical, err := askYesNo(r, out, "Stack windows vertically", cfg.Vertical())
	if err != nil {
		return err
	}
	cfg.Layout = config.LayoutHorizontal
	if vertical {
		cfg.Layout = config.LayoutVertical
	}
	return nil
}

func askYesNo(r *bufio.Reader, out io.Writer, question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}

	for {
		fmt.Fprintf(out, "%s? [%s] ", question, hint)

		line, err := r.ReadString('\n')
		answer := strings.ToLower(strings.TrimSpace(line))
		switch {
		case answer == "y" || answer == "yes":
			return true, nil
		case answer == "n" || answer == "no":
			return false, nil
		case answer == "" && err == nil:
			return def, nil
		case err == io.EOF:
			return def, nil
		case err != nil:
			return def, err
		}
		fmt.Fprintln(out, "Please answer y or n.")
	}
}
