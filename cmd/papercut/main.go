package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime"

	"papercut/internal/config"
	"papercut/internal/controllers"
	"papercut/internal/logger"
	"papercut/internal/models"
	"papercut/internal/services"
	"papercut/internal/shutdown"
	"papercut/internal/views"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
)

const (
	AppName    = "Papercut"
	AppID      = "com.imageprocessing.papercut"
	AppVersion = "1.0.0"
)

// Application wires the window, the frame loop and the shutdown sequence.
type Application struct {
	fyneApp fyne.App
	window  fyne.Window
	logger  logger.Logger
	cfg     *config.Config

	view         *views.MainView
	loop         *controllers.FrameLoop
	imageService *services.ImageService
	shutdown     *shutdown.Manager

	exitCode int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseOptions(flag.NewFlagSet(AppName, flag.ContinueOnError), args)
	if err != nil {
		return 2
	}

	cfg, cfgErr := config.Load(opts.configPath)
	if err := opts.apply(cfg); err != nil {
		cfgErr = errors.Join(cfgErr, err)
	}

	if opts.prompt {
		if err := askStartup(os.Stdin, os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "startup questions: %v\n", err)
			return 1
		}
	}

	appLogger := newLogger(cfg)
	if cfgErr != nil {
		appLogger.Warning("Application", "configuration problems, using defaults where invalid", map[string]interface{}{
			"config": opts.configPath,
			"error":  cfgErr.Error(),
		})
	}

	application := NewApplication(cfg, opts.configPath, appLogger)
	return application.Run()
}

func newLogger(cfg *config.Config) logger.Logger {
	level := logger.LevelFromEnv(logger.ParseLevel(cfg.LogLevel))
	if cfg.LogJSON {
		return logger.NewJSONLogger(level)
	}
	return logger.NewConsoleLogger(level)
}

func NewApplication(cfg *config.Config, configPath string, appLogger logger.Logger) *Application {
	fyneApp := app.NewWithID(AppID)
	app.SetMetadata(fyne.AppMetadata{
		ID:      AppID,
		Name:    AppName,
		Version: AppVersion,
	})

	window := fyneApp.NewWindow(AppName)
	window.Resize(windowSize(cfg))
	window.SetMaster()

	appLogger.Info("Application", "starting", map[string]interface{}{
		"version":    AppVersion,
		"go_version": runtime.Version(),
		"bands":      cfg.BandCount,
		"layout":     cfg.Layout,
		"scheme":     cfg.SchemePath,
	})

	imageService := services.NewImageService(appLogger)
	view := views.NewMainView(window, views.Layout{
		BandCount:  cfg.BandCount,
		Vertical:   cfg.Vertical(),
		PaneWidth:  cfg.PaneWidth,
		PaneHeight: cfg.PaneHeight,
	})

	outputDir, err := os.Getwd()
	if err != nil {
		outputDir = "."
	}

	loop := controllers.NewFrameLoop(cfg, outputDir, appLogger, imageService).WithConfigPath(configPath)
	loop.Attach(view, view)

	application := &Application{
		fyneApp:      fyneApp,
		window:       window,
		logger:       appLogger,
		cfg:          cfg,
		view:         view,
		loop:         loop,
		imageService: imageService,
		shutdown:     shutdown.NewManager(appLogger),
	}
	application.setupHandlers()

	return application
}

func (a *Application) setupHandlers() {
	a.view.SetControlsChangedHandler(func() {
		if err := a.loop.Tick(); err != nil {
			a.logger.Error("Application", err, nil)
		}
	})
	a.view.SetSaveHandler(func() { _ = a.loop.Save() })
	a.view.SetQuitHandler(a.loop.Quit)
	a.view.SetLoadSchemeHandler(func() {
		a.loop.LoadScheme()
		if err := a.loop.Tick(); err != nil {
			a.logger.Error("Application", err, nil)
		}
	})
	a.view.SetSaveSchemeHandler(func() { _ = a.loop.SaveScheme() })

	a.window.SetOnClosed(a.loop.Close)

	// Closing the session closes the master window, which ends the app.
	a.shutdown.Register("session", shutdown.Func(func() {
		if !a.loop.Closed() {
			fyne.DoAndWait(a.loop.Close)
		}
	}))
}

// Run loads the photo, shows the window and blocks until the session ends.
func (a *Application) Run() int {
	a.shutdown.Listen()
	defer a.shutdown.Shutdown()

	if a.cfg.Image != "" {
		img, err := a.imageService.LoadFile(a.shutdown.Context(), a.cfg.Image)
		if err != nil {
			a.fatal(err)
			a.loop.Close()
			return a.exitCode
		}
		a.start(img)
	} else {
		a.view.ShowImageOpenDialog(services.SupportedExtensions(), a.onImageSelected)
	}

	a.window.ShowAndRun()

	a.logger.Info("Application", "terminated", map[string]interface{}{
		"exit_code": a.exitCode,
	})
	return a.exitCode
}

func (a *Application) onImageSelected(reader fyne.URIReadCloser, err error) {
	if err != nil {
		a.fatal(fmt.Errorf("%w: %v", services.ErrNoImage, err))
		a.loop.Close()
		return
	}

	img, err := a.imageService.LoadImage(a.shutdown.Context(), reader)
	if err != nil {
		a.fatal(err)
		a.loop.Close()
		return
	}
	a.start(img)
}

func (a *Application) start(img *models.ImageData) {
	if err := a.loop.Start(img); err != nil {
		a.fatal(err)
		a.loop.Close()
	}
}

// fatal records an input error. Nothing is retried.
func (a *Application) fatal(err error) {
	a.logger.Error("Application", err, map[string]interface{}{
		"no_image": errors.Is(err, services.ErrNoImage),
		"decode":   errors.Is(err, services.ErrDecode),
	})
	fmt.Fprintf(os.Stderr, "%s: %v\n", AppName, err)
	a.exitCode = 1
}

// windowSize fits three panes along the stacking direction plus the control column.
func windowSize(cfg *config.Config) fyne.Size {
	const controlsWidth = 340
	w, h := float32(cfg.PaneWidth), float32(cfg.PaneHeight)
	if cfg.Vertical() {
		return fyne.NewSize(w+controlsWidth, 3*h)
	}
	return fyne.NewSize(3*w+controlsWidth, h+120)
}
