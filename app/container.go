package app

import (
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"time"

	"github.com/soocke/pixel-ruler-go/config"
	"github.com/soocke/pixel-ruler-go/domain/capture"
	"github.com/soocke/pixel-ruler-go/domain/measure"
	"github.com/soocke/pixel-ruler-go/domain/raster"
	"github.com/soocke/pixel-ruler-go/ui/model"
	"github.com/soocke/pixel-ruler-go/ui/presenter"
	"github.com/soocke/pixel-ruler-go/ui/text"
	"github.com/soocke/pixel-ruler-go/ui/view"
)

// AppContainer assembles the measurer, models, presenters and the root view.
type AppContainer struct {
	Config   *config.Config
	Logger   *slog.Logger
	Measurer *measure.Measurer
	History  *model.HistoryModel
	Grabber  capture.Grabber
	RootView *view.RootView

	// Presenters
	Presenter *presenter.MeasurePresenter
	Loop      *presenter.Loop
}

// BuildContainer constructs all components. No widgets are created until
// RootView.Build runs. Console lines go to out.
func BuildContainer(cfg *config.Config, logger *slog.Logger, out io.Writer) *AppContainer {
	c := &AppContainer{Config: cfg, Logger: logger}
	c.History = model.NewHistoryModel(cfg.HistorySize)
	c.Grabber = capture.NewScreenGrabber()
	c.RootView = view.NewRootView(cfg.WindowTitle, logger)
	c.Measurer = measure.NewMeasurer(logger, c.RootView, MeasureOptions(cfg))
	c.Presenter = presenter.NewMeasurePresenter(c.RootView, c.History, text.NewPrinter(cfg.Locale), out, logger)
	c.Measurer.AddListener(c.Presenter.OnEvent)
	return c
}

// MeasureOptions maps the configuration onto measurer options.
func MeasureOptions(cfg *config.Config) measure.Options {
	opts := measure.DefaultOptions()
	opts.Scale = cfg.DisplayScale
	opts.Overflow = measure.ParseOverflowPolicy(cfg.Overflow)
	opts.Style.Radius = float64(cfg.MarkerRadius)
	opts.Style.Marker = raster.ParseColor(cfg.MarkerColor, color.NRGBA{R: 255, A: 255})
	opts.Style.Line = raster.ParseColor(cfg.LineColor, opts.Style.Line)
	return opts
}

// LoadPhoto loads the configured photo source into the measurer. Errors wrap
// measure.ErrImageLoad and have already been reported to the presenter.
func (c *AppContainer) LoadPhoto() error {
	if c.Config.Source != config.SourceScreen {
		return c.Measurer.LoadImage(c.Config.ImagePath)
	}
	snap, err := capture.Take(c.Grabber, nil)
	if err != nil {
		err = fmt.Errorf("%w: screen: %w", measure.ErrImageLoad, err)
		c.Logger.Error("screen capture failed", "error", err)
		c.Presenter.OnEvent(measure.Event{Kind: measure.EventDiagnostic, Path: config.SourceScreen, Err: err})
		return err
	}
	label := fmt.Sprintf("screen@%s", snap.CapturedAt.Format(time.TimeOnly))
	return c.Measurer.LoadFrom(snap.Image, label)
}

// Submit forwards the typed reference length. Rejections surface as events.
func (c *AppContainer) Submit(s string) {
	_ = c.Measurer.SubmitReference(s)
}
