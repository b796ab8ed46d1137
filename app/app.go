package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	//lint:ignore ST1001 Dot import is intentional for concise Tk widget DSL builders.
	. "modernc.org/tk9.0"

	"github.com/soocke/pixel-ruler-go/config"
	"github.com/soocke/pixel-ruler-go/debug"
	"github.com/soocke/pixel-ruler-go/ui/presenter"
	"github.com/soocke/pixel-ruler-go/ui/theme"
)

const (
	tick        = 50 * time.Millisecond
	memInterval = 5 * time.Second
)

type app struct {
	c       *AppContainer
	ctx     context.Context
	afterID string
	closed  bool
}

// NewApp wires the container and registers the window close handler.
func NewApp(cfg *config.Config, logger *slog.Logger, out io.Writer) *app {
	a := &app{c: BuildContainer(cfg, logger, out)}
	a.c.Loop = presenter.NewLoop(a.c.Measurer, a.c.Presenter, a.scheduleUpdate, a.exitHandler)
	WmProtocol(App, "WM_DELETE_WINDOW", a.exitHandler)
	return a
}

// Run builds the window, loads the photo and blocks until the session ends.
// A photo that cannot be loaded ends the run before the window is shown; the
// returned error wraps measure.ErrImageLoad.
func (a *app) Run(ctx context.Context) error {
	a.ctx = ctx
	c := a.c
	theme.SetDark(c.Config.Dark)
	c.RootView.Build(c.Submit)
	c.Presenter.Greet()
	if err := c.LoadPhoto(); err != nil {
		c.Presenter.Tick(time.Now())
		a.exitHandler()
		return err
	}
	if c.Config.Debug {
		debug.StartMemLogger(ctx, memInterval, c.Logger)
	}
	c.Presenter.Tick(time.Now())
	a.scheduleUpdate()
	App.Wait()
	return nil
}

func (a *app) update() {
	defer recoverLog(a.c.Logger, "update loop panic")
	if a.ctx != nil && a.ctx.Err() != nil {
		a.c.Logger.Info("interrupted")
		a.exitHandler()
		return
	}
	a.c.Loop.Tick()
}

func (a *app) exitHandler() {
	if a.closed {
		return
	}
	a.closed = true
	if a.afterID != "" {
		TclAfterCancel(a.afterID)
	}
	Destroy(App)
}

func (a *app) scheduleUpdate() {
	// TclAfter keeps every update on Tk's event loop thread.
	a.afterID = TclAfter(tick, func() { a.update() })
}

func recoverLog(logger *slog.Logger, msg string) {
	if r := recover(); r != nil {
		if logger != nil {
			logger.Error(msg, "error", r)
		}
	}
}
