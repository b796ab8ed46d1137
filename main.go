package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/pflag"

	"github.com/soocke/pixel-ruler-go/app"
	"github.com/soocke/pixel-ruler-go/config"
	"github.com/soocke/pixel-ruler-go/domain/measure"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	flags := pflag.NewFlagSet("pixel-ruler", pflag.ContinueOnError)
	config.RegisterFlags(flags)
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	cfgPath, _ := flags.GetString("config")

	cfg, cfgErr := config.Load(cfgPath, flags)

	// Logs go to stderr; stdout carries the user-facing lines.
	logger := NewLogger(os.Stderr, ParseLevel(cfg.LogLevel, cfg.Debug))
	if cfgErr != nil {
		logger.Warn("config load failed, using defaults", "path", cfgPath, "error", cfgErr)
		if cfg.Source == config.SourceFile && cfg.ImagePath == "" {
			return 1
		}
	}
	logger.Info("starting", "source", cfg.Source, "image", cfg.ImagePath, "locale", cfg.Locale)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := app.NewApp(cfg, logger, os.Stdout).Run(ctx); err != nil {
		// load failures were already reported on stdout
		if !errors.Is(err, measure.ErrImageLoad) {
			logger.Error("run failed", "error", err)
		}
		return 1
	}
	logger.Info("session ended")
	return 0
}
