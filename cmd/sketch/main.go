// Package main is the entry point for the interactive sketch.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/sketchbox/internal/config"
	"github.com/Faultbox/sketchbox/internal/engine/input"
	"github.com/Faultbox/sketchbox/internal/engine/renderer"
	"github.com/Faultbox/sketchbox/internal/engine/ui2d"
	"github.com/Faultbox/sketchbox/internal/engine/window"
	"github.com/Faultbox/sketchbox/internal/logger"
	"github.com/Faultbox/sketchbox/internal/sketch"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== Sketch ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	if err := run(cfg); err != nil {
		logger.Error("sketch error", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("sketch closed normally")
}

func run(cfg *config.Config) error {
	win, err := window.New(window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Window.VSync,
		MSAA:       cfg.Window.MSAA,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	defer win.Close()

	// renderer must be created after the window, which owns the GL context
	s, err := sketch.New(cfg, sketch.Deps{
		Host:   win,
		Events: input.New(),
		NewRenderer: func(opts renderer.Options) (sketch.Surface, error) {
			r, err := renderer.New(opts)
			if err != nil {
				return nil, err
			}
			return r, nil
		},
		NewOverlay: func(width, height int) (sketch.Overlay, error) {
			hud, err := ui2d.NewHUD(width, height)
			if err != nil {
				return nil, err
			}
			return hud, nil
		},
	})
	if err != nil {
		return err
	}
	defer s.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return s.Run(ctx)
}
