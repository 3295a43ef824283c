// Package main is the entry point for the skyhull flight viewer.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/skyhull/internal/assets"
	"github.com/Faultbox/skyhull/internal/config"
	"github.com/Faultbox/skyhull/internal/flight"
	"github.com/Faultbox/skyhull/internal/logger"
	"github.com/Faultbox/skyhull/internal/scene"
	"github.com/Faultbox/skyhull/internal/viewer"
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

	logger.Info("=== skyhull ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	var registry *flight.Registry
	if cfg.Data.Archetypes != "" {
		registry, err = flight.LoadRegistry(cfg.Data.Archetypes)
		if err != nil {
			logger.Error("failed to load archetypes", zap.Error(err))
			os.Exit(1)
		}
	}

	store := assets.NewManager()
	defer store.Close()

	s, err := scene.Load(cfg.Data.Scene, registry,
		scene.WithFixedStep(cfg.Simulation.FixedStep),
		scene.WithAssets(store),
	)
	if err != nil {
		logger.Error("failed to load scene", zap.String("path", cfg.Data.Scene), zap.Error(err))
		os.Exit(1)
	}
	defer s.Close()

	v, err := viewer.New(cfg, s)
	if err != nil {
		logger.Error("failed to create viewer", zap.Error(err))
		os.Exit(1)
	}
	defer v.Close()

	v.Run()

	logger.Info("viewer closed normally")
}
