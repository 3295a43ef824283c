// Package config handles application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all application settings.
type Config struct {
	Display    DisplayConfig    `yaml:"display"`
	Simulation SimulationConfig `yaml:"simulation"`
	Data       DataConfig       `yaml:"data"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// DisplayConfig holds viewer window settings.
type DisplayConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
	ShowStats  bool `yaml:"show_stats"`
}

// SimulationConfig holds stepping settings.
type SimulationConfig struct {
	FixedStep time.Duration `yaml:"fixed_step"`
	TimeScale float32       `yaml:"time_scale"`
}

// DataConfig holds content paths.
type DataConfig struct {
	Scene      string `yaml:"scene"`      // scene descriptor
	Archetypes string `yaml:"archetypes"` // overrides the scene's archetype dir
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Display: DisplayConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Simulation: SimulationConfig{
			FixedStep: time.Second / 60,
			TimeScale: 1.0,
		},
		Data: DataConfig{
			Scene: "data/scenes/canyon.yaml",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the viewer and simulation cannot run with.
func (c *Config) Validate() error {
	if c.Display.Width <= 0 || c.Display.Height <= 0 {
		return fmt.Errorf("%w: display size %dx%d", ErrInvalid, c.Display.Width, c.Display.Height)
	}
	if c.Simulation.FixedStep <= 0 {
		return fmt.Errorf("%w: fixed_step must be positive, got %v", ErrInvalid, c.Simulation.FixedStep)
	}
	if c.Simulation.TimeScale <= 0 {
		return fmt.Errorf("%w: time_scale must be positive, got %v", ErrInvalid, c.Simulation.TimeScale)
	}
	if c.Data.Scene == "" {
		return fmt.Errorf("%w: no scene", ErrInvalid)
	}
	return nil
}
