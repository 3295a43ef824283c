package config

import (
	"flag"
	"time"
)

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagScene      = flag.String("scene", "", "Scene descriptor to load")
	flagWindowed   = flag.Bool("windowed", false, "Run in windowed mode")
	flagFullscreen = flag.Bool("fullscreen", false, "Run in fullscreen mode")
	flagWidth      = flag.Int("width", 0, "Window width")
	flagHeight     = flag.Int("height", 0, "Window height")
	flagFixedStep  = flag.Duration("fixed-step", 0, "Simulation step (e.g. 16ms)")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Display.ShowStats = true
	}
	if *flagScene != "" {
		cfg.Data.Scene = *flagScene
	}
	if *flagWindowed {
		cfg.Display.Fullscreen = false
	}
	if *flagFullscreen {
		cfg.Display.Fullscreen = true
	}
	if *flagWidth > 0 {
		cfg.Display.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Display.Height = *flagHeight
	}
	if *flagFixedStep > time.Duration(0) {
		cfg.Simulation.FixedStep = *flagFixedStep
	}
}
