package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Display.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Display.Width)
	}
	if cfg.Display.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Display.Height)
	}
	if cfg.Display.Fullscreen {
		t.Error("expected fullscreen to be false by default")
	}
	if !cfg.Display.VSync {
		t.Error("expected vsync to be true by default")
	}

	if cfg.Simulation.FixedStep != time.Second/60 {
		t.Errorf("expected fixed step 1/60s, got %v", cfg.Simulation.FixedStep)
	}
	if cfg.Simulation.TimeScale != 1 {
		t.Errorf("expected time scale 1, got %f", cfg.Simulation.TimeScale)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero width", func(c *Config) { c.Display.Width = 0 }},
		{"negative height", func(c *Config) { c.Display.Height = -1 }},
		{"zero step", func(c *Config) { c.Simulation.FixedStep = 0 }},
		{"zero time scale", func(c *Config) { c.Simulation.TimeScale = 0 }},
		{"no scene", func(c *Config) { c.Data.Scene = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
display:
  width: 1920
  height: 1080
  fullscreen: true
  vsync: false
  fps_limit: 144
  show_stats: true

simulation:
  fixed_step: 8ms
  time_scale: 0.5

data:
  scene: "scenes/dunes.yaml"
  archetypes: "ships"

logging:
  level: "debug"
  log_file: "sim.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Display.Width != 1920 || cfg.Display.Height != 1080 {
		t.Errorf("expected 1920x1080, got %dx%d", cfg.Display.Width, cfg.Display.Height)
	}
	if !cfg.Display.Fullscreen {
		t.Error("expected fullscreen to be true")
	}
	if cfg.Display.VSync {
		t.Error("expected vsync to be false")
	}
	if cfg.Display.FPSLimit != 144 {
		t.Errorf("expected fps limit 144, got %d", cfg.Display.FPSLimit)
	}
	if cfg.Simulation.FixedStep != 8*time.Millisecond {
		t.Errorf("expected fixed step 8ms, got %v", cfg.Simulation.FixedStep)
	}
	if cfg.Simulation.TimeScale != 0.5 {
		t.Errorf("expected time scale 0.5, got %f", cfg.Simulation.TimeScale)
	}
	if cfg.Data.Scene != "scenes/dunes.yaml" || cfg.Data.Archetypes != "ships" {
		t.Errorf("unexpected data paths: %+v", cfg.Data)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "sim.log" {
		t.Errorf("unexpected logging: %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
display:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromMissing(t *testing.T) {
	if _, err := LoadFrom("/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}

	cfg, err := LoadFrom("")
	if err != nil {
		t.Fatalf("LoadFrom(\"\") = %v", err)
	}
	if cfg.Display.Width != Default().Display.Width {
		t.Error("empty path should return defaults")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "skyhull.yaml")
	if err := os.WriteFile(configPath, []byte("display:\n  width: 800\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find skyhull.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
				if !cfg.Display.ShowStats {
					t.Error("expected show_stats to be enabled with debug flag")
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "scene flag",
			setup: func() { *flagScene = "other.yaml" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Data.Scene != "other.yaml" {
					t.Errorf("expected scene other.yaml, got %s", cfg.Data.Scene)
				}
			},
			teardown: func() { *flagScene = "" },
		},
		{
			name:  "windowed flag",
			setup: func() { *flagWindowed = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Display.Fullscreen {
					t.Error("expected fullscreen to be false with windowed flag")
				}
			},
			teardown: func() { *flagWindowed = false },
		},
		{
			name:  "fullscreen flag",
			setup: func() { *flagFullscreen = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Display.Fullscreen {
					t.Error("expected fullscreen to be true with fullscreen flag")
				}
			},
			teardown: func() { *flagFullscreen = false },
		},
		{
			name: "width and height flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Display.Width != 2560 || cfg.Display.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Display.Width, cfg.Display.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
		{
			name:  "fixed step flag",
			setup: func() { *flagFixedStep = 5 * time.Millisecond },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Simulation.FixedStep != 5*time.Millisecond {
					t.Errorf("expected fixed step 5ms, got %v", cfg.Simulation.FixedStep)
				}
			},
			teardown: func() { *flagFixedStep = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
display:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width from the flag, height from the file
	if cfg.Display.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Display.Width)
	}
	if cfg.Display.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Display.Height)
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Display.Width = 1024
	cfg.Simulation.FixedStep = 20 * time.Millisecond
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo: %v", err)
	}

	loaded, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if loaded.Display.Width != 1024 || loaded.Simulation.FixedStep != 20*time.Millisecond {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}
