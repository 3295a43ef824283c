package flight

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/skyhull/internal/logger"
)

// Registry errors.
var (
	ErrUnknownArchetype   = errors.New("unknown flight archetype")
	ErrDuplicateArchetype = errors.New("duplicate flight archetype")
)

// Registry interns archetype configs by name. It is filled during scene load
// and only read afterwards, so lookups need no locking.
type Registry struct {
	configs map[string]*Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]*Config)}
}

// Register validates cfg and stores it under cfg.Name.
func (r *Registry) Register(cfg Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, exists := r.configs[cfg.Name]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateArchetype, cfg.Name)
	}
	stored := cfg
	r.configs[cfg.Name] = &stored
	return &stored, nil
}

// Get returns the shared config for an archetype.
func (r *Registry) Get(name string) (*Config, error) {
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownArchetype, name)
	}
	return cfg, nil
}

// Names returns the registered archetype names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of archetypes.
func (r *Registry) Len() int {
	return len(r.configs)
}

// LoadConfigFile reads one archetype file. Missing keys keep DefaultConfig
// values; a missing name falls back to the file name without extension.
func LoadConfigFile(path string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Name = ""

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Name == "" {
		cfg.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return cfg, nil
}

// LoadRegistry loads every *.yaml / *.yml file in dir as one archetype.
func LoadRegistry(dir string) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading archetype dir: %w", err)
	}

	r := NewRegistry()
	for _, e := range entries {
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		cfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, err
		}
		if _, err := r.Register(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		logger.Debug("flight archetype loaded",
			zap.String("name", cfg.Name),
			zap.String("file", e.Name()),
		)
	}

	logger.Info("flight archetypes loaded", zap.Int("count", r.Len()), zap.String("dir", dir))
	return r, nil
}
