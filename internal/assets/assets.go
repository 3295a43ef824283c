// Package assets handles terrain loading and caching.
//
// A built HeightField is immutable, so every scene that asks for the same
// heightmap with the same footprint and sea level gets the same instance.
package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/skyhull/internal/heightfield"
	"github.com/Faultbox/skyhull/internal/logger"
	"github.com/Faultbox/skyhull/pkg/math"
)

// ErrNotFound is returned when no root holds the requested file.
var ErrNotFound = errors.New("asset not found")

// Manager resolves asset paths against data roots and caches built terrain.
type Manager struct {
	roots []string
	cache *Cache
	mu    sync.RWMutex
}

// NewManager creates a new asset manager.
func NewManager() *Manager {
	return &Manager{
		cache: NewCache(),
	}
}

// AddRoot adds a data directory to the search path.
// Roots are searched in reverse order (last added = highest priority).
func (m *Manager) AddRoot(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("adding root %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("adding root %s: not a directory", dir)
	}

	m.mu.Lock()
	m.roots = append(m.roots, dir)
	m.mu.Unlock()

	return nil
}

// Resolve returns the file a path refers to. Absolute paths are used as is;
// relative paths are tried under each root, then against the working directory.
func (m *Manager) Resolve(path string) (string, error) {
	if filepath.IsAbs(path) {
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return path, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := len(m.roots) - 1; i >= 0; i-- {
		candidate := filepath.Join(m.roots[i], path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, path)
}

// HeightField loads a heightmap and builds its pyramid, or returns the
// instance built by an earlier call with the same arguments.
func (m *Manager) HeightField(path string, bounds math.Box, seaLevel float32) (*heightfield.HeightField, error) {
	resolved, err := m.Resolve(path)
	if err != nil {
		return nil, err
	}
	if abs, err := filepath.Abs(resolved); err == nil {
		resolved = abs
	}

	key := Key{Path: resolved, Bounds: bounds, SeaLevel: seaLevel}
	if hf, ok := m.cache.Get(key); ok {
		return hf, nil
	}

	hf, err := heightfield.Load(resolved, bounds, seaLevel)
	if err != nil {
		return nil, err
	}
	m.cache.Set(key, hf)
	return hf, nil
}

// Close drops the cache and the search path.
func (m *Manager) Close() {
	hits, misses := m.cache.Stats()
	logger.Named("assets").Debug("asset cache closed",
		zap.Int("entries", m.cache.Len()),
		zap.Int("hits", hits),
		zap.Int("misses", misses),
	)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.roots = nil
	m.cache.Clear()
}

// Key identifies a built height field.
type Key struct {
	Path     string
	Bounds   math.Box
	SeaLevel float32
}

// Cache is a simple in-memory cache for built height fields.
type Cache struct {
	data map[Key]*heightfield.HeightField
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data: make(map[Key]*heightfield.HeightField),
	}
}

// Get retrieves an item from cache.
func (c *Cache) Get(key Key) (*heightfield.HeightField, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hf, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return hf, ok
}

// Set stores an item in cache.
func (c *Cache) Set(key Key, hf *heightfield.HeightField) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = hf
}

// Len returns the number of cached fields.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[Key]*heightfield.HeightField)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
