package schedule

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig holds configuration options for the scheduling engine
type EngineConfig struct {
	// Cache configuration
	CacheEnabled bool        `yaml:"cache_enabled"`
	CacheConfig  CacheConfig `yaml:"cache"`

	// DefaultMaxResults caps expansions whose options carry no MaxResults.
	// 0 means unlimited.
	DefaultMaxResults int `yaml:"default_max_results"`
}

// DefaultEngineConfig provides sensible defaults for production use
var DefaultEngineConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig:  DefaultCacheConfig,

	DefaultMaxResults: 0,
}

// HighPerformanceConfig is optimized for high-traffic scenarios
var HighPerformanceConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             30 * time.Minute, // Longer cache TTL
		MaxEntries:      5000,             // More cache entries
		CleanupInterval: 10 * time.Minute, // Less frequent cleanup
	},

	DefaultMaxResults: 1000,
}

// LowMemoryConfig is optimized for memory-constrained environments
var LowMemoryConfig = EngineConfig{
	CacheEnabled: true,
	CacheConfig: CacheConfig{
		TTL:             5 * time.Minute, // Shorter cache TTL
		MaxEntries:      100,             // Fewer cache entries
		CleanupInterval: 2 * time.Minute, // More frequent cleanup
	},

	DefaultMaxResults: 500,
}

// DisabledCacheConfig turns off caching entirely
var DisabledCacheConfig = EngineConfig{
	CacheEnabled: false,
	CacheConfig:  CacheConfig{}, // Not used

	DefaultMaxResults: 0,
}

// Normalize fills zero cache settings from DefaultCacheConfig and clamps
// negative limits
func (c *EngineConfig) Normalize() {
	if c.CacheConfig.TTL <= 0 {
		c.CacheConfig.TTL = DefaultCacheConfig.TTL
	}
	if c.CacheConfig.MaxEntries <= 0 {
		c.CacheConfig.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if c.CacheConfig.CleanupInterval <= 0 {
		c.CacheConfig.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}
	if c.DefaultMaxResults < 0 {
		c.DefaultMaxResults = 0
	}
}

// LoadConfig reads an EngineConfig from a YAML file. Keys absent from the
// file keep the values of DefaultEngineConfig.
//
//	cache_enabled: true
//	cache:
//	  ttl: 15m
//	  max_entries: 1000
//	  cleanup_interval: 5m
//	default_max_results: 0
func LoadConfig(path string) (EngineConfig, error) {
	if path == "" {
		return EngineConfig{}, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("failed to read engine config: %w", err)
	}

	cfg := DefaultEngineConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EngineConfig{}, fmt.Errorf("failed to parse engine config %s: %w", path, err)
	}
	cfg.Normalize()

	return cfg, nil
}

// NewEngineWithConfig creates a new engine with custom configuration
func NewEngineWithConfig(config EngineConfig, opts ...Option) *Engine {
	config.Normalize()

	e := newEngine(config, opts...)
	if config.CacheEnabled {
		e.cache = NewExpansionCache(config.CacheConfig)
	}
	return e
}
