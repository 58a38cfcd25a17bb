package playback

import (
	"fmt"

	"github.com/caarlos0/env/v9"
)

// PreloadStrategy selects the frame-order generator a preloader walks
// around the current playhead (spec.md §6.3, generators in preload.go).
type PreloadStrategy string

const (
	PreloadSpiral  PreloadStrategy = "Spiral"
	PreloadForward PreloadStrategy = "Forward"
)

// Config holds every environment-configurable key from spec.md §6.3,
// populated via github.com/caarlos0/env/v9 the same way the rest of the
// DOMAIN STACK favors a real third-party loader over hand-rolled
// os.Getenv parsing.
type Config struct {
	MemoryLimitFraction float64         `env:"PLAYBACK_MEMORY_LIMIT_FRACTION" envDefault:"0.75"`
	Workers             int             `env:"PLAYBACK_WORKERS" envDefault:"0"` // 0 means "use DefaultWorkerCount()"
	CacheStrategy       string          `env:"PLAYBACK_CACHE_STRATEGY" envDefault:"All"`
	CacheCapacity       int             `env:"PLAYBACK_CACHE_CAPACITY" envDefault:"10000"`
	LoopEnabled         bool            `env:"PLAYBACK_LOOP_ENABLED" envDefault:"false"`
	FPSBase             float64         `env:"PLAYBACK_FPS_BASE" envDefault:"24"`
	PreloadStrategy     PreloadStrategy `env:"PLAYBACK_PRELOAD_STRATEGY" envDefault:"Spiral"`
}

// LoadConfig reads Config from the process environment, validating the
// ranged/enumerated fields spec.md §6.3 constrains.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("playback: loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the constraints spec.md §6.3 states in prose:
// memory_limit_fraction in (0,1], workers positive if set explicitly,
// cache_strategy one of LastOnly|All, cache_capacity positive.
func (c Config) Validate() error {
	if c.MemoryLimitFraction <= 0 || c.MemoryLimitFraction > 1 {
		return fmt.Errorf("playback: memory_limit_fraction %v out of range (0,1]", c.MemoryLimitFraction)
	}
	if c.Workers < 0 {
		return fmt.Errorf("playback: workers must be non-negative, got %d", c.Workers)
	}
	if c.CacheStrategy != "LastOnly" && c.CacheStrategy != "All" {
		return fmt.Errorf("playback: cache_strategy must be LastOnly or All, got %q", c.CacheStrategy)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("playback: cache_capacity must be positive, got %d", c.CacheCapacity)
	}
	if c.PreloadStrategy != PreloadSpiral && c.PreloadStrategy != PreloadForward {
		return fmt.Errorf("playback: preload_strategy must be Spiral or Forward, got %q", c.PreloadStrategy)
	}
	return nil
}

// CacheStrategyValue resolves the string field to the framecache.go enum.
func (c Config) CacheStrategyValue() CacheStrategy {
	if c.CacheStrategy == "LastOnly" {
		return StrategyLastOnly
	}
	return StrategyAll
}

// WorkerCount resolves the configured worker count, falling back to
// DefaultWorkerCount() when Workers is 0 (unset).
func (c Config) WorkerCount() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return DefaultWorkerCount()
}
