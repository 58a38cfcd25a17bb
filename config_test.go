package playback

import "testing"

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.MemoryLimitFraction != 0.75 {
		t.Errorf("MemoryLimitFraction = %v, want 0.75", cfg.MemoryLimitFraction)
	}
	if cfg.CacheStrategy != "All" {
		t.Errorf("CacheStrategy = %q, want All", cfg.CacheStrategy)
	}
	if cfg.PreloadStrategy != PreloadSpiral {
		t.Errorf("PreloadStrategy = %q, want Spiral", cfg.PreloadStrategy)
	}
	if cfg.WorkerCount() != DefaultWorkerCount() {
		t.Errorf("WorkerCount() = %d, want DefaultWorkerCount() %d", cfg.WorkerCount(), DefaultWorkerCount())
	}
}

func TestValidateRejectsOutOfRangeMemoryFraction(t *testing.T) {
	cfg := Config{MemoryLimitFraction: 0, CacheStrategy: "All", CacheCapacity: 1, PreloadStrategy: PreloadSpiral}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected an error for memory_limit_fraction = 0")
	}
	cfg.MemoryLimitFraction = 1.5
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected an error for memory_limit_fraction > 1")
	}
}

func TestValidateRejectsUnknownCacheStrategy(t *testing.T) {
	cfg := Config{MemoryLimitFraction: 0.5, CacheStrategy: "Bogus", CacheCapacity: 1, PreloadStrategy: PreloadSpiral}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected an error for an unrecognized cache_strategy")
	}
}

func TestValidateRejectsNonPositiveCacheCapacity(t *testing.T) {
	cfg := Config{MemoryLimitFraction: 0.5, CacheStrategy: "All", CacheCapacity: 0, PreloadStrategy: PreloadSpiral}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected an error for cache_capacity = 0")
	}
}

func TestValidateRejectsUnknownPreloadStrategy(t *testing.T) {
	cfg := Config{MemoryLimitFraction: 0.5, CacheStrategy: "All", CacheCapacity: 1, PreloadStrategy: "Sideways"}
	if err := cfg.Validate(); err == nil {
		t.Errorf("expected an error for an unrecognized preload_strategy")
	}
}

func TestCacheStrategyValue(t *testing.T) {
	cfg := Config{CacheStrategy: "LastOnly"}
	if cfg.CacheStrategyValue() != StrategyLastOnly {
		t.Errorf("CacheStrategyValue() = %v, want StrategyLastOnly", cfg.CacheStrategyValue())
	}
	cfg.CacheStrategy = "All"
	if cfg.CacheStrategyValue() != StrategyAll {
		t.Errorf("CacheStrategyValue() = %v, want StrategyAll", cfg.CacheStrategyValue())
	}
}

func TestWorkerCountFallsBackWhenUnset(t *testing.T) {
	cfg := Config{Workers: 0}
	if cfg.WorkerCount() != DefaultWorkerCount() {
		t.Errorf("WorkerCount() = %d, want DefaultWorkerCount()", cfg.WorkerCount())
	}
	cfg.Workers = 6
	if cfg.WorkerCount() != 6 {
		t.Errorf("WorkerCount() = %d, want 6", cfg.WorkerCount())
	}
}
