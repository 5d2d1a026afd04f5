package config

import "fmt"

// Validate rejects configuration values that would make the engine
// misbehave silently: non-positive sizes/timeouts and unknown
// enum-shaped strings.
func Validate(cfg *Config) error {
	if cfg.Index.MaxFileSize <= 0 {
		return fmt.Errorf("config: index.max_file_size must be positive, got %d", cfg.Index.MaxFileSize)
	}
	if cfg.Index.MaxFileCount <= 0 {
		return fmt.Errorf("config: index.max_file_count must be positive, got %d", cfg.Index.MaxFileCount)
	}
	if cfg.Performance.ParallelThreshold < 0 {
		return fmt.Errorf("config: performance.parallel_threshold must be >= 0, got %d", cfg.Performance.ParallelThreshold)
	}
	if cfg.Performance.IndexingTimeoutSec <= 0 {
		return fmt.Errorf("config: performance.indexing_timeout_sec must be positive, got %d", cfg.Performance.IndexingTimeoutSec)
	}
	if cfg.Cache.Capacity <= 0 {
		return fmt.Errorf("config: cache.capacity must be positive, got %d", cfg.Cache.Capacity)
	}
	if cfg.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("config: cache.ttl_seconds must be positive, got %d", cfg.Cache.TTLSeconds)
	}
	switch cfg.FeatureFlags.DeadCodeEntryPoints {
	case "any-public", "named-only":
	default:
		return fmt.Errorf("config: feature_flags.dead_code_entry_points must be \"any-public\" or \"named-only\", got %q", cfg.FeatureFlags.DeadCodeEntryPoints)
	}
	return nil
}
