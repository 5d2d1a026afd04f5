// Package config loads and validates lsif-indexer's layered configuration:
// defaults, then a project-root .lci.kdl file, then environment
// variables, then CLI flag overrides (applied by cmd/lsif-indexer).
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
)

// Config is the fully-resolved configuration for one engine instance.
type Config struct {
	Project     Project
	Index       Index
	Performance Performance
	Cache       Cache
	Search      Search
	FeatureFlags FeatureFlags
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

type Index struct {
	MaxFileSize      int64
	MaxTotalSizeMB   int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool
	WatchMode        bool
	WatchDebounceMs  int
	StorePath        string // LSIF_INDEX_PATH
}

type Performance struct {
	MaxGoroutines       int // 0 = auto-detect (NumCPU)
	ParallelThreshold   int // LSIF_PARALLEL_THRESHOLD
	FlushIntervalMs     int
	IndexingTimeoutSec  int
}

type Cache struct {
	Capacity int           // LSIF_CACHE_CAPACITY
	TTLSeconds int         // LSIF_CACHE_TTL_SECONDS
}

type Search struct {
	DefaultLimit int
	EnableFuzzy  bool
}

// FeatureFlags resolves ambiguous policy questions by configuration
// rather than by guessing.
type FeatureFlags struct {
	// DeadCodeEntryPoints is "any-public" or "named-only".
	DeadCodeEntryPoints string
}

// DefaultExclude lists the directories excluded from indexing by default.
var DefaultExclude = []string{
	".git", "target", "node_modules", ".idea", ".vscode", "dist", "build",
}

// Default returns the baseline configuration before any KDL file or
// environment overrides are applied.
func Default(projectRoot string) *Config {
	return &Config{
		Project: Project{Root: projectRoot},
		Index: Index{
			MaxFileSize:      10 * 1024 * 1024,
			MaxTotalSizeMB:   500,
			MaxFileCount:     10000,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchDebounceMs:  300,
			StorePath:        ".lsif-index",
		},
		Performance: Performance{
			MaxGoroutines:      0,
			ParallelThreshold:  50,
			FlushIntervalMs:    5000,
			IndexingTimeoutSec: 120,
		},
		Cache: Cache{
			Capacity:   10000,
			TTLSeconds: 3600,
		},
		Search: Search{
			DefaultLimit: 20,
			EnableFuzzy:  true,
		},
		FeatureFlags: FeatureFlags{
			DeadCodeEntryPoints: "named-only",
		},
		Include: []string{},
		Exclude: append([]string(nil), DefaultExclude...),
	}
}

// Load resolves configuration for projectRoot: defaults, then
// <projectRoot>/.lci.kdl if present, then environment variables.
func Load(projectRoot string) (*Config, error) {
	cfg := Default(projectRoot)

	kdlCfg, err := LoadKDL(projectRoot)
	if err != nil {
		return nil, err
	}
	if kdlCfg != nil {
		mergeKDL(cfg, kdlCfg)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ResolvedGoroutines returns Performance.MaxGoroutines, falling back to
// runtime.NumCPU() when unset: a worker pool sized to the logical-CPU
// count, overridable for constrained environments.
func (c *Config) ResolvedGoroutines() int {
	if c.Performance.MaxGoroutines > 0 {
		return c.Performance.MaxGoroutines
	}
	return runtime.NumCPU()
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LSIF_INDEX_PATH"); v != "" {
		cfg.Index.StorePath = v
	}
	if v := os.Getenv("LSIF_PARALLEL_THRESHOLD"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Performance.ParallelThreshold = n
		}
	}
	if v := os.Getenv("LSIF_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.Capacity = n
		}
	}
	if v := os.Getenv("LSIF_CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.TTLSeconds = n
		}
	}
}

// LanguageTimeoutEnv builds the LSIF_LSP_TIMEOUT_MS_<LANG> variable name
// for a given language, e.g. "go" -> "LSIF_LSP_TIMEOUT_MS_GO".
func LanguageTimeoutEnv(language string) string {
	upper := make([]byte, len(language))
	for i := 0; i < len(language); i++ {
		c := language[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}
	return fmt.Sprintf("LSIF_LSP_TIMEOUT_MS_%s", upper)
}
