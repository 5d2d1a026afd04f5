package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL reads <projectRoot>/.lci.kdl if it exists and parses it into a
// Config. Returns (nil, nil) when no file is present — defaults apply.
func LoadKDL(projectRoot string) (*Config, error) {
	path := filepath.Join(projectRoot, ".lci.kdl")
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: read .lci.kdl: %w", err)
	}

	doc, err := kdl.Parse(strings.NewReader(string(content)))
	if err != nil {
		return nil, fmt.Errorf("config: parse .lci.kdl: %w", err)
	}

	cfg := Default(projectRoot)
	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
			}
		case "index":
			applyIndexSection(cfg, n)
		case "performance":
			applyPerformanceSection(cfg, n)
		case "cache":
			applyCacheSection(cfg, n)
		case "search":
			applySearchSection(cfg, n)
		case "feature-flags":
			applyFeatureFlagsSection(cfg, n)
		case "include":
			cfg.Include = collectStringArgs(n)
		case "exclude":
			cfg.Exclude = append(cfg.Exclude, collectStringArgs(n)...)
		}
	}

	return cfg, nil
}

func applyIndexSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_file_size":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileSize = int64(v)
			}
		case "max_total_size_mb":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxTotalSizeMB = int64(v)
			}
		case "max_file_count":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.MaxFileCount = v
			}
		case "follow_symlinks":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.FollowSymlinks = b
			}
		case "respect_gitignore":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.RespectGitignore = b
			}
		case "watch_mode":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Index.WatchMode = b
			}
		case "watch_debounce_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Index.WatchDebounceMs = v
			}
		case "store_path":
			if s, ok := firstStringArg(cn); ok {
				cfg.Index.StorePath = s
			}
		}
	}
}

func applyPerformanceSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "max_goroutines":
			if v, ok := firstIntArg(cn); ok {
				cfg.Performance.MaxGoroutines = v
			}
		case "parallel_threshold":
			if v, ok := firstIntArg(cn); ok {
				cfg.Performance.ParallelThreshold = v
			}
		case "flush_interval_ms":
			if v, ok := firstIntArg(cn); ok {
				cfg.Performance.FlushIntervalMs = v
			}
		case "indexing_timeout_sec":
			if v, ok := firstIntArg(cn); ok {
				cfg.Performance.IndexingTimeoutSec = v
			}
		}
	}
}

func applyCacheSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "capacity":
			if v, ok := firstIntArg(cn); ok {
				cfg.Cache.Capacity = v
			}
		case "ttl_seconds":
			if v, ok := firstIntArg(cn); ok {
				cfg.Cache.TTLSeconds = v
			}
		}
	}
}

func applySearchSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		switch nodeName(cn) {
		case "default_limit":
			if v, ok := firstIntArg(cn); ok {
				cfg.Search.DefaultLimit = v
			}
		case "enable_fuzzy":
			if b, ok := firstBoolArg(cn); ok {
				cfg.Search.EnableFuzzy = b
			}
		}
	}
}

func applyFeatureFlagsSection(cfg *Config, n *document.Node) {
	for _, cn := range n.Children {
		if nodeName(cn) == "dead_code_entry_points" {
			if s, ok := firstStringArg(cn); ok {
				cfg.FeatureFlags.DeadCodeEntryPoints = s
			}
		}
	}
}

// mergeKDL overlays a parsed KDL config onto the defaults. Since LoadKDL
// already starts from Default(), merging is a straight replace.
func mergeKDL(dst *Config, src *Config) {
	*dst = *src
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}

func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}
	if len(out) == 0 && len(n.Children) > 0 {
		out = make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}
