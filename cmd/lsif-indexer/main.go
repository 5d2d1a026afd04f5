// Command lsif-indexer is the CLI surface for the code graph indexer:
// full/differential indexing, pattern queries, call hierarchy, fuzzy
// search, and dead-code reporting.
//
// A urfave/cli/v2 App with global root/include/exclude flags threaded
// into every command via loadConfigWithOverrides, and small per-command
// Action functions.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mizchi/lsif-indexer/internal/cache"
	"github.com/mizchi/lsif-indexer/internal/changes"
	"github.com/mizchi/lsif-indexer/internal/config"
	"github.com/mizchi/lsif-indexer/internal/extract"
	"github.com/mizchi/lsif-indexer/internal/extract/goregex"
	"github.com/mizchi/lsif-indexer/internal/graph"
	"github.com/mizchi/lsif-indexer/internal/graphcodec"
	"github.com/mizchi/lsif-indexer/internal/indexer"
	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
	"github.com/mizchi/lsif-indexer/internal/store"
)

func main() {
	app := &cli.App{
		Name:  "lsif-indexer",
		Usage: "multi-language code graph indexer and query engine",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "project root to index",
				Value:   ".",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "include files matching glob pattern (repeatable)",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "exclude files matching glob pattern (repeatable), in addition to defaults",
			},
		},
		Commands: []*cli.Command{
			indexCommand(),
			updateCommand(),
			queryCommand(),
			referencesCommand(),
			definitionCommand(),
			callHierarchyCommand(),
			pathsCommand(),
			searchCommand(),
			deadCodeCommand(),
			watchCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		var ec cli.ExitCoder
		if errors.As(err, &ec) {
			if msg := ec.Error(); msg != "" {
				fmt.Fprintln(os.Stderr, msg)
			}
			os.Exit(ec.ExitCode())
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(lsiferrors.ExitCode(err))
	}
}

func outputFormatFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "output format: human, vim-quickfix, grep, lsp-json, json, tsv, nul",
		Value:   "human",
	}
}

func resolveRoot(c *cli.Context) (string, error) {
	root := c.String("root")
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve root %q: %w", root, err)
	}
	return abs, nil
}

// loadConfigWithOverrides resolves the layered configuration for the
// requested root and applies the global --include/--exclude flags on
// top, so flags always win over the on-disk config.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	root, err := resolveRoot(c)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(root)
	if err != nil {
		return nil, fmt.Errorf("failed to load config for %s: %w", root, err)
	}
	if inc := c.StringSlice("include"); len(inc) > 0 {
		cfg.Include = inc
	}
	if exc := c.StringSlice("exclude"); len(exc) > 0 {
		cfg.Exclude = append(cfg.Exclude, exc...)
	}
	return cfg, nil
}

// engine bundles the collaborators a command needs against one project:
// the persisted store, the warm in-memory cache fronting it, the decoded
// graph, and an Indexer wired to write back through the cache.
type engine struct {
	cfg   *config.Config
	store *store.Store
	cache *cache.Cache
	graph graph.Graph
	idx   *indexer.Indexer
}

func openEngine(cfg *config.Config) (*engine, error) {
	storeDir := cfg.Index.StorePath
	if !filepath.IsAbs(storeDir) {
		storeDir = filepath.Join(cfg.Project.Root, storeDir)
	}

	st, err := store.Open(storeDir)
	if err != nil {
		return nil, err
	}

	ttl := time.Duration(cfg.Cache.TTLSeconds) * time.Second
	c := cache.New(cfg.Cache.Capacity, ttl, st)

	g, err := loadGraph(c, st)
	if err != nil {
		st.Close()
		return nil, err
	}
	warmSymbolCache(c, g)

	extractor := extract.NewChain(goregex.NewStrategy(cfg.Project.Root))
	idx := indexer.New(g, &cachedBacking{store: st, cache: c}, selectDetector(cfg), extractor, cfg)

	return &engine{cfg: cfg, store: st, cache: c, graph: g, idx: idx}, nil
}

func (e *engine) Close() error {
	e.cache.Close()
	return e.store.Close()
}

// loadGraph reads the persisted graph blob through the cache (a cold
// store produces an empty graph, not an error — "index" hasn't run yet).
func loadGraph(c *cache.Cache, st *store.Store) (graph.Graph, error) {
	raw, ok := c.Get(store.GraphKey)
	if !ok {
		var err error
		raw, ok, err = st.Get(store.GraphKey)
		if err != nil {
			return nil, err
		}
		if ok {
			c.Put(store.GraphKey, raw)
		}
	}
	if !ok {
		return graph.NewGraph(graph.ModeConcurrentMap), nil
	}

	result, err := graphcodec.Decode(raw)
	if err != nil {
		return nil, lsiferrors.NewSerializationError("decode", err)
	}
	return graphcodec.Build(graph.ModeConcurrentMap, result), nil
}

// warmSymbolCache primes the cache with every symbol's JSON blob under
// its reserved store.SymbolKey, so single-id lookups (definition,
// references, call-hierarchy) hit the cache instead of scanning
// AllSymbols() on every command invocation.
func warmSymbolCache(c *cache.Cache, g graph.Graph) {
	for _, s := range g.AllSymbols() {
		if blob, err := graphcodec.EncodeSymbolJSON(s); err == nil {
			c.Put(store.SymbolKey(s.ID), blob)
		}
	}
}

// lookupSymbol tries the per-symbol cache entry before falling back to a
// graph scan — the id is almost always already warm from openEngine,
// except right after a symbol was added by the current process.
func lookupSymbol(c *cache.Cache, g graph.Graph, id string) (graph.Symbol, bool) {
	if raw, ok := c.Get(store.SymbolKey(id)); ok {
		if s, err := graphcodec.DecodeSymbolJSON(raw); err == nil {
			return s, true
		}
	}
	return g.FindSymbol(id)
}

func selectDetector(cfg *config.Config) changes.Detector {
	if info, err := os.Stat(filepath.Join(cfg.Project.Root, ".git")); err == nil && info.IsDir() {
		return changes.NewGitDetector()
	}
	return changes.NewHashOnlyDetector(cfg.Exclude)
}

// cachedBacking adapts a Store into indexer.Backing, keeping the cache
// coherent on every write so a later read in the same process never
// observes a stale blob.
type cachedBacking struct {
	store *store.Store
	cache *cache.Cache
}

func (b *cachedBacking) Get(key string) ([]byte, bool, error) {
	if v, ok := b.cache.Get(key); ok {
		return v, true, nil
	}
	v, ok, err := b.store.Get(key)
	if err == nil && ok {
		b.cache.Put(key, v)
	}
	return v, ok, err
}

func (b *cachedBacking) Put(key string, value []byte) error {
	if err := b.store.Put(key, value); err != nil {
		return err
	}
	b.cache.Put(key, value)
	return nil
}

func (b *cachedBacking) Delete(key string) error {
	return b.store.Delete(key)
}

func (b *cachedBacking) PrefixScan(prefix string, limit int) ([]cache.KV, error) {
	return b.store.PrefixScan(prefix, limit)
}

func (b *cachedBacking) Flush() error {
	return b.store.Flush()
}
