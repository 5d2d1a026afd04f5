package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v2"

	"github.com/mizchi/lsif-indexer/internal/config"
)

func watchCommand() *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "watch the project root and re-index on every debounced burst of changes",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "debounce-ms", Usage: "override Index.WatchDebounceMs"},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfigWithOverrides(c)
			if err != nil {
				return err
			}
			eng, err := openEngine(cfg)
			if err != nil {
				return asExitErr(err)
			}
			defer eng.Close()

			debounce := time.Duration(cfg.Index.WatchDebounceMs) * time.Millisecond
			if ms := c.Int("debounce-ms"); ms > 0 {
				debounce = time.Duration(ms) * time.Millisecond
			}
			if debounce <= 0 {
				debounce = 500 * time.Millisecond
			}

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return err
			}
			defer watcher.Close()
			if err := addRecursive(watcher, cfg.Project.Root, config.NewExcludeMatcher(cfg.Exclude)); err != nil {
				return err
			}

			fmt.Printf("watching %s (debounce %s)\n", cfg.Project.Root, debounce)
			return runWatchLoop(c.Context, watcher, eng, debounce)
		},
	}
}

// addRecursive registers every non-excluded directory under root with
// the watcher; fsnotify watches directories, not whole trees, so each
// one needs its own Add call.
func addRecursive(watcher *fsnotify.Watcher, root string, exclude *config.ExcludeMatcher) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel != "." && exclude.MatchDir(rel) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// runWatchLoop coalesces bursts of fsnotify events into a single
// IndexDifferential call per debounce window, the same batching an
// editor's save-then-format-then-save sequence needs to avoid a reindex
// storm.
func runWatchLoop(ctx context.Context, watcher *fsnotify.Watcher, eng *engine, debounce time.Duration) error {
	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(debounce)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Printf("watch error: %v\n", err)
		case <-fire:
			result, err := eng.idx.IndexDifferential(ctx, eng.cfg.Project.Root)
			if err != nil {
				fmt.Printf("reindex failed: %v\n", err)
				continue
			}
			fmt.Printf("files: +%d ~%d -%d | symbols: +%d ~%d -%d\n",
				result.FilesAdded, result.FilesModified, result.FilesDeleted,
				result.SymbolsAdded, result.SymbolsUpdated, result.SymbolsDeleted)
		}
	}
}
