// Package store implements an embedded ordered key-value layer over
// SQLite, holding serialized graph snapshots and per-symbol blobs.
//
// A single generic kv table opened through gorm.Open over
// github.com/glebarez/sqlite with a WAL pragma; the table schema comes
// from AutoMigrate on the row struct at open time, and Close ends the
// lifecycle.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mizchi/lsif-indexer/internal/cache"
	"github.com/mizchi/lsif-indexer/internal/indexer"
	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
)

// Reserved keys. The layout is fixed; migrations bump Metadata.Version.
const (
	MetadataKey = "__metadata__"
	GraphKey    = "graph"
)

// SymbolKey builds the reserved per-symbol blob key.
func SymbolKey(id string) string {
	return "symbols/" + id
}

// CurrentMajorVersion is compared against a persisted store's
// __metadata__.version on open; a mismatch poisons the store.
const CurrentMajorVersion = 1

type kvRow struct {
	Key       string `gorm:"primaryKey;column:key"`
	Value     []byte `gorm:"column:value"`
	UpdatedAt int64  `gorm:"column:updated_at"`
}

func (kvRow) TableName() string { return "kv" }

// Store is the embedded ordered key-value map backing a single indexed
// project, rooted at a directory holding the sqlite file plus its
// WAL/SHM segments.
type Store struct {
	db   *gorm.DB
	dir  string
	mu   sync.Mutex
	stop chan struct{}
	once sync.Once
}

// Open opens (creating if absent) the store rooted at dir/index.db. If
// the store already contains a __metadata__ record whose version's
// major component does not match CurrentMajorVersion, Open refuses with
// a StorePoisonedError rather than risk reading a layout it does not
// understand.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, lsiferrors.NewIoError("create store directory", dir, err)
	}

	dbPath := filepath.Join(dir, "index.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, lsiferrors.NewIoError("open store", dbPath, err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Exec("PRAGMA journal_mode = WAL")
		sqlDB.Exec("PRAGMA synchronous = NORMAL")
	}

	if err := db.AutoMigrate(&kvRow{}); err != nil {
		return nil, lsiferrors.NewIoError("migrate store schema", dbPath, err)
	}

	s := &Store{db: db, dir: dir, stop: make(chan struct{})}

	foundMajor, hasMetadata, err := s.checkVersion()
	if err != nil {
		return nil, err
	}
	if hasMetadata && foundMajor != CurrentMajorVersion {
		return nil, lsiferrors.NewStorePoisonedError(
			fmt.Sprintf("%d.x.x", foundMajor),
			fmt.Sprintf("%d.x.x", CurrentMajorVersion),
		)
	}

	return s, nil
}

// checkVersion reports the major version recorded in __metadata__, if
// any record is present yet.
func (s *Store) checkVersion() (major int, hasMetadata bool, err error) {
	raw, ok, err := s.Get(MetadataKey)
	if err != nil {
		return 0, false, err
	}
	if !ok {
		return 0, false, nil
	}
	meta, decodeErr := indexer.DecodeMetadata(raw)
	if decodeErr != nil {
		return 0, false, nil
	}
	major, ok = meta.MajorVersion()
	if !ok {
		return 0, false, nil
	}
	return major, true, nil
}

// Close releases the underlying database handle and stops any
// background flush ticker.
func (s *Store) Close() error {
	s.once.Do(func() { close(s.stop) })
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Put writes key/value, overwriting any prior value.
func (s *Store) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row := kvRow{Key: key, Value: value, UpdatedAt: time.Now().Unix()}
	if err := s.db.Save(&row).Error; err != nil {
		return lsiferrors.NewIoError("put", key, err)
	}
	return nil
}

// Get returns (value, true, nil) on a hit, (nil, false, nil) on a miss.
func (s *Store) Get(key string) ([]byte, bool, error) {
	var row kvRow
	err := s.db.Where("key = ?", key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, lsiferrors.NewIoError("get", key, err)
	}
	return row.Value, true, nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.db.Where("key = ?", key).Delete(&kvRow{}).Error; err != nil {
		return lsiferrors.NewIoError("delete", key, err)
	}
	return nil
}

// PrefixScan returns every key/value pair whose key begins with prefix,
// ordered by key, bounded to limit entries (0 means unbounded). It
// implements the ordered scan as a range query `key >= prefix AND key <
// upperBound`, where upperBound is prefix with its last byte
// incremented — the standard prefix-range trick over a lexicographic
// index.
func (s *Store) PrefixScan(prefix string, limit int) ([]cache.KV, error) {
	upper := incrementLastByte(prefix)

	q := s.db.Where("key >= ? AND key < ?", prefix, upper).Order("key")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []kvRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, lsiferrors.NewIoError("prefix_scan", prefix, err)
	}

	out := make([]cache.KV, len(rows))
	for i, r := range rows {
		out[i] = cache.KV{Key: r.Key, Value: r.Value}
	}
	return out, nil
}

// incrementLastByte returns the smallest string greater than every
// string with the given prefix, by incrementing prefix's final byte. An
// all-0xFF prefix (vanishingly rare for UTF-8 keys) falls back to
// appending a sentinel byte so the range still terminates.
func incrementLastByte(prefix string) string {
	if prefix == "" {
		return "\xff\xff\xff\xff"
	}
	b := []byte(prefix)
	last := len(b) - 1
	if b[last] < 0xff {
		b[last]++
		return string(b)
	}
	return prefix + "\xff"
}

// Flush forces SQLite's WAL back into the main database file so the
// on-disk snapshot reflects every prior Put/Delete.
func (s *Store) Flush() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	if _, err := sqlDB.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		return lsiferrors.NewIoError("flush", s.dir, err)
	}
	return nil
}

// StartAutoFlush launches a background ticker that calls Flush every
// interval until Close is called.
func (s *Store) StartAutoFlush(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = s.Flush()
			case <-s.stop:
				return
			}
		}
	}()
}

// Dir returns the directory this store is rooted at.
func (s *Store) Dir() string {
	return s.dir
}
