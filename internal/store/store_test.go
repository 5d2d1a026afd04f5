package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mizchi/lsif-indexer/internal/indexer"
	"github.com/mizchi/lsif-indexer/internal/lsiferrors"
)

func TestOpenCreatesDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, filepath.Join(dir, "index.db"))
}

func TestPutGetDeleteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("graph", []byte("snapshot-bytes")))

	v, ok, err := s.Get("graph")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("snapshot-bytes"), v)

	require.NoError(t, s.Delete("graph"))

	_, ok, err = s.Get("graph")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMissingKeyIsNotError(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	v, ok, err := s.Get("does-not-exist")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, v)
}

func TestPrefixScanOrdersAndBounds(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	keys := []string{
		"symbols/main.go#1",
		"symbols/main.go#2",
		"symbols/main.go#3",
		"symbols/other.go#1",
	}
	for _, k := range keys {
		require.NoError(t, s.Put(k, []byte(k)))
	}

	results, err := s.PrefixScan("symbols/main.go#", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "symbols/main.go#1", results[0].Key)
	assert.Equal(t, "symbols/main.go#2", results[1].Key)
	assert.Equal(t, "symbols/main.go#3", results[2].Key)

	limited, err := s.PrefixScan("symbols/main.go#", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestPrefixScanDoesNotCrossPrefixBoundary(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("a/1", []byte("1")))
	require.NoError(t, s.Put("a0", []byte("not-a-slash")))
	require.NoError(t, s.Put("b/1", []byte("2")))

	results, err := s.PrefixScan("a/", 0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a/1", results[0].Key)
}

func TestOpenRefusesMismatchedMajorVersion(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	meta := indexer.Metadata{Version: "999.0.0", FileHashes: map[string]uint64{}}
	require.NoError(t, s.Put(MetadataKey, indexer.EncodeMetadata(meta)))
	require.NoError(t, s.Close())

	_, err = Open(dir)
	require.Error(t, err)
	var poisoned *lsiferrors.StorePoisonedError
	assert.ErrorAs(t, err, &poisoned)
}

func TestOpenAcceptsMatchingMajorVersion(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	meta := indexer.Metadata{Version: "1.2.3", FileHashes: map[string]uint64{}}
	require.NoError(t, s.Put(MetadataKey, indexer.EncodeMetadata(meta)))
	require.NoError(t, s.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()
}

func TestFlushCheckpointsWAL(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Put("k", []byte("v")))
	assert.NoError(t, s.Flush())
}

func TestStartAutoFlushStopsOnClose(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	s.StartAutoFlush(5 * time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, s.Close())
}
