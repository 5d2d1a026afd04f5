package indexer

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/encoding/protowire"
)

// Format discriminates the external export shape a snapshot's graph was
// last exported as; it does not affect the engine's own persistence.
type Format uint8

const (
	FormatLSIFLike Format = 0
	FormatSCIPLike Format = 1
)

// Metadata is the wire-exact record stamped at key __metadata__ on every
// successful flush.
type Metadata struct {
	Format        Format
	Version       string
	CreatedAt     int64 // UTC epoch milliseconds
	ProjectRoot   string
	FilesCount    uint64
	SymbolsCount  uint64
	GitCommitHash string // empty means absent
	FileHashes    map[string]uint64
}

// MajorVersion extracts the integer before the first '.' in Version.
func (m Metadata) MajorVersion() (int, bool) {
	major := 0
	found := false
	for i := 0; i < len(m.Version) && m.Version[i] != '.'; i++ {
		if m.Version[i] < '0' || m.Version[i] > '9' {
			return 0, false
		}
		major = major*10 + int(m.Version[i]-'0')
		found = true
	}
	return major, found
}

// NowMillis returns the current UTC time as epoch milliseconds, for
// stamping Metadata.CreatedAt. Kept as a function (not inlined at call
// sites) so tests can see the single place wall-clock time enters this
// package.
func NowMillis() int64 {
	return time.Now().UTC().UnixMilli()
}

// EncodeMetadata serializes m into this binary layout (strings are a
// varint length then the bytes; integers are varints, not fixed-width):
//
//	format           : u8
//	version          : string
//	created_at       : zigzag varint
//	project_root     : string
//	files_count      : varint
//	symbols_count    : varint
//	git_commit_hash  : optional<string>  // presence byte then length+bytes
//	file_hashes      : varint count then (path:string, hash:string(16 hex)) pairs
func EncodeMetadata(m Metadata) []byte {
	var buf []byte
	buf = append(buf, byte(m.Format))
	buf = appendString(buf, m.Version)
	buf = protowire.AppendVarint(buf, zigzagEncode(m.CreatedAt))
	buf = appendString(buf, m.ProjectRoot)
	buf = protowire.AppendVarint(buf, m.FilesCount)
	buf = protowire.AppendVarint(buf, m.SymbolsCount)

	if m.GitCommitHash == "" {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = appendString(buf, m.GitCommitHash)
	}

	buf = protowire.AppendVarint(buf, uint64(len(m.FileHashes)))
	for path, hash := range m.FileHashes {
		buf = appendString(buf, path)
		buf = appendString(buf, fmt.Sprintf("%016x", hash))
	}
	return buf
}

// DecodeMetadata is the inverse of EncodeMetadata.
func DecodeMetadata(data []byte) (Metadata, error) {
	var m Metadata
	buf := data

	if len(buf) < 1 {
		return m, fmt.Errorf("indexer: truncated metadata (format byte)")
	}
	m.Format = Format(buf[0])
	buf = buf[1:]

	var err error
	if m.Version, buf, err = consumeString(buf); err != nil {
		return m, fmt.Errorf("indexer: decode metadata version: %w", err)
	}

	createdRaw, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return m, fmt.Errorf("indexer: decode metadata created_at")
	}
	m.CreatedAt = zigzagDecode(createdRaw)
	buf = buf[n:]

	if m.ProjectRoot, buf, err = consumeString(buf); err != nil {
		return m, fmt.Errorf("indexer: decode metadata project_root: %w", err)
	}

	if m.FilesCount, buf, err = consumeVarint(buf); err != nil {
		return m, fmt.Errorf("indexer: decode metadata files_count: %w", err)
	}
	if m.SymbolsCount, buf, err = consumeVarint(buf); err != nil {
		return m, fmt.Errorf("indexer: decode metadata symbols_count: %w", err)
	}

	if len(buf) < 1 {
		return m, fmt.Errorf("indexer: truncated metadata (git hash presence byte)")
	}
	present := buf[0] == 1
	buf = buf[1:]
	if present {
		if m.GitCommitHash, buf, err = consumeString(buf); err != nil {
			return m, fmt.Errorf("indexer: decode metadata git_commit_hash: %w", err)
		}
	}

	fileCount, buf, err := consumeVarint(buf)
	if err != nil {
		return m, fmt.Errorf("indexer: decode metadata file_hashes count: %w", err)
	}
	m.FileHashes = make(map[string]uint64, fileCount)
	for i := uint64(0); i < fileCount; i++ {
		var path, hexHash string
		if path, buf, err = consumeString(buf); err != nil {
			return m, fmt.Errorf("indexer: decode metadata file_hashes[%d].path: %w", i, err)
		}
		if hexHash, buf, err = consumeString(buf); err != nil {
			return m, fmt.Errorf("indexer: decode metadata file_hashes[%d].hash: %w", i, err)
		}
		hash, parseErr := parseHexHash(hexHash)
		if parseErr != nil {
			return m, fmt.Errorf("indexer: decode metadata file_hashes[%d]: %w", i, parseErr)
		}
		m.FileHashes[path] = hash
	}

	return m, nil
}

func parseHexHash(s string) (uint64, error) {
	if len(s) != 16 {
		return 0, fmt.Errorf("hash %q is not 16 hex characters", s)
	}
	var v uint64
	for i := 0; i < 16; i++ {
		c := s[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		default:
			return 0, fmt.Errorf("hash %q has invalid hex digit %q", s, c)
		}
		v = v<<4 | d
	}
	return v, nil
}

func appendString(buf []byte, s string) []byte {
	buf = protowire.AppendVarint(buf, uint64(len(s)))
	return append(buf, s...)
}

func consumeString(buf []byte) (string, []byte, error) {
	n, m := protowire.ConsumeVarint(buf)
	if m < 0 {
		return "", nil, fmt.Errorf("truncated length prefix")
	}
	buf = buf[m:]
	if uint64(len(buf)) < n {
		return "", nil, fmt.Errorf("truncated string payload")
	}
	return string(buf[:n]), buf[n:], nil
}

func consumeVarint(buf []byte) (uint64, []byte, error) {
	v, n := protowire.ConsumeVarint(buf)
	if n < 0 {
		return 0, nil, fmt.Errorf("truncated varint")
	}
	return v, buf[n:], nil
}

// zigzagEncode/zigzagDecode map a signed i64 onto protowire's unsigned
// varint space without sign-extension blowup, the same trick protobuf
// uses for sint64 fields.
func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
