// Package lsiferrors defines a typed error taxonomy: wrapped, typed,
// timestamped errors implementing Unwrap for errors.Is/As.
package lsiferrors

import (
	"errors"
	"fmt"
	"time"
)

// IoError surfaces a Store or file-walk failure. The current operation
// aborts; the prior snapshot is left intact.
type IoError struct {
	Operation string
	Path      string
	Err       error
	At        time.Time
}

func NewIoError(op, path string, err error) *IoError {
	return &IoError{Operation: op, Path: path, Err: err, At: time.Now()}
}

func (e *IoError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("io: %s failed: %v", e.Operation, e.Err)
	}
	return fmt.Sprintf("io: %s failed for %s: %v", e.Operation, e.Path, e.Err)
}

func (e *IoError) Unwrap() error { return e.Err }

// SerializationError surfaces an encode/decode failure. The store refuses
// to open on a bad metadata record.
type SerializationError struct {
	Stage string // "encode" or "decode"
	Err   error
}

func NewSerializationError(stage string, err error) *SerializationError {
	return &SerializationError{Stage: stage, Err: err}
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialization: %s failed: %v", e.Stage, e.Err)
}

func (e *SerializationError) Unwrap() error { return e.Err }

// ExtractionError is raised per-file during extraction. The batch logs
// and skips the file, counting it in files_failed, and continues.
type ExtractionError struct {
	Path   string
	Reason error
}

func NewExtractionError(path string, reason error) *ExtractionError {
	return &ExtractionError{Path: path, Reason: reason}
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Path, e.Reason)
}

func (e *ExtractionError) Unwrap() error { return e.Reason }

// LspUnavailableError covers both an outright-unavailable language server
// and a timed-out call; either falls back to the extraction façade's next
// strategy.
type LspUnavailableError struct {
	Language string
	Timeout  bool
	Err      error
}

func (e *LspUnavailableError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("lsp %s: timed out: %v", e.Language, e.Err)
	}
	return fmt.Sprintf("lsp %s: unavailable: %v", e.Language, e.Err)
}

func (e *LspUnavailableError) Unwrap() error { return e.Err }

// CycleExceededError marks a traversal that was clamped by the safety
// depth ceiling; callers receive this alongside partial results, not in
// place of them.
type CycleExceededError struct {
	MaxDepth int
}

func (e *CycleExceededError) Error() string {
	return fmt.Sprintf("traversal exceeded safety depth ceiling (%d); results are partial", e.MaxDepth)
}

// PatternParseError is surfaced immediately with the byte position of the
// failure in the query-engine pattern grammar.
type PatternParseError struct {
	Pattern  string
	Position int
	Reason   string
}

func (e *PatternParseError) Error() string {
	return fmt.Sprintf("pattern parse error at position %d: %s (pattern: %q)", e.Position, e.Reason, e.Pattern)
}

// StorePoisonedError is refused at open time when the on-disk
// metadata.version's major component doesn't match what this build
// understands; an explicit reindex is required.
type StorePoisonedError struct {
	FoundVersion    string
	ExpectedVersion string
}

func NewStorePoisonedError(found, expected string) *StorePoisonedError {
	return &StorePoisonedError{FoundVersion: found, ExpectedVersion: expected}
}

func (e *StorePoisonedError) Error() string {
	return fmt.Sprintf("store poisoned: found version %q, expected %q; reindex required", e.FoundVersion, e.ExpectedVersion)
}

// ExitCode maps an error to the process exit code distinctions the CLI
// uses: 2 parse errors, 3 IO errors, 4 version errors, 1 empty results
// (callers signal "empty" by passing a nil error with found=false rather
// than constructing an error for it — see cmd/lsif-indexer).
func ExitCode(err error) int {
	var parseErr *PatternParseError
	var ioErr *IoError
	var poisonedErr *StorePoisonedError
	switch {
	case errors.As(err, &parseErr):
		return 2
	case errors.As(err, &ioErr):
		return 3
	case errors.As(err, &poisonedErr):
		return 4
	default:
		return 1
	}
}
