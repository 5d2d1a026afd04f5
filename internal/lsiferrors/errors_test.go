package lsiferrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIoErrorUnwraps(t *testing.T) {
	base := errors.New("disk full")
	err := NewIoError("flush", "/tmp/store", base)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "/tmp/store")
}

func TestExtractionErrorUnwraps(t *testing.T) {
	base := errors.New("parse failure")
	err := NewExtractionError("a.go", base)
	assert.True(t, errors.Is(err, base))
}

func TestExitCodeMapping(t *testing.T) {
	assert.Equal(t, 2, ExitCode(&PatternParseError{}))
	assert.Equal(t, 3, ExitCode(&IoError{}))
	assert.Equal(t, 4, ExitCode(&StorePoisonedError{}))
	assert.Equal(t, 1, ExitCode(&ExtractionError{}))
}
