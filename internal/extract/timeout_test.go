package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAdaptiveTimeoutStartsAtDefault(t *testing.T) {
	a := NewAdaptiveTimeout()
	assert.Equal(t, DefaultDocumentSymbolTimeout, a.Timeout("document_symbol"))
}

func TestAdaptiveTimeoutAdaptsUpwardAfterSlowCall(t *testing.T) {
	a := NewAdaptiveTimeout()
	a.Observe("document_symbol", 3*time.Second)

	got := a.Timeout("document_symbol")
	assert.Greater(t, got, DefaultDocumentSymbolTimeout)
}

func TestAdaptiveTimeoutNeverGoesBelowInitialDefault(t *testing.T) {
	a := NewAdaptiveTimeout()
	a.Observe("document_symbol", 1*time.Millisecond)

	got := a.Timeout("document_symbol")
	assert.GreaterOrEqual(t, got, DefaultDocumentSymbolTimeout)
}

func TestAdaptiveTimeoutUnknownOperationUsesInitDefault(t *testing.T) {
	a := NewAdaptiveTimeout()
	assert.Equal(t, DefaultInitTimeout, a.Timeout("unknown_op"))
}
