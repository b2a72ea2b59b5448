package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesOriginalCode(t *testing.T) {
	inner := New(CodeNotFound, "group not found")
	outer := Wrap(inner, CodeInternal, "lookup failed")

	assert.True(t, HasCode(outer, CodeNotFound))
	assert.False(t, HasCode(outer, CodeInternal))
}

func TestHasCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("fetch rights: %w", New(CodeTimeout, "rights call timed out"))
	assert.True(t, HasCode(err, CodeTimeout))
	assert.False(t, HasCode(err, CodeUnavailable))
}

func TestIsMatchesByCode(t *testing.T) {
	err := Wrap(errors.New("conn refused"), CodeUnavailable, "ledger unreachable")
	require.True(t, errors.Is(err, New(CodeUnavailable, "anything")))
	require.False(t, errors.Is(err, New(CodeTimeout, "anything")))
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(New(CodeTimeout, "")))
	assert.True(t, IsTransient(New(CodeUnavailable, "")))
	assert.False(t, IsTransient(New(CodeNotFound, "")))
	assert.False(t, IsTransient(New(CodeConflict, "")))
	assert.False(t, IsTransient(errors.New("plain")))
}

func TestErrorMessageFallsBackToCode(t *testing.T) {
	e := &Error{Code: CodeValidation}
	assert.Equal(t, "validation_failed", e.Error())
}
