package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_ChainingAndHelpers(t *testing.T) {
	t.Parallel()

	root := errors.New("root")
	err := NewError(ErrOracleFailed, "oracle failed").
		WithCause(root).
		WithRetryable(true)

	assert.Equal(t, ErrOracleFailed, GetErrorCode(err))
	assert.True(t, IsRetryable(err))
	assert.True(t, errors.Is(err, root))
	assert.Equal(t, "[ORACLE_FAILED] oracle failed: root", err.Error())
}

func TestError_WrappedLookup(t *testing.T) {
	t.Parallel()

	inner := Errorf(ErrUnresolvedCycle, "%d cycle(s) remain", 2)
	wrapped := fmt.Errorf("normalize: %w", inner)

	assert.True(t, IsErrorCode(wrapped, ErrUnresolvedCycle))
	assert.True(t, errors.Is(wrapped, NewError(ErrUnresolvedCycle, "")))
	assert.False(t, errors.Is(wrapped, NewError(ErrOracleNoop, "")))
	assert.False(t, IsRetryable(wrapped))
	assert.Equal(t, "[UNRESOLVED_CYCLE] 2 cycle(s) remain", inner.Error())
}

func TestGetErrorCode_PlainError(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ErrorCode(""), GetErrorCode(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}
