package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError_IsMatchesCode(t *testing.T) {
	err := NewDomainErrorf(CodeNotFound, "Sale %s not found", "S-1")

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(fmt.Errorf("load sale: %w", err), ErrNotFound))
	assert.False(t, errors.Is(err, ErrAlreadyExists))
	assert.Equal(t, "Sale S-1 not found", err.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrConcurrencyConflict))
	assert.True(t, IsRetryable(fmt.Errorf("commit: %w",
		NewDomainError(CodeConcurrencyConflict, "could not serialize access"))))
	assert.False(t, IsRetryable(ErrInsufficientStock))
	assert.False(t, IsRetryable(errors.New("connection reset")))
	assert.False(t, IsRetryable(nil))
}
