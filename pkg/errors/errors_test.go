package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load catalog: %w", Clone(ErrNotFound, "catalog not found"))

	appErr := FromError(wrapped)
	require.NotNil(t, appErr)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "catalog not found", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(context.DeadlineExceeded, ErrTimeout.Code, ErrTimeout.Status, "search timed out")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, "search timed out: context deadline exceeded", err.Error())
}

func TestIsMatchesByCode(t *testing.T) {
	assert.True(t, Is(ErrCacheMiss, ErrCacheMiss))
	assert.True(t, Is(Clone(ErrTimeout, "slow"), ErrTimeout))
	assert.True(t, Is(fmt.Errorf("outer: %w", Clone(ErrValidation, "")), ErrValidation))
	assert.False(t, Is(ErrNotFound, ErrValidation))
	assert.False(t, Is(nil, ErrValidation))
}

func TestCloneLeavesOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "sessions out of range")
	assert.Equal(t, "sessions out of range", clone.Message)
	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Nil(t, Clone(nil, "x"))
}
