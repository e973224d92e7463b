package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCloneKeepsIdentity(t *testing.T) {
	err := Clone(ErrNotFound, "Department not found")

	assert.Equal(t, "Department not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
	assert.Equal(t, "resource not found", ErrNotFound.Message)

	assert.Equal(t, ErrConflict.Message, Clone(ErrConflict, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("lookup: %w", Clone(ErrValidation, "Query is required"))
	got := FromError(wrapped)
	assert.Equal(t, ErrValidation.Code, got.Code)
	assert.Equal(t, "Query is required", got.Message)

	cause := errors.New("dial tcp: refused")
	got = FromError(cause)
	assert.Equal(t, ErrInternal.Code, got.Code)
	assert.Equal(t, http.StatusInternalServerError, got.Status)
	assert.ErrorIs(t, got, cause)
	assert.Equal(t, "Something went wrong. Please try again.: dial tcp: refused", got.Error())
}
