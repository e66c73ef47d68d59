package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	wrapped := fmt.Errorf("load user: %w", ErrRecordNotFound)
	appErr := FromError(wrapped)
	assert.Same(t, ErrRecordNotFound, appErr)

	plain := FromError(errors.New("boom"))
	assert.Equal(t, ErrInternal.Code, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.EqualError(t, plain, "internal server error: boom")
}

func TestCloneKeepsCodeAndStatus(t *testing.T) {
	clone := Clone(ErrNotFound, "user not found")
	require.NotSame(t, ErrNotFound, clone)
	assert.Equal(t, ErrNotFound.Code, clone.Code)
	assert.Equal(t, http.StatusNotFound, clone.Status)
	assert.Equal(t, "user not found", clone.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)

	assert.Equal(t, ErrConflict.Message, Clone(ErrConflict, "").Message)
	assert.Nil(t, Clone(nil, "x"))
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, ErrInternal.Code, ErrInternal.Status, "failed to list complaints")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to list complaints: connection reset", err.Error())

	var nilErr *Error
	assert.Equal(t, "<nil>", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())
}
