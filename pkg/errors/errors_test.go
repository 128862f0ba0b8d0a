package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCloneKeepsCodeForErrorsIs(t *testing.T) {
	err := Clone(ErrNotFound, "schedule not found")
	wrapped := fmt.Errorf("update: %w", err)

	assert.True(t, errors.Is(wrapped, ErrNotFound))
	assert.False(t, errors.Is(wrapped, ErrValidation))
	assert.Equal(t, "schedule not found", err.Message)
	assert.Equal(t, "resource not found", ErrNotFound.Message)
}

func TestFromErrorNormalisesUnknownErrors(t *testing.T) {
	appErr := FromError(errors.New("boom"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestWithDetailsCarriesPayload(t *testing.T) {
	cause := errors.New("double booking")
	appErr := WithDetails(ErrScheduleRejected, "", map[string]int{"errors": 1}, cause)

	assert.Equal(t, ErrScheduleRejected.Message, appErr.Message)
	assert.Equal(t, map[string]int{"errors": 1}, appErr.Details)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, ErrScheduleRejected.Details)
}
