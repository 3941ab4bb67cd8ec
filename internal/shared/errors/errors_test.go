package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors_StatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("missing"), ErrorTypeNotFound, http.StatusNotFound},
		{"invalid state", NewInvalidStateError("nope"), ErrorTypeInvalidState, http.StatusConflict},
		{"forbidden", NewForbiddenError("no"), ErrorTypeForbidden, http.StatusForbidden},
		{"provider", NewProviderUnavailableError("down"), ErrorTypeProviderUnavailable, http.StatusServiceUnavailable},
		{"internal", NewInternalError("boom"), ErrorTypeInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestGetAppError_Wrapped(t *testing.T) {
	base := NewInvalidStateError("subscription is cancelled", "id=sub_1")
	wrapped := fmt.Errorf("resume: %w", base)

	assert.True(t, IsInvalidStateError(wrapped))
	assert.False(t, IsNotFoundError(wrapped))
	assert.Equal(t, base, GetAppError(wrapped))
	assert.Equal(t, "invalid_state: subscription is cancelled (id=sub_1)", base.Error())
	assert.Nil(t, GetAppError(errors.New("plain")))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(errors.New("Error 1062: Duplicate entry 'x' for key 'uk'")))
	assert.True(t, IsDuplicateError(errors.New("UNIQUE constraint failed: payments.source, payments.external_id")))
	assert.False(t, IsDuplicateError(errors.New("connection refused")))
	assert.False(t, IsDuplicateError(nil))
}
