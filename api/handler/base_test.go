package handler

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/volunteer/domain"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   domain.ErrorCode
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, domain.ErrCodeUnauthorized},
		{domain.ErrForbidden, http.StatusForbidden, domain.ErrCodeForbidden},
		{domain.ErrInvalidPayload, http.StatusBadRequest, domain.ErrCodeValidationFailed},
		{domain.ErrTaskNotFound, http.StatusNotFound, domain.ErrCodeNotFound},
		{domain.ErrTaskFull, http.StatusConflict, domain.ErrCodeTaskFull},
		{domain.ErrTaskNotOpen, http.StatusConflict, domain.ErrCodeTaskNotOpen},
		{domain.ErrDuplicateRegistration, http.StatusConflict, domain.ErrCodeDuplicateRegistration},
		{domain.ErrConcurrencyConflict, http.StatusConflict, domain.ErrCodeConcurrencyConflict},
		{domain.InvalidTransition("task", domain.TaskStatusDraft, domain.TaskStatusPaused), http.StatusConflict, domain.ErrCodeInvalidTransition},
		{domain.ErrApplicationClosed, http.StatusUnprocessableEntity, domain.ErrCodeApplicationClosed},
		{fmt.Errorf("wrapped: %w", domain.ErrTaskFull), http.StatusConflict, domain.ErrCodeTaskFull},
		{domain.Internal(errors.New("dial tcp: refused")), http.StatusInternalServerError, domain.ErrCodeInternal},
		{errors.New("boom"), http.StatusInternalServerError, domain.ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, code := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, string(tt.code), code)
		})
	}
}

func TestParseInt(t *testing.T) {
	assert.Equal(t, 7, parseInt("7", 1))
	assert.Equal(t, 1, parseInt("", 1))
	assert.Equal(t, 20, parseInt("abc", 20))
}
