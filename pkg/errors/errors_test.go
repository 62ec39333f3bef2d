package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want int
	}{
		{"validation", NewValidationError("calories_range"), http.StatusBadRequest},
		{"gateway unconfigured", NewGatewayUnconfiguredError(), http.StatusBadRequest},
		{"meal not found", NewMealNotFoundError(1), http.StatusNotFound},
		{"order not found", NewOrderNotFoundError(2), http.StatusNotFound},
		{"user not found", NewUserNotFoundError(3), http.StatusNotFound},
		{"duplicate", NewAlreadyExistsError("email taken"), http.StatusConflict},
		{"transition", NewInvalidTransitionError("delivering", "preparing"), http.StatusUnprocessableEntity},
		{"unavailable", NewMealUnavailableError(4), http.StatusUnprocessableEntity},
		{"rate limit", NewAppError(CodeRateLimitExceeded, "slow down", ""), http.StatusTooManyRequests},
		{"internal", NewInternalError(""), http.StatusInternalServerError},
		{"unknown code", NewAppError("SOMETHING_ELSE", "x", ""), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.StatusCode())
		})
	}
}

func TestWrap(t *testing.T) {
	assert.Nil(t, Wrap(nil, "ignored"))

	original := NewOrderNotFoundError(7)
	wrapped := fmt.Errorf("loading: %w", original)
	assert.Same(t, original, Wrap(wrapped, "ignored"))

	cause := fmt.Errorf("connection refused")
	appErr := Wrap(cause, "failed to load")
	require.NotNil(t, appErr)
	assert.Equal(t, CodeInternal, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
}

func TestInvalidTransitionErrorCarriesBothStatuses(t *testing.T) {
	err := NewInvalidTransitionError("delivering", "preparing")

	assert.True(t, Is(err, CodeInvalidTransition))
	assert.Equal(t, "delivering", err.Metadata["from"])
	assert.Equal(t, "preparing", err.Metadata["to"])
	assert.Contains(t, err.Error(), "cannot move order from delivering to preparing")
}

func TestToErrorResponse(t *testing.T) {
	resp := ToErrorResponse(NewMealNotFoundError(9), "req-9")

	assert.Equal(t, CodeMealNotFound, resp.Error.Code)
	assert.Equal(t, "req-9", resp.Error.RequestID)
	assert.Equal(t, uint(9), resp.Error.Metadata["meal_id"])
	assert.NotEmpty(t, resp.Error.Timestamp)
}
