// Package errors provides the structured error type returned across the API boundary.
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// ErrorCode is a stable, machine-readable error identifier.
type ErrorCode string

const (
	// Client errors (4xx)
	CodeBadRequest          ErrorCode = "BAD_REQUEST"
	CodeValidationFailed    ErrorCode = "VALIDATION_FAILED"
	CodeGatewayUnconfigured ErrorCode = "GATEWAY_UNCONFIGURED"
	CodeNotFound            ErrorCode = "NOT_FOUND"
	CodeAlreadyExists       ErrorCode = "ALREADY_EXISTS"
	CodeInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	CodeMealUnavailable     ErrorCode = "MEAL_UNAVAILABLE"
	CodeRateLimitExceeded   ErrorCode = "RATE_LIMIT_EXCEEDED"

	// Server errors (5xx)
	CodeInternal ErrorCode = "INTERNAL_ERROR"

	// Resource specific
	CodeMealNotFound  ErrorCode = "MEAL_NOT_FOUND"
	CodeOrderNotFound ErrorCode = "ORDER_NOT_FOUND"
	CodeUserNotFound  ErrorCode = "USER_NOT_FOUND"
)

// AppError is an application error with an HTTP mapping.
type AppError struct {
	Code     ErrorCode              `json:"code"`
	Message  string                 `json:"message"`
	Details  string                 `json:"details,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
	Cause    error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// StatusCode returns the HTTP status for the error code.
func (e *AppError) StatusCode() int {
	switch e.Code {
	case CodeBadRequest, CodeValidationFailed, CodeGatewayUnconfigured:
		return http.StatusBadRequest
	case CodeNotFound, CodeMealNotFound, CodeOrderNotFound, CodeUserNotFound:
		return http.StatusNotFound
	case CodeAlreadyExists:
		return http.StatusConflict
	case CodeInvalidTransition, CodeMealUnavailable:
		return http.StatusUnprocessableEntity
	case CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// WithCause adds a cause error
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// NewAppError creates a new application error
func NewAppError(code ErrorCode, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

func NewBadRequestError(message string) *AppError {
	return NewAppError(CodeBadRequest, message, "")
}

func NewValidationError(details string) *AppError {
	return NewAppError(CodeValidationFailed, "Validation failed", details)
}

// NewNotFoundError creates a generic not found error for the named resource.
func NewNotFoundError(resource string) *AppError {
	message := "Resource not found"
	if resource != "" {
		message = fmt.Sprintf("%s not found", resource)
	}
	return NewAppError(CodeNotFound, message, "")
}

func NewAlreadyExistsError(message string) *AppError {
	return NewAppError(CodeAlreadyExists, message, "")
}

func NewInternalError(message string) *AppError {
	if message == "" {
		message = "An unexpected error occurred"
	}
	return NewAppError(CodeInternal, message, "")
}

// NewGatewayUnconfiguredError is returned when a generative call is requested
// but no API credentials were configured.
func NewGatewayUnconfiguredError() *AppError {
	return NewAppError(
		CodeGatewayUnconfigured,
		"Groq client not configured",
		"set DELIVERIA_AI_API_KEY (or GROQ_API_KEY) and enable ai",
	)
}

func NewMealNotFoundError(mealID uint) *AppError {
	return NewAppError(
		CodeMealNotFound,
		"Refeição não encontrada",
		fmt.Sprintf("meal with ID %d does not exist", mealID),
	).WithMetadata("meal_id", mealID)
}

func NewMealUnavailableError(mealID uint) *AppError {
	return NewAppError(
		CodeMealUnavailable,
		"Refeição indisponível",
		fmt.Sprintf("meal with ID %d is not available", mealID),
	).WithMetadata("meal_id", mealID)
}

func NewOrderNotFoundError(orderID uint) *AppError {
	return NewAppError(
		CodeOrderNotFound,
		"Pedido não encontrado",
		fmt.Sprintf("order with ID %d does not exist", orderID),
	).WithMetadata("order_id", orderID)
}

func NewUserNotFoundError(userID uint) *AppError {
	return NewAppError(
		CodeUserNotFound,
		"Usuário não encontrado",
		fmt.Sprintf("user with ID %d does not exist", userID),
	).WithMetadata("user_id", userID)
}

// NewInvalidTransitionError reports an order status change that skips or reverses a step.
func NewInvalidTransitionError(from, to string) *AppError {
	return NewAppError(
		CodeInvalidTransition,
		"Invalid status transition",
		fmt.Sprintf("cannot move order from %s to %s", from, to),
	).WithMetadata("from", from).WithMetadata("to", to)
}

// Wrap wraps an error as an internal error if it's not already an AppError
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	return NewInternalError(message).WithCause(err)
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) ErrorCode {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

// ValidationError represents a field validation error
type ValidationError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationErrors represents multiple validation errors
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "validation failed"
	}
	if len(v) == 1 {
		return v[0].Message
	}

	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Message)
	}
	return strings.Join(messages, "; ")
}

// NewValidationErrors creates a VALIDATION_FAILED error carrying per-field details.
func NewValidationErrors(errs []ValidationError) *AppError {
	validationErrs := ValidationErrors(errs)

	return NewAppError(
		CodeValidationFailed,
		"Validation failed",
		validationErrs.Error(),
	).WithMetadata("validation_errors", validationErrs)
}

// ErrorResponse represents an API error response
type ErrorResponse struct {
	Error ErrorDetails `json:"error"`
}

// ErrorDetails represents the error details in API responses
type ErrorDetails struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}

// ToErrorResponse converts an AppError to an API error response
func ToErrorResponse(err *AppError, requestID string) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetails{
			Code:      err.Code,
			Message:   err.Message,
			Details:   err.Details,
			Metadata:  err.Metadata,
			RequestID: requestID,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
	}
}
