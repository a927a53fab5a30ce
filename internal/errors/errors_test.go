package errors

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrorType_Values(t *testing.T) {
	tests := []struct {
		name      string
		errorType ErrorType
		expected  string
	}{
		{"Validation error", ErrorTypeValidation, "validation"},
		{"Authentication error", ErrorTypeAuthentication, "authentication"},
		{"Authorization error", ErrorTypeAuthorization, "authorization"},
		{"Not found error", ErrorTypeNotFound, "not_found"},
		{"Conflict error", ErrorTypeConflict, "conflict"},
		{"Rate limit error", ErrorTypeRateLimit, "rate_limit"},
		{"Internal error", ErrorTypeInternal, "internal"},
		{"Database error", ErrorTypeDatabase, "database"},
		{"Cache error", ErrorTypeCache, "cache"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(tt.errorType))
		})
	}
}

func TestNewAppError(t *testing.T) {
	appErr := NewAppError(ErrorTypeValidation, "INVALID_INPUT", "Invalid input provided")

	assert.Equal(t, ErrorTypeValidation, appErr.Type)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
	assert.Equal(t, "Invalid input provided", appErr.Message)
	assert.WithinDuration(t, time.Now(), appErr.Timestamp, time.Second)
	assert.Nil(t, appErr.Cause)
	assert.Equal(t, http.StatusBadRequest, appErr.HTTPStatus)
}

func TestNewAppErrorWithCause(t *testing.T) {
	originalErr := errors.New("connection timeout")

	appErr := NewAppErrorWithCause(ErrorTypeDatabase, "DB_ERROR", "Database connection failed", originalErr)

	assert.Equal(t, ErrorTypeDatabase, appErr.Type)
	assert.Equal(t, originalErr, appErr.Cause)
	assert.Equal(t, originalErr.Error(), appErr.Details)
	assert.Equal(t, http.StatusInternalServerError, appErr.HTTPStatus)
	assert.Equal(t, originalErr, errors.Unwrap(appErr))
}

func TestAppError_WithMethods(t *testing.T) {
	originalErr := errors.New("original error")

	appErr := NewAppErrorWithCause(ErrorTypeInternal, "WRAPPED_ERROR", "An error occurred", originalErr).
		WithCorrelationID("test-correlation-id").
		WithMetadata("context", "test").
		WithDetails("additional details")

	assert.Equal(t, "test-correlation-id", appErr.CorrelationID)
	assert.Equal(t, "test", appErr.Metadata["context"])
	assert.Equal(t, "additional details", appErr.Details)
	assert.Equal(t, originalErr, appErr.Cause)
}

func TestAppError_Error(t *testing.T) {
	appErr := &AppError{
		Type:    ErrorTypeValidation,
		Code:    "INVALID_INPUT",
		Message: "Invalid input provided",
	}
	assert.Equal(t, "INVALID_INPUT: Invalid input provided", appErr.Error())

	appErr.Details = "field userId is empty"
	assert.Equal(t, "INVALID_INPUT: Invalid input provided - field userId is empty", appErr.Error())
}

func TestDefaultHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected int
	}{
		{"Validation", NewValidationError("action", "invalid action"), http.StatusBadRequest},
		{"Authentication", NewAuthenticationError("missing token"), http.StatusUnauthorized},
		{"Authorization", NewAuthorizationError("admin only"), http.StatusForbidden},
		{"Not found", NewNotFoundError("user"), http.StatusNotFound},
		{"Conflict", NewConflictError("already swiped"), http.StatusConflict},
		{"Rate limit", NewRateLimitError(60, "1s"), http.StatusTooManyRequests},
		{"Internal", NewInternalError("boom", nil), http.StatusInternalServerError},
		{"Database", NewDatabaseError("insert swipe", errors.New("down")), http.StatusInternalServerError},
		{"Cache", NewCacheError("get stats", errors.New("down")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.HTTPStatus)
		})
	}
}

func TestIsErrorType(t *testing.T) {
	appErr := NewConflictError("duplicate swipe")

	assert.True(t, IsErrorType(appErr, ErrorTypeConflict))
	assert.False(t, IsErrorType(appErr, ErrorTypeValidation))
	assert.False(t, IsErrorType(errors.New("plain"), ErrorTypeConflict))

	errorType, ok := GetErrorType(appErr)
	assert.True(t, ok)
	assert.Equal(t, ErrorTypeConflict, errorType)

	_, ok = GetErrorType(errors.New("plain"))
	assert.False(t, ok)
}

func TestFromError(t *testing.T) {
	appErr := NewNotFoundError("user")
	assert.Same(t, appErr, FromError(appErr))

	plain := errors.New("boom")
	wrapped := FromError(plain)
	assert.Equal(t, ErrorTypeInternal, wrapped.Type)
	assert.Equal(t, plain, wrapped.Cause)
}
