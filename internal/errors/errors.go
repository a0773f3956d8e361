// Package errors defines categorized application errors and their
// mapping to HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/contact-sync/internal/models"
)

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategoryUserInput represents user input errors (4xx)
	CategoryUserInput ErrorCategory = "user_input"
	// CategorySystem represents system errors (5xx)
	CategorySystem ErrorCategory = "system"
	// CategoryUpstream represents upstream contact source errors
	CategoryUpstream ErrorCategory = "upstream"
	// CategoryDatabase represents database errors
	CategoryDatabase ErrorCategory = "database"
	// CategoryConfiguration represents missing or invalid configuration
	CategoryConfiguration ErrorCategory = "configuration"
	// CategoryAuthorization represents authorization errors
	CategoryAuthorization ErrorCategory = "authorization"
	// CategoryConflict represents conflict errors
	CategoryConflict ErrorCategory = "conflict"
)

// CategorizedError represents an error with category and HTTP status code
type CategorizedError struct {
	Category   ErrorCategory
	StatusCode int
	Code       string
	Message    string
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *CategorizedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause
func (e *CategorizedError) Unwrap() error {
	return e.Cause
}

// AsCategorized extracts a CategorizedError from an error chain, if present
func AsCategorized(err error) (*CategorizedError, bool) {
	var cerr *CategorizedError
	if errors.As(err, &cerr) {
		return cerr, true
	}
	return nil, false
}

// NewInvalidInputError creates an invalid input error
func NewInvalidInputError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUserInput,
		StatusCode: http.StatusBadRequest,
		Code:       "INVALID_INPUT",
		Message:    message,
	}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryAuthorization,
		StatusCode: http.StatusUnauthorized,
		Code:       "UNAUTHORIZED",
		Message:    message,
	}
}

// NewForbiddenError creates a forbidden error
func NewForbiddenError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryAuthorization,
		StatusCode: http.StatusForbidden,
		Code:       "FORBIDDEN",
		Message:    message,
	}
}

// NewImportInProgressError creates a conflict error for an import run
// that is already holding the checkpoint for a source. The current
// checkpoint is carried in Details so the operator can decide whether
// to wait or resume.
func NewImportInProgressError(checkpoint *models.ImportCheckpoint) *CategorizedError {
	details := map[string]interface{}{}
	if checkpoint != nil {
		details["checkpoint"] = checkpoint
	}
	return &CategorizedError{
		Category:   CategoryConflict,
		StatusCode: http.StatusConflict,
		Code:       "IMPORT_IN_PROGRESS",
		Message:    "an import is already in progress for this source",
		Details:    details,
	}
}

// NewUpstreamFetchError creates an error for a failed upstream page fetch
func NewUpstreamFetchError(cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUpstream,
		StatusCode: http.StatusBadGateway,
		Code:       "UPSTREAM_FETCH_FAILED",
		Message:    "failed to fetch contacts from upstream source",
		Cause:      cause,
	}
}

// NewConfigurationError creates an error for missing or invalid configuration
func NewConfigurationError(message string) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryConfiguration,
		StatusCode: http.StatusInternalServerError,
		Code:       "CONFIGURATION_ERROR",
		Message:    message,
	}
}

// NewDatabaseError creates a database error
func NewDatabaseError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryDatabase,
		StatusCode: http.StatusInternalServerError,
		Code:       "DATABASE_ERROR",
		Message:    fmt.Sprintf("database operation failed: %s", operation),
		Cause:      cause,
	}
}

// NewProviderError creates an error for a failed delivery provider call
func NewProviderError(operation string, cause error) *CategorizedError {
	return &CategorizedError{
		Category:   CategoryUpstream,
		StatusCode: http.StatusBadGateway,
		Code:       "PROVIDER_ERROR",
		Message:    fmt.Sprintf("delivery provider call failed: %s", operation),
		Cause:      cause,
	}
}

// IsImportInProgress reports whether err is an import-in-progress conflict
func IsImportInProgress(err error) bool {
	cerr, ok := AsCategorized(err)
	return ok && cerr.Code == "IMPORT_IN_PROGRESS"
}
