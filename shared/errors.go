package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	ErrorCategoryConfiguration ErrorCategory = "configuration"
	ErrorCategoryNetwork       ErrorCategory = "network"
	ErrorCategoryDatabase      ErrorCategory = "database"
	ErrorCategoryValidation    ErrorCategory = "validation"
	ErrorCategoryProcessing    ErrorCategory = "processing"
	ErrorCategoryNotFound      ErrorCategory = "not_found"
	ErrorCategoryTimeout       ErrorCategory = "timeout"
)

// Error codes surfaced by the extraction engine
const (
	CodeInvalidInput         = "INVALID_INPUT"
	CodeUpstreamFetchFailure = "UPSTREAM_FETCH_FAILURE"
	CodeParseFailure         = "PARSE_FAILURE"
	CodeNotFound             = "NOT_FOUND"
	CodeDatabaseFailure      = "DATABASE_FAILURE"
)

// ServiceError represents a standardized error with additional context
type ServiceError struct {
	Category    ErrorCategory `json:"category"`
	Code        string        `json:"code"`
	Message     string        `json:"message"`
	Details     interface{}   `json:"details,omitempty"`
	HTTPStatus  int           `json:"http_status,omitempty"`
	Timestamp   time.Time     `json:"timestamp"`
	ServiceName string        `json:"service_name"`
	Operation   string        `json:"operation"`
	Retryable   bool          `json:"retryable"`
	Cause       error         `json:"-"` // Original error, not serialized
}

// Error implements the error interface
func (e *ServiceError) Error() string {
	return fmt.Sprintf("[%s:%s] %s", e.Category, e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// NewServiceError creates a new service error
func NewServiceError(category ErrorCategory, code, message, serviceName, operation string, retryable bool, cause error) *ServiceError {
	return &ServiceError{
		Category:    category,
		Code:        code,
		Message:     message,
		Timestamp:   time.Now(),
		ServiceName: serviceName,
		Operation:   operation,
		Retryable:   retryable,
		Cause:       cause,
	}
}

// NewInvalidInputError reports a request the engine refuses to process
func NewInvalidInputError(serviceName, operation, message string) *ServiceError {
	err := NewServiceError(ErrorCategoryValidation, CodeInvalidInput, message, serviceName, operation, false, nil)
	err.HTTPStatus = http.StatusBadRequest
	return err
}

// NewUpstreamFetchError reports a retailer response that could not be used.
// statusCode is 0 when no response was received at all.
func NewUpstreamFetchError(serviceName, operation, url string, statusCode int, cause error) *ServiceError {
	category := ErrorCategoryNetwork
	if cause != nil && errors.Is(cause, context.DeadlineExceeded) {
		category = ErrorCategoryTimeout
	}

	message := fmt.Sprintf("failed to fetch %s", url)
	if statusCode > 0 {
		message = fmt.Sprintf("failed to fetch %s: HTTP %d", url, statusCode)
	}

	err := NewServiceError(category, CodeUpstreamFetchFailure, message, serviceName, operation, true, cause)
	err.HTTPStatus = statusCode
	if err.HTTPStatus == 0 {
		err.HTTPStatus = http.StatusBadGateway
	}
	return err
}

// NewParseFailureError describes a malformed embedded payload. It is logged, never returned.
func NewParseFailureError(serviceName, operation string, cause error) *ServiceError {
	return NewServiceError(ErrorCategoryProcessing, CodeParseFailure, "malformed embedded JSON", serviceName, operation, false, cause)
}

// NewNotFoundError reports a missing stored record
func NewNotFoundError(serviceName, operation, message string) *ServiceError {
	err := NewServiceError(ErrorCategoryNotFound, CodeNotFound, message, serviceName, operation, false, nil)
	err.HTTPStatus = http.StatusNotFound
	return err
}

// WithDetails adds additional details to the error
func (e *ServiceError) WithDetails(details interface{}) *ServiceError {
	e.Details = details
	return e
}

// IsRetryable returns whether the error is retryable
func (e *ServiceError) IsRetryable() bool {
	return e.Retryable
}

// LogError logs the error with structured fields
func (e *ServiceError) LogError() {
	logrus.WithFields(logrus.Fields{
		"error_category":   e.Category,
		"error_code":       e.Code,
		"error_message":    e.Message,
		"http_status":      e.HTTPStatus,
		"service_name":     e.ServiceName,
		"operation":        e.Operation,
		"retryable":        e.Retryable,
		"timestamp":        e.Timestamp,
		"details":          e.Details,
		"underlying_error": e.Cause,
	}).Error("Service error occurred")
}

// WrapError wraps an existing error with service error context
func WrapError(err error, category ErrorCategory, code, serviceName, operation string, retryable bool) *ServiceError {
	if err == nil {
		return nil
	}

	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		serviceErr.ServiceName = serviceName
		serviceErr.Operation = operation
		return serviceErr
	}

	return NewServiceError(category, code, err.Error(), serviceName, operation, retryable, err)
}

// AsServiceError returns the first ServiceError in err's chain
func AsServiceError(err error) (*ServiceError, bool) {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr, true
	}
	return nil, false
}

// HasCode reports whether err is a ServiceError with the given code
func HasCode(err error, code string) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr) && serviceErr.Code == code
}

// HTTPStatusForError maps an error to the status returned to API clients
func HTTPStatusForError(err error) int {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) && serviceErr.HTTPStatus > 0 {
		return serviceErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsRetryableError checks if an error is retryable
func IsRetryableError(err error) bool {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr.IsRetryable()
	}

	// Default heuristics for standard errors
	errorMsg := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"timeout", "connection refused", "connection reset",
		"temporary failure", "service unavailable", "too many requests",
		"network", "dns", "socket",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errorMsg, pattern) {
			return true
		}
	}

	return false
}
