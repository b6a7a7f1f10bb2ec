package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound             = newError(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists        = newError(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation           = newError(ErrCodeValidation, "validation error")
	ErrInvalidOperation     = newError(ErrCodeInvalidOperation, "invalid operation")
	ErrConfigurationMissing = newError(ErrCodeConfigurationMissing, "billing configuration missing")
	ErrInvalidAmount        = newError(ErrCodeInvalidAmount, "invalid amount")
	ErrDatabase             = newError(ErrCodeDatabase, "database error")
	ErrSystem               = newError(ErrCodeSystemError, "system error")

	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrNotFound:             http.StatusNotFound,
		ErrAlreadyExists:        http.StatusConflict,
		ErrValidation:           http.StatusBadRequest,
		ErrInvalidOperation:     http.StatusBadRequest,
		ErrConfigurationMissing: http.StatusPreconditionFailed,
		ErrInvalidAmount:        http.StatusBadRequest,
		ErrDatabase:             http.StatusInternalServerError,
		ErrSystem:               http.StatusInternalServerError,
	}
)

const (
	ErrCodeNotFound             = "not_found"
	ErrCodeAlreadyExists        = "already_exists"
	ErrCodeValidation           = "validation_error"
	ErrCodeInvalidOperation     = "invalid_operation"
	ErrCodeConfigurationMissing = "configuration_missing"
	ErrCodeInvalidAmount        = "invalid_amount"
	ErrCodeDatabase             = "database_error"
	ErrCodeSystemError          = "system_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

func newError(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsInvalidOperation checks if an error is an invalid operation error
func IsInvalidOperation(err error) bool {
	return errors.Is(err, ErrInvalidOperation)
}

// IsConfigurationMissing checks if an error indicates absent billing
// configuration (settings or bulk meters) for a building
func IsConfigurationMissing(err error) bool {
	return errors.Is(err, ErrConfigurationMissing)
}

// IsInvalidAmount checks if an error is a non-positive amount error
func IsInvalidAmount(err error) bool {
	return errors.Is(err, ErrInvalidAmount)
}

// IsDatabase checks if an error is a database error
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}
