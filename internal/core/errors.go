// internal/core/errors.go
package core

import "fmt"

// Error represents a structured error with code and optional cause.
type Error struct {
	Code    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is matching by code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// WrapError creates a new error with the same code but with a cause.
func WrapError(base *Error, cause error) *Error {
	return &Error{
		Code:    base.Code,
		Message: base.Message,
		Cause:   cause,
	}
}

// Predefined errors
var (
	// Configuration errors: always fatal, reported before any simulation work
	ErrConfigInvalid   = &Error{Code: "CONFIG_INVALID", Message: "configuration invalid"}
	ErrConfigMissing   = &Error{Code: "CONFIG_MISSING", Message: "required configuration missing"}
	ErrUnknownStrategy = &Error{Code: "UNKNOWN_STRATEGY", Message: "unknown strategy identifier"}

	// Data errors: fatal, reported before the simulation loop starts
	ErrNoData           = &Error{Code: "NO_DATA", Message: "no data available"}
	ErrInsufficientData = &Error{Code: "INSUFFICIENT_DATA", Message: "insufficient history for warm-up"}
	ErrInvalidBar       = &Error{Code: "INVALID_BAR", Message: "malformed bar in history"}
	ErrSymbolNotFound   = &Error{Code: "SYMBOL_NOT_FOUND", Message: "symbol not found"}

	// Provider errors
	ErrProviderFailed = &Error{Code: "PROVIDER_FAILED", Message: "history provider failed"}

	// Storage errors
	ErrStorageFailed = &Error{Code: "STORAGE_FAILED", Message: "storage operation failed"}
	ErrRunNotFound   = &Error{Code: "RUN_NOT_FOUND", Message: "backtest run not found"}
)
