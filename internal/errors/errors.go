package errors

import "fmt"

// ErrorCode represents a SentiGuard error code.
type ErrorCode string

const (
	ErrInvalidRequest    ErrorCode = "INVALID_REQUEST"    // 400
	ErrNotFound          ErrorCode = "NOT_FOUND"          // 404
	ErrSourceUnavailable ErrorCode = "SOURCE_UNAVAILABLE" // 503, line source could not be read
	ErrPersistence       ErrorCode = "PERSISTENCE"        // 500, local state write failed
	ErrDeliveryFailed    ErrorCode = "DELIVERY_FAILED"    // 502, guardian notification not delivered
	ErrQuotaExhausted    ErrorCode = "QUOTA_EXHAUSTED"    // 429, daily enrichment quota spent
	ErrInternal          ErrorCode = "INTERNAL"           // 500
)

// SentiError represents a structured error with code, status, and details.
type SentiError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *SentiError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *SentiError {
	return &SentiError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing record.
func NewNotFound(what string) *SentiError {
	return &SentiError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", what),
		Details: map[string]any{"identifier": what},
	}
}

// NewSourceUnavailable creates a 503 error for an unreadable line source.
// Callers on the scan path treat this as "zero new data," not as fatal.
func NewSourceUnavailable(path string, err error) *SentiError {
	return &SentiError{
		Code:    ErrSourceUnavailable,
		Status:  503,
		Message: fmt.Sprintf("line source unavailable: %v", err),
		Details: map[string]any{"path": path},
	}
}

// NewPersistence creates a 500 error for a failed local state write.
// The in-memory state change it accompanies is still considered applied;
// the error exists so the drift is surfaced, not swallowed.
func NewPersistence(what string, err error) *SentiError {
	return &SentiError{
		Code:    ErrPersistence,
		Status:  500,
		Message: fmt.Sprintf("failed to persist %s: %v", what, err),
		Details: map[string]any{"entity": what},
	}
}

// NewDeliveryFailed creates a 502 error for a failed guardian notification.
func NewDeliveryFailed(recipient string, err error) *SentiError {
	return &SentiError{
		Code:    ErrDeliveryFailed,
		Status:  502,
		Message: fmt.Sprintf("alert delivery failed: %v", err),
		Details: map[string]any{"recipient": recipient},
	}
}

// NewQuotaExhausted creates a 429 error when the daily enrichment quota is spent.
func NewQuotaExhausted(limit int) *SentiError {
	return &SentiError{
		Code:    ErrQuotaExhausted,
		Status:  429,
		Message: fmt.Sprintf("daily enrichment quota exhausted (%d calls)", limit),
		Details: map[string]any{"limit": limit},
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *SentiError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &SentiError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a SentiError with the given code.
func Is(err error, code ErrorCode) bool {
	if sErr, ok := err.(*SentiError); ok {
		return sErr.Code == code
	}
	return false
}
