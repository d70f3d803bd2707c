package errors

import "fmt"

// ErrorCode represents a Kotoba error code.
type ErrorCode string

const (
	ErrInvalidRequest   ErrorCode = "INVALID_REQUEST"   // 400
	ErrNotFound         ErrorCode = "NOT_FOUND"         // 404
	ErrConflict         ErrorCode = "CONFLICT"          // 409 (in-flight operation on same key)
	ErrUniqueConstraint ErrorCode = "UNIQUE_CONSTRAINT" // 409
	ErrTranslateFailed  ErrorCode = "TRANSLATE_FAILED"  // 502
	ErrStoreUnavailable ErrorCode = "STORE_UNAVAILABLE" // 503
	ErrQuotaExceeded    ErrorCode = "QUOTA_EXCEEDED"    // 507
	ErrInternal         ErrorCode = "INTERNAL"          // 500
)

// KotobaError represents a structured error with code, status, and details.
type KotobaError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *KotobaError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *KotobaError {
	return &KotobaError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for when a record cannot be found.
func NewNotFound(key string) *KotobaError {
	return &KotobaError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("record not found: %s", key),
		Details: map[string]any{"key": key},
	}
}

// NewConflict creates a 409 error for when a mutating operation is already
// in flight for the same record key.
func NewConflict(key string) *KotobaError {
	return &KotobaError{
		Code:    ErrConflict,
		Status:  409,
		Message: fmt.Sprintf("operation already in flight for record: %s", key),
		Details: map[string]any{"key": key},
	}
}

// NewUniqueConstraint creates a 409 error for key collisions on insert.
func NewUniqueConstraint(key string) *KotobaError {
	return &KotobaError{
		Code:    ErrUniqueConstraint,
		Status:  409,
		Message: fmt.Sprintf("record already exists: %s", key),
		Details: map[string]any{"key": key},
	}
}

// NewTranslateFailed creates a 502 error for translation backend failures.
func NewTranslateFailed(backend string, err error) *KotobaError {
	msg := "translation failed"
	if err != nil {
		msg = err.Error()
	}
	return &KotobaError{
		Code:    ErrTranslateFailed,
		Status:  502,
		Message: msg,
		Details: map[string]any{"backend": backend},
	}
}

// NewStoreUnavailable creates a 503 error for store I/O failures.
func NewStoreUnavailable(err error) *KotobaError {
	msg := "store unavailable"
	if err != nil {
		msg = err.Error()
	}
	return &KotobaError{
		Code:    ErrStoreUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewQuotaExceeded creates a 507 error for storage quota failures.
func NewQuotaExceeded(err error) *KotobaError {
	msg := "storage quota exceeded"
	if err != nil {
		msg = err.Error()
	}
	return &KotobaError{
		Code:    ErrQuotaExceeded,
		Status:  507,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *KotobaError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &KotobaError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// Is checks if an error is a KotobaError with the given code.
func Is(err error, code ErrorCode) bool {
	if kErr, ok := err.(*KotobaError); ok {
		return kErr.Code == code
	}
	return false
}
