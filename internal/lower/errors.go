package lower

import (
	"errors"
	"fmt"
)

// LowerError represents a failure to lower a snapshot.
type LowerError struct {
	// Code identifies the error category.
	Code LowerErrorCode

	// Function is the function being lowered, or -1.
	Function int

	// Message is a human-readable description.
	Message string
}

// LowerErrorCode categorizes lowering errors.
type LowerErrorCode string

const (
	// ErrCodeNoEntryFunction indicates the snapshot has no functions.
	ErrCodeNoEntryFunction LowerErrorCode = "NO_ENTRY_FUNCTION"

	// ErrCodeUnresolvedCallTarget indicates a CALL names a function with no
	// label. The Builder rejects such calls, so this is raised as a panic.
	ErrCodeUnresolvedCallTarget LowerErrorCode = "UNRESOLVED_CALL_TARGET"
)

// Error implements the error interface.
func (e *LowerError) Error() string {
	if e.Function >= 0 {
		return fmt.Sprintf("%s: %s (function=%d)", e.Code, e.Message, e.Function)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// HasCode reports whether err is, or wraps, a LowerError with the given code.
func HasCode(err error, code LowerErrorCode) bool {
	var le *LowerError
	if errors.As(err, &le) {
		return le.Code == code
	}
	return false
}
