package ir

import (
	"errors"
	"fmt"
)

// BuildError reports an instruction or lifecycle call the Builder rejected.
// The Builder is unchanged when a BuildError is returned.
type BuildError struct {
	// Code identifies the error category.
	Code BuildErrorCode

	// Op is the opcode being pushed, when the error came from Push.
	Op OpCode

	// HasOp reports whether Op is meaningful.
	HasOp bool

	// Operand is the index of the offending operand, or -1.
	Operand int

	// Message is a human-readable description.
	Message string
}

// BuildErrorCode categorizes build errors.
type BuildErrorCode string

const (
	ErrCodeArity                BuildErrorCode = "ARITY_ERROR"
	ErrCodeTypeMismatch         BuildErrorCode = "TYPE_MISMATCH"
	ErrCodeUnknownLabel         BuildErrorCode = "UNKNOWN_LABEL"
	ErrCodeUnknownFunction      BuildErrorCode = "UNKNOWN_FUNCTION"
	ErrCodeUnknownVariable      BuildErrorCode = "UNKNOWN_VARIABLE"
	ErrCodeFunctionAlreadyOpen  BuildErrorCode = "FUNCTION_ALREADY_OPEN"
	ErrCodeNoOpenFunction       BuildErrorCode = "NO_OPEN_FUNCTION"
	ErrCodeBlockAlreadyOpen     BuildErrorCode = "BLOCK_ALREADY_OPEN"
	ErrCodeNoOpenBlock          BuildErrorCode = "NO_OPEN_BLOCK"
	ErrCodeUnclosedBlock        BuildErrorCode = "UNCLOSED_BLOCK"
	ErrCodeReturnOutside        BuildErrorCode = "RETURN_OUTSIDE_FUNCTION"
	ErrCodeReturnTypeMismatch   BuildErrorCode = "RETURN_TYPE_MISMATCH"
	ErrCodeCallOutside          BuildErrorCode = "CALL_OUTSIDE_FUNCTION"
	ErrCodeRecursiveSelfCall    BuildErrorCode = "RECURSIVE_SELF_CALL_REJECTED"
	ErrCodeEntryCall            BuildErrorCode = "ENTRY_CALL_REJECTED"
	ErrCodeDivideByZero         BuildErrorCode = "DIVIDE_BY_ZERO"
	ErrCodeUnclosedFunction     BuildErrorCode = "UNCLOSED_FUNCTION"
	ErrCodeUnassignableSource   BuildErrorCode = "UNASSIGNABLE_SOURCE"
	ErrCodeLiteralOverflow      BuildErrorCode = "LITERAL_OVERFLOW"
	ErrCodeReservedOpcode       BuildErrorCode = "RESERVED_OPCODE"
	ErrCodeInvalidOpcode        BuildErrorCode = "INVALID_OPCODE"
	ErrCodeInvalidSignature     BuildErrorCode = "INVALID_SIGNATURE"
	ErrCodeFinalized            BuildErrorCode = "BUILDER_FINALIZED"
)

// Error implements the error interface.
func (e *BuildError) Error() string {
	switch {
	case e.HasOp && e.Operand >= 0:
		return fmt.Sprintf("%s: %s operand %d: %s", e.Code, e.Op, e.Operand, e.Message)
	case e.HasOp:
		return fmt.Sprintf("%s: %s: %s", e.Code, e.Op, e.Message)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

// HasCode reports whether err is, or wraps, a BuildError with the given code.
func HasCode(err error, code BuildErrorCode) bool {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// CodeOf returns the code of the BuildError in err's chain, or "".
func CodeOf(err error) BuildErrorCode {
	var be *BuildError
	if errors.As(err, &be) {
		return be.Code
	}
	return ""
}

func lifecycleError(code BuildErrorCode, format string, args ...any) *BuildError {
	return &BuildError{Code: code, Operand: -1, Message: fmt.Sprintf(format, args...)}
}

func opError(code BuildErrorCode, op OpCode, format string, args ...any) *BuildError {
	return &BuildError{Code: code, Op: op, HasOp: true, Operand: -1, Message: fmt.Sprintf(format, args...)}
}

func operandError(code BuildErrorCode, op OpCode, idx int, format string, args ...any) *BuildError {
	return &BuildError{Code: code, Op: op, HasOp: true, Operand: idx, Message: fmt.Sprintf(format, args...)}
}
