package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/storepilot/internal/ir"
)

// DomainErrorCode categorizes action failures.
type DomainErrorCode string

const (
	// ErrCodeNotFound indicates the referenced product or section does not exist.
	ErrCodeNotFound DomainErrorCode = "NOT_FOUND"

	// ErrCodeInvalidReference indicates a payload value that cannot be resolved.
	ErrCodeInvalidReference DomainErrorCode = "INVALID_REFERENCE"

	// ErrCodeConflict indicates a request the current state cannot accept.
	ErrCodeConflict DomainErrorCode = "CONFLICT"

	// ErrCodeExternalWrite indicates the repository rejected a write.
	ErrCodeExternalWrite DomainErrorCode = "EXTERNAL_WRITE"

	// ErrCodeUnknownAction indicates an action type outside the vocabulary.
	ErrCodeUnknownAction DomainErrorCode = "UNKNOWN_ACTION"
)

// DomainError is an expected, per-action failure. The executor converts it
// into a failed mutation; it never escapes a batch.
type DomainError struct {
	Code    DomainErrorCode
	Kind    ir.Kind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

func notFound(kind ir.Kind, format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodeNotFound, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func conflict(kind ir.Kind, format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodeConflict, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func invalidReference(kind ir.Kind, format string, args ...any) *DomainError {
	return &DomainError{Code: ErrCodeInvalidReference, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func writeFailed(kind ir.Kind, op string, err error) *DomainError {
	return &DomainError{Code: ErrCodeExternalWrite, Kind: kind, Message: op, Err: err}
}

// IsNotFound reports whether err is a NOT_FOUND domain error.
func IsNotFound(err error) bool {
	return hasCode(err, ErrCodeNotFound)
}

// IsExternalWrite reports whether err is a rejected repository write.
func IsExternalWrite(err error) bool {
	return hasCode(err, ErrCodeExternalWrite)
}

// IsConflict reports whether err is a CONFLICT domain error.
func IsConflict(err error) bool {
	return hasCode(err, ErrCodeConflict)
}

func hasCode(err error, code DomainErrorCode) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}
