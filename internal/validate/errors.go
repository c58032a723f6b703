package validate

import "github.com/roach88/storepilot/internal/ir"

// Error codes for ValidationError.
const (
	ErrCodeStructural = "STRUCTURAL"
	ErrCodeMissing    = "MISSING_REQUIRED"
	ErrCodeType       = "TYPE_MISMATCH"
	ErrCodeEnum       = "ENUM_MISMATCH"
	ErrCodeLength     = "LENGTH"
	ErrCodeRange      = "RANGE"
	ErrCodeItems      = "ITEMS"
)

// ValidationError describes one problem with one raw action.
// Kind is empty for structural errors raised before the type is known.
type ValidationError struct {
	Kind    ir.Kind
	Field   string
	Code    string
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// IsStructural reports whether the error concerns the action envelope
// rather than a payload field.
func (e ValidationError) IsStructural() bool {
	return e.Code == ErrCodeStructural
}
