package resolver

import (
	"fmt"
	"strings"

	"github.com/mkstack/mkstack/internal/stack"
)

// Validation error codes. Strict mode surfaces these to the user; they
// map onto distinct CLI exit behavior.
const (
	// CodeFlagConflict: two explicitly provided inputs are mutually
	// exclusive.
	CodeFlagConflict = "flag-conflict"
	// CodeUnsupportedValue: a value outside its field's declared domain.
	CodeUnsupportedValue = "unsupported-value"
)

// ValidationError is a single Strict-mode rejection record.
type ValidationError struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Fields  []stack.FieldID `json:"fields,omitempty"`
}

func (e ValidationError) Error() string { return e.Message }

// ConflictError aggregates Strict-mode validation errors. Resolution is
// fail-fast, so in practice it carries the first conflict found plus any
// domain violations detected up front.
type ConflictError struct {
	Errors []ValidationError
}

func (e *ConflictError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Message
	}
	return strings.Join(msgs, "; ")
}

// FaultError reports that the fixpoint failed to converge within the
// iteration guard. This is a rule-table authoring defect, never a user
// error; it must not occur with a table that passed rules.Validate.
type FaultError struct {
	Passes int
}

func (e *FaultError) Error() string {
	return fmt.Sprintf("internal resolver fault: no fixpoint after %d passes (mis-authored rule table)", e.Passes)
}

// UnsupportedValueErrors converts registry domain errors into Strict-mode
// validation errors.
func UnsupportedValueErrors(errs []*stack.DomainError) []ValidationError {
	out := make([]ValidationError, len(errs))
	for i, e := range errs {
		out[i] = ValidationError{
			Code:    CodeUnsupportedValue,
			Message: e.Error(),
			Fields:  []stack.FieldID{e.Field},
		}
	}
	return out
}
