package validation

import (
	"fmt"
	"strings"

	"github.com/kbukum/dagpipe/errors"
)

// FieldError is one failed rule, keyed by the field path as written in
// YAML, e.g. "nodes[2].def".
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string { return e.Field + ": " + e.Message }

// Validator accumulates cross-field failures that struct tags cannot
// express.
type Validator struct {
	fields []FieldError
}

// New returns an empty Validator.
func New() *Validator {
	return &Validator{}
}

// Check records a failure on field unless ok holds.
func (v *Validator) Check(ok bool, field, format string, args ...any) *Validator {
	if !ok {
		v.fields = append(v.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	return v
}

// Unique reports each value that appears more than once, in order of its
// second occurrence.
func (v *Validator) Unique(field string, values []string) *Validator {
	seen := make(map[string]int, len(values))
	for _, val := range values {
		seen[val]++
		v.Check(seen[val] != 2, field, "duplicate value %q", val)
	}
	return v
}

// Each runs ok over values and reports "field[i]" for every value it
// rejects.
func (v *Validator) Each(field string, values []string, ok func(string) bool, format string) *Validator {
	for i, val := range values {
		v.Check(ok(val), fmt.Sprintf("%s[%d]", field, i), format, val)
	}
	return v
}

// Fields returns the recorded failures.
func (v *Validator) Fields() []FieldError {
	return v.fields
}

// Err folds the failures into one INVALID_INPUT AppError, or returns nil.
func (v *Validator) Err() *errors.AppError {
	if len(v.fields) == 0 {
		return nil
	}
	return fieldsError(v.fields)
}

func fieldsError(fields []FieldError) *errors.AppError {
	msgs := make([]string, len(fields))
	for i, f := range fields {
		msgs[i] = f.String()
	}
	return errors.Validation(strings.Join(msgs, "; ")).WithDetail("fields", fields)
}
