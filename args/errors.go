package args

import (
	stderrors "errors"
	"fmt"

	"github.com/kbukum/dagpipe/errors"
)

var (
	// ErrInvalidSignature reports a malformed parameter declaration.
	ErrInvalidSignature = stderrors.New("invalid signature")
	// ErrDuplicateArgument reports a parameter bound both by position and by keyword.
	ErrDuplicateArgument = stderrors.New("argument bound more than once")
	// ErrUnexpectedArgument reports a value no parameter accepts.
	ErrUnexpectedArgument = stderrors.New("unexpected argument")
	// ErrMissingArgument reports a required parameter still unbound at call time.
	ErrMissingArgument = stderrors.New("missing argument")
)

func duplicateArgument(name string) error {
	return errors.Newf(errors.ErrCodeDuplicateArgument,
		"argument %q is passed both as a positional and a keyword argument", name).
		WithDetail("param", name).
		WithCause(ErrDuplicateArgument)
}

func unexpectedKeyword(name string) error {
	return errors.Newf(errors.ErrCodeInvalidArgument, "unexpected keyword argument %q", name).
		WithDetail("param", name).
		WithCause(ErrUnexpectedArgument)
}

func tooManyPositional(want, got int) error {
	return errors.New(errors.ErrCodeInvalidArgument,
		fmt.Sprintf("takes %d positional arguments but %d were given", want, got)).
		WithCause(ErrUnexpectedArgument)
}

func missingArgument(name string, kind Kind) error {
	return errors.Newf(errors.ErrCodeMissingArgument, "missing required %s argument %q", kind, name).
		WithDetail("param", name).
		WithCause(ErrMissingArgument)
}
