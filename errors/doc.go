// Package errors provides the structured error type used across dagpipe.
//
// Every failure raised by the graph engine or the argument normalizer is an
// *AppError carrying a machine-readable code, a human-readable message, and
// optional details. Sentinel errors are attached as the cause, so callers can
// match with the standard library:
//
//	if errors.Is(err, dag.ErrDisconnected) { ... }
//
// or inspect the code directly:
//
//	if appErr, ok := errors.AsAppError(err); ok && appErr.Code == errors.ErrCodeDisconnected { ... }
package errors
