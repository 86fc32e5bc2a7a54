package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var errSentinel = stderrors.New("sentinel")

func TestAppErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *AppError
		want string
	}{
		{"plain", New(ErrCodeCycle, "cycle detected"), "CYCLE_DETECTED: cycle detected"},
		{"formatted", Newf(ErrCodeUnknownInput, "no input named %q", "inp3"), `UNKNOWN_INPUT: no input named "inp3"`},
		{"with cause", New(ErrCodeDisconnected, "input unreachable").WithCause(errSentinel), "DISCONNECTED_GRAPH: input unreachable: sentinel"},
		{"not found", NotFound("definition", "add_1"), `NOT_FOUND: definition "add_1" not found`},
		{"not found unnamed", NotFound("pipeline", ""), "NOT_FOUND: pipeline not found"},
		{"validation", Validation("name: is required"), "INVALID_INPUT: name: is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCauseMatching(t *testing.T) {
	err := fmt.Errorf("building: %w", New(ErrCodeCycle, "x").WithCause(errSentinel))
	if !stderrors.Is(err, errSentinel) {
		t.Error("expected sentinel through fmt wrapping")
	}
	if !HasCode(err, ErrCodeCycle) {
		t.Error("expected HasCode to find CYCLE_DETECTED")
	}
	if HasCode(err, ErrCodeNotFound) {
		t.Error("did not expect NOT_FOUND")
	}
	if HasCode(errSentinel, ErrCodeCycle) {
		t.Error("plain error carries no code")
	}
}

func TestDetails(t *testing.T) {
	err := New(ErrCodeArgumentOverwrite, "x").
		WithDetail("param", "x").
		WithDetails(map[string]any{"node": "append_a", "param": "y"})
	want := map[string]any{"param": "y", "node": "append_a"}
	if diff := cmp.Diff(want, err.Details); diff != "" {
		t.Errorf("details mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(map[string]any{"resource": "pipeline", "name": "etl"}, NotFound("pipeline", "etl").Details); diff != "" {
		t.Errorf("NotFound details mismatch (-want +got):\n%s", diff)
	}
	if _, ok := NotFound("pipeline", "").Details["name"]; ok {
		t.Error("expected no name detail for empty name")
	}
}

func TestAsAppError(t *testing.T) {
	if _, ok := AsAppError(errSentinel); ok {
		t.Error("plain error is not an AppError")
	}
	if _, ok := AsAppError(nil); ok {
		t.Error("nil is not an AppError")
	}
	appErr, ok := AsAppError(fmt.Errorf("ctx: %w", New(ErrCodeOutputShape, "short")))
	if !ok || appErr.Code != ErrCodeOutputShape {
		t.Errorf("expected OUTPUT_SHAPE, got %v", appErr)
	}
}
