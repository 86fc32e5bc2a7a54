package dag_test

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/dagpipe/args"
	"github.com/kbukum/dagpipe/dag"
	"github.com/kbukum/dagpipe/dag/dagtest"
	"github.com/kbukum/dagpipe/errors"
)

func TestTask_DoesNotRunOnCall(t *testing.T) {
	m := dagtest.NewMock("lazy", 1, nil)
	task := m.Def().MustCall(1, 2)
	if m.Calls() != 0 {
		t.Fatalf("calling a definition must not run it")
	}
	if task.HasResult() || task.Result() != nil {
		t.Fatalf("expected no result before the first run")
	}
}

func TestTask_Update(t *testing.T) {
	pair := dag.Define("pair", args.Names("a", "b"),
		func(_ context.Context, pos []any, _ map[string]any) (any, error) {
			return []any{pos[0], pos[1]}, nil
		})
	task := pair.MustCall(1, 2)

	if err := task.Update([]any{10}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := task.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{10, 2}, got); diff != "" {
		t.Errorf("fewer positionals must keep the rest (-want +got):\n%s", diff)
	}

	got, err = task.RunWith(context.Background(), nil, map[string]any{"b": 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{10, 20}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestTask_UpdateRejectsNodes(t *testing.T) {
	upstream := addOne.MustCall(0)
	anyDef := dagtest.NewMock("any", nil, nil).Def()

	tests := []struct {
		name   string
		task   *dag.Task
		pos    []any
		kw     map[string]any
		target string
	}{
		{"named slot holds node", addOne.MustCall(upstream), []any{5}, nil, "x"},
		{"binding a node", addOne.MustCall(0), []any{upstream}, nil, "x"},
		{"variadic holds nodes", zipInputs.MustCall(upstream, upstream), []any{1}, nil, "inputs"},
		{"keyword extra holds node", mustCallKw(t, anyDef, map[string]any{"k": upstream}), nil, map[string]any{"k": 1}, "k"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Update(tt.pos, tt.kw)
			if !stderrors.Is(err, dag.ErrArgumentOverwrite) {
				t.Fatalf("expected ErrArgumentOverwrite, got %v", err)
			}
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != errors.ErrCodeArgumentOverwrite {
				t.Fatalf("expected ARGUMENT_OVERWRITE, got %v", err)
			}
			if appErr.Details["param"] != tt.target {
				t.Errorf("expected param %q, got %v", tt.target, appErr.Details["param"])
			}
		})
	}
}

func mustCallKw(t *testing.T, d *dag.Def, kw map[string]any) *dag.Task {
	t.Helper()
	task, err := d.CallKw(nil, kw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return task
}

func TestTask_BindingErrors(t *testing.T) {
	pair := dag.Define("pair", args.Names("a", "b"),
		func(_ context.Context, pos []any, _ map[string]any) (any, error) { return nil, nil })

	if _, err := pair.CallKw([]any{1}, map[string]any{"a": 2}); !stderrors.Is(err, args.ErrDuplicateArgument) {
		t.Errorf("expected ErrDuplicateArgument, got %v", err)
	}
	if _, err := pair.CallKw(nil, map[string]any{"c": 2}); !stderrors.Is(err, args.ErrUnexpectedArgument) {
		t.Errorf("expected ErrUnexpectedArgument, got %v", err)
	}
	if _, err := pair.Call(1, 2, 3); !stderrors.Is(err, args.ErrUnexpectedArgument) {
		t.Errorf("expected ErrUnexpectedArgument for extra positionals, got %v", err)
	}

	_, err := pair.MustCall(1).Run(context.Background())
	if !stderrors.Is(err, args.ErrMissingArgument) {
		t.Errorf("expected ErrMissingArgument at call time, got %v", err)
	}
}

func TestTask_MixedVariadic(t *testing.T) {
	_, err := zipInputs.Call(addOne.MustCall(0), 1)
	if !errors.HasCode(err, errors.ErrCodeInvalidArgument) {
		t.Fatalf("expected INVALID_ARGUMENT, got %v", err)
	}
}

func TestTask_CallableErrorUnchanged(t *testing.T) {
	boom := stderrors.New("boom")
	task := dagtest.NewMock("failing", nil, boom).Def().MustCall()
	if _, err := task.Run(context.Background()); err != boom {
		t.Fatalf("expected callable error unchanged, got %v", err)
	}
}

func TestTask_Inputs(t *testing.T) {
	a := addOne.MustCall(0)
	b := doNothing.MustCall(0)
	task := zipTwoInputs.MustCall(a, b)
	if in := task.Inputs(); len(in) != 2 || in[0].ID() != a.ID() || in[1].ID() != b.ID() {
		t.Fatalf("unexpected inputs %v", in)
	}

	same := zipTwoInputs.MustCall(a, a)
	if len(same.Inputs()) != 1 {
		t.Errorf("expected duplicate edges to collapse, got %d", len(same.Inputs()))
	}

	v, ok := task.Arg("a")
	if !ok || !v.IsNode() || v.Node().ID() != a.ID() {
		t.Errorf("expected arg a to reference the upstream task, got %+v", v)
	}
	if vals := task.Args(); len(vals) != 2 {
		t.Errorf("expected 2 args, got %d", len(vals))
	}
	if a.ID() == b.ID() {
		t.Errorf("tasks must have distinct IDs")
	}
}

func TestTask_Names(t *testing.T) {
	counter := &executionCounter{}
	tests := []struct {
		name string
		def  *dag.Def
		want string
	}{
		{"explicit", addOne, "add_1"},
		{"method", counter.passThroughDef(), "executionCounter.pass_through"},
		{"method without name", dag.DefineMethod(counter, "", args.Any(), nil), "executionCounter"},
		{"go symbol", dag.MustDefineFunc("", strings.ToUpper), "ToUpper"},
		{"named option", dag.Define("x", args.Any(), nil, dag.Named("renamed")), "renamed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.def.MustCall().Name(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}

	task := addOne.MustCall(0).SetName("renamed")
	if task.Name() != "renamed" {
		t.Errorf("SetName not applied, got %q", task.Name())
	}
}

func TestTask_MethodOwnerPrefix(t *testing.T) {
	counter := &executionCounter{}
	task := counter.passThroughDef().MustCall("v")
	got, err := task.Run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "v" || counter.calls != 1 {
		t.Errorf("expected owner to be passed first, got %v after %d calls", got, counter.calls)
	}
}

func TestTask_Refs(t *testing.T) {
	task := splitToTwo.MustCall([]any{1, 2})
	if task.NumOutputs() != 1 || len(task.Refs()) != 1 {
		t.Fatalf("expected one lazy ref, got %d", len(task.Refs()))
	}

	refs := task.SplitOutput("left", "right")
	if len(refs) != 2 || task.NumOutputs() != 2 {
		t.Fatalf("expected 2 refs, got %d", len(refs))
	}
	if refs[0].Name() != "left" || refs[1].Name() != "right" {
		t.Errorf("unexpected ref names %q %q", refs[0].Name(), refs[1].Name())
	}
	if refs[1].Owner() != task || refs[1].Index() != 1 {
		t.Errorf("unexpected ref owner or index")
	}

	for _, i := range []int{2, -1} {
		_, err := task.Ref(i)
		if !stderrors.Is(err, dag.ErrUndefinedOutput) {
			t.Errorf("Ref(%d): expected ErrUndefinedOutput, got %v", i, err)
		}
		if !errors.HasCode(err, errors.ErrCodeUndefinedOutput) {
			t.Errorf("Ref(%d): expected UNDEFINED_OUTPUT_INDEX, got %v", i, err)
		}
	}

	unnamed := dagtest.NewMock("pair", []any{1, 2}, nil, dag.Outputs(2)).Def().MustCall()
	if got := unnamed.Refs()[1].Name(); got != "pair[1]" {
		t.Errorf("expected default ref name pair[1], got %q", got)
	}
}

func TestRef_Run(t *testing.T) {
	m := dagtest.NewMock("pair", []any{"l", "r"}, nil, dag.Outputs(2))
	task := m.Def().MustCall()
	refs := task.Refs()
	ctx := context.Background()

	for _, r := range refs {
		if _, err := r.Run(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if m.Calls() != 1 {
		t.Fatalf("siblings must share one evaluation, got %d calls", m.Calls())
	}
	if refs[0].Result() != "l" || refs[1].Result() != "r" {
		t.Errorf("unexpected results %v %v", refs[0].Result(), refs[1].Result())
	}

	// The same ref running again starts a new round.
	if _, err := refs[0].Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Calls() != 2 {
		t.Errorf("expected a new round to re-evaluate the owner, got %d calls", m.Calls())
	}

	if err := refs[0].Update([]any{"forwarded"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := task.Run(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	pos, _ := m.LastArgs()
	if diff := cmp.Diff([]any{"forwarded"}, pos); diff != "" {
		t.Errorf("expected Update to reach the owner (-want +got):\n%s", diff)
	}
}

func TestRef_OutputShape(t *testing.T) {
	tests := []struct {
		name   string
		output any
	}{
		{"nil", nil},
		{"not a sequence", 42},
		{"too short", []int{1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := dagtest.NewMock("short", tt.output, nil, dag.Outputs(2)).Def().MustCall()
			ref, _ := task.Ref(1)
			_, err := ref.Run(context.Background())
			if !stderrors.Is(err, dag.ErrOutputShape) {
				t.Fatalf("expected ErrOutputShape, got %v", err)
			}
		})
	}

	arr := dagtest.NewMock("array", [2]string{"a", "b"}, nil, dag.Outputs(2)).Def().MustCall()
	ref, _ := arr.Ref(1)
	got, err := ref.Run(context.Background())
	if err != nil || got != "b" {
		t.Errorf("expected arrays to be indexable, got %v, %v", got, err)
	}
}
