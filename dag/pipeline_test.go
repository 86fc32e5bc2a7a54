package dag_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/kbukum/dagpipe/dag"
	"github.com/kbukum/dagpipe/dag/dagtest"
	"github.com/kbukum/dagpipe/errors"
)

func mustNew(t *testing.T, inputs, outputs []dag.Node, opts ...dag.Option) *dag.Pipeline {
	t.Helper()
	p, err := dag.New(inputs, outputs, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return p
}

type run struct {
	in   any
	want []any
}

// runTwice runs p with each argument and compares the outputs.
func runTwice(t *testing.T, p *dag.Pipeline, runs []run) {
	t.Helper()
	for _, r := range runs {
		got, err := p.Run(context.Background(), r.in)
		if err != nil {
			t.Fatalf("run(%v): unexpected error: %v", r.in, err)
		}
		if diff := cmp.Diff(r.want, got); diff != "" {
			t.Errorf("run(%v) mismatch (-want +got):\n%s", r.in, diff)
		}
	}
}

func TestPipeline_Simple(t *testing.T) {
	inp := addOne.MustCall("overwritten")
	x := addOne.MustCall(inp)
	x = addOne.MustCall(x)
	p := mustNew(t, []dag.Node{inp}, []dag.Node{x})

	runTwice(t, p, []run{{0, []any{3}}, {10, []any{13}}})
}

func TestSequential(t *testing.T) {
	p, err := dag.Sequential(addOne, addOne, addOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.Nodes()) != 3 {
		t.Fatalf("expected 3 nodes, got %d", len(p.Nodes()))
	}
	runTwice(t, p, []run{{0, []any{3}}, {10, []any{13}}})
}

func TestSequential_Empty(t *testing.T) {
	_, err := dag.Sequential()
	if !stderrors.Is(err, dag.ErrInvalidPipeline) {
		t.Fatalf("expected ErrInvalidPipeline, got %v", err)
	}
}

func TestPipeline_Splits(t *testing.T) {
	tests := []struct {
		name  string
		build func() ([]dag.Node, []dag.Node)
		runs  []run
	}{
		{
			name: "middle split",
			build: func() ([]dag.Node, []dag.Node) {
				inp := doNothing.MustCall("overwritten")
				refs := splitToTwo.MustCall(appendA.MustCall(inp)).SplitOutput("x", "a")
				xb := appendB.MustCall(refs[0])
				ac := appendC.MustCall(refs[1])
				return []dag.Node{inp}, []dag.Node{xb, ac}
			},
			runs: []run{
				{"x", []any{[]any{"x", "b"}, []any{"a", "c"}}},
				{"y", []any{[]any{"y", "b"}, []any{"a", "c"}}},
			},
		},
		{
			name: "end split",
			build: func() ([]dag.Node, []dag.Node) {
				inp := doNothing.MustCall("overwritten")
				refs := splitToTwo.MustCall(appendA.MustCall(inp)).SplitOutput("x", "a")
				return []dag.Node{inp}, []dag.Node{refs[0], refs[1]}
			},
			runs: []run{{"x", []any{"x", "a"}}, {"y", []any{"y", "a"}}},
		},
		{
			name: "asymmetric split",
			build: func() ([]dag.Node, []dag.Node) {
				inp := doNothing.MustCall("overwritten")
				refs := splitToTwo.MustCall(appendA.MustCall(inp)).SplitOutput("x", "a")
				a := doNothing.MustCall(refs[1])
				return []dag.Node{inp}, []dag.Node{refs[0], a}
			},
			runs: []run{{"x", []any{"x", "a"}}, {"y", []any{"y", "a"}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inputs, outputs := tt.build()
			runTwice(t, mustNew(t, inputs, outputs), tt.runs)
		})
	}
}

func TestPipeline_TwoInputs(t *testing.T) {
	inp1 := doNothing.MustCall("overwritten").SetName("inp1")
	inp2 := doNothing.MustCall("overwritten").SetName("inp2")
	x := zipTwoInputs.MustCall(inp1, inp2)
	p := mustNew(t, []dag.Node{inp1, inp2}, []dag.Node{x})

	for _, tc := range []struct {
		named map[string]any
		want  []any
	}{
		{map[string]any{"inp1": "x", "inp2": "y"}, []any{[]any{"x", "y"}}},
		{map[string]any{"inp1": "x2", "inp2": "y2"}, []any{[]any{"x2", "y2"}}},
	} {
		got, err := p.RunNamed(context.Background(), tc.named)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff(tc.want, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestNew_DuplicateInputNames(t *testing.T) {
	a := doNothing.MustCall(1)
	b := doNothing.MustCall(2)
	sum := zipTwoInputs.MustCall(a, b)

	_, err := dag.New([]dag.Node{a, b}, []dag.Node{sum})
	if !stderrors.Is(err, dag.ErrInvalidPipeline) {
		t.Fatalf("expected ErrInvalidPipeline for two inputs named %q, got %v", a.Name(), err)
	}

	b.SetName("second")
	p := mustNew(t, []dag.Node{a, b}, []dag.Node{sum})
	got, err := p.RunNamed(context.Background(), map[string]any{a.Name(): 10, "second": 20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{[]any{10, 20}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_TypedValuesRouteAsOneArgument(t *testing.T) {
	inp1 := doNothing.MustCall("overwritten").SetName("inp1")
	inp2 := doNothing.MustCall("overwritten").SetName("inp2")
	p := mustNew(t, []dag.Node{inp1, inp2}, []dag.Node{zipTwoInputs.MustCall(inp1, inp2)})

	got, err := p.RunNamed(context.Background(), map[string]any{
		"inp1": []string{"a", "b"},
		"inp2": map[string]int{"n": 1},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []any{[]any{[]string{"a", "b"}, map[string]int{"n": 1}}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_InputRouting(t *testing.T) {
	inp1 := doNothing.MustCall("overwritten").SetName("inp1")
	inp2 := doNothing.MustCall("overwritten").SetName("inp2")
	p := mustNew(t, []dag.Node{inp1, inp2}, []dag.Node{zipTwoInputs.MustCall(inp1, inp2)})
	ctx := context.Background()

	got, err := p.RunNamed(ctx, map[string]any{
		"inp1": []any{"pos"},
		"inp2": dag.Args{Kw: map[string]any{"x": "kw"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{[]any{"pos", "kw"}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}

	if _, err := p.RunNamed(ctx, map[string]any{"inp3": 1}); !stderrors.Is(err, dag.ErrUnknownInput) {
		t.Errorf("expected ErrUnknownInput for unknown name, got %v", err)
	}
	_, err = p.Run(ctx, 1)
	if !stderrors.Is(err, dag.ErrUnknownInput) {
		t.Errorf("expected ErrUnknownInput for positional args, got %v", err)
	}
	if !errors.HasCode(err, errors.ErrCodeUnknownInput) {
		t.Errorf("expected UNKNOWN_INPUT code, got %v", err)
	}
}

func TestPipeline_ExecutionCounter(t *testing.T) {
	counter := &executionCounter{}
	inp := doNothing.MustCall("overwritten")
	refs := counter.passThroughDef().MustCall(inp).SplitOutput("x1", "x2", "x3", "x4")
	out1 := zipInputs.MustCall(refs[0], refs[1], refs[2])
	p := mustNew(t, []dag.Node{inp}, []dag.Node{out1, refs[3]})

	got, err := p.Run(context.Background(), []any{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter.calls != 1 {
		t.Errorf("expected owner to run once, ran %d times", counter.calls)
	}
	if diff := cmp.Diff([]any{[]any{1, 2, 3}, 4}, got); diff != "" {
		t.Errorf("first run mismatch (-want +got):\n%s", diff)
	}

	got, err = p.Run(context.Background(), []any{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counter.calls != 2 {
		t.Errorf("expected owner to run twice, ran %d times", counter.calls)
	}
	if diff := cmp.Diff([]any{[]any{10, 20, 30}, 40}, got); diff != "" {
		t.Errorf("second run mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_MultiOutputCalledOnce(t *testing.T) {
	m := dagtest.NewMock("triple", []any{1, 2, 3}, nil, dag.Outputs(3))
	inp := doNothing.MustCall(nil)
	task := m.Def().MustCall(inp)
	refs := task.Refs()
	if len(refs) != 3 {
		t.Fatalf("expected 3 refs, got %d", len(refs))
	}
	p := mustNew(t, []dag.Node{inp}, []dag.Node{refs[2], refs[0], refs[1]})

	for i := 1; i <= 2; i++ {
		got, err := p.Run(context.Background(), "go")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if diff := cmp.Diff([]any{3, 1, 2}, got); diff != "" {
			t.Errorf("mismatch (-want +got):\n%s", diff)
		}
		if m.Calls() != i {
			t.Errorf("run %d: expected %d calls, got %d", i, i, m.Calls())
		}
	}
}

func TestPipeline_Diamond(t *testing.T) {
	root := dagtest.NewMockFunc("root", addOne.Signature(), func(_ context.Context, pos []any, _ map[string]any) (any, error) {
		return pos[0].(int) * 10, nil
	})
	r := root.Def().MustCall(0)
	left := addOne.MustCall(r).SetName("left")
	right := addOne.MustCall(r).SetName("right")
	join := zipTwoInputs.MustCall(left, right)

	rec := dagtest.NewRecorder()
	p := mustNew(t, []dag.Node{r}, []dag.Node{join}, dag.WithMiddleware(rec.Middleware()))

	got, err := p.Run(context.Background(), 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{[]any{21, 21}}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if root.Calls() != 1 {
		t.Errorf("expected root to run once, got %d", root.Calls())
	}
	names := rec.Names()
	if len(names) != 4 || names[0] != "root" || names[3] != "zip_two_inputs" {
		t.Errorf("unexpected order %v", names)
	}
}

func TestPipeline_OwnerAndRefConsumed(t *testing.T) {
	m := dagtest.NewMock("pair", []any{"l", "r"}, nil, dag.Outputs(2))
	inp := doNothing.MustCall(nil)
	owner := m.Def().MustCall(inp)
	ref, err := owner.Ref(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := mustNew(t, []dag.Node{inp}, []dag.Node{owner, ref})

	got, err := p.Run(context.Background(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{[]any{"l", "r"}, "r"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if m.Calls() != 1 {
		t.Errorf("expected one call, got %d", m.Calls())
	}
}

func TestNew_Errors(t *testing.T) {
	a := addOne.MustCall(0)
	b := addOne.MustCall(a)
	stray := addOne.MustCall(0)

	tests := []struct {
		name    string
		inputs  []dag.Node
		outputs []dag.Node
		want    error
		code    errors.ErrorCode
	}{
		{"no inputs", nil, []dag.Node{b}, dag.ErrInvalidPipeline, errors.ErrCodeInvalidPipeline},
		{"no outputs", []dag.Node{a}, nil, dag.ErrInvalidPipeline, errors.ErrCodeInvalidPipeline},
		{"disconnected", []dag.Node{stray}, []dag.Node{b}, dag.ErrDisconnected, errors.ErrCodeDisconnected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dag.New(tt.inputs, tt.outputs)
			if !stderrors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if !errors.HasCode(err, tt.code) {
				t.Errorf("expected code %s, got %v", tt.code, err)
			}
		})
	}
}

func TestNew_OwnerAsInput(t *testing.T) {
	inp := doNothing.MustCall(nil)
	refs := splitToTwo.MustCall(inp).SplitOutput("l", "r")
	owner := refs[0].Owner()
	if _, err := dag.New([]dag.Node{owner}, []dag.Node{refs[0]}); err != nil {
		t.Fatalf("owner reached through refs should count as connected: %v", err)
	}
}

func TestPipeline_Stop(t *testing.T) {
	inp := addOne.MustCall(0)
	mid := addOne.MustCall(inp).SetName("mid")
	last := dagtest.NewMock("last", "unreachable", nil)
	out := last.Def().MustCall(mid)

	p := mustNew(t, []dag.Node{inp}, []dag.Node{out, mid},
		dag.WithStop("mid", func(result any) bool { return result.(int) > 5 }))
	ctx := context.Background()

	got, err := p.Run(ctx, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	stopped, ok := dag.FirstStopped(got)
	if !ok {
		t.Fatalf("expected stopped outputs, got %v", got)
	}
	if stopped.String() != "STOPPED AT mid" {
		t.Errorf("unexpected marker %q", stopped.String())
	}
	for _, o := range got {
		if o != mid.Stopped() {
			t.Errorf("expected every output to be the stop marker, got %v", o)
		}
	}
	if last.Calls() != 0 {
		t.Errorf("nodes after the stop must not run")
	}

	got, err = p.Run(ctx, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{"unreachable", 2}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Execute(t *testing.T) {
	boom := stderrors.New("boom")
	failing := dagtest.NewMock("failing", nil, boom)
	inp := addOne.MustCall(0)
	out := failing.Def().MustCall(inp)
	p := mustNew(t, []dag.Node{inp}, []dag.Node{out}, dag.WithName("execute"))

	res, err := p.Execute(context.Background(), []any{1}, nil)
	if err != boom {
		t.Fatalf("expected node error unchanged, got %v", err)
	}
	if res == nil || len(res.Steps) != 2 {
		t.Fatalf("expected partial report with 2 steps, got %+v", res)
	}
	if s, _ := res.Step("add_1"); s.Status != dag.StatusCompleted || s.Output != 2 {
		t.Errorf("unexpected step %+v", s)
	}
	if s, _ := res.Step("failing"); s.Status != dag.StatusFailed || s.Error != boom {
		t.Errorf("unexpected step %+v", s)
	}
	if inp.Result() != 2 {
		t.Errorf("partial results must be kept, got %v", inp.Result())
	}

	ok := mustNew(t, []dag.Node{inp}, []dag.Node{inp})
	res, err = ok.Execute(context.Background(), []any{4}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.RunID.String() == "" || res.Stopped != "" {
		t.Errorf("unexpected report %+v", res)
	}
	if diff := cmp.Diff([]any{5}, res.Outputs); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_Canceled(t *testing.T) {
	m := dagtest.NewMock("never", 1, nil)
	inp := m.Def().MustCall()
	p := mustNew(t, []dag.Node{inp}, []dag.Node{inp})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Run(ctx); !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if m.Calls() != 0 {
		t.Errorf("canceled run must not evaluate nodes")
	}
}

func TestPipeline_WithOutputs(t *testing.T) {
	inp := addOne.MustCall(0).SetName("inp")
	mid := addOne.MustCall(inp).SetName("mid")
	tail := dagtest.NewMock("tail", "tail", nil)
	end := tail.Def().MustCall(mid)

	p := mustNew(t, []dag.Node{inp}, []dag.Node{end},
		dag.WithStop("mid", func(result any) bool { return result.(int) < 0 }))
	sub, err := p.WithOutputs("mid")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if in := sub.Inputs(); len(in) != 1 || in[0].ID() != inp.ID() {
		t.Errorf("expected inputs to be kept, got %v", in)
	}

	got, err := sub.Run(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{7}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if tail.Calls() != 0 {
		t.Errorf("only the selected path should run")
	}

	got, err = sub.Run(context.Background(), -10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := dag.FirstStopped(got); !ok {
		t.Errorf("stops should be kept, got %v", got)
	}

	if _, err := p.WithOutputs("missing"); !stderrors.Is(err, dag.ErrInvalidPipeline) {
		t.Errorf("expected ErrInvalidPipeline, got %v", err)
	}
}

func TestPipeline_WithOutputs_RefOwner(t *testing.T) {
	inp := doNothing.MustCall(nil)
	refs := splitToTwo.MustCall(appendA.MustCall(inp)).SplitOutput("x", "a")
	p := mustNew(t, []dag.Node{inp}, []dag.Node{refs[0]})

	sub, err := p.WithOutputs("split_to_two", "a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := sub.Run(context.Background(), "v")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{[]any{"v", "a"}, "a"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestPipeline_AsTask(t *testing.T) {
	inner, err := dag.Sequential(addOne, addOne, addOne)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	inp, err := inner.AsTask("inp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inp.Nested() != inner || inp.NumOutputs() != 1 {
		t.Fatalf("unexpected nested task %v", inp)
	}
	out := addOne.MustCall(inp)
	p := mustNew(t, []dag.Node{inp}, []dag.Node{out})

	runTwice(t, p, []run{{0, []any{4}}, {10, []any{14}}})

	// Nodes of the nested pipeline are reachable by name.
	if _, err := p.WithOutputs("inp", "add_1"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPipeline_AsTask_MultipleOutputs(t *testing.T) {
	inp := doNothing.MustCall(nil)
	refs := splitToTwo.MustCall(appendA.MustCall(inp)).SplitOutput("x", "a")
	inner := mustNew(t, []dag.Node{inp}, []dag.Node{refs[0], refs[1]})

	nested, err := inner.AsTask("split")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	outer := nested.Refs()
	p := mustNew(t, []dag.Node{nested}, []dag.Node{appendB.MustCall(outer[0]), outer[1]})

	got, err := p.Run(context.Background(), "q")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]any{[]any{"q", "b"}, "a"}, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
