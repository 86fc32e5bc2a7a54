// Package dagtest provides test helpers for the dagpipe/dag package.
//
// It includes call-counting mock definitions and a middleware that records
// the order in which a pipeline evaluates its nodes.
//
// Example:
//
//	func TestMyPipeline(t *testing.T) {
//	    load := dagtest.NewMock("load", []any{"raw", 2}, nil)
//	    rec := dagtest.NewRecorder()
//
//	    task := load.Def().MustCall(nil)
//	    p, _ := dag.New([]dag.Node{task}, []dag.Node{task}, dag.WithMiddleware(rec.Middleware()))
//	    out, err := p.Run(context.Background(), "path")
//	    // ... assertions on out, load.Calls() and rec.Names()
//	}
package dagtest
