package logger

import "time"

// Field keys shared by every dagpipe log line.
const (
	FieldService   = "service"
	FieldComponent = "component"
	FieldTraceID   = "trace_id"
	FieldSpanID    = "span_id"
	FieldRunID     = "run_id"
	FieldPipeline  = "pipeline"
	FieldNode      = "node"
	FieldStep      = "step"
	FieldStoppedAt = "stopped_at"
	FieldStatus    = "status"
	FieldError     = "error"
	FieldDuration  = "duration_ms"
)

// Fields builds a field map from alternating key-value pairs. Pairs with a
// non-string key and a trailing odd value are dropped.
//
//	logger.Info("done", logger.Fields("pipeline", "etl", "nodes", 4))
func Fields(kvs ...any) map[string]any {
	m := make(map[string]any, len(kvs)/2)
	for i := 0; i+1 < len(kvs); i += 2 {
		if key, ok := kvs[i].(string); ok {
			m[key] = kvs[i+1]
		}
	}
	return m
}

// NodeFields identifies one step of a pipeline run.
func NodeFields(pipeline, node string, step int) map[string]any {
	return map[string]any{FieldPipeline: pipeline, FieldNode: node, FieldStep: step}
}

// StepFields describes a finished step: NodeFields plus its duration and,
// when err is non-nil, the error text.
func StepFields(pipeline, node string, step int, d time.Duration, err error) map[string]any {
	m := NodeFields(pipeline, node, step)
	m[FieldDuration] = d.Milliseconds()
	if err != nil {
		m[FieldError] = err.Error()
	}
	return m
}
