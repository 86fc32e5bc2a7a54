// Package observability provides OpenTelemetry tracing and metrics for
// pipeline runs.
//
// Tracing:
//
//	svc := observability.Service{Name: "etl", Version: "1.0.0"}
//	exp := observability.Exporter{Endpoint: "localhost:4318", Insecure: true}
//	tp, err := observability.InitTracer(ctx, svc, exp, 1.0)
//	defer tp.Shutdown(ctx)
//
//	ctx, span := observability.StartSpan(ctx, "dag.node")
//	defer span.End()
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, svc, exp, 15*time.Second)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewMetrics(observability.Meter("dagpipe"))
//	metrics.RecordNode(ctx, "etl", "extract", "ok", duration)
//
// A RunContext ties one pipeline run's span to its run metrics.
package observability
