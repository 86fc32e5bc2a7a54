package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the instruments recorded for pipeline runs and their
// node steps.
type Metrics struct {
	nodeTotal    metric.Int64Counter
	nodeDuration metric.Float64Histogram
	nodeErrors   metric.Int64Counter
	runTotal     metric.Int64Counter
	runDuration  metric.Float64Histogram
	runActive    metric.Int64UpDownCounter
}

// instruments collects the first error while creating instruments.
type instruments struct {
	meter metric.Meter
	err   error
}

func (in *instruments) counter(name, desc string) metric.Int64Counter {
	c, err := in.meter.Int64Counter(name, metric.WithDescription(desc))
	in.fail(name, err)
	return c
}

func (in *instruments) seconds(name, desc string) metric.Float64Histogram {
	h, err := in.meter.Float64Histogram(name, metric.WithDescription(desc), metric.WithUnit("s"))
	in.fail(name, err)
	return h
}

func (in *instruments) gauge(name, desc string) metric.Int64UpDownCounter {
	g, err := in.meter.Int64UpDownCounter(name, metric.WithDescription(desc))
	in.fail(name, err)
	return g
}

func (in *instruments) fail(name string, err error) {
	if err != nil && in.err == nil {
		in.err = fmt.Errorf("creating %s: %w", name, err)
	}
}

// NewMetrics creates the pipeline instruments on meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	in := &instruments{meter: meter}
	m := &Metrics{
		nodeTotal:    in.counter("dag.node.total", "Node evaluations"),
		nodeDuration: in.seconds("dag.node.duration", "Node evaluation time"),
		nodeErrors:   in.counter("dag.node.errors", "Failed node evaluations"),
		runTotal:     in.counter("dag.run.total", "Pipeline runs"),
		runDuration:  in.seconds("dag.run.duration", "Pipeline run time"),
		runActive:    in.gauge("dag.run.active", "Pipeline runs in progress"),
	}
	if in.err != nil {
		return nil, in.err
	}
	return m, nil
}

// RecordNode records one node evaluation.
func (m *Metrics) RecordNode(ctx context.Context, pipeline, node, status string, d time.Duration) {
	pipe, name := attribute.String("pipeline", pipeline), attribute.String("node", node)
	m.nodeTotal.Add(ctx, 1, metric.WithAttributes(pipe, name, attribute.String("status", status)))
	m.nodeDuration.Record(ctx, d.Seconds(), metric.WithAttributes(pipe, name))
}

// RecordNodeError records a failed node evaluation.
func (m *Metrics) RecordNodeError(ctx context.Context, pipeline, node string) {
	m.nodeErrors.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pipeline", pipeline),
		attribute.String("node", node),
	))
}

// RecordRunStart counts a run as in progress.
func (m *Metrics) RecordRunStart(ctx context.Context) {
	m.runActive.Add(ctx, 1)
}

// RecordRunEnd records a finished run and removes it from the active count.
func (m *Metrics) RecordRunEnd(ctx context.Context, pipeline, status string, d time.Duration) {
	m.runActive.Add(ctx, -1)
	pipe := attribute.String("pipeline", pipeline)
	m.runTotal.Add(ctx, 1, metric.WithAttributes(pipe, attribute.String("status", status)))
	m.runDuration.Record(ctx, d.Seconds(), metric.WithAttributes(pipe))
}
