package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/kbukum/dagpipe/logger"
)

// Service identifies the process in exported telemetry.
type Service struct {
	Name        string
	Version     string
	Environment string
}

// Exporter is an OTLP/HTTP collector address.
type Exporter struct {
	// Endpoint is host:port, e.g. "localhost:4318".
	Endpoint string
	Insecure bool
}

func (s Service) resource() (*resource.Resource, error) {
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(s.Name),
		semconv.ServiceVersion(s.Version),
		attribute.String("environment", s.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("building %s resource: %w", s.Name, err)
	}
	return res, nil
}

// sampler maps a rate onto a parent-based sampler so child spans of a
// nested pipeline follow the decision made for the outer run.
func sampler(rate float64) sdktrace.Sampler {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}
	return sdktrace.ParentBased(root)
}

// InitTracer installs a batching OTLP tracer provider as the global
// provider. The caller shuts it down on exit.
func InitTracer(ctx context.Context, svc Service, exp Exporter, sampleRate float64) (*sdktrace.TracerProvider, error) {
	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(exp.Endpoint)}
	if exp.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	client, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating trace exporter: %w", err)
	}
	res, err := svc.resource()
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(client),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler(sampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Get("otel").Info("tracing enabled", logger.Fields(
		logger.FieldService, svc.Name,
		"endpoint", exp.Endpoint,
		"sample_rate", sampleRate,
	))
	return tp, nil
}

// InitMeter installs a periodic OTLP meter provider as the global
// provider. A zero interval keeps the SDK default.
func InitMeter(ctx context.Context, svc Service, exp Exporter, interval time.Duration) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(exp.Endpoint)}
	if exp.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	client, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	res, err := svc.resource()
	if err != nil {
		return nil, err
	}

	var readerOpts []sdkmetric.PeriodicReaderOption
	if interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(interval))
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(client, readerOpts...)),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Get("otel").Info("metrics enabled", logger.Fields(
		logger.FieldService, svc.Name,
		"endpoint", exp.Endpoint,
		"interval", interval.String(),
	))
	return mp, nil
}

// Meter returns a named meter from the global provider.
func Meter(name string) metric.Meter {
	return otel.Meter(name)
}
