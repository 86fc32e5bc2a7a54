package dag

import (
	"github.com/kbukum/dagpipe/config"
	"github.com/kbukum/dagpipe/logger"
	"github.com/kbukum/dagpipe/observability"
	"github.com/kbukum/dagpipe/resilience"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithName names the pipeline in logs, spans, and metrics.
func WithName(name string) Option {
	return func(p *Pipeline) { p.name = name }
}

// WithStop ends a run early when pred holds for the named node's fresh result.
func WithStop(node string, pred StopFunc) Option {
	return func(p *Pipeline) { p.stops[node] = pred }
}

// WithMiddleware appends step middlewares. They run inside the built-in
// logging, tracing, and metrics middlewares.
func WithMiddleware(mw ...Middleware) Option {
	return func(p *Pipeline) { p.middlewares = append(p.middlewares, mw...) }
}

// WithLogger sets the logger for run and step events.
func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithMetrics records run and node metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithStepLogging logs every evaluated node.
func WithStepLogging() Option {
	return func(p *Pipeline) { p.stepLogging = true }
}

// WithTracing opens a span per node named "{prefix}.{node}".
func WithTracing(prefix string) Option {
	return func(p *Pipeline) { p.spanPrefix = prefix }
}

// WithRetry re-evaluates failing nodes under cfg.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(p *Pipeline) { p.retry = cfg }
}

// WithEngineConfig applies the engine section of the runtime configuration.
func WithEngineConfig(cfg config.EngineConfig) Option {
	return func(p *Pipeline) {
		p.stepLogging = p.stepLogging || cfg.StepLogging
		if cfg.SpanPrefix != "" {
			p.spanPrefix = cfg.SpanPrefix
		}
		if cfg.Retry.Enabled() {
			p.retry = cfg.Retry
		}
	}
}

// chain builds the step function: logging outermost, then tracing, metrics,
// user middlewares, and retry closest to the node.
func (p *Pipeline) chain() StepFunc {
	var mws []Middleware
	if p.stepLogging {
		mws = append(mws, Logging(p.log))
	}
	if p.spanPrefix != "" {
		mws = append(mws, Tracing(p.spanPrefix))
	}
	if p.metrics != nil {
		mws = append(mws, Metrics(p.metrics))
	}
	mws = append(mws, p.middlewares...)
	if p.retry.Enabled() {
		mws = append(mws, Retry(p.retry, p.log))
	}
	return Chain(mws...)(runStep)
}
