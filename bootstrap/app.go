package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/dagpipe/dag"
	"github.com/kbukum/dagpipe/logger"
	"github.com/kbukum/dagpipe/observability"
)

// App wires configuration, logging, telemetry export and pipeline loading
// for a dagpipe process. The type parameter C is the config type.
//
// Example:
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.Registry.Register(parse, enrich, store)
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    p, err := app.Load("ingest")
//	    if err != nil {
//	        return err
//	    }
//	    _, err = p.Run(ctx, "input.csv")
//	    return err
//	})
type App[C Config] struct {
	Name     string
	Version  string
	Cfg      C
	Logger   *logger.Logger
	Registry *dag.Registry
	Loader   dag.Loader
	Metrics  *observability.Metrics

	gracefulTimeout time.Duration
	middlewares     []dag.Middleware
	tracer          *sdktrace.TracerProvider
	meter           *sdkmetric.MeterProvider
	started         bool

	onStart []Hook
	onStop  []Hook
}

// NewApp applies config defaults, validates the config and builds the
// logger, registry and definition loader. Telemetry starts with Start.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetConfig()
	set := newSettings(opts)

	if set.logger == nil {
		logger.Init(&base.Logging)
		set.logger = logger.GetGlobalLogger()
	}
	if set.registry == nil {
		set.registry = dag.NewRegistry()
	}
	if set.loader == nil {
		set.loader = dag.NewFileLoader(base.Engine.DefinitionDirs...)
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Logger:          set.logger,
		Registry:        set.registry,
		Loader:          set.loader,
		gracefulTimeout: set.gracefulTimeout,
		middlewares:     set.middlewares,
	}, nil
}

// PipelineOptions returns the options every pipeline built by the app
// receives: engine settings, the app logger, metrics and middleware.
func (a *App[C]) PipelineOptions() []dag.Option {
	base := a.Cfg.GetConfig()
	opts := []dag.Option{
		dag.WithLogger(a.Logger.WithComponent("dag")),
		dag.WithEngineConfig(base.Engine),
	}
	if a.Metrics != nil {
		opts = append(opts, dag.WithMetrics(a.Metrics))
	}
	if len(a.middlewares) > 0 {
		opts = append(opts, dag.WithMiddleware(a.middlewares...))
	}
	return opts
}

// Build builds a definition against the app registry and loader.
func (a *App[C]) Build(def *dag.Definition, opts ...dag.Option) (*dag.Pipeline, error) {
	return dag.Build(def, a.Registry, a.Loader, append(a.PipelineOptions(), opts...)...)
}

// Load resolves a definition by name through the app loader and builds it.
func (a *App[C]) Load(name string, opts ...dag.Option) (*dag.Pipeline, error) {
	def, err := a.Loader.Load(name)
	if err != nil {
		return nil, err
	}
	return a.Build(def, opts...)
}

// Start brings up telemetry export and runs OnStart hooks. It is a no-op
// on a started App.
func (a *App[C]) Start(ctx context.Context) error {
	if a.started {
		return nil
	}
	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.initTelemetry(ctx); err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	if err := runHooks(ctx, "start", a.onStart); err != nil {
		return err
	}
	a.started = true
	return nil
}

func (a *App[C]) initTelemetry(ctx context.Context) error {
	base := a.Cfg.GetConfig()
	obs := base.Observability

	svc := observability.Service{Name: base.Name, Version: base.Version, Environment: base.Environment}

	if obs.Tracing.Enabled {
		exp := observability.Exporter{Endpoint: obs.Tracing.Endpoint, Insecure: obs.Tracing.Insecure}
		tp, err := observability.InitTracer(ctx, svc, exp, obs.Tracing.SampleRate)
		if err != nil {
			return err
		}
		a.tracer = tp
	}

	if obs.Metrics.Enabled {
		exp := observability.Exporter{Endpoint: obs.Metrics.Endpoint, Insecure: obs.Metrics.Insecure}
		mp, err := observability.InitMeter(ctx, svc, exp, obs.Metrics.Interval)
		if err != nil {
			return err
		}
		a.meter = mp
		m, err := observability.NewMetrics(observability.Meter(base.Name))
		if err != nil {
			return err
		}
		a.Metrics = m
	}
	return nil
}

// RunTask starts the app, runs task and shuts down when the task returns
// or the process receives SIGINT/SIGTERM. The task's error wins over a
// shutdown error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("signal received, canceling task", logger.Fields("signal", sig.String()))
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)

	if stopErr := a.Shutdown(ctx); stopErr != nil {
		if taskErr != nil {
			return taskErr
		}
		return stopErr
	}
	return taskErr
}

type shutdownStep struct {
	name string
	run  func(context.Context) error
}

// Shutdown runs OnStop hooks, then flushes the meter and tracer providers,
// all within the graceful timeout. It survives cancellation of ctx. The
// first failure is returned; later steps still run.
func (a *App[C]) Shutdown(ctx context.Context) error {
	a.Logger.Info("shutting down", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.gracefulTimeout)
	defer cancel()

	steps := []shutdownStep{
		{"stop hooks", func(ctx context.Context) error { return runHooks(ctx, "stop", a.onStop) }},
	}
	if a.meter != nil {
		steps = append(steps, shutdownStep{"meter provider", a.meter.Shutdown})
	}
	if a.tracer != nil {
		steps = append(steps, shutdownStep{"tracer provider", a.tracer.Shutdown})
	}

	var first error
	for _, step := range steps {
		if err := step.run(ctx); err != nil {
			a.Logger.WithError(err).Error("shutdown step failed", logger.Fields("step", step.name))
			if first == nil {
				first = err
			}
		}
	}
	a.meter, a.tracer, a.started = nil, nil, false
	a.Logger.Info("shutdown complete")
	return first
}
