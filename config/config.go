package config

import (
	"fmt"
	"time"

	"github.com/kbukum/dagpipe/logger"
	"github.com/kbukum/dagpipe/resilience"
	"github.com/kbukum/dagpipe/validation"
)

// Config is the dagpipe runtime configuration. Applications embed it in their
// own config structs:
//
//	type AppConfig struct {
//	    config.Config `yaml:",inline" mapstructure:",squash"`
//	    Source string `yaml:"source" mapstructure:"source"`
//	}
type Config struct {
	Name          string              `yaml:"name" mapstructure:"name" validate:"required"`
	Environment   string              `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Version       string              `yaml:"version" mapstructure:"version"`
	Debug         bool                `yaml:"debug" mapstructure:"debug"`
	Logging       logger.Config       `yaml:"logging" mapstructure:"logging"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Engine        EngineConfig        `yaml:"engine" mapstructure:"engine"`
}

// ObservabilityConfig configures OpenTelemetry export.
type ObservabilityConfig struct {
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// TracingConfig configures the OTLP trace exporter.
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure   bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// MetricsConfig configures the OTLP metric exporter.
type MetricsConfig struct {
	Enabled  bool          `yaml:"enabled" mapstructure:"enabled"`
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint" validate:"required_if=Enabled true"`
	Insecure bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`
}

// EngineConfig configures how pipelines run.
type EngineConfig struct {
	// StepLogging logs every evaluated node.
	StepLogging bool `yaml:"step_logging" mapstructure:"step_logging"`
	// SpanPrefix names node spans "{prefix}.{node}". Empty disables node spans.
	SpanPrefix string `yaml:"span_prefix" mapstructure:"span_prefix"`
	// DefinitionDirs are searched for YAML pipeline definitions.
	DefinitionDirs []string `yaml:"definition_dirs" mapstructure:"definition_dirs"`
	// Retry re-evaluates failing nodes. Disabled unless max_attempts > 1.
	Retry resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// GetConfig returns the base Config. When embedded, the method is promoted.
func (c *Config) GetConfig() *Config {
	return c
}

// ApplyDefaults applies default values.
func (c *Config) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
	}
	if c.Logging.ServiceName == "" && c.Name != "" {
		c.Logging.ServiceName = c.Name
	}
	c.Logging.ApplyDefaults()
	if c.Observability.Tracing.Enabled && c.Observability.Tracing.SampleRate == 0 {
		c.Observability.Tracing.SampleRate = 1.0
	}
	if c.Observability.Metrics.Interval == 0 {
		c.Observability.Metrics.Interval = 15 * time.Second
	}
	if c.Engine.SpanPrefix == "" && c.Observability.Tracing.Enabled {
		c.Engine.SpanPrefix = "dag"
	}
	if len(c.Engine.DefinitionDirs) == 0 {
		c.Engine.DefinitionDirs = []string{"pipelines"}
	}
}

// Validate checks struct tags and the logging section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config.logging: %w", err)
	}
	return nil
}
