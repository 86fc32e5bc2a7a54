package bootstrap

import (
	"time"

	"github.com/kbukum/dagpipe/dag"
	"github.com/kbukum/dagpipe/logger"
)

const defaultGracefulTimeout = 15 * time.Second

// Option overrides a piece of the App wiring. Options are not generic so
// one set works for every config type.
type Option func(*settings)

type settings struct {
	logger          *logger.Logger
	registry        *dag.Registry
	loader          dag.Loader
	gracefulTimeout time.Duration
	middlewares     []dag.Middleware
}

func newSettings(opts []Option) settings {
	s := settings{gracefulTimeout: defaultGracefulTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger uses l instead of a logger built from the logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithGracefulTimeout bounds how long Shutdown may take.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.gracefulTimeout = d }
}

// WithRegistry sets the registry YAML definitions resolve against.
func WithRegistry(r *dag.Registry) Option {
	return func(s *settings) { s.registry = r }
}

// WithLoader replaces the file loader built from engine.definition_dirs.
func WithLoader(l dag.Loader) Option {
	return func(s *settings) { s.loader = l }
}

// WithMiddleware appends step middleware to every pipeline the app builds.
func WithMiddleware(mw ...dag.Middleware) Option {
	return func(s *settings) { s.middlewares = append(s.middlewares, mw...) }
}
