// Package logger provides structured logging for dagpipe using zerolog.
//
// It supports JSON and console output, level configuration, and
// component-scoped loggers with structured fields. Pipeline runs put their
// run ID on the context; WithContext copies it onto every event.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("dag")
//	log.WithContext(ctx).Info("run finished", logger.Fields("pipeline", "etl"))
package logger
