package dag

import (
	"context"
	"time"

	"github.com/kbukum/dagpipe/logger"
	"github.com/kbukum/dagpipe/observability"
)

// Tracing opens a span named "{prefix}.{node}" around every step.
func Tracing(prefix string) Middleware {
	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, node Node) (any, error) {
			ctx, span := observability.StartSpan(ctx, prefix+"."+node.Name())
			defer span.End()

			observability.SetSpanAttribute(ctx, observability.AttrNode, node.Name())
			if info, ok := StepInfoFromContext(ctx); ok {
				observability.SetSpanAttribute(ctx, observability.AttrPipeline, info.Pipeline)
				observability.SetSpanAttribute(ctx, observability.AttrRunID, info.RunID)
				observability.SetSpanAttribute(ctx, observability.AttrStep, info.Index)
			}

			result, err := next(ctx, node)
			if err != nil {
				observability.SetSpanError(ctx, err)
			}
			return result, err
		}
	}
}

// Metrics records evaluation count, duration, and errors per step.
func Metrics(metrics *observability.Metrics) Middleware {
	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, node Node) (any, error) {
			start := time.Now()
			result, err := next(ctx, node)
			duration := time.Since(start)

			info, _ := StepInfoFromContext(ctx)
			status := "ok"
			if err != nil {
				status = "error"
				metrics.RecordNodeError(ctx, info.Pipeline, node.Name())
			}
			metrics.RecordNode(ctx, info.Pipeline, node.Name(), status, duration)
			return result, err
		}
	}
}

// Logging logs every step: failures at error level, successes at debug.
func Logging(log *logger.Logger) Middleware {
	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, node Node) (any, error) {
			start := time.Now()
			result, err := next(ctx, node)
			duration := time.Since(start)

			info, _ := StepInfoFromContext(ctx)
			fields := logger.StepFields(info.Pipeline, node.Name(), info.Index, duration, err)
			l := log.WithContext(ctx)
			if err != nil {
				l.Error("dag node failed", fields)
			} else {
				l.Debug("dag node completed", fields)
			}
			return result, err
		}
	}
}
