package dag

import (
	"context"
	"time"

	"github.com/kbukum/dagpipe/errors"
	"github.com/kbukum/dagpipe/logger"
	"github.com/kbukum/dagpipe/resilience"
)

// Retry re-evaluates a failing node under cfg. Engine errors such as
// binding or output shape failures are never retried; callable errors are
// subject to cfg.RetryIf and come back unchanged when attempts run out.
func Retry(cfg resilience.RetryConfig, log *logger.Logger) Middleware {
	retryIf := cfg.RetryIf
	if retryIf == nil {
		retryIf = resilience.DefaultRetryIf
	}
	cfg.RetryIf = func(err error) bool {
		if _, ok := errors.AsAppError(err); ok {
			return false
		}
		return retryIf(err)
	}

	return func(next StepFunc) StepFunc {
		return func(ctx context.Context, node Node) (any, error) {
			c := cfg
			c.OnRetry = func(attempt int, err error, backoff time.Duration) {
				info, _ := StepInfoFromContext(ctx)
				fields := logger.NodeFields(info.Pipeline, node.Name(), info.Index)
				fields["attempt"] = attempt
				fields["backoff"] = backoff.String()
				log.WithContext(ctx).WithError(err).Warn("dag node retrying", fields)
				if cfg.OnRetry != nil {
					cfg.OnRetry(attempt, err, backoff)
				}
			}
			return resilience.Retry(ctx, c, func(ctx context.Context) (any, error) {
				return next(ctx, node)
			})
		}
	}
}
