// Package resilience retries failing operations with exponential backoff.
//
// RetryConfig carries yaml and mapstructure tags so it can sit inside the
// engine configuration. A zero MaxAttempts or a value of 1 disables retries.
//
//	cfg := resilience.RetryConfig{MaxAttempts: 3, InitialBackoff: 50 * time.Millisecond}
//	out, err := resilience.Retry(ctx, cfg, func(ctx context.Context) (any, error) {
//	    return fetch(ctx)
//	})
package resilience
