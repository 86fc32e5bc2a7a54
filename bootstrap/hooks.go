package bootstrap

import (
	"context"
	"fmt"
)

// Hook runs at a lifecycle edge of the App.
type Hook func(ctx context.Context) error

// OnStart registers hooks run by Start once exporters are up. Register
// definitions here when they depend on live resources.
func (a *App[C]) OnStart(hooks ...Hook) {
	a.onStart = append(a.onStart, hooks...)
}

// OnStop registers hooks run by Shutdown before exporters flush.
func (a *App[C]) OnStop(hooks ...Hook) {
	a.onStop = append(a.onStop, hooks...)
}

// runHooks stops at the first failing hook.
func runHooks(ctx context.Context, stage string, hooks []Hook) error {
	for i, h := range hooks {
		if err := h(ctx); err != nil {
			return fmt.Errorf("%s hook %d: %w", stage, i, err)
		}
	}
	return nil
}
