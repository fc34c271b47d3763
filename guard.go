package tranche

import "context"

type reentryKey struct{}

// markReentry tags ctx so that any engine entry point reached through an
// external asset call is rejected instead of executing against state
// that was committed but not yet settled.
func markReentry(ctx context.Context) context.Context {
	return context.WithValue(ctx, reentryKey{}, true)
}

func isReentry(ctx context.Context) bool {
	v, _ := ctx.Value(reentryKey{}).(bool)
	return v
}

// enter is the common prologue for every mutating entry point: reject
// reentrant calls, then serialize on the engine mutex. Callers must
// release e.mu before issuing any external transfer.
func (e *Engine) enter(ctx context.Context) error {
	if isReentry(ctx) {
		return ErrReentrancyDetected
	}
	e.mu.Lock()
	if e.params == nil {
		e.mu.Unlock()
		return ErrNotConfigured
	}
	return nil
}
