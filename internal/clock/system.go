package clock

import (
	"context"
	"time"

	"go.uber.org/fx"
)

type overrideKey struct{}

// WithFixedTime pins the clock for the given context. Used by tests and
// replay tooling; production callers never set it.
func WithFixedTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, overrideKey{}, t)
}

func fromContext(ctx context.Context) (time.Time, bool) {
	t, ok := ctx.Value(overrideKey{}).(time.Time)
	return t, ok
}

type SystemClock struct{}

func (SystemClock) Now(ctx context.Context) time.Time {
	if t, ok := fromContext(ctx); ok {
		return t
	}
	return time.Now().UTC()
}

func New() Clock {
	return SystemClock{}
}

var Module = fx.Module("clock",
	fx.Provide(New),
)
