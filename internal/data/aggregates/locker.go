package aggregates

import "context"

// Locker is a short-lived mutual exclusion keyed by aggregate id. Implementations
// return an error wrapping ErrRetryable when the lock cannot be acquired.
type Locker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
