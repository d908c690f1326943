package lock

import (
	"context"
	"time"
)

// NoOpLocker is a locker that always succeeds.
// It is the default when no locker is configured.
type NoOpLocker struct{}

// Acquire always returns true.
func (NoOpLocker) Acquire(ctx context.Context, _ string, _ time.Duration) (string, bool, error) {
	return "", true, ctx.Err()
}

// Release always returns true.
func (NoOpLocker) Release(ctx context.Context, _, _ string) (bool, error) {
	return true, ctx.Err()
}

var _ Locker = NoOpLocker{}
