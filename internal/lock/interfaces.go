// Package lock provides distributed and local locking abstractions.
// For single-node deployments, memory-based locks are used.
// For multi-instance deployments sharing Redis, Redis-based locks are used.
package lock

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// newToken returns a unique owner token for one acquisition.
func newToken() string {
	return uuid.NewString()
}

// Locker defines the interface for distributed/local locking.
type Locker interface {
	// Acquire attempts to acquire a lock.
	// Returns true and an owner token if the lock was acquired, false if
	// it's held by another owner. The lock expires after ttl even if never
	// released.
	Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error)

	// Release releases a lock if it is still held under token.
	// Returns false if the lock expired or was taken over by another owner.
	Release(ctx context.Context, key, token string) (bool, error)
}

// AcquireWithRetry attempts to acquire a lock, retrying up to maxRetries
// times with retryDelay between attempts.
func AcquireWithRetry(ctx context.Context, l Locker, key string, ttl time.Duration, maxRetries int, retryDelay time.Duration) (string, bool, error) {
	for i := 0; i <= maxRetries; i++ {
		token, acquired, err := l.Acquire(ctx, key, ttl)
		if err != nil {
			return "", false, err
		}
		if acquired {
			return token, true, nil
		}

		if i < maxRetries {
			select {
			case <-ctx.Done():
				return "", false, ctx.Err()
			case <-time.After(retryDelay):
			}
		}
	}
	return "", false, nil
}

// Keys provides lock key generation.
var Keys = lockKeys{}

type lockKeys struct{}

// TokenIssue returns the lock key guarding token issuance for an account.
// Prevents concurrent logins from replacing each other's fresh token.
func (lockKeys) TokenIssue(accountID uuid.UUID) string {
	return "lock:token:" + accountID.String()
}
