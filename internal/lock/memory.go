package lock

import (
	"context"
	"sync"
	"time"
)

// MemoryLocker implements Locker using in-memory locks.
// The locks are NOT shared across process restarts or multiple instances.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]lockEntry
	now   func() time.Time
}

// lockEntry represents a single held lock.
type lockEntry struct {
	token     string
	expiresAt time.Time
}

// NewMemoryLocker creates a new in-memory locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		locks: make(map[string]lockEntry),
		now:   time.Now,
	}
}

// Acquire attempts to acquire a lock. An expired lock is taken over.
func (m *MemoryLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if entry, held := m.locks[key]; held && now.Before(entry.expiresAt) {
		return "", false, nil
	}

	// Drop other expired entries so the map does not grow without bound.
	for k, entry := range m.locks {
		if !now.Before(entry.expiresAt) {
			delete(m.locks, k)
		}
	}

	token := newToken()
	m.locks[key] = lockEntry{token: token, expiresAt: now.Add(ttl)}
	return token, true, nil
}

// Release releases a lock still held under token.
func (m *MemoryLocker) Release(ctx context.Context, key, token string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, held := m.locks[key]
	if !held || entry.token != token {
		return false, nil
	}
	delete(m.locks, key)
	return true, nil
}

var _ Locker = (*MemoryLocker)(nil)
