package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	rdb "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	first, ok, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotEmpty(t, first)

	_, ok, err = m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "held")

	now = now.Add(2 * time.Second)
	second, ok, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock is taken over")
	assert.NotEqual(t, first, second)

	released, err := m.Release(ctx, "k", second)
	require.NoError(t, err)
	assert.True(t, released)

	released, err = m.Release(ctx, "k", second)
	require.NoError(t, err)
	assert.False(t, released)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, _, err = m.Acquire(cancelled, "k", time.Second)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryLocker_ExpiredHolderCannotRelease(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale, ok, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	current, ok, err := m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	released, err := m.Release(ctx, "k", stale)
	require.NoError(t, err)
	assert.False(t, released, "expired holder must not release the new hold")

	_, ok, err = m.Acquire(ctx, "k", time.Second)
	require.NoError(t, err)
	assert.False(t, ok, "new hold survives")

	released, err = m.Release(ctx, "k", current)
	require.NoError(t, err)
	assert.True(t, released)
}

func TestRedisLocker(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := rdb.NewClient(&rdb.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	a := NewRedisLocker(client, "mp:")
	b := NewRedisLocker(client, "mp:")
	key := Keys.TokenIssue(uuid.New())

	aToken, ok, err := a.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("mp:"+key))

	_, ok, err = b.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	released, err := b.Release(ctx, key, "someone-else")
	require.NoError(t, err)
	assert.False(t, released, "only the owner may release")

	released, err = a.Release(ctx, key, aToken)
	require.NoError(t, err)
	assert.True(t, released)

	bToken, ok, err := b.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	_, ok, err = a.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock is taken over")

	released, err = b.Release(ctx, key, bToken)
	require.NoError(t, err)
	assert.False(t, released, "expired holder must not release the new hold")
	assert.True(t, mr.Exists("mp:"+key))
}

func TestAcquireWithRetry(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryLocker()

	_, ok, err := AcquireWithRetry(ctx, m, "k", 50*time.Millisecond, 0, 0)
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = AcquireWithRetry(ctx, m, "k", time.Second, 1, time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)

	token, ok, err := AcquireWithRetry(ctx, m, "k", time.Second, 20, 10*time.Millisecond)
	require.NoError(t, err)
	assert.True(t, ok, "acquired once the first holder expires")
	assert.NotEmpty(t, token)
}

func TestNoOpLocker(t *testing.T) {
	_, ok, err := NoOpLocker{}.Acquire(context.Background(), "k", time.Second)
	require.NoError(t, err)
	assert.True(t, ok)

	released, err := NoOpLocker{}.Release(context.Background(), "k", "")
	require.NoError(t, err)
	assert.True(t, released)
}
