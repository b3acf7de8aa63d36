package revocation

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestList(t *testing.T) (*redisList, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return newRedisList(rdb, "", func() time.Time { return fixedNow }), mr
}

func TestRevoke_ThenIsRevoked(t *testing.T) {
	t.Parallel()

	l, mr := newTestList(t)
	ctx := context.Background()

	ok, err := l.IsRevoked(ctx, "tok-a")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, l.Revoke(ctx, "tok-a", fixedNow.Add(30*time.Minute)))

	ok, err = l.IsRevoked(ctx, "tok-a")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = l.IsRevoked(ctx, "tok-b")
	require.NoError(t, err)
	require.False(t, ok)

	key := l.key("tok-a")
	require.True(t, strings.HasPrefix(key, "blastify:revoked:"))
	require.NotContains(t, key, "tok-a")
	require.Equal(t, 30*time.Minute, mr.TTL(key))
}

func TestRevoke_ExpiresWithToken(t *testing.T) {
	t.Parallel()

	l, mr := newTestList(t)
	ctx := context.Background()

	require.NoError(t, l.Revoke(ctx, "tok", fixedNow.Add(time.Minute)))
	mr.FastForward(2 * time.Minute)

	ok, err := l.IsRevoked(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRevoke_PastExpiryUsesMinTTL(t *testing.T) {
	t.Parallel()

	l, mr := newTestList(t)

	require.NoError(t, l.Revoke(context.Background(), "tok", fixedNow.Add(-time.Hour)))
	require.Equal(t, minTTL, mr.TTL(l.key("tok")))
}

func TestEmptyToken_NoOp(t *testing.T) {
	t.Parallel()

	l, mr := newTestList(t)
	ctx := context.Background()

	require.NoError(t, l.Revoke(ctx, "", fixedNow.Add(time.Hour)))
	require.Empty(t, mr.Keys())

	ok, err := l.IsRevoked(ctx, "")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestIsRevoked_RedisDown(t *testing.T) {
	t.Parallel()

	l, mr := newTestList(t)
	mr.Close()

	_, err := l.IsRevoked(context.Background(), "tok")
	require.Error(t, err)
}

func TestNewRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	l, err := NewRedis(context.Background(), "redis://"+mr.Addr()+"/0", "custom:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	require.NoError(t, l.Revoke(context.Background(), "tok", time.Now().Add(time.Hour)))
	require.Len(t, mr.Keys(), 1)
	require.True(t, strings.HasPrefix(mr.Keys()[0], "custom:"))

	_, err = NewRedis(context.Background(), "://bad", "")
	require.Error(t, err)
}
