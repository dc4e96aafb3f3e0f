package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/librarydesk/pkg/errors"
	"github.com/xiebiao/librarydesk/pkg/metrics"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionStore(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	loginAt := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveSession(ctx, Session{UserID: 7, Email: "s@lib.cn", Role: "student", LoginAt: loginAt, IP: "10.0.0.1"}, time.Hour))

	sess, err := store.GetSession(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, uint(7), sess.UserID)
	assert.Equal(t, "student", sess.Role)
	assert.True(t, sess.LoginAt.Equal(loginAt))

	mr.FastForward(2 * time.Hour)
	_, err = store.GetSession(ctx, 7)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, store.SaveSession(ctx, Session{UserID: 8}, time.Hour))
	require.NoError(t, store.DeleteSession(ctx, 8))
	_, err = store.GetSession(ctx, 8)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestSessionStore_Blacklist(t *testing.T) {
	mr, client := newTestRedis(t)
	store := NewSessionStore(client)
	ctx := context.Background()

	require.NoError(t, store.AddToBlacklist(ctx, "token-a", time.Minute))
	require.NoError(t, store.AddToBlacklist(ctx, "token-expired", 0))

	revoked, err := store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsInBlacklist(ctx, "token-expired")
	require.NoError(t, err)
	assert.False(t, revoked)

	mr.FastForward(2 * time.Minute)
	revoked, err = store.IsInBlacklist(ctx, "token-a")
	require.NoError(t, err)
	assert.False(t, revoked)
}

type cachedStats struct {
	TotalBooks int64 `json:"totalBooks"`
}

func TestJSONCache_HitMissDelete(t *testing.T) {
	mr, client := newTestRedis(t)
	m := metrics.New(prometheus.NewRegistry())
	cache := NewJSONCache(client, "stats", m, zap.NewNop())
	ctx := context.Background()

	var got cachedStats
	ok, err := cache.Get(ctx, "dashboard:stats", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, "dashboard:stats", cachedStats{TotalBooks: 12}, 30*time.Second))
	ok, err = cache.Get(ctx, "dashboard:stats", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int64(12), got.TotalBooks)
	assert.Equal(t, 30*time.Second, mr.TTL("dashboard:stats"))

	require.NoError(t, cache.Delete(ctx, "dashboard:stats"))
	assert.False(t, mr.Exists("dashboard:stats"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheRequests.WithLabelValues("stats", "hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheRequests.WithLabelValues("stats", "miss")))
}

func TestJSONCache_BreakerOpensWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	m := metrics.New(prometheus.NewRegistry())
	cache := NewJSONCache(client, "stats", m, zap.NewNop())
	ctx := context.Background()

	mr.Close()

	var got cachedStats
	for i := 0; i < 5; i++ {
		_, err := cache.Get(ctx, "dashboard:stats", &got)
		require.Error(t, err)
	}

	_, err := cache.Get(ctx, "dashboard:stats", &got)
	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeRedisError, appErr.Code)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CircuitBreakerRequests.WithLabelValues("redis:stats", "rejected")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("redis:stats")))
}
