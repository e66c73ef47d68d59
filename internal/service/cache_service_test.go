package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

)

type failingCacheRepo struct{}

func (failingCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	return errors.New("redis down")
}

func (failingCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return errors.New("redis down")
}

func (failingCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	return errors.New("redis down")
}

func TestCacheServiceRoundTrip(t *testing.T) {
	cache, mr := newTestCache(t)

	var dest map[string]int
	assert.False(t, cache.Get(context.Background(), "complaints:x", &dest))

	cache.Set(context.Background(), "complaints:x", map[string]int{"n": 1}, time.Minute)
	assert.True(t, cache.Get(context.Background(), "complaints:x", &dest))
	assert.Equal(t, 1, dest["n"])

	mr.FastForward(2 * time.Minute)
	assert.False(t, cache.Get(context.Background(), "complaints:x", &dest))
}

func TestCacheServiceInvalidatePattern(t *testing.T) {
	cache, mr := newTestCache(t)
	require.NoError(t, mr.Set("complaints:stats", "{}"))
	require.NoError(t, mr.Set("complaints:other", "{}"))
	require.NoError(t, mr.Set("auth:revoked:jti", "1"))

	cache.Invalidate(context.Background(), complaintCachePattern)
	assert.False(t, mr.Exists("complaints:stats"))
	assert.False(t, mr.Exists("complaints:other"))
	assert.True(t, mr.Exists("auth:revoked:jti"))
}

func TestCacheServiceDefaultTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	cache.Set(context.Background(), "complaints:ttl", 1, 0)
	assert.Equal(t, 5*time.Minute, mr.TTL("complaints:ttl"))
}

func TestCacheServiceFailuresAreSwallowed(t *testing.T) {
	metrics := NewMetricsService()
	cache := NewCacheService(failingCacheRepo{}, metrics, time.Minute, zap.NewNop(), true)

	var dest int
	assert.False(t, cache.Get(context.Background(), "k", &dest))
	assert.NotPanics(t, func() {
		cache.Set(context.Background(), "k", 1, 0)
		cache.Invalidate(context.Background(), "k*")
	})
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.cacheLookups.WithLabelValues("miss")))
}

func TestCacheServiceDisabled(t *testing.T) {
	cache := NewCacheService(failingCacheRepo{}, nil, 0, nil, false)
	assert.False(t, cache.Enabled())

	var nilCache *CacheService
	assert.False(t, nilCache.Enabled())
	var dest int
	assert.False(t, nilCache.Get(context.Background(), "k", &dest))
}
