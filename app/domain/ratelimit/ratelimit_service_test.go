package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
)

// windowCache counts events in memory so admission can be tested without
// a store behind it.
type windowCache struct {
	cache.NoOpCacheService
	counts map[string]int64
	err    error
}

func newWindowCache() *windowCache {
	return &windowCache{counts: map[string]int64{}}
}

func (w *windowCache) SlidingWindow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	if w.err != nil {
		return false, 0, w.err
	}
	w.counts[key]++
	count := w.counts[key]
	return count <= limit, count, nil
}

func TestAdmitIPWithinLimit(t *testing.T) {
	s := NewService(newWindowCache(), metrics.New())

	decision := s.AdmitIP(context.Background(), "10.0.0.1")
	assert.True(t, decision.Allowed)
	assert.Equal(t, ScopeIP, decision.Scope)
	assert.Equal(t, int64(defaultIPLimit), decision.Limit)
	assert.Equal(t, int64(defaultIPLimit-1), decision.Remaining)
}

func TestAdmitIPRejectsOverLimit(t *testing.T) {
	wc := newWindowCache()
	s := NewService(wc, metrics.New())
	ctx := context.Background()

	for i := 0; i < defaultIPLimit; i++ {
		assert.True(t, s.AdmitIP(ctx, "10.0.0.1").Allowed)
	}
	decision := s.AdmitIP(ctx, "10.0.0.1")
	assert.False(t, decision.Allowed)
	assert.Equal(t, defaultWindowDuration, decision.RetryAfter)
	assert.Zero(t, decision.Remaining)
}

func TestAdmitKeysAreScoped(t *testing.T) {
	wc := newWindowCache()
	s := NewService(wc, metrics.New())
	ctx := context.Background()

	for i := 0; i < defaultIPLimit; i++ {
		s.AdmitIP(ctx, "10.0.0.1")
	}
	assert.False(t, s.AdmitIP(ctx, "10.0.0.1").Allowed)

	// A different address and the identity scope are untouched.
	assert.True(t, s.AdmitIP(ctx, "10.0.0.2").Allowed)
	assert.True(t, s.AdmitIdentity(ctx, "idn_a").Allowed)
}

func TestAdmitFailsOpenOnStoreFault(t *testing.T) {
	wc := newWindowCache()
	wc.err = errors.New("connection refused")
	s := NewService(wc, metrics.New())

	decision := s.AdmitIdentity(context.Background(), "idn_a")
	assert.True(t, decision.Allowed)
}
