package ratelimit

import (
	"context"
	"fmt"
	"time"

	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
	"admetric.ai/ads-api-gateway/app/utils/logger"
	"admetric.ai/ads-api-gateway/config/environment_variables"
)

const (
	ScopeIP       = "ip"
	ScopeIdentity = "identity"
)

const (
	defaultIPLimit        = 60
	defaultIdentityLimit  = 120
	defaultWindowDuration = 60 * time.Second
)

// Decision is one admission verdict plus the header material for it.
type Decision struct {
	Allowed    bool
	Scope      string
	Limit      int64
	Remaining  int64
	RetryAfter time.Duration
}

// Service admits requests against per-IP and per-identity sliding windows.
// When the backing store is unreachable the limiter fails open: availability
// over strict enforcement.
type Service struct {
	cacheService   cache.CacheService
	metrics        *metrics.Metrics
	ipLimit        int64
	ipWindow       time.Duration
	identityLimit  int64
	identityWindow time.Duration
}

func NewService(cacheService cache.CacheService, m *metrics.Metrics) *Service {
	env := environment_variables.EnvironmentVariables
	return &Service{
		cacheService:   cacheService,
		metrics:        m,
		ipLimit:        intOrDefault(env.IP_RATE_LIMIT, defaultIPLimit),
		ipWindow:       windowOrDefault(env.IP_RATE_WINDOW_SECONDS),
		identityLimit:  intOrDefault(env.IDENTITY_RATE_LIMIT, defaultIdentityLimit),
		identityWindow: windowOrDefault(env.IDENTITY_RATE_WINDOW_SECONDS),
	}
}

// AdmitIP admits one request from a client address.
func (s *Service) AdmitIP(ctx context.Context, ip string) Decision {
	return s.admit(ctx, ScopeIP, fmt.Sprintf(cache.RateLimitIPKeyPattern, ip), s.ipLimit, s.ipWindow)
}

// AdmitIdentity admits one request from an authenticated identity.
func (s *Service) AdmitIdentity(ctx context.Context, publicID string) Decision {
	return s.admit(ctx, ScopeIdentity, fmt.Sprintf(cache.RateLimitIdentityKeyPattern, publicID), s.identityLimit, s.identityWindow)
}

func (s *Service) admit(ctx context.Context, scope, key string, limit int64, window time.Duration) Decision {
	allowed, count, err := s.cacheService.SlidingWindow(ctx, key, limit, window)
	if err != nil {
		logger.GetLogger().Warnf("rate limiter degraded, admitting request: %v", err)
		return Decision{Allowed: true, Scope: scope, Limit: limit, Remaining: limit}
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}
	if !allowed {
		s.metrics.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
		return Decision{Scope: scope, Limit: limit, RetryAfter: window}
	}
	return Decision{Allowed: true, Scope: scope, Limit: limit, Remaining: remaining}
}

func intOrDefault(v, def int) int64 {
	if v <= 0 {
		return int64(def)
	}
	return int64(v)
}

func windowOrDefault(seconds int) time.Duration {
	if seconds <= 0 {
		return defaultWindowDuration
	}
	return time.Duration(seconds) * time.Second
}
