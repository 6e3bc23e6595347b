package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/ratelimit"
	"admetric.ai/ads-api-gateway/app/interfaces/http/responses"
)

// IPRateLimitMiddleware admits by client address. It runs before auth so
// credential-stuffing traffic is rejected without touching the store.
func IPRateLimitMiddleware(limiter *ratelimit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		apply(c, limiter.AdmitIP(c.Request.Context(), c.ClientIP()))
	}
}

// IdentityRateLimitMiddleware admits by authenticated identity. It must run
// after an auth middleware.
func IdentityRateLimitMiddleware(limiter *ratelimit.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ident, ok := auth.GetIdentityFromContext(c)
		if !ok {
			c.Next()
			return
		}
		apply(c, limiter.AdmitIdentity(c.Request.Context(), ident.PublicID))
	}
}

func apply(c *gin.Context, decision ratelimit.Decision) {
	c.Writer.Header().Set("X-RateLimit-Limit", strconv.FormatInt(decision.Limit, 10))
	c.Writer.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(decision.Remaining, 10))
	if decision.Allowed {
		c.Next()
		return
	}
	retryAfter := int64(decision.RetryAfter.Seconds())
	c.Writer.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
	c.AbortWithStatusJSON(http.StatusTooManyRequests, responses.ErrorResponse{
		Error: responses.ErrorBody{
			Kind:    "gateway_rate_limit_exceeded",
			Code:    "1c3e5a7b-9d0f-4a2c-8e4b-6d8f0a2c4e6a",
			Message: "rate limit exceeded for scope " + decision.Scope,
			Details: map[string]any{"retry_after_seconds": retryAfter},
		},
	})
}
