package cache

import (
	"strings"

	"admetric.ai/ads-api-gateway/config/environment_variables"
)

// NewCacheService creates a cache service based on configuration
func NewCacheService() CacheService {
	cacheType := strings.ToLower(environment_variables.EnvironmentVariables.CACHE_TYPE)

	// Default to Redis if no cache type is specified
	if cacheType == "" {
		cacheType = "redis"
	}

	switch cacheType {
	case "none":
		return &NoOpCacheService{}
	case "redis":
		return NewRedisCacheService()
	default:
		// Fallback to Redis for unknown types
		return NewRedisCacheService()
	}
}
