package cache

const (
	CacheVersion = "v1"

	// ToolCacheKeyPattern is filled with operation name, owning identity id,
	// account id and the normalized parameter fingerprint.
	ToolCacheKeyPattern = CacheVersion + ":tool:%s:%s:%s:%s"

	// IdentityCacheKeyGlob matches every tool entry belonging to one identity.
	IdentityCacheKeyGlob = CacheVersion + ":tool:*:%s:*"

	// AccountCacheKeyGlob matches every tool entry belonging to one ad account.
	AccountCacheKeyGlob = CacheVersion + ":tool:*:*:%s:*"

	RateLimitIPKeyPattern       = CacheVersion + ":ratelimit:ip:%s"
	RateLimitIdentityKeyPattern = CacheVersion + ":ratelimit:identity:%s"

	IdentityRefreshLockKeyPattern = CacheVersion + ":identity:refresh_lock:%s"
)
