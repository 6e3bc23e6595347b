package admin

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/interfaces/http/responses"
	"admetric.ai/ads-api-gateway/app/utils/logger"
)

// CacheRoute exposes operational cache invalidation, guarded by the admin key.
type CacheRoute struct {
	authService  *auth.AuthService
	cacheService cache.CacheService
}

func NewCacheRoute(authService *auth.AuthService, cacheService cache.CacheService) *CacheRoute {
	return &CacheRoute{
		authService,
		cacheService,
	}
}

func (cacheRoute *CacheRoute) RegisterRouter(router gin.IRouter) {
	adminRouter := router.Group("/admin", cacheRoute.authService.AdminKeyMiddleware())
	adminRouter.POST("/cache/invalidate", cacheRoute.Invalidate)
}

type InvalidateRequest struct {
	IdentityID string `json:"identity_id"`
	AccountID  string `json:"account_id"`
	Pattern    string `json:"pattern"`
}

// @Summary Invalidate cached tool results
// @Description Drops cache entries for one identity, one ad account, or by explicit glob pattern.
// @Tags Admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 401 {object} responses.ErrorResponse
// @Router /admin/cache/invalidate [post]
func (cacheRoute *CacheRoute) Invalidate(reqCtx *gin.Context) {
	var req InvalidateRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil ||
		(req.IdentityID == "" && req.AccountID == "" && req.Pattern == "") {
		responses.AbortWithError(reqCtx, common.NewError(
			common.KindValidation,
			"8b0c2d4e-6f7a-4b9c-1d3e-5f7a9b1c3d4f",
			"pass identity_id, account_id or pattern",
		))
		return
	}

	pattern := req.Pattern
	switch {
	case pattern != "":
	case req.IdentityID != "":
		pattern = fmt.Sprintf(cache.IdentityCacheKeyGlob, req.IdentityID)
	default:
		pattern = fmt.Sprintf(cache.AccountCacheKeyGlob, req.AccountID)
	}
	if err := cacheRoute.cacheService.DeletePattern(reqCtx.Request.Context(), pattern); err != nil {
		logger.GetLogger().Warnf("cache invalidation failed: %v", err)
		responses.AbortWithError(reqCtx, common.NewError(
			common.KindInternal,
			"9c1d3e5f-7a8b-4c0d-2e4f-6a8b0c2d4e5a",
			"cache invalidation failed",
		))
		return
	}
	reqCtx.JSON(http.StatusOK, gin.H{"status": "ok", "pattern": pattern})
}
