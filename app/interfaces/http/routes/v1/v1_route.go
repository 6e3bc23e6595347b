package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/ratelimit"
	"admetric.ai/ads-api-gateway/app/interfaces/http/middleware"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1/connect"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1/mcp"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1/tools"
	"admetric.ai/ads-api-gateway/config"
)

type V1Route struct {
	toolsRoute   *tools.ToolsRoute
	connectRoute *connect.ConnectRoute
	mcpAPI       *mcp.MCPAPI
	authService  *auth.AuthService
	limiter      *ratelimit.Service
}

func NewV1Route(
	toolsRoute *tools.ToolsRoute,
	connectRoute *connect.ConnectRoute,
	mcpAPI *mcp.MCPAPI,
	authService *auth.AuthService,
	limiter *ratelimit.Service,
) *V1Route {
	return &V1Route{
		toolsRoute,
		connectRoute,
		mcpAPI,
		authService,
		limiter,
	}
}

func (v1Route *V1Route) RegisterRouter(router gin.IRouter) {
	v1Router := router.Group("/api/v1")
	v1Router.GET("/version", GetVersion)

	// Connect carries no identity yet; only the per-IP window applies.
	v1Route.connectRoute.RegisterRouter(v1Router)

	authed := v1Router.Group("",
		v1Route.authService.BearerAuthMiddleware(),
		middleware.IdentityRateLimitMiddleware(v1Route.limiter),
	)
	// The listing is public; only the call endpoint needs an identity.
	v1Route.toolsRoute.RegisterRouter(v1Router, authed)

	// MCP authenticates via query token inside its own middleware chain.
	v1Route.mcpAPI.RegisterRouter(v1Router)
}

// GetVersion godoc
// @Summary     Get API build version
// @Description Returns the current build version of the API server.
// @Tags        system
// @Produce     json
// @Success     200 {object} map[string]string "version info"
// @Router      /api/v1/version [get]
func GetVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"version": config.Version,
	})
}
