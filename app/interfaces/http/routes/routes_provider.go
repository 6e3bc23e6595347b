package routes

import (
	"github.com/google/wire"

	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/admin"
	v1 "admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1/connect"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1/mcp"
	"admetric.ai/ads-api-gateway/app/interfaces/http/routes/v1/tools"
)

var RouteProvider = wire.NewSet(
	tools.NewToolsRoute,
	connect.NewConnectRoute,
	mcp.NewMCPAPI,
	admin.NewCacheRoute,
	v1.NewV1Route,
)
