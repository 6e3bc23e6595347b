package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/gin-gonic/gin"
	mcpsdk "github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/domain/tool"
	"admetric.ai/ads-api-gateway/config"
)

func MCPMethodGuard(allowedMethods map[string]bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		var req struct {
			Method string `json:"method"`
		}

		if err := json.Unmarshal(bodyBytes, &req); err != nil {
			c.Abort()
			return
		}

		if !allowedMethods[req.Method] {
			c.Abort()
			return
		}
		c.Next()
	}
}

// MCPAPI exposes every registered tool over the Model Context Protocol, so
// embedded agents can drive the gateway without a bespoke client.
type MCPAPI struct {
	dispatcher  *tool.Dispatcher
	MCPServer   *mcpserver.MCPServer
	authService *auth.AuthService
}

func NewMCPAPI(dispatcher *tool.Dispatcher, authService *auth.AuthService) *MCPAPI {
	mcpSrv := mcpserver.NewMCPServer("ads-api-gateway", config.Version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithRecovery(),
	)
	return &MCPAPI{
		dispatcher:  dispatcher,
		MCPServer:   mcpSrv,
		authService: authService,
	}
}

func (mcpAPI *MCPAPI) RegisterRouter(router *gin.RouterGroup) {
	registry := mcpAPI.dispatcher.Registry()
	for _, name := range registry.Names() {
		op, _ := registry.Get(name)
		mcpAPI.MCPServer.AddTool(
			mcpsdk.NewTool(op.Name, mcpsdk.WithDescription(op.Description)),
			mcpAPI.toolHandler(op.Name),
		)
	}

	mcpHttpHandler := mcpserver.NewStreamableHTTPServer(mcpAPI.MCPServer)
	router.Any(
		"/mcp",
		mcpAPI.authService.QueryTokenAuthMiddleware(),
		MCPMethodGuard(map[string]bool{
			"initialize":                true,
			"notifications/initialized": true,
			"ping":                      true,

			"tools/list": true,
			"tools/call": true,
		}),
		gin.WrapH(mcpHttpHandler))
}

func (mcpAPI *MCPAPI) toolHandler(name string) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, request mcpsdk.CallToolRequest) (*mcpsdk.CallToolResult, error) {
		ident, ok := auth.IdentityFromStdContext(ctx)
		if !ok {
			return mcpsdk.NewToolResultError("missing identity"), nil
		}
		envelope, err := mcpAPI.dispatcher.Dispatch(ctx, ident, name, request.GetArguments())
		if err != nil {
			return mcpsdk.NewToolResultError(common.AsError(err).Message), nil
		}
		encoded, err := json.Marshal(envelope.Data)
		if err != nil {
			return mcpsdk.NewToolResultError("unencodable result"), nil
		}
		return mcpsdk.NewToolResultText(string(encoded)), nil
	}
}
