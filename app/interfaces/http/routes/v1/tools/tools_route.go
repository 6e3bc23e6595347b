package tools

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/domain/tool"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
	"admetric.ai/ads-api-gateway/app/interfaces/http/responses"
	"admetric.ai/ads-api-gateway/app/utils/logger"
	"admetric.ai/ads-api-gateway/config"
)

type ToolsRoute struct {
	dispatcher *tool.Dispatcher
	metrics    *metrics.Metrics
}

func NewToolsRoute(dispatcher *tool.Dispatcher, m *metrics.Metrics) *ToolsRoute {
	return &ToolsRoute{
		dispatcher,
		m,
	}
}

// RegisterRouter wires the listing on the public group and the call endpoint
// on the authenticated one.
func (toolsRoute *ToolsRoute) RegisterRouter(public gin.IRouter, authed gin.IRouter) {
	public.GET("/tools", toolsRoute.ListTools)
	authed.POST("/tools/call", toolsRoute.CallTool)
}

type CallToolRequest struct {
	Tool       string         `json:"tool" binding:"required"`
	Parameters map[string]any `json:"parameters"`
	// Arguments is an accepted alias for parameters, matching the MCP wire
	// vocabulary.
	Arguments map[string]any `json:"arguments"`
}

func (req *CallToolRequest) parameters() map[string]any {
	if req.Parameters != nil {
		return req.Parameters
	}
	return req.Arguments
}

// @Summary List available tools
// @Description Returns the name of every callable tool.
// @Tags Tools
// @Produce json
// @Success 200 {object} responses.ToolListResponse
// @Router /api/v1/tools [get]
func (toolsRoute *ToolsRoute) ListTools(reqCtx *gin.Context) {
	reqCtx.JSON(http.StatusOK, responses.ToolListResponse{
		Success: true,
		Tools:   toolsRoute.dispatcher.Registry().Names(),
		Version: config.Version,
	})
}

// @Summary Call a tool
// @Description Executes one named tool with the given parameters for the authenticated identity.
// @Tags Tools
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} responses.ToolCallResponse
// @Failure 400 {object} responses.ErrorResponse
// @Failure 429 {object} responses.ErrorResponse
// @Router /api/v1/tools/call [post]
func (toolsRoute *ToolsRoute) CallTool(reqCtx *gin.Context) {
	var req CallToolRequest
	if err := reqCtx.ShouldBindJSON(&req); err != nil {
		responses.AbortWithError(reqCtx, common.NewError(
			common.KindValidation,
			"0a2b4c6d-8e1f-4a3b-9c5d-7e9f1a3b5c7d",
			"request body must be JSON with a tool name",
		))
		return
	}
	ident, ok := auth.GetIdentityFromContext(reqCtx)
	if !ok {
		responses.AbortWithError(reqCtx, common.NewError(
			common.KindUnauthenticated,
			"d4e6f8a0-b2c3-4d5e-8f7a-9b0c1d2e3f4a",
			"missing identity",
		))
		return
	}

	start := time.Now()
	envelope, err := toolsRoute.dispatcher.Dispatch(reqCtx.Request.Context(), ident, req.Tool, req.parameters())
	elapsed := time.Since(start)
	if err != nil {
		e := common.AsError(err)
		toolsRoute.metrics.ToolCallsTotal.WithLabelValues(req.Tool, string(e.Kind)).Inc()
		logger.GetLogger().WithFields(logrus.Fields{
			"tool":     req.Tool,
			"identity": ident.PublicID,
			"kind":     string(e.Kind),
			"code":     e.Code,
		}).Warn("tool call failed")
		responses.AbortWithError(reqCtx, e)
		return
	}

	toolsRoute.metrics.ToolCallsTotal.WithLabelValues(req.Tool, "ok").Inc()
	toolsRoute.metrics.ToolCallDuration.WithLabelValues(req.Tool).Observe(elapsed.Seconds())
	reqCtx.JSON(http.StatusOK, responses.ToolCallResponse{
		Success: true,
		Tool:    req.Tool,
		Data:    envelope.Data,
		Metadata: responses.ToolCallMetadata{
			Cached:          envelope.Cached,
			CacheTTLSeconds: envelope.CacheTTLSeconds,
			ExecutionTimeMS: elapsed.Milliseconds(),
		},
	})
}
