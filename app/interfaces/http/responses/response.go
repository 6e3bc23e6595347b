package responses

import (
	"github.com/gin-gonic/gin"

	"admetric.ai/ads-api-gateway/app/domain/common"
)

// ErrorBody is the wire form of a classified gateway error.
type ErrorBody struct {
	Kind    string `json:"kind"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// ToolCallMetadata reports cache provenance and timing for one call.
type ToolCallMetadata struct {
	Cached          bool  `json:"cached"`
	CacheTTLSeconds int   `json:"cache_ttl"`
	ExecutionTimeMS int64 `json:"execution_time_ms"`
}

type ToolCallResponse struct {
	Success  bool             `json:"success"`
	Tool     string           `json:"tool"`
	Data     any              `json:"data"`
	Metadata ToolCallMetadata `json:"metadata"`
}

// ToolListResponse carries the callable operation names.
type ToolListResponse struct {
	Success bool     `json:"success"`
	Tools   []string `json:"tools"`
	Version string   `json:"version"`
}

// AbortWithError classifies err and writes the matching status and body.
func AbortWithError(reqCtx *gin.Context, err error) {
	e := common.AsError(err)
	reqCtx.AbortWithStatusJSON(e.HTTPStatus(), ErrorResponse{
		Error: ErrorBody{
			Kind:    string(e.Kind),
			Code:    e.Code,
			Message: e.Message,
			Details: e.Details,
		},
	})
}
