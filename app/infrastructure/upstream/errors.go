package upstream

import (
	"encoding/json"

	"admetric.ai/ads-api-gateway/app/domain/common"
)

// APIError is the error object the advertising platform returns inside a
// non-2xx body.
type APIError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    int    `json:"code"`
	Subcode int    `json:"error_subcode"`
	TraceID string `json:"fbtrace_id"`
}

type errorEnvelope struct {
	Error APIError `json:"error"`
}

// Application-level throttling codes.
var rateLimitCodes = map[int]bool{
	4:   true, // application request limit reached
	17:  true, // user request limit reached
	32:  true, // page request limit reached
	613: true, // custom rate limit
}

// Expired/invalid credential or insufficient scope codes.
var permissionCodes = map[int]bool{
	10:  true, // permission denied
	190: true, // invalid or expired access token
	200: true, // generic permission error
	294: true, // ads management permission required
}

// ErrReservoirExhausted is returned when the outbound budget for the current
// refill interval is spent.
var ErrReservoirExhausted = common.NewError(
	common.KindUpstreamRateLimit,
	"0f4f9a9e-6d0a-4d39-9f2e-2a7f6f3f8f11",
	"outbound request budget exhausted, try again later",
)

// classifyError turns an upstream error body into the gateway's closed error
// taxonomy by inspecting the numeric code.
func classifyError(statusCode int, body []byte) *common.Error {
	var envelope errorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Error.Code == 0 && envelope.Error.Message == "" {
		return common.NewError(
			common.KindInternal,
			"8a0e8c2f-51b1-4a64-88cf-0a3c7a41d8a7",
			"upstream returned an unreadable error response",
		).WithDetails(map[string]any{"status_code": statusCode})
	}

	apiErr := envelope.Error
	switch {
	case rateLimitCodes[apiErr.Code]:
		return common.NewError(
			common.KindUpstreamRateLimit,
			"5a7dfb68-7c2e-4a41-9a36-3c73b9a5b1cd",
			"advertising platform rate limit reached, try again later",
		)
	case permissionCodes[apiErr.Code]:
		return common.NewError(
			common.KindUpstreamPermission,
			"4c55e0d3-9a2f-4bb6-bb2f-54b2a5e24f09",
			"advertising platform denied access: "+apiErr.Message,
		)
	default:
		return common.NewError(
			common.KindInternal,
			"e2f7f14b-6a58-4e9e-8f0f-7f1b1b8b14f3",
			"advertising platform error: "+apiErr.Message,
		).WithDetails(map[string]any{"upstream_code": apiErr.Code, "upstream_type": apiErr.Type})
	}
}
