package httpclients

import (
	"time"

	"admetric.ai/ads-api-gateway/config/environment_variables"
	"resty.dev/v3"
)

// NewClient builds a resty client with the shared timeout policy. The name
// shows up in client-side debug logs only.
func NewClient(name string) *resty.Client {
	timeout := environment_variables.EnvironmentVariables.UPSTREAM_HTTP_TIMEOUT_SECONDS
	if timeout <= 0 {
		timeout = 30
	}
	client := resty.New().
		SetTimeout(time.Duration(timeout)*time.Second).
		SetHeader("User-Agent", "ads-api-gateway/"+name)
	return client
}
