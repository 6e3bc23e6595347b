package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admetric.ai/ads-api-gateway/app/domain/auth"
	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/domain/tool"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
)

type recordingCaller struct {
	endpoints []string
}

func (r *recordingCaller) Call(ctx context.Context, endpoint string, accessToken string, params map[string]any) (json.RawMessage, error) {
	r.endpoints = append(r.endpoints, endpoint)
	return json.RawMessage(`{"data":[]}`), nil
}

func newTestEngine(caller tool.UpstreamCaller) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	dispatcher := tool.NewDispatcher(tool.NewRegistry(), caller, &cache.NoOpCacheService{}, m)
	route := NewToolsRoute(dispatcher, m)

	engine := gin.New()
	authed := engine.Group("", func(reqCtx *gin.Context) {
		auth.SetIdentityToContext(reqCtx, &identity.Identity{
			PublicID:     "idn_route",
			AccessToken:  "tok",
			AdAccountIDs: []string{"act_42"},
		})
	})
	route.RegisterRouter(engine, authed)
	return engine
}

func TestListToolsReturnsNames(t *testing.T) {
	engine := newTestEngine(&recordingCaller{})

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tools", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Success bool     `json:"success"`
		Tools   []string `json:"tools"`
		Version string   `json:"version"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Contains(t, body.Tools, "list_campaigns")
	assert.Contains(t, body.Tools, "search_campaigns")
	assert.NotEmpty(t, body.Version)
}

func callTool(t *testing.T, engine *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tools/call", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	engine.ServeHTTP(w, req)
	return w
}

func TestCallToolHonorsParameters(t *testing.T) {
	caller := &recordingCaller{}
	engine := newTestEngine(caller)

	w := callTool(t, engine, `{"tool":"get_account_insights","parameters":{"date_preset":"today"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		Success  bool `json:"success"`
		Metadata struct {
			CacheTTL int `json:"cache_ttl"`
		} `json:"metadata"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	// The today preset selects the short TTL class; seeing it in the
	// metadata proves the parameters object reached the dispatcher.
	assert.Equal(t, int(tool.TTLShort.Seconds()), body.Metadata.CacheTTL)
	require.Len(t, caller.endpoints, 1)
	assert.Equal(t, "/act_42/insights", caller.endpoints[0])
}

func TestCallToolAcceptsArgumentsAlias(t *testing.T) {
	engine := newTestEngine(&recordingCaller{})

	w := callTool(t, engine, `{"tool":"search_campaigns","arguments":{"query":"friday"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCallToolRejectsMissingTool(t *testing.T) {
	engine := newTestEngine(&recordingCaller{})

	w := callTool(t, engine, `{"parameters":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
