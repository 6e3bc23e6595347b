package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
	"admetric.ai/ads-api-gateway/app/utils/httpclients"
	"admetric.ai/ads-api-gateway/config/environment_variables"
	"resty.dev/v3"
)

const DefaultBaseURL = "https://graph.facebook.com/v19.0"

// Client issues calls to the advertising platform REST API. Every call is
// scheduled through the process reservoir and classified into the gateway's
// error taxonomy. The client performs no retries; retry policy belongs to the
// caller.
type Client struct {
	resty     *resty.Client
	reservoir *Reservoir
	metrics   *metrics.Metrics
	baseURL   string
}

func NewClient(reservoir *Reservoir, m *metrics.Metrics) *Client {
	base := environment_variables.EnvironmentVariables.ADS_API_BASE_URL
	if base == "" {
		base = DefaultBaseURL
	}
	client := httpclients.NewClient("AdsPlatformClient")
	client.SetBaseURL(base)
	return &Client{
		resty:     client,
		reservoir: reservoir,
		metrics:   m,
		baseURL:   base,
	}
}

// Reservoir exposes the outbound budget for the refill cron.
func (c *Client) Reservoir() *Reservoir {
	return c.reservoir
}

// Call performs a GET against endpoint with the access credential and params
// encoded as query parameters. Object- and slice-valued params are
// JSON-encoded before being placed in the query string. The raw JSON body is
// returned on success.
func (c *Client) Call(ctx context.Context, endpoint string, accessToken string, params map[string]any) (json.RawMessage, error) {
	query := map[string]string{
		"access_token": accessToken,
	}
	for k, v := range params {
		encoded, err := encodeQueryValue(v)
		if err != nil {
			return nil, common.NewError(
				common.KindInternal,
				"9d3c1a07-0b7d-4f63-8c2e-df81b92a4a55",
				fmt.Sprintf("unencodable parameter %q", k),
			)
		}
		query[k] = encoded
	}
	return c.do(ctx, endpoint, query)
}

func (c *Client) do(ctx context.Context, endpoint string, query map[string]string) (json.RawMessage, error) {
	if err := c.reservoir.Acquire(ctx); err != nil {
		if cerr, ok := err.(*common.Error); ok {
			c.countCall(endpoint, "throttled")
			return nil, cerr
		}
		return nil, common.NewError(
			common.KindInternal,
			"73f7c9ce-1d2e-4bb1-b0a9-b1f6a3e2c844",
			"request cancelled while waiting for outbound slot",
		)
	}
	defer c.reservoir.Release()
	c.metrics.ReservoirLevel.Set(float64(c.reservoir.Level()))

	resp, err := c.resty.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(endpoint)
	if err != nil {
		c.countCall(endpoint, "error")
		return nil, common.NewError(
			common.KindInternal,
			"a8f6d2c1-3b0e-47a9-93d4-1c2f5e6a7b89",
			"advertising platform unreachable",
		)
	}
	body := resp.Bytes()
	if resp.IsError() {
		c.countCall(endpoint, "error")
		return nil, classifyError(resp.StatusCode(), body)
	}

	c.countCall(endpoint, "success")
	return json.RawMessage(body), nil
}

func (c *Client) countCall(endpoint, status string) {
	c.metrics.UpstreamCallsTotal.WithLabelValues(endpoint, status).Inc()
}

func encodeQueryValue(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	default:
		// Objects and slices travel JSON-encoded in the query string.
		encoded, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(encoded), nil
	}
}

// MeResponse is the upstream "who am I" payload.
type MeResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// AdAccount is one entry of the caller's accessible ad accounts.
type AdAccount struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	AccountStatus int    `json:"account_status"`
	Currency      string `json:"currency"`
}

type adAccountsEnvelope struct {
	Data []AdAccount `json:"data"`
}

// TokenResponse is the token-exchange payload.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// Me validates an access token against the upstream identity endpoint.
func (c *Client) Me(ctx context.Context, accessToken string) (*MeResponse, error) {
	raw, err := c.Call(ctx, "/me", accessToken, map[string]any{"fields": "id,name"})
	if err != nil {
		return nil, err
	}
	var me MeResponse
	if err := json.Unmarshal(raw, &me); err != nil {
		return nil, common.NewError(common.KindInternal, "6b6f6a1d-40b1-4a7e-bb0e-2f4a1b8c9d30", "malformed identity response")
	}
	return &me, nil
}

// AdAccounts lists the ad accounts the token may access.
func (c *Client) AdAccounts(ctx context.Context, accessToken string) ([]AdAccount, error) {
	raw, err := c.Call(ctx, "/me/adaccounts", accessToken, map[string]any{"fields": "id,name,account_status,currency"})
	if err != nil {
		return nil, err
	}
	var envelope adAccountsEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, common.NewError(common.KindInternal, "1f2b3c4d-5e6f-4a8b-9c0d-e1f2a3b4c5d6", "malformed ad accounts response")
	}
	return envelope.Data, nil
}

// ExchangeCode trades an OAuth authorization code for an access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (*TokenResponse, error) {
	env := environment_variables.EnvironmentVariables
	return c.exchangeToken(ctx, map[string]string{
		"client_id":     env.ADS_APP_ID,
		"client_secret": env.ADS_APP_SECRET,
		"redirect_uri":  env.ADS_OAUTH_REDIRECT_URL,
		"code":          code,
	})
}

// ExchangeLongLivedToken refreshes a short-lived or expiring token.
func (c *Client) ExchangeLongLivedToken(ctx context.Context, accessToken string) (*TokenResponse, error) {
	env := environment_variables.EnvironmentVariables
	return c.exchangeToken(ctx, map[string]string{
		"grant_type":        "fb_exchange_token",
		"client_id":         env.ADS_APP_ID,
		"client_secret":     env.ADS_APP_SECRET,
		"fb_exchange_token": accessToken,
	})
}

func (c *Client) exchangeToken(ctx context.Context, query map[string]string) (*TokenResponse, error) {
	raw, err := c.do(ctx, "/oauth/access_token", query)
	if err != nil {
		return nil, err
	}
	var token TokenResponse
	if err := json.Unmarshal(raw, &token); err != nil {
		return nil, common.NewError(common.KindInternal, "b4d1f7e2-8a9c-4c3d-b5e6-f7a8b9c0d1e2", "malformed token response")
	}
	return &token, nil
}

// OAuthDialogURL builds the upstream consent URL for the connect flow.
func (c *Client) OAuthDialogURL(state string) string {
	env := environment_variables.EnvironmentVariables
	q := url.Values{}
	q.Set("client_id", env.ADS_APP_ID)
	q.Set("redirect_uri", env.ADS_OAUTH_REDIRECT_URL)
	q.Set("scope", "ads_read")
	q.Set("state", state)
	return "https://www.facebook.com/v19.0/dialog/oauth?" + q.Encode()
}
