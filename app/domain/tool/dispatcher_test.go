package tool

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
)

// memoryCache is an in-process CacheService for dispatcher tests. It honors
// expirations against an injectable clock so TTL behavior is observable.
type memoryEntry struct {
	encoded   []byte
	expiresAt time.Time
}

type memoryCache struct {
	mu             sync.Mutex
	now            func() time.Time
	store          map[string]memoryEntry
	lastExpiration time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{now: time.Now, store: map[string]memoryEntry{}}
}

func (m *memoryCache) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store[key] = memoryEntry{encoded: encoded, expiresAt: m.now().Add(expiration)}
	m.lastExpiration = expiration
	return nil
}

func (m *memoryCache) Get(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	entry, ok := m.store[key]
	m.mu.Unlock()
	if !ok || m.now().After(entry.expiresAt) {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(entry.encoded, dest)
}

func (m *memoryCache) GetWithFallback(ctx context.Context, key string, dest any, fallback func() (any, error), expiration time.Duration) (bool, error) {
	if err := m.Get(ctx, key, dest); err == nil {
		return true, nil
	}
	value, err := fallback()
	if err != nil {
		return false, err
	}
	if err := m.Set(ctx, key, value, expiration); err != nil {
		return false, err
	}
	return false, m.Get(ctx, key, dest)
}

func (m *memoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

func (m *memoryCache) Unlink(ctx context.Context, key string) error {
	return m.Delete(ctx, key)
}

func (m *memoryCache) DeletePattern(ctx context.Context, pattern string) error {
	return nil
}

func (m *memoryCache) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.store[key]
	return ok, nil
}

func (m *memoryCache) SlidingWindow(ctx context.Context, key string, limit int64, window time.Duration) (bool, int64, error) {
	return true, 0, nil
}

func (m *memoryCache) Close() error { return nil }

func (m *memoryCache) HealthCheck(ctx context.Context) error { return nil }

func (m *memoryCache) NewMutex(name string, options ...redsync.Option) *redsync.Mutex {
	return nil
}

// fakeCaller records upstream traffic and replies from a canned payload map,
// keyed by endpoint or by credential.
type fakeCaller struct {
	mu            sync.Mutex
	endpoints     []string
	payloads      map[string]string
	tokenPayloads map[string]string
	err           error
}

func (f *fakeCaller) Call(ctx context.Context, endpoint string, accessToken string, params map[string]any) (json.RawMessage, error) {
	f.mu.Lock()
	f.endpoints = append(f.endpoints, endpoint)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if payload, ok := f.tokenPayloads[accessToken]; ok {
		return json.RawMessage(payload), nil
	}
	if payload, ok := f.payloads[endpoint]; ok {
		return json.RawMessage(payload), nil
	}
	return json.RawMessage(`{"data":[]}`), nil
}

func (f *fakeCaller) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.endpoints)
}

func testIdentity() *identity.Identity {
	return &identity.Identity{
		PublicID:     "idn_test",
		AccessToken:  "tok",
		AdAccountIDs: []string{"act_111", "act_222"},
	}
}

func newTestDispatcher(caller *fakeCaller) *Dispatcher {
	return NewDispatcher(NewRegistry(), caller, newMemoryCache(), metrics.New())
}

func newTestDispatcherWithCache(caller *fakeCaller, memory *memoryCache) *Dispatcher {
	return NewDispatcher(NewRegistry(), caller, memory, metrics.New())
}

func TestDispatchUnknownOperation(t *testing.T) {
	d := newTestDispatcher(&fakeCaller{})

	_, err := d.Dispatch(context.Background(), testIdentity(), "delete_campaign", nil)
	require.Error(t, err)
	e := common.AsError(err)
	assert.Equal(t, common.KindUnknownOperation, e.Kind)

	details, ok := e.Details.(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details["available_tools"], "list_campaigns")
}

func TestDispatchValidationNeverReachesUpstream(t *testing.T) {
	caller := &fakeCaller{}
	d := newTestDispatcher(caller)

	_, err := d.Dispatch(context.Background(), testIdentity(), "get_campaign_insights", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, common.KindValidation, common.AsError(err).Kind)
	assert.Zero(t, caller.callCount())
}

func TestDispatchNoAccountAvailable(t *testing.T) {
	d := newTestDispatcher(&fakeCaller{})
	ident := &identity.Identity{PublicID: "idn_empty", AccessToken: "tok"}

	_, err := d.Dispatch(context.Background(), ident, "list_campaigns", nil)
	require.Error(t, err)
	assert.Equal(t, common.KindNoResource, common.AsError(err).Kind)
}

func TestDispatchForeignAccountRejected(t *testing.T) {
	caller := &fakeCaller{}
	d := newTestDispatcher(caller)

	_, err := d.Dispatch(context.Background(), testIdentity(), "list_campaigns", map[string]any{"account_id": "999"})
	require.Error(t, err)
	assert.Equal(t, common.KindNoResource, common.AsError(err).Kind)
	assert.Zero(t, caller.callCount())
}

func TestDispatchDefaultsToFirstAccount(t *testing.T) {
	caller := &fakeCaller{}
	d := newTestDispatcher(caller)

	_, err := d.Dispatch(context.Background(), testIdentity(), "list_campaigns", nil)
	require.NoError(t, err)
	require.Equal(t, 1, caller.callCount())
	assert.Equal(t, "/act_111/campaigns", caller.endpoints[0])
}

func TestDispatchServesSecondCallFromCache(t *testing.T) {
	caller := &fakeCaller{payloads: map[string]string{
		"/act_111/campaigns": `{"data":[{"id":"c1","name":"Black Friday","status":"ACTIVE","effective_status":"ACTIVE","objective":"CONVERSIONS","daily_budget":"15000","created_time":"2026-01-01T00:00:00+0000"}]}`,
	}}
	d := newTestDispatcher(caller)
	ident := testIdentity()

	first, err := d.Dispatch(context.Background(), ident, "list_campaigns", nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := d.Dispatch(context.Background(), ident, "list_campaigns", nil)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, caller.callCount())

	firstJSON, _ := json.Marshal(first.Data)
	secondJSON, _ := json.Marshal(second.Data)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
}

func TestDispatchCacheScopedToIdentity(t *testing.T) {
	caller := &fakeCaller{tokenPayloads: map[string]string{
		"tok_a": `{"data":[{"id":"act_AAA","name":"AAA Co","account_status":1,"currency":"USD"}]}`,
		"tok_b": `{"data":[{"id":"act_BBB","name":"BBB Co","account_status":1,"currency":"EUR"}]}`,
	}}
	d := newTestDispatcher(caller)
	identA := &identity.Identity{PublicID: "idn_a", AccessToken: "tok_a", AdAccountIDs: []string{"act_AAA"}}
	identB := &identity.Identity{PublicID: "idn_b", AccessToken: "tok_b", AdAccountIDs: []string{"act_BBB"}}

	first, err := d.Dispatch(context.Background(), identA, "list_ad_accounts", nil)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	// The second identity must get its own fetch, not the first one's entry.
	second, err := d.Dispatch(context.Background(), identB, "list_ad_accounts", nil)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Equal(t, 2, caller.callCount())

	encoded, err := json.Marshal(second.Data)
	require.NoError(t, err)
	var accounts []AdAccountSummary
	require.NoError(t, json.Unmarshal(encoded, &accounts))
	require.Len(t, accounts, 1)
	assert.Equal(t, "BBB", accounts[0].ID)

	// Repeats within one identity still hit the cache.
	repeat, err := d.Dispatch(context.Background(), identA, "list_ad_accounts", nil)
	require.NoError(t, err)
	assert.True(t, repeat.Cached)
	assert.Equal(t, 2, caller.callCount())
}

func TestDispatchInsightsNotSharedAcrossIdentities(t *testing.T) {
	caller := &fakeCaller{}
	d := newTestDispatcher(caller)
	identA := &identity.Identity{PublicID: "idn_a", AccessToken: "tok_a", AdAccountIDs: []string{"act_1"}}
	identB := &identity.Identity{PublicID: "idn_b", AccessToken: "tok_b", AdAccountIDs: []string{"act_2"}}
	args := map[string]any{"campaign_id": "c1"}

	_, err := d.Dispatch(context.Background(), identA, "get_campaign_insights", args)
	require.NoError(t, err)

	// Same campaign id, different identity: upstream decides access with
	// that identity's own credential instead of the cache answering for it.
	envelope, err := d.Dispatch(context.Background(), identB, "get_campaign_insights", args)
	require.NoError(t, err)
	assert.False(t, envelope.Cached)
	assert.Equal(t, 2, caller.callCount())
}

func TestDispatchCacheEntryExpires(t *testing.T) {
	caller := &fakeCaller{}
	memory := newMemoryCache()
	base := time.Now()
	memory.now = func() time.Time { return base }
	d := newTestDispatcherWithCache(caller, memory)
	ident := testIdentity()
	args := map[string]any{"date_preset": "today"}

	first, err := d.Dispatch(context.Background(), ident, "list_campaigns", args)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, TTLShort, memory.lastExpiration)

	base = base.Add(TTLShort - time.Second)
	second, err := d.Dispatch(context.Background(), ident, "list_campaigns", args)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, 1, caller.callCount())

	base = base.Add(2 * time.Second)
	third, err := d.Dispatch(context.Background(), ident, "list_campaigns", args)
	require.NoError(t, err)
	assert.False(t, third.Cached, "an entry past its TTL is a miss")
	assert.Equal(t, 2, caller.callCount())
}

func TestDispatchHistoricalWindowGetsLongTTL(t *testing.T) {
	caller := &fakeCaller{}
	memory := newMemoryCache()
	d := newTestDispatcherWithCache(caller, memory)

	_, err := d.Dispatch(context.Background(), testIdentity(), "list_campaigns", map[string]any{"date_preset": "last_30d"})
	require.NoError(t, err)
	assert.Equal(t, TTLLong, memory.lastExpiration)
}

func TestDispatchReshapesCampaigns(t *testing.T) {
	caller := &fakeCaller{payloads: map[string]string{
		"/act_111/campaigns": `{"data":[{"id":"c1","name":"Black Friday","status":"ACTIVE","effective_status":"ACTIVE","objective":"CONVERSIONS","daily_budget":"15000","created_time":"2026-01-01T00:00:00+0000"}]}`,
	}}
	d := newTestDispatcher(caller)

	envelope, err := d.Dispatch(context.Background(), testIdentity(), "list_campaigns", nil)
	require.NoError(t, err)

	encoded, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var campaigns []Campaign
	require.NoError(t, json.Unmarshal(encoded, &campaigns))
	require.Len(t, campaigns, 1)
	assert.Equal(t, "Black Friday", campaigns[0].Name)
	assert.True(t, campaigns[0].IsActive)
	assert.Equal(t, 150.0, campaigns[0].DailyBudget)
}

func TestDispatchReshapesInsights(t *testing.T) {
	caller := &fakeCaller{payloads: map[string]string{
		"/c1/insights": `{"data":[{"date_start":"2026-08-01","date_stop":"2026-08-31","spend":"123.45","impressions":"678","clicks":"42","ctr":"6.19","cpc":"2.94","cpm":"182.08","reach":"500","frequency":"1.36","actions":[{"action_type":"purchase","value":"3"},{"action_type":"purchase","value":"2"},{"action_type":"lead","value":"7"}]}]}`,
	}}
	d := newTestDispatcher(caller)

	envelope, err := d.Dispatch(context.Background(), testIdentity(), "get_campaign_insights", map[string]any{"campaign_id": "c1"})
	require.NoError(t, err)

	encoded, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var rows []InsightsRow
	require.NoError(t, json.Unmarshal(encoded, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, 123.45, rows[0].Spend)
	assert.Equal(t, int64(678), rows[0].Impressions)
	assert.Equal(t, 5.0, rows[0].Conversions["purchase"])
	assert.Equal(t, 7.0, rows[0].Conversions["lead"])
}

func TestDispatchSearchComposesOverCampaignCache(t *testing.T) {
	caller := &fakeCaller{payloads: map[string]string{
		"/act_111/campaigns": `{"data":[{"id":"c1","name":"Black Friday","effective_status":"ACTIVE"},{"id":"c2","name":"Summer Sale","effective_status":"PAUSED"}]}`,
	}}
	d := newTestDispatcher(caller)
	ident := testIdentity()

	envelope, err := d.Dispatch(context.Background(), ident, "search_campaigns", map[string]any{"query": "friday"})
	require.NoError(t, err)
	assert.False(t, envelope.Cached)

	results, ok := envelope.Data.([]ScoredCampaign)
	require.True(t, ok)
	require.Len(t, results, 1)
	assert.Equal(t, "c1", results[0].Campaign.ID)
	assert.Equal(t, 0.7, results[0].Relevance)

	// A following list_campaigns reads the entry the search populated.
	listed, err := d.Dispatch(context.Background(), ident, "list_campaigns", nil)
	require.NoError(t, err)
	assert.True(t, listed.Cached)
	assert.Equal(t, 1, caller.callCount())
}

func TestDispatchSearchRequiresQuery(t *testing.T) {
	d := newTestDispatcher(&fakeCaller{})

	_, err := d.Dispatch(context.Background(), testIdentity(), "search_campaigns", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, common.KindValidation, common.AsError(err).Kind)
}

func TestDispatchPropagatesUpstreamError(t *testing.T) {
	caller := &fakeCaller{err: common.NewError(common.KindUpstreamRateLimit, "x", "slow down")}
	d := newTestDispatcher(caller)

	_, err := d.Dispatch(context.Background(), testIdentity(), "list_ad_accounts", nil)
	require.Error(t, err)
	assert.Equal(t, common.KindUpstreamRateLimit, common.AsError(err).Kind)
}

func TestDispatchWrapsUnclassifiedErrors(t *testing.T) {
	caller := &fakeCaller{err: errors.New("boom")}
	d := newTestDispatcher(caller)

	_, err := d.Dispatch(context.Background(), testIdentity(), "list_ad_accounts", nil)
	require.Error(t, err)
	assert.Equal(t, common.KindInternal, common.AsError(err).Kind)
}
