package tool

import (
	"context"
	"encoding/json"

	"admetric.ai/ads-api-gateway/app/domain/identity"
)

// UpstreamCaller is the slice of the advertising-platform client the
// operations need. Kept narrow so tests can inject a fake.
type UpstreamCaller interface {
	Call(ctx context.Context, endpoint string, accessToken string, params map[string]any) (json.RawMessage, error)
}

// FetchFunc retrieves and reshapes one operation's payload from upstream.
type FetchFunc func(ctx context.Context, caller UpstreamCaller, ident *identity.Identity, p Params) (any, error)

// ComposeFunc builds an operation's result out of another operation's cached
// result instead of calling upstream directly. The bool reports whether the
// composed-over data came from cache.
type ComposeFunc func(ctx context.Context, d *Dispatcher, ident *identity.Identity, p Params) (any, bool, error)

// Operation is an immutable, statically registered descriptor. The set of
// operations is fixed at construction and read-only afterwards.
type Operation struct {
	Name            string
	Description     string
	RequiresAccount bool
	Required        []string
	Fetch           FetchFunc
	Compose         ComposeFunc
}

// Registry maps symbolic operation names to descriptors. Built once at
// process start and passed by injection; there is no global table.
type Registry struct {
	ops   map[string]*Operation
	names []string
}

func NewRegistry() *Registry {
	r := &Registry{ops: map[string]*Operation{}}
	for _, op := range buildOperations() {
		r.ops[op.Name] = op
		r.names = append(r.names, op.Name)
	}
	return r
}

func (r *Registry) Get(name string) (*Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Names returns operation names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func buildOperations() []*Operation {
	return []*Operation{
		{
			Name:        "list_ad_accounts",
			Description: "List the ad accounts the connected credential may access.",
			Fetch:       fetchAdAccounts,
		},
		{
			Name:            "list_campaigns",
			Description:     "List campaigns in an ad account, optionally filtered by status.",
			RequiresAccount: true,
			Fetch:           fetchCampaigns,
		},
		{
			Name:        "get_campaign_insights",
			Description: "Get performance metrics for one campaign.",
			Required:    []string{"campaign_id"},
			Fetch:       insightsFetcher(func(p Params) string { return "/" + p.CampaignID + "/insights" }),
		},
		{
			Name:            "get_account_insights",
			Description:     "Get aggregate performance metrics for an ad account.",
			RequiresAccount: true,
			Fetch:           insightsFetcher(func(p Params) string { return "/act_" + p.AccountID + "/insights" }),
		},
		{
			Name:            "search_campaigns",
			Description:     "Search campaigns in an ad account by name.",
			RequiresAccount: true,
			Required:        []string{"query"},
			Compose:         composeSearchCampaigns,
		},
		{
			Name:            "list_adsets",
			Description:     "List ad sets in an ad account, optionally filtered by status.",
			RequiresAccount: true,
			Fetch:           fetchAdsets,
		},
		{
			Name:        "get_adset_insights",
			Description: "Get performance metrics for one ad set.",
			Required:    []string{"adset_id"},
			Fetch:       insightsFetcher(func(p Params) string { return "/" + p.AdsetID + "/insights" }),
		},
		{
			Name:            "list_ads",
			Description:     "List ads in an ad account, optionally filtered by status.",
			RequiresAccount: true,
			Fetch:           fetchAds,
		},
		{
			Name:        "get_ad_insights",
			Description: "Get performance metrics for one ad.",
			Required:    []string{"ad_id"},
			Fetch:       insightsFetcher(func(p Params) string { return "/" + p.AdID + "/insights" }),
		},
	}
}
