package tool

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/domain/identity"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
	"admetric.ai/ads-api-gateway/app/infrastructure/metrics"
)

// Envelope is a dispatch result plus its cache provenance.
type Envelope struct {
	Data            any
	Cached          bool
	CacheTTLSeconds int
}

// Dispatcher executes operations: it validates parameters, resolves the
// target account, serves results through the cache, and calls upstream on a
// miss. It owns no HTTP concerns.
type Dispatcher struct {
	registry     *Registry
	caller       UpstreamCaller
	cacheService cache.CacheService
	metrics      *metrics.Metrics
}

func NewDispatcher(
	registry *Registry,
	caller UpstreamCaller,
	cacheService cache.CacheService,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		registry:     registry,
		caller:       caller,
		cacheService: cacheService,
		metrics:      m,
	}
}

func (d *Dispatcher) Registry() *Registry {
	return d.registry
}

// Dispatch runs one named operation for the given identity. Validation and
// account resolution happen before any upstream traffic; an invalid request
// never consumes outbound budget.
func (d *Dispatcher) Dispatch(ctx context.Context, ident *identity.Identity, name string, args map[string]any) (*Envelope, error) {
	op, ok := d.registry.Get(name)
	if !ok {
		return nil, common.NewError(
			common.KindUnknownOperation,
			"e1c5a9b3-7d2f-4e6a-b8c0-1d3f5a7b9c2e",
			"unknown tool: "+name,
		).WithDetails(map[string]any{"available_tools": d.registry.Names()})
	}

	p, err := ParseParams(args, op.Required)
	if err != nil {
		return nil, err
	}
	if op.RequiresAccount {
		if p.AccountID, err = d.resolveAccount(ident, p.AccountID); err != nil {
			return nil, err
		}
	}

	if op.Compose != nil {
		data, cached, err := op.Compose(ctx, d, ident, p)
		if err != nil {
			return nil, err
		}
		return &Envelope{Data: data, Cached: cached, CacheTTLSeconds: int(TTLFor(p).Seconds())}, nil
	}

	ttl := TTLFor(p)
	var data json.RawMessage
	cached, err := d.getOrFetch(ctx, op.Name, CacheKey(op.Name, ident.PublicID, p), &data, ttl, func() (any, error) {
		return op.Fetch(ctx, d.caller, ident, p)
	})
	if err != nil {
		return nil, err
	}
	return &Envelope{Data: data, Cached: cached, CacheTTLSeconds: int(ttl.Seconds())}, nil
}

// resolveAccount picks the effective ad account: an explicit id must belong
// to the identity, and an omitted one defaults to the identity's first.
func (d *Dispatcher) resolveAccount(ident *identity.Identity, accountID string) (string, error) {
	if accountID != "" {
		for _, id := range ident.AdAccountIDs {
			if id == accountID || id == "act_"+accountID {
				return accountID, nil
			}
		}
		return "", common.NewError(
			common.KindNoResource,
			"4f8e2d6a-1b9c-4e3f-a7d5-8c0b2e4f6a19",
			"ad account is not accessible by this credential",
		)
	}
	first, ok := ident.FirstAdAccountID()
	if !ok {
		return "", common.NewError(
			common.KindNoResource,
			"8a3c5e7f-9b1d-4f2a-b6c8-0d2e4f6a8b3d",
			"no ad account available for this credential, pass account_id explicitly",
		)
	}
	// Upstream account ids carry the act_ prefix; endpoints add their own.
	return strings.TrimPrefix(first, "act_"), nil
}

func (d *Dispatcher) getOrFetch(ctx context.Context, opName, key string, dest any, ttl time.Duration, fetch func() (any, error)) (bool, error) {
	cached, err := d.cacheService.GetWithFallback(ctx, key, dest, fetch, ttl)
	if err != nil {
		return false, err
	}
	if cached {
		d.metrics.CacheHitsTotal.WithLabelValues(opName).Inc()
	} else {
		d.metrics.CacheMissesTotal.WithLabelValues(opName).Inc()
	}
	return cached, nil
}

// composeSearchCampaigns ranks the account's campaign list against the query.
// The campaign list is served through the same cache entry list_campaigns
// uses, so a search after a listing is a pure cache read.
func composeSearchCampaigns(ctx context.Context, d *Dispatcher, ident *identity.Identity, p Params) (any, bool, error) {
	// Compose over the full unfiltered listing so the cache entry is the same
	// one list_campaigns maintains.
	inner := p
	inner.Query = ""
	inner.Status = ""
	inner.Fields = nil

	var campaigns []Campaign
	cached, err := d.getOrFetch(ctx, "list_campaigns", CacheKey("list_campaigns", ident.PublicID, inner), &campaigns, TTLFor(inner), func() (any, error) {
		return fetchCampaigns(ctx, d.caller, ident, inner)
	})
	if err != nil {
		return nil, false, err
	}
	return SearchCampaigns(campaigns, p.Query), cached, nil
}
