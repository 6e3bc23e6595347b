package tool

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/domain/identity"
)

// Reshaped result types. The upstream transmits metric numbers as strings
// and statuses as enums; reshaping coerces both into a stable, minimal
// shape. Reshaping is pure: the same upstream payload always produces the
// same result.

type AdAccountSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Currency string `json:"currency"`
}

type Campaign struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	EffectiveStatus string  `json:"effective_status"`
	IsActive        bool    `json:"is_active"`
	Objective       string  `json:"objective"`
	DailyBudget     float64 `json:"daily_budget"`
	CreatedTime     string  `json:"created_time"`
}

type Adset struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	EffectiveStatus string  `json:"effective_status"`
	IsActive        bool    `json:"is_active"`
	CampaignID      string  `json:"campaign_id"`
	DailyBudget     float64 `json:"daily_budget"`
	CreatedTime     string  `json:"created_time"`
}

type Ad struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	IsActive        bool   `json:"is_active"`
	AdsetID         string `json:"adset_id"`
	CampaignID      string `json:"campaign_id"`
	CreatedTime     string `json:"created_time"`
}

type InsightsRow struct {
	DateStart   string             `json:"date_start"`
	DateStop    string             `json:"date_stop"`
	Spend       float64            `json:"spend"`
	Impressions int64              `json:"impressions"`
	Clicks      int64              `json:"clicks"`
	CTR         float64            `json:"ctr"`
	CPC         float64            `json:"cpc"`
	CPM         float64            `json:"cpm"`
	Reach       int64              `json:"reach"`
	Frequency   float64            `json:"frequency"`
	Conversions map[string]float64 `json:"conversions"`
}

type dataEnvelope struct {
	Data []map[string]any `json:"data"`
}

func decodeRows(raw json.RawMessage) ([]map[string]any, error) {
	var envelope dataEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, common.NewError(
			common.KindInternal,
			"d5e6f7a8-b9c0-4d1e-8f2a-3b4c5d6e7f80",
			"malformed upstream payload",
		)
	}
	return envelope.Data, nil
}

func asString(row map[string]any, key string) string {
	s, _ := row[key].(string)
	return s
}

// asFloat coerces string-encoded and native numbers alike.
func asFloat(row map[string]any, key string) float64 {
	switch v := row[key].(type) {
	case float64:
		return v
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	default:
		return 0
	}
}

func asInt64(row map[string]any, key string) int64 {
	switch v := row[key].(type) {
	case float64:
		return int64(v)
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

// conversions folds the upstream actions array into per-action-type tallies.
func conversions(row map[string]any) map[string]float64 {
	actions, ok := row["actions"].([]any)
	if !ok {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(actions))
	for _, a := range actions {
		action, ok := a.(map[string]any)
		if !ok {
			continue
		}
		out[asString(action, "action_type")] += asFloat(action, "value")
	}
	return out
}

func isActive(row map[string]any) bool {
	return asString(row, "effective_status") == "ACTIVE"
}

func fetchAdAccounts(ctx context.Context, caller UpstreamCaller, ident *identity.Identity, p Params) (any, error) {
	raw, err := caller.Call(ctx, "/me/adaccounts", ident.AccessToken, map[string]any{
		"fields": fieldsOrDefault(p, "id,name,account_status,currency"),
		"limit":  p.Limit,
	})
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, err
	}
	accounts := make([]AdAccountSummary, 0, len(rows))
	for _, row := range rows {
		accounts = append(accounts, AdAccountSummary{
			ID:       strings.TrimPrefix(asString(row, "id"), "act_"),
			Name:     asString(row, "name"),
			IsActive: asInt64(row, "account_status") == 1,
			Currency: asString(row, "currency"),
		})
	}
	return accounts, nil
}

func fetchCampaigns(ctx context.Context, caller UpstreamCaller, ident *identity.Identity, p Params) (any, error) {
	raw, err := caller.Call(ctx, "/act_"+p.AccountID+"/campaigns", ident.AccessToken, listParams(p, "id,name,status,effective_status,objective,daily_budget,created_time"))
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, err
	}
	campaigns := make([]Campaign, 0, len(rows))
	for _, row := range rows {
		campaigns = append(campaigns, Campaign{
			ID:              asString(row, "id"),
			Name:            asString(row, "name"),
			Status:          asString(row, "status"),
			EffectiveStatus: asString(row, "effective_status"),
			IsActive:        isActive(row),
			Objective:       asString(row, "objective"),
			DailyBudget:     asFloat(row, "daily_budget") / 100, // transmitted in cents
			CreatedTime:     asString(row, "created_time"),
		})
	}
	return campaigns, nil
}

func fetchAdsets(ctx context.Context, caller UpstreamCaller, ident *identity.Identity, p Params) (any, error) {
	raw, err := caller.Call(ctx, "/act_"+p.AccountID+"/adsets", ident.AccessToken, listParams(p, "id,name,status,effective_status,campaign_id,daily_budget,created_time"))
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, err
	}
	adsets := make([]Adset, 0, len(rows))
	for _, row := range rows {
		adsets = append(adsets, Adset{
			ID:              asString(row, "id"),
			Name:            asString(row, "name"),
			Status:          asString(row, "status"),
			EffectiveStatus: asString(row, "effective_status"),
			IsActive:        isActive(row),
			CampaignID:      asString(row, "campaign_id"),
			DailyBudget:     asFloat(row, "daily_budget") / 100,
			CreatedTime:     asString(row, "created_time"),
		})
	}
	return adsets, nil
}

func fetchAds(ctx context.Context, caller UpstreamCaller, ident *identity.Identity, p Params) (any, error) {
	raw, err := caller.Call(ctx, "/act_"+p.AccountID+"/ads", ident.AccessToken, listParams(p, "id,name,status,effective_status,adset_id,campaign_id,created_time"))
	if err != nil {
		return nil, err
	}
	rows, err := decodeRows(raw)
	if err != nil {
		return nil, err
	}
	ads := make([]Ad, 0, len(rows))
	for _, row := range rows {
		ads = append(ads, Ad{
			ID:              asString(row, "id"),
			Name:            asString(row, "name"),
			Status:          asString(row, "status"),
			EffectiveStatus: asString(row, "effective_status"),
			IsActive:        isActive(row),
			AdsetID:         asString(row, "adset_id"),
			CampaignID:      asString(row, "campaign_id"),
			CreatedTime:     asString(row, "created_time"),
		})
	}
	return ads, nil
}

// insightsFetcher builds the fetch function for the insights operations,
// which differ only in the endpoint they hit.
func insightsFetcher(endpoint func(Params) string) FetchFunc {
	return func(ctx context.Context, caller UpstreamCaller, ident *identity.Identity, p Params) (any, error) {
		params := map[string]any{
			"fields": fieldsOrDefault(p, "spend,impressions,clicks,ctr,cpc,cpm,reach,frequency,actions,date_start,date_stop"),
			"limit":  p.Limit,
		}
		switch {
		case p.TimeRange != nil:
			params["time_range"] = p.TimeRange
		case p.DatePreset != "":
			params["date_preset"] = p.DatePreset
		default:
			params["date_preset"] = "last_30d"
		}
		raw, err := caller.Call(ctx, endpoint(p), ident.AccessToken, params)
		if err != nil {
			return nil, err
		}
		rows, err := decodeRows(raw)
		if err != nil {
			return nil, err
		}
		insights := make([]InsightsRow, 0, len(rows))
		for _, row := range rows {
			insights = append(insights, InsightsRow{
				DateStart:   asString(row, "date_start"),
				DateStop:    asString(row, "date_stop"),
				Spend:       asFloat(row, "spend"),
				Impressions: asInt64(row, "impressions"),
				Clicks:      asInt64(row, "clicks"),
				CTR:         asFloat(row, "ctr"),
				CPC:         asFloat(row, "cpc"),
				CPM:         asFloat(row, "cpm"),
				Reach:       asInt64(row, "reach"),
				Frequency:   asFloat(row, "frequency"),
				Conversions: conversions(row),
			})
		}
		return insights, nil
	}
}

func fieldsOrDefault(p Params, def string) string {
	if len(p.Fields) > 0 {
		return strings.Join(p.Fields, ",")
	}
	return def
}

func listParams(p Params, defaultFields string) map[string]any {
	params := map[string]any{
		"fields": fieldsOrDefault(p, defaultFields),
		"limit":  p.Limit,
	}
	if p.Status != "" {
		params["effective_status"] = []string{p.Status}
	}
	return params
}
