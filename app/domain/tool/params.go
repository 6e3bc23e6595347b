package tool

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"admetric.ai/ads-api-gateway/app/domain/common"
	"admetric.ai/ads-api-gateway/app/infrastructure/cache"
)

// TTL classes for cached results. The "today" preset tracks a moving target
// and gets the short class; everything else is effectively historical.
const (
	TTLShort = 300 * time.Second
	TTLLong  = 3600 * time.Second
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

var validDatePresets = map[string]bool{
	"today":      true,
	"yesterday":  true,
	"last_7d":    true,
	"last_14d":   true,
	"last_30d":   true,
	"last_90d":   true,
	"this_month": true,
	"last_month": true,
	"lifetime":   true,
	"maximum":    true,
}

var validStatuses = map[string]bool{
	"ACTIVE":   true,
	"PAUSED":   true,
	"DELETED":  true,
	"ARCHIVED": true,
}

// TimeRange is an explicit since/until date window (YYYY-MM-DD).
type TimeRange struct {
	Since string `json:"since"`
	Until string `json:"until"`
}

// Params is the normalized parameter set shared by every operation.
type Params struct {
	AccountID  string
	CampaignID string
	AdsetID    string
	AdID       string
	Status     string
	DatePreset string
	TimeRange  *TimeRange
	Fields     []string
	Limit      int
	Query      string
}

// FieldIssue is one per-field validation failure.
type FieldIssue struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ParseParams validates and normalizes raw caller parameters. All issues are
// collected and reported together.
func ParseParams(raw map[string]any, required []string) (Params, error) {
	var issues []FieldIssue
	p := Params{Limit: defaultLimit}

	str := func(field string) string {
		v, ok := raw[field]
		if !ok || v == nil {
			return ""
		}
		s, ok := v.(string)
		if !ok {
			issues = append(issues, FieldIssue{Field: field, Issue: "must be a string"})
			return ""
		}
		return strings.TrimSpace(s)
	}

	p.AccountID = strings.TrimPrefix(str("account_id"), "act_")
	p.CampaignID = str("campaign_id")
	p.AdsetID = str("adset_id")
	p.AdID = str("ad_id")
	p.Query = str("query")

	if status := strings.ToUpper(str("status")); status != "" {
		if !validStatuses[status] {
			issues = append(issues, FieldIssue{Field: "status", Issue: "unknown status filter"})
		} else {
			p.Status = status
		}
	}

	if preset := strings.ToLower(str("date_preset")); preset != "" {
		if !validDatePresets[preset] {
			issues = append(issues, FieldIssue{Field: "date_preset", Issue: "unknown date preset"})
		} else {
			p.DatePreset = preset
		}
	}

	if fields := str("fields"); fields != "" {
		parts := strings.Split(fields, ",")
		for _, part := range parts {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				p.Fields = append(p.Fields, trimmed)
			}
		}
		sort.Strings(p.Fields)
	}

	if v, ok := raw["limit"]; ok && v != nil {
		limit, ok := toLimit(v)
		switch {
		case !ok:
			issues = append(issues, FieldIssue{Field: "limit", Issue: "must be an integer"})
		case limit < 1 || limit > maxLimit:
			issues = append(issues, FieldIssue{Field: "limit", Issue: fmt.Sprintf("must be between 1 and %d", maxLimit)})
		default:
			p.Limit = limit
		}
	}

	if v, ok := raw["time_range"]; ok && v != nil {
		tr, ok := toTimeRange(v)
		if !ok {
			issues = append(issues, FieldIssue{Field: "time_range", Issue: "must be an object with since/until dates (YYYY-MM-DD)"})
		} else {
			p.TimeRange = tr
		}
	}

	for _, field := range required {
		v, ok := raw[field]
		if !ok || v == nil {
			issues = append(issues, FieldIssue{Field: field, Issue: "required parameter is missing"})
			continue
		}
		// A present non-string value was already reported above.
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			issues = append(issues, FieldIssue{Field: field, Issue: "required parameter is missing"})
		}
	}

	if len(issues) > 0 {
		return p, common.NewError(
			common.KindValidation,
			"2b6c9f1a-4e5d-4a7b-8c9d-0e1f2a3b4c5d",
			"invalid parameters",
		).WithDetails(issues)
	}
	return p, nil
}

func toLimit(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		if n != float64(int(n)) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

func toTimeRange(v any) (*TimeRange, bool) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, false
	}
	since, _ := obj["since"].(string)
	until, _ := obj["until"].(string)
	for _, d := range []string{since, until} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, false
		}
	}
	return &TimeRange{Since: since, Until: until}, true
}

// TTLFor returns the cache TTL class for the normalized parameters.
func TTLFor(p Params) time.Duration {
	if p.DatePreset == "today" {
		return TTLShort
	}
	return TTLLong
}

// CacheKey derives the deterministic cache key for an operation invocation.
// Every key carries the owning identity as its own segment: results are
// fetched with that identity's credential and must never be served to
// another one, and the owner and account segments give the invalidation
// globs something to match.
func CacheKey(opName, ownerID string, p Params) string {
	window := p.DatePreset
	if p.TimeRange != nil {
		window = p.TimeRange.Since + ".." + p.TimeRange.Until
	}
	fingerprint := strings.Join([]string{
		p.CampaignID + p.AdsetID + p.AdID,
		window,
		p.Status,
		fmt.Sprintf("%d", p.Limit),
		strings.Join(p.Fields, ","),
	}, "|")
	owner := ownerID
	if owner == "" {
		owner = "-"
	}
	account := p.AccountID
	if account == "" {
		account = "-"
	}
	return fmt.Sprintf(cache.ToolCacheKeyPattern, opName, owner, account, fingerprint)
}
