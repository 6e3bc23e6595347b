package tool

import (
	"sort"
	"strings"
)

// ScoredCampaign is one search hit with its relevance score.
type ScoredCampaign struct {
	Campaign
	Relevance float64 `json:"relevance"`
}

// SearchCampaigns ranks campaigns by how well their name matches the query.
// Matching is case-insensitive: an exact name match scores 1.0, a name
// starting with the query 0.9, a name containing it 0.7; otherwise the score
// is the fraction of query words found in the name, halved. Zero-score
// campaigns are dropped. Ties keep the input order.
func SearchCampaigns(campaigns []Campaign, query string) []ScoredCampaign {
	q := strings.ToLower(strings.TrimSpace(query))
	results := make([]ScoredCampaign, 0, len(campaigns))
	for _, c := range campaigns {
		score := relevance(strings.ToLower(c.Name), q)
		if score == 0 {
			continue
		}
		results = append(results, ScoredCampaign{Campaign: c, Relevance: score})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Relevance > results[j].Relevance
	})
	return results
}

func relevance(name, query string) float64 {
	switch {
	case name == query:
		return 1.0
	case strings.HasPrefix(name, query):
		return 0.9
	case strings.Contains(name, query):
		return 0.7
	}
	words := strings.Fields(query)
	if len(words) == 0 {
		return 0
	}
	matched := 0
	for _, w := range words {
		if strings.Contains(name, w) {
			matched++
		}
	}
	return float64(matched) / float64(len(words)) * 0.5
}
