package tool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFixtures() []Campaign {
	return []Campaign{
		{ID: "1", Name: "Black Friday"},
		{ID: "2", Name: "Back to School"},
		{ID: "3", Name: "Summer Sale"},
	}
}

func TestSearchExactMatch(t *testing.T) {
	results := SearchCampaigns(searchFixtures(), "black friday")
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, 1.0, results[0].Relevance)
}

func TestSearchPrefixMatch(t *testing.T) {
	results := SearchCampaigns(searchFixtures(), "black")
	require.Len(t, results, 1)
	assert.Equal(t, 0.9, results[0].Relevance)
}

func TestSearchSubstringMatch(t *testing.T) {
	results := SearchCampaigns(searchFixtures(), "friday")
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ID)
	assert.Equal(t, 0.7, results[0].Relevance)
}

func TestSearchWordFraction(t *testing.T) {
	// "school sale" matches one of two words in both fixtures 2 and 3.
	results := SearchCampaigns(searchFixtures(), "school sale")
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Equal(t, 0.25, r.Relevance)
	}
}

func TestSearchDropsZeroScores(t *testing.T) {
	results := SearchCampaigns(searchFixtures(), "christmas")
	assert.Empty(t, results)
}

func TestSearchOrdersByRelevance(t *testing.T) {
	campaigns := []Campaign{
		{ID: "a", Name: "Sale"},
		{ID: "b", Name: "Summer Sale"},
		{ID: "c", Name: "Sale Countdown"},
	}
	results := SearchCampaigns(campaigns, "sale")
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].ID) // exact
	assert.Equal(t, "c", results[1].ID) // prefix
	assert.Equal(t, "b", results[2].ID) // substring
}

func TestSearchIsCaseInsensitive(t *testing.T) {
	results := SearchCampaigns(searchFixtures(), "BLACK FRIDAY")
	require.Len(t, results, 1)
	assert.Equal(t, 1.0, results[0].Relevance)
}
