package routing

import (
	"testing"
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Tuesday 4 June 2024.
var matchDay = time.Date(2024, 6, 4, 9, 0, 0, 0, time.UTC)

func activeRule(prefix, day, area, slot string) routing.RouteRule {
	return routing.RouteRule{
		Prefix:    prefix,
		PrefixKey: routing.PrefixKey(prefix),
		RouteDay:  day,
		RouteArea: area,
		Slot:      routing.Slot(slot),
		Active:    true,
	}
}

func TestMatchLongestPrefixWins(t *testing.T) {
	m := NewMatcher(time.UTC)
	rules := []routing.RouteRule{
		activeRule("NP", "Monday", "Newport Central", "ANY"),
		activeRule("NP20 4", "Friday", "Newport West", "AM"),
	}

	result := m.MatchAt("NP20 4HF", rules, matchDay)

	require.True(t, result.InArea)
	require.NotNil(t, result.Default)
	assert.Equal(t, "Newport West", result.Default.RouteArea)
	assert.Equal(t, "Friday", result.Default.RouteDay)
	assert.Len(t, result.Matches, 2)
}

func TestMatchNoSpaceEquivalence(t *testing.T) {
	m := NewMatcher(time.UTC)
	rules := []routing.RouteRule{
		activeRule("NP20 4", "Friday", "Newport West", "AM"),
		activeRule("NP", "Monday", "Newport Central", "ANY"),
	}

	spaced := m.MatchAt("NP20 4HF", rules, matchDay)
	squashed := m.MatchAt("np204hf", rules, matchDay)

	require.True(t, spaced.InArea)
	require.True(t, squashed.InArea)
	assert.Equal(t, spaced.Default.RouteArea, squashed.Default.RouteArea)
	assert.Equal(t, len(spaced.Matches), len(squashed.Matches))
	assert.Equal(t, "NP20 4HF", spaced.NormalizedPostcode)
	assert.Equal(t, "NP204HF", squashed.NormalizedPostcode)
}

func TestMatchSkipsInactiveRules(t *testing.T) {
	m := NewMatcher(time.UTC)
	inactive := activeRule("NP20", "Friday", "Newport West", "AM")
	inactive.Active = false
	rules := []routing.RouteRule{
		inactive,
		activeRule("NP", "Monday", "Newport Central", "ANY"),
	}

	result := m.MatchAt("NP20 4HF", rules, matchDay)

	require.True(t, result.InArea)
	assert.Equal(t, "Newport Central", result.Default.RouteArea)
	assert.Len(t, result.Matches, 1)
}

func TestMatchNoCoverage(t *testing.T) {
	m := NewMatcher(time.UTC)
	rules := []routing.RouteRule{
		activeRule("NP", "Monday", "Newport Central", "ANY"),
	}

	result := m.MatchAt("CF10 1AA", rules, matchDay)

	assert.False(t, result.InArea)
	assert.Nil(t, result.Default)
	assert.Empty(t, result.Matches)
}

func TestMatchEmptyPostcode(t *testing.T) {
	m := NewMatcher(time.UTC)
	rules := []routing.RouteRule{
		activeRule("NP", "Monday", "Newport Central", "ANY"),
	}

	for _, input := range []string{"", "   "} {
		result := m.MatchAt(input, rules, matchDay)
		assert.False(t, result.InArea, "input %q", input)
		assert.Nil(t, result.Default, "input %q", input)
	}
}

func TestMatchDeduplicatesIdenticalRules(t *testing.T) {
	m := NewMatcher(time.UTC)
	rules := []routing.RouteRule{
		activeRule("NP20", "Friday", "Newport West", "AM"),
		activeRule("NP20", "Friday", "Newport West", "AM"),
		activeRule("np 20", "Friday", "Newport West", "AM"), // same key once spaces are stripped
	}

	result := m.MatchAt("NP20 4HF", rules, matchDay)

	require.True(t, result.InArea)
	assert.Len(t, result.Matches, 1)
}

func TestMatchTieBreaksByEarliestRouteDay(t *testing.T) {
	m := NewMatcher(time.UTC)
	// Same prefix length; from a Tuesday, Wednesday comes before Friday.
	rules := []routing.RouteRule{
		activeRule("NP20", "Friday", "Newport West", "AM"),
		activeRule("NP20", "Wednesday", "Newport East", "AM"),
	}

	result := m.MatchAt("NP20 4HF", rules, matchDay)

	require.True(t, result.InArea)
	assert.Equal(t, "Newport East", result.Default.RouteArea)
}

func TestMatchTieBreaksBySlotOrder(t *testing.T) {
	m := NewMatcher(time.UTC)
	rules := []routing.RouteRule{
		activeRule("NP20", "Friday", "Newport ANY", "ANY"),
		activeRule("NP20", "Friday", "Newport PM", "PM"),
		activeRule("NP20", "Friday", "Newport AM", "AM"),
	}

	result := m.MatchAt("NP20 4HF", rules, matchDay)

	require.True(t, result.InArea)
	assert.Equal(t, "Newport AM", result.Default.RouteArea)
	assert.Equal(t, "Newport PM", result.Matches[1].RouteArea)
	assert.Equal(t, "Newport ANY", result.Matches[2].RouteArea)
}

func TestNormalizePostcode(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"np20 4hf", "NP20 4HF"},
		{"  NP20   4HF  ", "NP20 4HF"},
		{"np204hf", "NP204HF"},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, routing.NormalizePostcode(c.input))
	}
}
