package routing

import (
	"sort"
	"strings"
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
)

// Matcher resolves a postcode to its best route rule. Matching runs on the
// space-stripped uppercase form on both sides, so "np204hf" and "NP20 4HF"
// always resolve identically.
type Matcher struct {
	loc *time.Location
}

func NewMatcher(loc *time.Location) *Matcher {
	if loc == nil {
		loc = time.UTC
	}
	return &Matcher{loc: loc}
}

// Match matches against the rule set as of now in the business timezone.
func (m *Matcher) Match(postcode string, rules []routing.RouteRule) routing.MatchResult {
	return m.MatchAt(postcode, rules, time.Now().In(m.loc))
}

// MatchAt resolves a postcode against the rule set as of the given day.
//
// Selection: inactive rules are skipped, identical rules (same prefix key,
// day, area, slot) collapse to one, and among the matches the longest
// prefix key wins. Ties break by the earliest upcoming occurrence of the
// rule's route day, then by slot (AM, PM, ANY), then keep input order.
//
// No match is a normal outcome: InArea is false and Default is nil, and the
// caller decides how to present uncovered postcodes. It must never fall
// back to an arbitrary rule.
func (m *Matcher) MatchAt(postcode string, rules []routing.RouteRule, today time.Time) routing.MatchResult {
	normalized := routing.NormalizePostcode(postcode)
	key := routing.PrefixKey(postcode)

	result := routing.MatchResult{NormalizedPostcode: normalized}
	if key == "" {
		return result
	}

	seen := make(map[string]struct{})
	var matches []routing.RouteRule
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		ruleKey := routing.PrefixKey(rule.Prefix)
		if ruleKey == "" || !strings.HasPrefix(key, ruleKey) {
			continue
		}
		dedupe := ruleKey + "|" + rule.RouteDay + "|" + rule.RouteArea + "|" + string(rule.Slot)
		if _, dup := seen[dedupe]; dup {
			continue
		}
		seen[dedupe] = struct{}{}
		matches = append(matches, rule)
	}

	if len(matches) == 0 {
		return result
	}

	sort.SliceStable(matches, func(i, j int) bool {
		ki, kj := routing.PrefixKey(matches[i].Prefix), routing.PrefixKey(matches[j].Prefix)
		if len(ki) != len(kj) {
			return len(ki) > len(kj)
		}
		di, dj := daysUntilRouteDay(today, matches[i].RouteDay), daysUntilRouteDay(today, matches[j].RouteDay)
		if di != dj {
			return di < dj
		}
		return routing.SlotRank(matches[i].Slot) < routing.SlotRank(matches[j].Slot)
	})

	result.InArea = true
	result.Matches = matches
	result.Default = &matches[0]
	return result
}

// daysUntilRouteDay returns how many days from today until the next
// occurrence of the named weekday (0 when today is that weekday). Unknown
// day names sort last.
func daysUntilRouteDay(today time.Time, routeDay string) int {
	target, ok := routing.ParseWeekday(routeDay)
	if !ok {
		return 7
	}
	return (int(target) - int(today.Weekday()) + 7) % 7
}
