package routing

import (
	"strings"
	"time"
)

// Slot is the half-day window a route covers.
type Slot string

const (
	SlotAM  Slot = "AM"
	SlotPM  Slot = "PM"
	SlotAny Slot = "ANY"
)

var SlotValues = []string{string(SlotAM), string(SlotPM), string(SlotAny)}

// slotRank orders slots for tie-breaking: AM before PM before ANY.
func slotRank(s Slot) int {
	switch s {
	case SlotAM:
		return 0
	case SlotPM:
		return 1
	default:
		return 2
	}
}

// SlotRank is exported for matcher tie-breaking.
func SlotRank(s Slot) int { return slotRank(s) }

var WeekdayValues = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// ParseWeekday maps a weekday name to time.Weekday. Matching is
// case-insensitive; unknown names report ok=false.
func ParseWeekday(name string) (time.Weekday, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sunday":
		return time.Sunday, true
	case "monday":
		return time.Monday, true
	case "tuesday":
		return time.Tuesday, true
	case "wednesday":
		return time.Wednesday, true
	case "thursday":
		return time.Thursday, true
	case "friday":
		return time.Friday, true
	case "saturday":
		return time.Saturday, true
	}
	return time.Sunday, false
}

// RouteRule maps a postcode prefix to a collection day, area and slot.
type RouteRule struct {
	ID        string
	Prefix    string // display form: uppercase, single internal spaces
	PrefixKey string // comparison form: uppercase, all spaces removed
	RouteDay  string
	RouteArea string
	Slot      Slot
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NormalizePostcode returns the display form of a postcode: uppercase,
// trimmed, internal runs of whitespace collapsed to a single space.
func NormalizePostcode(postcode string) string {
	return strings.ToUpper(strings.Join(strings.Fields(postcode), " "))
}

// PrefixKey returns the comparison form: uppercase with all spaces removed.
// Prefix matching always runs on this form so "NP20 4HF" and "np204hf"
// behave identically.
func PrefixKey(postcode string) string {
	return strings.ToUpper(strings.Join(strings.Fields(postcode), ""))
}

// MatchResult is the outcome of matching a postcode against the rule set.
// InArea=false is an expected outcome, not an error: callers present it as
// "we don't cover that postcode yet" and must not fall back to any rule.
type MatchResult struct {
	InArea             bool
	NormalizedPostcode string
	Matches            []RouteRule
	Default            *RouteRule
}
