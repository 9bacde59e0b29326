package schedule

import (
	"testing"
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPeriodDays(t *testing.T) {
	assert.Equal(t, 7, PeriodDays(subscription.FrequencyWeekly))
	assert.Equal(t, 14, PeriodDays(subscription.FrequencyFortnightly))
	assert.Equal(t, 21, PeriodDays(subscription.FrequencyThreeWeekly))
	// Unknown frequencies fall back to weekly rather than erroring.
	assert.Equal(t, 7, PeriodDays(subscription.Frequency("monthly")))
	assert.Equal(t, 7, PeriodDays(subscription.Frequency("")))
}

func TestEffectiveAnchorAlignsForward(t *testing.T) {
	// 2024-01-03 is a Wednesday; the first Friday on/after it is 2024-01-05.
	anchor := date(2024, 1, 3)
	assert.Equal(t, date(2024, 1, 5), EffectiveAnchor(anchor, "Friday"))

	// Anchor already on the route day stays put.
	assert.Equal(t, date(2024, 1, 3), EffectiveAnchor(anchor, "Wednesday"))

	// Route day earlier in the week wraps forward, never backward.
	assert.Equal(t, date(2024, 1, 9), EffectiveAnchor(anchor, "Tuesday"))

	// Unparseable route day leaves the anchor untouched.
	assert.Equal(t, anchor, EffectiveAnchor(anchor, "Someday"))
}

func TestIsDueOnDateWeekdayAlignment(t *testing.T) {
	c := NewCalculator(time.UTC)

	// Wednesday anchor, Friday route day, weekly: first due date is the
	// Friday two days later, not the Wednesday itself.
	assert.False(t, c.IsDueOnDate("2024-01-03", "Friday", "2024-01-03", subscription.FrequencyWeekly))
	assert.True(t, c.IsDueOnDate("2024-01-05", "Friday", "2024-01-03", subscription.FrequencyWeekly))
	assert.True(t, c.IsDueOnDate("2024-01-12", "Friday", "2024-01-03", subscription.FrequencyWeekly))
}

func TestIsDueOnDateFortnightlyPeriodicity(t *testing.T) {
	c := NewCalculator(time.UTC)

	// 2024-01-05 is a Friday, so it is its own effective anchor.
	anchor := "2024-01-05"
	cases := []struct {
		runDate string
		want    bool
	}{
		{"2024-01-05", true},  // D
		{"2024-01-12", false}, // D+7
		{"2024-01-19", true},  // D+14
		{"2024-01-26", false}, // D+21
		{"2024-02-02", true},  // D+28
	}
	for _, tc := range cases {
		got := c.IsDueOnDate(tc.runDate, "Friday", anchor, subscription.FrequencyFortnightly)
		assert.Equal(t, tc.want, got, "runDate %s", tc.runDate)
	}
}

func TestIsDueOnDateThreeWeekly(t *testing.T) {
	c := NewCalculator(time.UTC)

	anchor := "2024-01-01" // a Monday
	assert.True(t, c.IsDueOnDate("2024-01-01", "Monday", anchor, subscription.FrequencyThreeWeekly))
	assert.False(t, c.IsDueOnDate("2024-01-15", "Monday", anchor, subscription.FrequencyThreeWeekly))
	assert.True(t, c.IsDueOnDate("2024-01-22", "Monday", anchor, subscription.FrequencyThreeWeekly))
}

func TestIsDueOnDateBeforeAnchor(t *testing.T) {
	c := NewCalculator(time.UTC)

	// Recurrence never applies before the effective anchor, even where the
	// modulus would line up.
	assert.False(t, c.IsDueOnDate("2023-12-29", "Friday", "2024-01-03", subscription.FrequencyWeekly))
}

func TestIsDueOnDateMalformedInput(t *testing.T) {
	c := NewCalculator(time.UTC)

	assert.False(t, c.IsDueOnDate("not-a-date", "Friday", "2024-01-01", subscription.FrequencyWeekly))
	assert.False(t, c.IsDueOnDate("2024-01-05", "Friday", "garbage", subscription.FrequencyWeekly))
	assert.False(t, c.IsDueOnDate("", "Friday", "", subscription.FrequencyWeekly))

	// Unknown route day: anchor is not shifted, so the raw anchor drives
	// the recurrence instead of raising.
	assert.True(t, c.IsDueOnDate("2024-01-03", "", "2024-01-03", subscription.FrequencyWeekly))
}

func TestIsDueOnDateAcrossDSTBoundary(t *testing.T) {
	london, err := time.LoadLocation("Europe/London")
	if err != nil {
		t.Skip("tzdata unavailable")
	}
	c := NewCalculator(london)

	// BST starts 2024-03-31; the weekly cadence must not slip a day.
	assert.True(t, c.IsDueOnDate("2024-03-29", "Friday", "2024-03-01", subscription.FrequencyWeekly))
	assert.True(t, c.IsDueOnDate("2024-04-05", "Friday", "2024-03-01", subscription.FrequencyWeekly))
	assert.False(t, c.IsDueOnDate("2024-04-04", "Friday", "2024-03-01", subscription.FrequencyWeekly))
}

func TestIsDueInWeekRawAnchor(t *testing.T) {
	c := NewCalculator(time.UTC)

	// Week of Monday 2024-01-08 to Sunday 2024-01-14.
	weekStart := date(2024, 1, 8)

	// Weekly from 2024-01-03: candidate 2024-01-10 lands in the week.
	assert.True(t, c.IsDueInWeek("2024-01-03", subscription.FrequencyWeekly, weekStart))

	// Fortnightly from 2024-01-01: next is 2024-01-15, outside the week.
	assert.False(t, c.IsDueInWeek("2024-01-01", subscription.FrequencyFortnightly, weekStart))

	// Fortnightly from 2024-01-12: anchor itself is inside the week.
	assert.True(t, c.IsDueInWeek("2024-01-12", subscription.FrequencyFortnightly, weekStart))

	// Anchor after the week end: nothing due yet.
	assert.False(t, c.IsDueInWeek("2024-02-01", subscription.FrequencyWeekly, weekStart))

	// Malformed anchor resolves to not due.
	assert.False(t, c.IsDueInWeek("bad", subscription.FrequencyWeekly, weekStart))
}

func TestNextDueDate(t *testing.T) {
	c := NewCalculator(time.UTC)

	collected := date(2024, 1, 5)
	assert.Equal(t, date(2024, 1, 12), c.NextDueDate(collected, subscription.FrequencyWeekly))
	assert.Equal(t, date(2024, 1, 19), c.NextDueDate(collected, subscription.FrequencyFortnightly))
	assert.Equal(t, date(2024, 1, 26), c.NextDueDate(collected, subscription.FrequencyThreeWeekly))
}

func TestIsPaused(t *testing.T) {
	c := NewCalculator(time.UTC)

	x := date(2024, 1, 10)
	from := date(2024, 1, 9)
	to := date(2024, 1, 11)

	// Inside the inclusive window.
	assert.True(t, c.IsPaused(x, &from, &to))
	assert.True(t, c.IsPaused(from, &from, &to))
	assert.True(t, c.IsPaused(to, &from, &to))

	// Outside.
	assert.False(t, c.IsPaused(date(2024, 1, 12), &from, &to))
	assert.False(t, c.IsPaused(date(2024, 1, 8), &from, &to))

	// Open-ended windows.
	assert.True(t, c.IsPaused(x, &from, nil))
	assert.True(t, c.IsPaused(x, nil, &to))
	assert.False(t, c.IsPaused(date(2024, 1, 8), &from, nil))

	// No bounds at all: never paused.
	assert.False(t, c.IsPaused(x, nil, nil))
}
