package schedule

import (
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/domain/subscription"
)

const dateLayout = "2006-01-02"

// Calculator decides when recurring collections fall due. All date math
// runs on the business's civil calendar: a run date is a local day, never a
// UTC instant, so collections do not slip a day around midnight.
//
// The calculator is deliberately forgiving: it scans bulk data where the
// odd row carries a bad date or an unknown frequency, and a dirty row must
// resolve to "not due" instead of aborting a whole run assembly.
type Calculator struct {
	loc *time.Location
}

func NewCalculator(loc *time.Location) *Calculator {
	if loc == nil {
		loc = time.UTC
	}
	return &Calculator{loc: loc}
}

// PeriodDays maps a frequency to its recurrence period in days. Unknown
// frequencies fall back to weekly; callers treat that as a data-quality
// smell, not an error.
func PeriodDays(freq subscription.Frequency) int {
	switch freq {
	case subscription.FrequencyWeekly:
		return 7
	case subscription.FrequencyFortnightly:
		return 14
	case subscription.FrequencyThreeWeekly:
		return 21
	}
	return 7
}

// EffectiveAnchor advances the raw anchor forward (0-6 days) to the first
// occurrence of the route day. An anchor already on the route day is its
// own effective anchor; an unparseable route day leaves the anchor as is.
func EffectiveAnchor(anchor time.Time, routeDay string) time.Time {
	target, ok := routing.ParseWeekday(routeDay)
	if !ok {
		return anchor
	}
	shift := (int(target) - int(anchor.Weekday()) + 7) % 7
	return anchor.AddDate(0, 0, shift)
}

// IsDueOnDate reports whether a subscription anchored at anchorDate with
// the given route day and frequency is due on runDate. Both dates are
// YYYY-MM-DD strings; anything unparseable is simply not due.
//
// Due dates are effectiveAnchor + k*period for k >= 0. Dates before the
// effective anchor are never due.
func (c *Calculator) IsDueOnDate(runDate, routeDay string, anchorDate string, freq subscription.Frequency) bool {
	run, ok := c.parseDate(runDate)
	if !ok {
		return false
	}
	anchor, ok := c.parseDate(anchorDate)
	if !ok {
		return false
	}

	effective := EffectiveAnchor(anchor, routeDay)
	diffDays := daysBetween(effective, run)
	if diffDays < 0 {
		return false
	}

	return diffDays%PeriodDays(freq) == 0
}

// IsDueInWeek reports whether any recurrence of the raw anchor falls inside
// the week starting at weekStart. This intentionally skips the weekday
// alignment that IsDueOnDate applies: the weekly ops list tolerates a
// looser answer in exchange for a cheap scan, and the two definitions can
// disagree for anchors that sit off their route day.
func (c *Calculator) IsDueInWeek(anchorDate string, freq subscription.Frequency, weekStart time.Time) bool {
	anchor, ok := c.parseDate(anchorDate)
	if !ok {
		return false
	}

	weekStart = c.midnight(weekStart)
	weekEnd := weekStart.AddDate(0, 0, 6)
	period := PeriodDays(freq)

	if anchor.After(weekEnd) {
		return false
	}

	diff := daysBetween(anchor, weekStart)
	k := 0
	if diff > 0 {
		// Smallest k with anchor + k*period >= weekStart.
		k = (diff + period - 1) / period
	}
	candidate := anchor.AddDate(0, 0, k*period)
	return !candidate.After(weekEnd)
}

// NextDueDate returns the collection date that follows a confirmed one. It
// trusts the collected date as the new reference point and does not
// re-align to the route day.
func (c *Calculator) NextDueDate(lastCollected time.Time, freq subscription.Frequency) time.Time {
	return c.midnight(lastCollected).AddDate(0, 0, PeriodDays(freq))
}

// IsPaused reports whether date falls inside the inclusive pause window.
// Either bound may be absent for an open-ended window; with neither bound
// the subscription is never paused.
func (c *Calculator) IsPaused(date time.Time, pauseFrom, pauseTo *time.Time) bool {
	if pauseFrom == nil && pauseTo == nil {
		return false
	}
	d := c.midnight(date)
	if pauseFrom != nil && d.Before(c.midnight(*pauseFrom)) {
		return false
	}
	if pauseTo != nil && d.After(c.midnight(*pauseTo)) {
		return false
	}
	return true
}

// Today returns the current date at midnight in the business timezone.
func (c *Calculator) Today() time.Time {
	return c.midnight(time.Now().In(c.loc))
}

// Now returns the current instant in the business timezone.
func (c *Calculator) Now() time.Time {
	return time.Now().In(c.loc)
}

func (c *Calculator) parseDate(s string) (time.Time, bool) {
	t, err := time.ParseInLocation(dateLayout, s, c.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func (c *Calculator) midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// daysBetween counts whole calendar days from a to b. Rounding absorbs the
// 23- and 25-hour days that DST transitions produce.
func daysBetween(a, b time.Time) int {
	days := b.Sub(a).Hours() / 24
	if days >= 0 {
		return int(days + 0.5)
	}
	return -int(-days + 0.5)
}
