package run

import (
	"context"
	"testing"
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/domain/run"
	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSubRepo struct {
	subscription.Repository
	subs []subscription.Subscription
}

func (f *fakeSubRepo) ListForRun(ctx context.Context, filter subscription.RunFilter) ([]subscription.Subscription, error) {
	var out []subscription.Subscription
	for _, s := range f.subs {
		if s.RouteArea == filter.RouteArea && s.RouteDay == filter.RouteDay {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeBookingRepo struct {
	booking.Repository
	bookings []booking.Booking
}

func (f *fakeBookingRepo) ListForRun(ctx context.Context, filter booking.RunFilter) ([]booking.Booking, error) {
	var out []booking.Booking
	for _, b := range f.bookings {
		if b.RouteArea == filter.RouteArea && b.RouteDay == filter.RouteDay {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeLogRepo struct {
	subscription.CollectionLogRepository
	records []subscription.CollectionRecord
}

func (f *fakeLogRepo) ListByDate(ctx context.Context, date time.Time) ([]subscription.CollectionRecord, error) {
	var out []subscription.CollectionRecord
	for _, r := range f.records {
		if r.CollectionDate.Format("2006-01-02") == date.Format("2006-01-02") {
			out = append(out, r)
		}
	}
	return out, nil
}

// Friday 5 January 2024.
var runDate = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func testRun(slot routing.Slot) run.DailyRun {
	return run.DailyRun{
		ID:        "run-1",
		RunDate:   runDate,
		RouteDay:  "Friday",
		RouteArea: "Newport West",
		Slot:      slot,
	}
}

func dueSub(id string, slot routing.Slot) subscription.Subscription {
	return subscription.Subscription{
		ID:           id,
		CustomerName: "Sub " + id,
		Address:      "1 High St",
		Postcode:     "NP20 4HF",
		Frequency:    subscription.FrequencyWeekly,
		AnchorDate:   runDate.AddDate(0, 0, -14),
		RouteDay:     "Friday",
		RouteArea:    "Newport West",
		RouteSlot:    slot,
		Status:       subscription.StatusActive,
	}
}

func dueBooking(id string, slot routing.Slot) booking.Booking {
	d := runDate
	return booking.Booking{
		ID:           id,
		CustomerName: "Booking " + id,
		Address:      "2 Low St",
		Postcode:     "NP20 5AB",
		ServiceDate:  &d,
		RouteDay:     "Friday",
		RouteArea:    "Newport West",
		RouteSlot:    slot,
		Status:       booking.StatusConfirmed,
	}
}

func newTestAssembler(subs []subscription.Subscription, bookings []booking.Booking, records []subscription.CollectionRecord) *Assembler {
	return NewAssembler(
		&fakeSubRepo{subs: subs},
		&fakeBookingRepo{bookings: bookings},
		&fakeLogRepo{records: records},
		schedule.NewCalculator(time.UTC),
	)
}

func TestAssembleStopsBookingsFirstThenSubscriptions(t *testing.T) {
	a := newTestAssembler(
		[]subscription.Subscription{dueSub("s1", routing.SlotAny)},
		[]booking.Booking{dueBooking("b1", routing.SlotAny)},
		nil,
	)

	stops, err := a.AssembleStops(context.Background(), testRun(routing.SlotAny))
	require.NoError(t, err)

	require.Len(t, stops, 2)
	assert.Equal(t, run.StopTypeBooking, stops[0].Type)
	assert.Equal(t, "b1", stops[0].ID)
	assert.Equal(t, run.StopTypeSubscription, stops[1].Type)
	assert.Equal(t, "s1", stops[1].ID)
}

func TestAssembleStopsExcludesNotDueSubscriptions(t *testing.T) {
	offCadence := dueSub("s2", routing.SlotAny)
	offCadence.Frequency = subscription.FrequencyFortnightly
	offCadence.AnchorDate = runDate.AddDate(0, 0, -7) // due last week, not this one

	a := newTestAssembler(
		[]subscription.Subscription{dueSub("s1", routing.SlotAny), offCadence},
		nil, nil,
	)

	stops, err := a.AssembleStops(context.Background(), testRun(routing.SlotAny))
	require.NoError(t, err)

	require.Len(t, stops, 1)
	assert.Equal(t, "s1", stops[0].ID)
}

func TestAssembleStopsPauseWindow(t *testing.T) {
	paused := dueSub("s1", routing.SlotAny)
	from := runDate.AddDate(0, 0, -1)
	to := runDate.AddDate(0, 0, 1)
	paused.PauseFrom = &from
	paused.PauseTo = &to

	a := newTestAssembler([]subscription.Subscription{paused}, nil, nil)

	stops, err := a.AssembleStops(context.Background(), testRun(routing.SlotAny))
	require.NoError(t, err)
	assert.Empty(t, stops)

	// Two weeks on the pause window has passed and the stop returns.
	later := testRun(routing.SlotAny)
	later.RunDate = runDate.AddDate(0, 0, 14)
	stops, err = a.AssembleStops(context.Background(), later)
	require.NoError(t, err)
	assert.Len(t, stops, 1)
}

func TestAssembleStopsSlotCompatibility(t *testing.T) {
	cases := []struct {
		runSlot  routing.Slot
		stopSlot routing.Slot
		want     bool
	}{
		{routing.SlotAny, routing.SlotAM, true},
		{routing.SlotAny, routing.SlotPM, true},
		{routing.SlotAny, "", true},
		{routing.SlotAM, routing.SlotAM, true},
		{routing.SlotAM, routing.SlotAny, true},
		{routing.SlotAM, "", true},
		{routing.SlotAM, routing.SlotPM, false},
		{routing.SlotPM, routing.SlotPM, true},
		{routing.SlotPM, routing.SlotAM, false},
	}
	for _, tc := range cases {
		a := newTestAssembler([]subscription.Subscription{dueSub("s1", tc.stopSlot)}, nil, nil)
		stops, err := a.AssembleStops(context.Background(), testRun(tc.runSlot))
		require.NoError(t, err)
		if tc.want {
			assert.Len(t, stops, 1, "run %s stop %s", tc.runSlot, tc.stopSlot)
		} else {
			assert.Empty(t, stops, "run %s stop %s", tc.runSlot, tc.stopSlot)
		}
	}
}

func TestAssembleStopsExcludesCancelledBookings(t *testing.T) {
	cancelled := dueBooking("b1", routing.SlotAny)
	cancelled.Status = booking.StatusCancelled
	legacy := dueBooking("b2", routing.SlotAny)
	legacy.Status = booking.Status("canceled")

	a := newTestAssembler(nil, []booking.Booking{cancelled, legacy, dueBooking("b3", routing.SlotAny)}, nil)

	stops, err := a.AssembleStops(context.Background(), testRun(routing.SlotAny))
	require.NoError(t, err)

	require.Len(t, stops, 1)
	assert.Equal(t, "b3", stops[0].ID)
}

func TestAssembleStopsIneligibleStatuses(t *testing.T) {
	past := dueSub("s1", routing.SlotAny)
	past.Status = subscription.StatusPastDue
	trialing := dueSub("s2", routing.SlotAny)
	trialing.Status = subscription.StatusTrialing

	a := newTestAssembler([]subscription.Subscription{past, trialing}, nil, nil)

	stops, err := a.AssembleStops(context.Background(), testRun(routing.SlotAny))
	require.NoError(t, err)

	require.Len(t, stops, 1)
	assert.Equal(t, "s2", stops[0].ID)
}

func TestAssembleStopsMarksCollected(t *testing.T) {
	a := newTestAssembler(
		[]subscription.Subscription{dueSub("s1", routing.SlotAny), dueSub("s2", routing.SlotAny)},
		nil,
		[]subscription.CollectionRecord{{SubscriptionID: "s1", CollectionDate: runDate}},
	)

	stops, err := a.AssembleStops(context.Background(), testRun(routing.SlotAny))
	require.NoError(t, err)

	require.Len(t, stops, 2)
	assert.True(t, stops[0].Collected)
	assert.False(t, stops[1].Collected)
}

func TestAssembleStopsAppliesPersistedOrder(t *testing.T) {
	a := newTestAssembler(
		[]subscription.Subscription{dueSub("s1", routing.SlotAny), dueSub("s2", routing.SlotAny)},
		[]booking.Booking{dueBooking("b1", routing.SlotAny)},
		nil,
	)

	r := testRun(routing.SlotAny)
	r.StopOrder = []run.StopRef{
		{Type: run.StopTypeSubscription, ID: "s2"},
		{Type: run.StopTypeBooking, ID: "b1"},
		// s1 is unmentioned and a stale ref points at a stop that no
		// longer exists.
		{Type: run.StopTypeBooking, ID: "gone"},
	}

	stops, err := a.AssembleStops(context.Background(), r)
	require.NoError(t, err)

	require.Len(t, stops, 3)
	assert.Equal(t, "s2", stops[0].ID)
	assert.Equal(t, "b1", stops[1].ID)
	assert.Equal(t, "s1", stops[2].ID)
}
