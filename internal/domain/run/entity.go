package run

import (
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
)

// StopType distinguishes the two kinds of stop a run can carry.
type StopType string

const (
	StopTypeBooking      StopType = "booking"
	StopTypeSubscription StopType = "subscription"
)

// StopRef is a persisted reference into bookings or subscriptions. The
// run's stop order is stored as an ordered list of these.
type StopRef struct {
	Type StopType `json:"type"`
	ID   string   `json:"id"`
}

// DailyRun is one dispatch unit: a date, area, day and slot, optionally
// with a vehicle, crew and a persisted stop order.
type DailyRun struct {
	ID        string
	RunDate   time.Time
	RouteDay  string
	RouteArea string
	Slot      routing.Slot
	Vehicle   string
	Crew      string
	StopOrder []StopRef
	Notes     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Stop is one visit on a run: either a due subscription collection or a
// one-off booking.
type Stop struct {
	Type          StopType
	ID            string
	CustomerName  string
	Address       string
	Postcode      string
	Slot          routing.Slot
	Collected     bool       // subscriptions: collection log entry exists for the run date
	CompletedAt   *time.Time // bookings: completion timestamp
	CustomerPhone string
}

// Ref returns the persistable reference for the stop.
func (s Stop) Ref() StopRef {
	return StopRef{Type: s.Type, ID: s.ID}
}

// SlotAccepts reports whether a run slot accepts a stop slot. The
// permissiveness flows from the run side only: a run covering ANY takes
// everything, an AM or PM run takes its own half plus ANY and unset stops.
func SlotAccepts(runSlot, stopSlot routing.Slot) bool {
	switch runSlot {
	case routing.SlotAny:
		return true
	case routing.SlotAM:
		return stopSlot == routing.SlotAM || stopSlot == routing.SlotAny || stopSlot == ""
	case routing.SlotPM:
		return stopSlot == routing.SlotPM || stopSlot == routing.SlotAny || stopSlot == ""
	}
	return false
}
