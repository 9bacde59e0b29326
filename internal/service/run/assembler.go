package run

import (
	"context"
	"fmt"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/domain/run"
	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
)

// Assembler builds the stop list for a daily run: one-off bookings due that
// day plus subscription collections whose recurrence lands on the run date.
// Assembly is read-only; confirming collections and completing bookings are
// separate operations.
type Assembler struct {
	subRepo     subscription.Repository
	bookingRepo booking.Repository
	logRepo     subscription.CollectionLogRepository
	calc        *schedule.Calculator
}

func NewAssembler(
	subRepo subscription.Repository,
	bookingRepo booking.Repository,
	logRepo subscription.CollectionLogRepository,
	calc *schedule.Calculator,
) *Assembler {
	return &Assembler{
		subRepo:     subRepo,
		bookingRepo: bookingRepo,
		logRepo:     logRepo,
		calc:        calc,
	}
}

// AssembleStops returns the run's stops: bookings first, then
// subscriptions, unless the run carries a persisted stop order, in which
// case that order wins and any stops it does not mention are appended in
// their original relative position.
func (a *Assembler) AssembleStops(ctx context.Context, dailyRun run.DailyRun) ([]run.Stop, error) {
	runDate := dailyRun.RunDate.Format("2006-01-02")

	bookings, err := a.bookingRepo.ListForRun(ctx, booking.RunFilter{
		RouteArea: dailyRun.RouteArea,
		RouteDay:  dailyRun.RouteDay,
	})
	if err != nil {
		return nil, fmt.Errorf("list bookings for run: %w", err)
	}

	var stops []run.Stop
	for i := range bookings {
		b := &bookings[i]
		if b.Status.Cancelled() {
			continue
		}
		if !run.SlotAccepts(dailyRun.Slot, b.RouteSlot) {
			continue
		}
		due := b.DueDate()
		if due == nil || due.Format("2006-01-02") != runDate {
			continue
		}
		stops = append(stops, run.Stop{
			Type:          run.StopTypeBooking,
			ID:            b.ID,
			CustomerName:  b.CustomerName,
			Address:       b.Address,
			Postcode:      b.Postcode,
			Slot:          b.RouteSlot,
			CompletedAt:   b.CompletedAt,
			CustomerPhone: b.CustomerPhone,
		})
	}

	subs, err := a.subRepo.ListForRun(ctx, subscription.RunFilter{
		RouteArea: dailyRun.RouteArea,
		RouteDay:  dailyRun.RouteDay,
		Statuses:  []string{string(subscription.StatusActive), string(subscription.StatusTrialing)},
	})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions for run: %w", err)
	}

	collected, err := a.collectedSet(ctx, dailyRun)
	if err != nil {
		return nil, err
	}

	for i := range subs {
		s := &subs[i]
		if !s.Status.Eligible() {
			continue
		}
		if !run.SlotAccepts(dailyRun.Slot, s.RouteSlot) {
			continue
		}
		if !a.calc.IsDueOnDate(runDate, s.RouteDay, s.AnchorDate.Format("2006-01-02"), s.Frequency) {
			continue
		}
		if a.calc.IsPaused(dailyRun.RunDate, s.PauseFrom, s.PauseTo) {
			continue
		}
		_, wasCollected := collected[s.ID]
		stops = append(stops, run.Stop{
			Type:          run.StopTypeSubscription,
			ID:            s.ID,
			CustomerName:  s.CustomerName,
			Address:       s.Address,
			Postcode:      s.Postcode,
			Slot:          s.RouteSlot,
			Collected:     wasCollected,
			CustomerPhone: s.CustomerPhone,
		})
	}

	if len(dailyRun.StopOrder) > 0 {
		stops = applyStopOrder(stops, dailyRun.StopOrder)
	}

	return stops, nil
}

// collectedSet maps subscription IDs with a collection record on the run
// date.
func (a *Assembler) collectedSet(ctx context.Context, dailyRun run.DailyRun) (map[string]struct{}, error) {
	records, err := a.logRepo.ListByDate(ctx, dailyRun.RunDate)
	if err != nil {
		return nil, fmt.Errorf("list collection log for run: %w", err)
	}
	set := make(map[string]struct{}, len(records))
	for _, rec := range records {
		set[rec.SubscriptionID] = struct{}{}
	}
	return set, nil
}

// applyStopOrder reorders stops to match the persisted order. Ordered
// entries come first; stops the order does not mention keep their relative
// position and go at the end. Order entries pointing at stops that no
// longer exist are dropped.
func applyStopOrder(stops []run.Stop, order []run.StopRef) []run.Stop {
	index := make(map[run.StopRef]int, len(stops))
	for i, s := range stops {
		index[s.Ref()] = i
	}

	used := make(map[run.StopRef]struct{}, len(order))
	result := make([]run.Stop, 0, len(stops))
	for _, ref := range order {
		if _, dup := used[ref]; dup {
			continue
		}
		if i, ok := index[ref]; ok {
			result = append(result, stops[i])
			used[ref] = struct{}{}
		}
	}
	for _, s := range stops {
		if _, ok := used[s.Ref()]; !ok {
			result = append(result, s)
		}
	}
	return result
}
