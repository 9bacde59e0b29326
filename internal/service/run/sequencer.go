package run

import (
	"context"
	"fmt"

	"github.com/clearway/collections-backend-go/internal/domain/run"
)

// MaxWaypoints is the most intermediate stops the directions provider will
// optimize in a single request, excluding the endpoints.
const MaxWaypoints = 23

// Optimizer is the external route-optimization oracle. It returns the
// visiting order of the waypoints as indices into the input slice.
type Optimizer interface {
	OptimizeWaypoints(ctx context.Context, origin, destination string, waypoints []string) ([]int, error)
}

// Sequencer orders a run's stops by asking the optimizer for the best
// visiting sequence and persisting the result onto the run.
type Sequencer struct {
	runRepo   run.Repository
	optimizer Optimizer
}

// NewSequencer builds a sequencer. A nil optimizer means the directions
// provider is not configured; multi-stop optimization then fails with
// ErrOptimizerNotConfigured instead of panicking at startup.
func NewSequencer(runRepo run.Repository, optimizer Optimizer) *Sequencer {
	return &Sequencer{runRepo: runRepo, optimizer: optimizer}
}

// StopOrderResult is the persisted order plus a truncation warning when the
// stop count exceeded the optimizer's waypoint limit.
type StopOrderResult struct {
	Order     []run.StopRef
	Truncated bool
}

// OptimizeOrder sequences the stops and persists the order on the run.
//
// With an origin the run is a round trip: every stop is a waypoint between
// origin and destination (destination defaults to the origin). Without an
// origin the current first and last stops stay fixed as anchors and only
// the middle stops are optimized.
//
// Stops beyond the waypoint limit are excluded from optimization and
// appended unsorted; the result flags this rather than failing, because a
// partially-ordered run is still dispatchable. Oracle failures are hard
// errors: nothing is persisted and the caller surfaces the failure to
// staff, since silently dispatching an arbitrary order is worse than
// stopping the workflow.
func (s *Sequencer) OptimizeOrder(ctx context.Context, dailyRun run.DailyRun, stops []run.Stop, origin, destination string) (StopOrderResult, error) {
	refs := make([]run.StopRef, len(stops))
	for i, st := range stops {
		refs[i] = st.Ref()
	}

	// Zero or one stop: nothing for the oracle to do, persist as is.
	if len(stops) <= 1 {
		if err := s.runRepo.UpdateStopOrder(ctx, dailyRun.ID, refs); err != nil {
			return StopOrderResult{}, fmt.Errorf("persist stop order: %w", err)
		}
		return StopOrderResult{Order: refs}, nil
	}

	if s.optimizer == nil {
		return StopOrderResult{}, run.ErrOptimizerNotConfigured
	}

	var result StopOrderResult
	var err error
	if origin != "" {
		result, err = s.roundTrip(ctx, stops, refs, origin, destination)
	} else {
		result, err = s.anchored(ctx, stops, refs)
	}
	if err != nil {
		return StopOrderResult{}, err
	}

	if err := s.runRepo.UpdateStopOrder(ctx, dailyRun.ID, result.Order); err != nil {
		return StopOrderResult{}, fmt.Errorf("persist stop order: %w", err)
	}
	return result, nil
}

// roundTrip optimizes all stops as waypoints between origin and
// destination.
func (s *Sequencer) roundTrip(ctx context.Context, stops []run.Stop, refs []run.StopRef, origin, destination string) (StopOrderResult, error) {
	if destination == "" {
		destination = origin
	}

	optimizable := stops
	var overflow []run.StopRef
	truncated := false
	if len(optimizable) > MaxWaypoints {
		overflow = refs[MaxWaypoints:]
		optimizable = stops[:MaxWaypoints]
		truncated = true
	}

	order, err := s.callOracle(ctx, origin, destination, optimizable)
	if err != nil {
		return StopOrderResult{}, err
	}

	out := make([]run.StopRef, 0, len(refs))
	for _, idx := range order {
		out = append(out, optimizable[idx].Ref())
	}
	out = append(out, overflow...)
	return StopOrderResult{Order: out, Truncated: truncated}, nil
}

// anchored keeps the current first and last stops fixed and optimizes the
// middle. With two stops there is no middle, so the order stands.
// Overflow beyond the waypoint cap goes after the optimized middle but
// before the last stop: the anchors are driver-chosen endpoints and must
// stay the endpoints even on oversized runs.
func (s *Sequencer) anchored(ctx context.Context, stops []run.Stop, refs []run.StopRef) (StopOrderResult, error) {
	if len(stops) == 2 {
		return StopOrderResult{Order: refs}, nil
	}

	first := stops[0]
	last := stops[len(stops)-1]
	middle := stops[1 : len(stops)-1]

	optimizable := middle
	var overflow []run.StopRef
	truncated := false
	if len(optimizable) > MaxWaypoints {
		for _, st := range middle[MaxWaypoints:] {
			overflow = append(overflow, st.Ref())
		}
		optimizable = middle[:MaxWaypoints]
		truncated = true
	}

	order, err := s.callOracle(ctx, stopAddress(first), stopAddress(last), optimizable)
	if err != nil {
		return StopOrderResult{}, err
	}

	out := make([]run.StopRef, 0, len(refs))
	out = append(out, first.Ref())
	for _, idx := range order {
		out = append(out, optimizable[idx].Ref())
	}
	out = append(out, overflow...)
	out = append(out, last.Ref())
	return StopOrderResult{Order: out, Truncated: truncated}, nil
}

func (s *Sequencer) callOracle(ctx context.Context, origin, destination string, stops []run.Stop) ([]int, error) {
	waypoints := make([]string, len(stops))
	for i, st := range stops {
		waypoints[i] = stopAddress(st)
	}

	order, err := s.optimizer.OptimizeWaypoints(ctx, origin, destination, waypoints)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", run.ErrOptimizerFailed, err)
	}
	if len(order) != len(waypoints) {
		return nil, fmt.Errorf("%w: expected %d waypoint indices, got %d", run.ErrOptimizerFailed, len(waypoints), len(order))
	}
	return order, nil
}

func stopAddress(st run.Stop) string {
	if st.Postcode == "" {
		return st.Address
	}
	return st.Address + ", " + st.Postcode
}
