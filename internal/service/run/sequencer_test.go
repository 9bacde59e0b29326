package run

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/clearway/collections-backend-go/internal/domain/run"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockOptimizer records calls and replays a canned visiting order.
type mockOptimizer struct {
	calls     int
	waypoints []string
	order     []int
	err       error
}

func (m *mockOptimizer) OptimizeWaypoints(ctx context.Context, origin, destination string, waypoints []string) ([]int, error) {
	m.calls++
	m.waypoints = waypoints
	if m.err != nil {
		return nil, m.err
	}
	if m.order != nil {
		return m.order, nil
	}
	// Identity order by default.
	order := make([]int, len(waypoints))
	for i := range order {
		order[i] = i
	}
	return order, nil
}

type fakeRunRepo struct {
	run.Repository
	savedID    string
	savedOrder []run.StopRef
	saveCalls  int
	saveErr    error
}

func (f *fakeRunRepo) UpdateStopOrder(ctx context.Context, id string, order []run.StopRef) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saveCalls++
	f.savedID = id
	f.savedOrder = order
	return nil
}

func subStops(n int) []run.Stop {
	stops := make([]run.Stop, n)
	for i := range stops {
		stops[i] = run.Stop{
			Type:     run.StopTypeSubscription,
			ID:       fmt.Sprintf("s%d", i),
			Address:  fmt.Sprintf("%d High St", i),
			Postcode: "NP20 4HF",
		}
	}
	return stops
}

func TestOptimizeOrderZeroStops(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{}
	seq := NewSequencer(repo, oracle)

	result, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, nil, "", "")
	require.NoError(t, err)

	assert.Empty(t, result.Order)
	assert.False(t, result.Truncated)
	assert.Equal(t, 0, oracle.calls)
	assert.Equal(t, 1, repo.saveCalls)
	assert.Equal(t, "run-1", repo.savedID)
}

func TestOptimizeOrderSingleStop(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{}
	seq := NewSequencer(repo, oracle)

	stops := subStops(1)
	result, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, stops, "", "")
	require.NoError(t, err)

	require.Len(t, result.Order, 1)
	assert.Equal(t, "s0", result.Order[0].ID)
	assert.Equal(t, 0, oracle.calls)
	assert.Equal(t, 1, repo.saveCalls)
}

func TestOptimizeOrderRoundTrip(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{order: []int{2, 0, 1}}
	seq := NewSequencer(repo, oracle)

	stops := subStops(3)
	result, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, stops, "Depot, NP19 0AA", "")
	require.NoError(t, err)

	assert.Equal(t, 1, oracle.calls)
	assert.Len(t, oracle.waypoints, 3)
	require.Len(t, result.Order, 3)
	assert.Equal(t, "s2", result.Order[0].ID)
	assert.Equal(t, "s0", result.Order[1].ID)
	assert.Equal(t, "s1", result.Order[2].ID)
	assert.Equal(t, result.Order, repo.savedOrder)
}

func TestOptimizeOrderAnchoredKeepsEndpoints(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{order: []int{1, 0}}
	seq := NewSequencer(repo, oracle)

	stops := subStops(4)
	result, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, stops, "", "")
	require.NoError(t, err)

	// Only the middle two went to the oracle.
	assert.Equal(t, 1, oracle.calls)
	assert.Len(t, oracle.waypoints, 2)

	require.Len(t, result.Order, 4)
	assert.Equal(t, "s0", result.Order[0].ID)
	assert.Equal(t, "s2", result.Order[1].ID)
	assert.Equal(t, "s1", result.Order[2].ID)
	assert.Equal(t, "s3", result.Order[3].ID)
}

func TestOptimizeOrderTwoStopsAnchoredSkipsOracle(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{}
	seq := NewSequencer(repo, oracle)

	result, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, subStops(2), "", "")
	require.NoError(t, err)

	assert.Equal(t, 0, oracle.calls)
	require.Len(t, result.Order, 2)
	assert.Equal(t, "s0", result.Order[0].ID)
	assert.Equal(t, "s1", result.Order[1].ID)
}

func TestOptimizeOrderTruncatesAtWaypointLimit(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{}
	seq := NewSequencer(repo, oracle)

	stops := subStops(30)
	result, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, stops, "Depot", "")
	require.NoError(t, err)

	assert.True(t, result.Truncated)
	assert.Len(t, oracle.waypoints, MaxWaypoints)
	// All 30 stop references survive, the overflow unsorted at the end.
	require.Len(t, result.Order, 30)
	seen := make(map[string]struct{}, 30)
	for _, ref := range result.Order {
		seen[ref.ID] = struct{}{}
	}
	assert.Len(t, seen, 30)
	assert.Equal(t, "s23", result.Order[23].ID)
	assert.Equal(t, "s29", result.Order[29].ID)
}

func TestOptimizeOrderOracleFailureIsHardError(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{err: errors.New("ZERO_RESULTS")}
	seq := NewSequencer(repo, oracle)

	_, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, subStops(3), "Depot", "")

	require.Error(t, err)
	assert.ErrorIs(t, err, run.ErrOptimizerFailed)
	// Nothing persisted on failure.
	assert.Equal(t, 0, repo.saveCalls)
}

func TestOptimizeOrderNotConfigured(t *testing.T) {
	repo := &fakeRunRepo{}
	seq := NewSequencer(repo, nil)

	_, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, subStops(3), "", "")

	assert.ErrorIs(t, err, run.ErrOptimizerNotConfigured)
}

func TestOptimizeOrderBadIndexCount(t *testing.T) {
	repo := &fakeRunRepo{}
	oracle := &mockOptimizer{order: []int{0}}
	seq := NewSequencer(repo, oracle)

	_, err := seq.OptimizeOrder(context.Background(), run.DailyRun{ID: "run-1"}, subStops(3), "Depot", "")

	assert.ErrorIs(t, err, run.ErrOptimizerFailed)
}
