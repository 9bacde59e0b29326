package booking

import (
	"context"
	"time"
)

// RunFilter narrows bookings to one run's area and day. Date and slot
// filtering stay in the assembler alongside the subscription rules.
type RunFilter struct {
	RouteArea string
	RouteDay  string
}

type Repository interface {
	Create(ctx context.Context, b Booking) (Booking, error)
	GetByID(ctx context.Context, id string) (Booking, error)
	GetByCheckoutSessionID(ctx context.Context, sessionID string) (Booking, error)
	List(ctx context.Context, statuses []string) ([]Booking, error)
	ListForRun(ctx context.Context, filter RunFilter) ([]Booking, error)
	Update(ctx context.Context, b Booking) (Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	// SetCompleted stamps or clears completed_at. Stamping an already
	// completed booking overwrites the timestamp, which is the same outcome.
	SetCompleted(ctx context.Context, id string, completedAt *time.Time) error
	Delete(ctx context.Context, id string) error
}
