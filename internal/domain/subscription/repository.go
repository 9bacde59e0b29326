package subscription

import (
	"context"
	"time"
)

// RunFilter narrows subscriptions to one run's area, day and eligible
// statuses. Due-date and slot filtering happen in the assembler, not in SQL,
// so the recurrence rules live in exactly one place.
type RunFilter struct {
	RouteArea string
	RouteDay  string
	Statuses  []string
}

type Repository interface {
	Create(ctx context.Context, sub Subscription) (Subscription, error)
	GetByID(ctx context.Context, id string) (Subscription, error)
	GetByStripeSubscriptionID(ctx context.Context, stripeID string) (Subscription, error)
	List(ctx context.Context, statuses []string) ([]Subscription, error)
	ListForRun(ctx context.Context, filter RunFilter) ([]Subscription, error)
	Update(ctx context.Context, sub Subscription) (Subscription, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
	UpdateNextCollectionDate(ctx context.Context, id string, next *time.Time) error
	Delete(ctx context.Context, id string) error
}

// CollectionLogRepository persists confirmed collections.
type CollectionLogRepository interface {
	// Insert records a collection. Inserting the same (subscription, date)
	// pair twice is a no-op and must not fail.
	Insert(ctx context.Context, rec CollectionRecord) error
	// Delete removes the record for the exact date, if present. Returns the
	// number of rows removed.
	Delete(ctx context.Context, subscriptionID string, date time.Time) (int64, error)
	ListByDate(ctx context.Context, date time.Time) ([]CollectionRecord, error)
	ListBySubscription(ctx context.Context, subscriptionID string) ([]CollectionRecord, error)
}
