package subscription

import (
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
)

// Frequency is the recurrence period of a subscription.
type Frequency string

const (
	FrequencyWeekly      Frequency = "weekly"
	FrequencyFortnightly Frequency = "fortnightly"
	FrequencyThreeWeekly Frequency = "threeweekly"
)

var FrequencyValues = []string{
	string(FrequencyWeekly),
	string(FrequencyFortnightly),
	string(FrequencyThreeWeekly),
}

// Status of a subscription. Only active and trialing subscriptions are
// pulled onto daily runs.
type Status string

const (
	StatusActive    Status = "active"
	StatusTrialing  Status = "trialing"
	StatusPaused    Status = "paused"
	StatusCancelled Status = "cancelled"
	StatusPending   Status = "pending"
	StatusPastDue   Status = "past_due"
)

var StatusValues = []string{
	string(StatusActive),
	string(StatusTrialing),
	string(StatusPaused),
	string(StatusCancelled),
	string(StatusPending),
	string(StatusPastDue),
}

// Eligible reports whether the status puts the subscription in scope for
// run assembly.
func (s Status) Eligible() bool {
	return s == StatusActive || s == StatusTrialing
}

// Subscription is a recurring collection agreement.
type Subscription struct {
	ID            string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	Postcode      string

	Frequency Frequency
	// AnchorDate is the reference date recurrence is computed from. The
	// effective anchor is the first RouteDay on or after this date.
	AnchorDate         time.Time
	NextCollectionDate *time.Time

	RouteDay  string
	RouteArea string
	RouteSlot routing.Slot
	// RouteOverride marks manually assigned route fields; rule changes do
	// not reapply over an override.
	RouteOverride bool

	Status    Status
	PauseFrom *time.Time
	PauseTo   *time.Time

	StripeCustomerID     *string
	StripeSubscriptionID *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CollectionRecord is one confirmed collection of a subscription. The
// (subscription, date) pair is unique, which is what makes marking a
// collection idempotent under concurrent driver taps.
type CollectionRecord struct {
	ID             string
	SubscriptionID string
	CollectionDate time.Time
	RunID          *string
	CollectedAt    time.Time
}
