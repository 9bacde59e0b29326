package booking

import (
	"time"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/shopspring/decimal"
)

// Status of a one-off booking.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var StatusValues = []string{
	string(StatusPending),
	string(StatusConfirmed),
	string(StatusCompleted),
	string(StatusCancelled),
}

// Cancelled accepts both spellings; old storefront records carry "canceled".
func (s Status) Cancelled() bool {
	return s == StatusCancelled || s == "canceled"
}

// Item is one line of a booking's basket. Baskets are stored as a jsonb
// column, so the tags double as the storage format.
type Item struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Booking is a one-off collection job.
type Booking struct {
	ID            string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Address       string
	Postcode      string

	// ServiceDate is the planned collection date. CollectionDate is the
	// legacy storefront field; DueDate prefers ServiceDate when both exist.
	ServiceDate    *time.Time
	CollectionDate *time.Time

	RouteDay  string
	RouteArea string
	RouteSlot routing.Slot

	Status      Status
	Items       []Item
	Total       decimal.Decimal
	CompletedAt *time.Time

	StripeCheckoutSessionID *string
	StripePaymentIntentID   *string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DueDate returns the date the booking should be collected, or nil when
// neither date field is set.
func (b *Booking) DueDate() *time.Time {
	if b.ServiceDate != nil {
		return b.ServiceDate
	}
	return b.CollectionDate
}

// ItemTotal sums the basket lines.
func ItemTotal(items []Item) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}
