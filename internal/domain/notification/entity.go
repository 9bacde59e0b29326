package notification

import (
	"encoding/json"
	"time"
)

// Type tags the event payload carried by a queue item.
type Type string

const (
	TypeBookingConfirmed    Type = "booking_confirmed"
	TypeCollectionCompleted Type = "collection_completed"
	TypeCollectionReminder  Type = "collection_reminder"
	TypePaymentFailed       Type = "payment_failed"
)

func AllTypes() []Type {
	return []Type{
		TypeBookingConfirmed,
		TypeCollectionCompleted,
		TypeCollectionReminder,
		TypePaymentFailed,
	}
}

// Status of a queue item.
type Status string

const (
	StatusPending Status = "pending"
	StatusSent    Status = "sent"
	StatusFailed  Status = "failed"
)

// Payload is the typed event body behind a queue item. Each event type has
// its own struct, validated before the item is queued; free-form maps never
// travel through the pipeline.
type Payload interface {
	NotificationType() Type
	Validate() error
}

// BookingConfirmedPayload mails the storefront confirmation.
type BookingConfirmedPayload struct {
	BookingID    string `json:"booking_id"`
	CustomerName string `json:"customer_name"`
	ServiceDate  string `json:"service_date"`
	Total        string `json:"total"`
}

// CollectionCompletedPayload confirms a subscription collection.
type CollectionCompletedPayload struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerName   string `json:"customer_name"`
	CollectionDate string `json:"collection_date"`
	NextCollection string `json:"next_collection,omitempty"`
}

// CollectionReminderPayload reminds a customer the day before a collection.
type CollectionReminderPayload struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerName   string `json:"customer_name"`
	CollectionDate string `json:"collection_date"`
	Slot           string `json:"slot,omitempty"`
}

// PaymentFailedPayload tells a customer their renewal payment failed.
type PaymentFailedPayload struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerName   string `json:"customer_name"`
}

// QueueItem is one pending outbound notification. Items are inserted by
// business operations on a best-effort basis and drained by a background
// job; a failed insert never fails the operation that produced it.
type QueueItem struct {
	ID        string
	Type      Type
	Recipient string
	Payload   json.RawMessage
	Status    Status
	Attempts  int
	LastError *string
	CreatedAt time.Time
	SentAt    *time.Time
}
