package notification

import (
	"encoding/json"
	"fmt"

	"github.com/clearway/collections-backend-go/internal/pkg/validator"
)

func (p BookingConfirmedPayload) NotificationType() Type { return TypeBookingConfirmed }

func (p BookingConfirmedPayload) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(p.BookingID) {
		errs = append(errs, validator.ValidationError{Field: "booking_id", Message: "booking_id is required"})
	}
	if validator.IsEmpty(p.CustomerName) {
		errs = append(errs, validator.ValidationError{Field: "customer_name", Message: "customer_name is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (p CollectionCompletedPayload) NotificationType() Type { return TypeCollectionCompleted }

func (p CollectionCompletedPayload) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(p.SubscriptionID) {
		errs = append(errs, validator.ValidationError{Field: "subscription_id", Message: "subscription_id is required"})
	}
	if _, ok := validator.IsValidDate(p.CollectionDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "collection_date", Message: "collection_date must be a date in YYYY-MM-DD format"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (p CollectionReminderPayload) NotificationType() Type { return TypeCollectionReminder }

func (p CollectionReminderPayload) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(p.SubscriptionID) {
		errs = append(errs, validator.ValidationError{Field: "subscription_id", Message: "subscription_id is required"})
	}
	if _, ok := validator.IsValidDate(p.CollectionDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "collection_date", Message: "collection_date must be a date in YYYY-MM-DD format"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (p PaymentFailedPayload) NotificationType() Type { return TypePaymentFailed }

func (p PaymentFailedPayload) Validate() error {
	var errs validator.ValidationErrors
	if validator.IsEmpty(p.SubscriptionID) {
		errs = append(errs, validator.ValidationError{Field: "subscription_id", Message: "subscription_id is required"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// DecodePayload parses a stored payload back into its typed form.
func DecodePayload(t Type, raw json.RawMessage) (Payload, error) {
	switch t {
	case TypeBookingConfirmed:
		var p BookingConfirmedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	case TypeCollectionCompleted:
		var p CollectionCompletedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	case TypeCollectionReminder:
		var p CollectionReminderPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	case TypePaymentFailed:
		var p PaymentFailedPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", t, err)
		}
		return p, nil
	}
	return nil, ErrInvalidType
}
