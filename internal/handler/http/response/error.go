package response

import (
	"errors"
	"net/http"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/domain/notification"
	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/domain/run"
	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/pkg/stripe"
	"github.com/clearway/collections-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Routing domain errors
	case errors.Is(err, routing.ErrRouteRuleNotFound):
		NotFound(w, "Route rule not found")
	case errors.Is(err, routing.ErrRuleExists):
		Conflict(w, "A rule for this prefix, day and slot already exists")

	// Subscription domain errors
	case errors.Is(err, subscription.ErrSubscriptionNotFound):
		NotFound(w, "Subscription not found")
	case errors.Is(err, subscription.ErrNotEligible):
		Conflict(w, "Subscription is not active or trialing")
	case errors.Is(err, subscription.ErrInvalidPauseWindow):
		BadRequest(w, "Pause window end is before its start", nil)
	case errors.Is(err, subscription.ErrNotCollected):
		Conflict(w, "No collection recorded for this date")

	// Booking domain errors
	case errors.Is(err, booking.ErrBookingNotFound):
		NotFound(w, "Booking not found")
	case errors.Is(err, booking.ErrAlreadyCancelled):
		Conflict(w, "Booking is cancelled")
	case errors.Is(err, booking.ErrEmptyBasket):
		BadRequest(w, "Booking has no items", nil)

	// Run domain errors
	case errors.Is(err, run.ErrRunNotFound):
		NotFound(w, "Run not found")
	case errors.Is(err, run.ErrRunExists):
		Conflict(w, "A run already exists for this date, area, day and slot")
	case errors.Is(err, run.ErrOptimizerNotConfigured):
		ServiceUnavailable(w, "Route optimization is not configured")
	case errors.Is(err, run.ErrOptimizerFailed):
		BadGateway(w, "Route optimization request failed")

	// Notification domain errors
	case errors.Is(err, notification.ErrNotificationNotFound):
		NotFound(w, "Notification not found")
	case errors.Is(err, notification.ErrInvalidPayload):
		BadRequest(w, "Invalid notification payload", nil)

	// Payments
	case errors.Is(err, stripe.ErrNotConfigured):
		ServiceUnavailable(w, "Payments are not configured")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
