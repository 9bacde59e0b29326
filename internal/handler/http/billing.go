package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearway/collections-backend-go/internal/handler/http/response"
	"github.com/clearway/collections-backend-go/internal/service/billing"
)

// Stripe webhook bodies are small; the cap guards against a broken or
// hostile client streaming an unbounded body.
const maxWebhookBodyBytes = 1 << 16

type BillingHandler interface {
	BookingCheckout(w http.ResponseWriter, r *http.Request)
	SubscriptionCheckout(w http.ResponseWriter, r *http.Request)
	Webhook(w http.ResponseWriter, r *http.Request)
}

type billingHandlerImpl struct {
	billingService billing.BillingService
}

func NewBillingHandler(svc billing.BillingService) BillingHandler {
	return &billingHandlerImpl{billingService: svc}
}

// BookingCheckout implements BillingHandler.
func (h *billingHandlerImpl) BookingCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.billingService.CreateBookingCheckout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// SubscriptionCheckout implements BillingHandler.
func (h *billingHandlerImpl) SubscriptionCheckout(w http.ResponseWriter, r *http.Request) {
	result, err := h.billingService.CreateSubscriptionCheckout(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}

// Webhook implements BillingHandler. Stripe retries non-2xx responses, so
// processing failures return 500 while signature failures return 400 to
// stop retries of a request that can never verify.
func (h *billingHandlerImpl) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodyBytes))
	if err != nil {
		response.BadRequest(w, "Failed to read request body", nil)
		return
	}

	if err := h.billingService.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		if errors.Is(err, billing.ErrInvalidSignature) {
			response.BadRequest(w, "Invalid webhook signature", nil)
			return
		}
		slog.Error("Stripe webhook processing failed", "error", err)
		response.InternalServerError(w, "Webhook processing failed")
		return
	}

	w.WriteHeader(http.StatusOK)
}
