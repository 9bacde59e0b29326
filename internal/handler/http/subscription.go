package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clearway/collections-backend-go/internal/domain/subscription"
	"github.com/clearway/collections-backend-go/internal/handler/http/response"
	"github.com/clearway/collections-backend-go/internal/service/schedule"
	subscriptionService "github.com/clearway/collections-backend-go/internal/service/subscription"
)

type SubscriptionHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	Pause(w http.ResponseWriter, r *http.Request)
	Resume(w http.ResponseWriter, r *http.Request)
	Cancel(w http.ResponseWriter, r *http.Request)

	ConfirmCollection(w http.ResponseWriter, r *http.Request)
	UndoCollection(w http.ResponseWriter, r *http.Request)

	DueThisWeek(w http.ResponseWriter, r *http.Request)
}

type subscriptionHandlerImpl struct {
	subService subscriptionService.SubscriptionService
	calc       *schedule.Calculator
}

func NewSubscriptionHandler(subService subscriptionService.SubscriptionService, calc *schedule.Calculator) SubscriptionHandler {
	return &subscriptionHandlerImpl{subService: subService, calc: calc}
}

// List implements SubscriptionHandler. Statuses filter via
// ?status=active,trialing.
func (h *subscriptionHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var statuses []string
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}

	subs, err := h.subService.List(r.Context(), statuses)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, subs)
}

// Create implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req subscription.CreateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	sub, err := h.subService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Subscription created successfully", sub)
}

// GetByID implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, sub)
}

// Update implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req subscription.UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	sub, err := h.subService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Subscription updated successfully", sub)
}

// Delete implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.subService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Subscription deleted successfully", nil)
}

// Pause implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) Pause(w http.ResponseWriter, r *http.Request) {
	var req subscription.PauseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	sub, err := h.subService.Pause(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Subscription paused", sub)
}

// Resume implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) Resume(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subService.Resume(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Subscription resumed", sub)
}

// Cancel implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Subscription cancelled", sub)
}

// ConfirmCollection implements SubscriptionHandler. The confirmation
// succeeds even when the follow-up email cannot be queued; the message
// tells staff which of the two happened.
func (h *subscriptionHandlerImpl) ConfirmCollection(w http.ResponseWriter, r *http.Request) {
	var req subscription.ConfirmCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.subService.ConfirmCollection(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Collection confirmed"
	if result.Notification.Err != nil {
		slog.Error("Failed to queue collection confirmation email",
			"subscription_id", chi.URLParam(r, "id"),
			"error", result.Notification.Err,
		)
		message = "Collection confirmed, but the confirmation email could not be queued"
	}
	response.SuccessWithMessage(w, message, result.Subscription)
}

// UndoCollection implements SubscriptionHandler.
func (h *subscriptionHandlerImpl) UndoCollection(w http.ResponseWriter, r *http.Request) {
	var req subscription.ConfirmCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	sub, err := h.subService.UndoCollection(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Collection undone", sub)
}

// DueThisWeek implements SubscriptionHandler. Accepts ?week_start=YYYY-MM-DD;
// defaults to the most recent Monday.
func (h *subscriptionHandlerImpl) DueThisWeek(w http.ResponseWriter, r *http.Request) {
	weekStart := h.calc.Today()
	for weekStart.Weekday() != time.Monday {
		weekStart = weekStart.AddDate(0, 0, -1)
	}

	if raw := r.URL.Query().Get("week_start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "week_start must be a date in YYYY-MM-DD format", nil)
			return
		}
		weekStart = parsed
	}

	subs, err := h.subService.ListDueInWeek(r.Context(), weekStart)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, subs)
}
