package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/clearway/collections-backend-go/internal/domain/booking"
	"github.com/clearway/collections-backend-go/internal/handler/http/response"
	bookingService "github.com/clearway/collections-backend-go/internal/service/booking"
)

type BookingHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	Cancel(w http.ResponseWriter, r *http.Request)
	Complete(w http.ResponseWriter, r *http.Request)
	Uncomplete(w http.ResponseWriter, r *http.Request)
}

type bookingHandlerImpl struct {
	bookingService bookingService.BookingService
}

func NewBookingHandler(svc bookingService.BookingService) BookingHandler {
	return &bookingHandlerImpl{bookingService: svc}
}

// List implements BookingHandler.
func (h *bookingHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var statuses []string
	if raw := r.URL.Query().Get("status"); raw != "" {
		statuses = strings.Split(raw, ",")
	}

	bookings, err := h.bookingService.List(r.Context(), statuses)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, bookings)
}

// Create implements BookingHandler. Public: the storefront posts here
// after a successful postcode check.
func (h *bookingHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req booking.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.bookingService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Booking created successfully"
	if result.Notification.Err != nil {
		slog.Error("Failed to queue booking confirmation email",
			"booking_id", result.Booking.ID,
			"error", result.Notification.Err,
		)
	}
	response.Created(w, message, result.Booking)
}

// GetByID implements BookingHandler.
func (h *bookingHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookingService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, b)
}

// Update implements BookingHandler.
func (h *bookingHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req booking.UpdateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	b, err := h.bookingService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Booking updated successfully", b)
}

// Delete implements BookingHandler.
func (h *bookingHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.bookingService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Booking deleted successfully", nil)
}

// Cancel implements BookingHandler.
func (h *bookingHandlerImpl) Cancel(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookingService.Cancel(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Booking cancelled", b)
}

// Complete implements BookingHandler.
func (h *bookingHandlerImpl) Complete(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookingService.Complete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Booking marked as completed", b)
}

// Uncomplete implements BookingHandler.
func (h *bookingHandlerImpl) Uncomplete(w http.ResponseWriter, r *http.Request) {
	b, err := h.bookingService.Uncomplete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Booking completion cleared", b)
}
