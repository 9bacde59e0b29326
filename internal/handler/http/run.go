package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clearway/collections-backend-go/internal/domain/run"
	"github.com/clearway/collections-backend-go/internal/handler/http/response"
	runService "github.com/clearway/collections-backend-go/internal/service/run"
)

type RunHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	Stops(w http.ResponseWriter, r *http.Request)
	Optimize(w http.ResponseWriter, r *http.Request)
}

type runHandlerImpl struct {
	runService runService.RunService
}

func NewRunHandler(svc runService.RunService) RunHandler {
	return &runHandlerImpl{runService: svc}
}

// List implements RunHandler. Accepts ?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *runHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	var from, to *time.Time

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "from must be a date in YYYY-MM-DD format", nil)
			return
		}
		from = &parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "to must be a date in YYYY-MM-DD format", nil)
			return
		}
		to = &parsed
	}

	runs, err := h.runService.List(r.Context(), from, to)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, runs)
}

// Create implements RunHandler.
func (h *runHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req run.CreateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	created, err := h.runService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Run created successfully", created)
}

// GetByID implements RunHandler.
func (h *runHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	dr, err := h.runService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, dr)
}

// Update implements RunHandler.
func (h *runHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req run.UpdateRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	dr, err := h.runService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Run updated successfully", dr)
}

// Delete implements RunHandler.
func (h *runHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.runService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Run deleted successfully", nil)
}

// Stops implements RunHandler. Returns the ordered stop list assembled
// from due subscriptions and dated bookings.
func (h *runHandlerImpl) Stops(w http.ResponseWriter, r *http.Request) {
	stops, err := h.runService.Stops(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, stops)
}

// Optimize implements RunHandler.
func (h *runHandlerImpl) Optimize(w http.ResponseWriter, r *http.Request) {
	var req run.OptimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	result, err := h.runService.Optimize(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	message := "Stop order optimized"
	if result.Truncated {
		message = "Stop order optimized; the run exceeds the optimizer waypoint limit, so trailing stops kept their original order"
	}
	response.SuccessWithMessage(w, message, result)
}
