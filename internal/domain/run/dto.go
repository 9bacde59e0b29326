package run

import (
	"strings"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/pkg/validator"
)

type CreateRunRequest struct {
	RunDate   string `json:"run_date"` // YYYY-MM-DD
	RouteDay  string `json:"route_day"`
	RouteArea string `json:"route_area"`
	Slot      string `json:"slot"`
	Vehicle   string `json:"vehicle"`
	Crew      string `json:"crew"`
	Notes     string `json:"notes"`
}

func (r *CreateRunRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.RunDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "run_date", Message: "run_date must be a date in YYYY-MM-DD format"})
	}
	if !validator.IsInSlice(r.RouteDay, routing.WeekdayValues) {
		errs = append(errs, validator.ValidationError{Field: "route_day", Message: "route_day must be one of: " + strings.Join(routing.WeekdayValues, ", ")})
	}
	if validator.IsEmpty(r.RouteArea) {
		errs = append(errs, validator.ValidationError{Field: "route_area", Message: "route_area is required"})
	}
	if r.Slot == "" {
		r.Slot = string(routing.SlotAny)
	}
	if !validator.IsInSlice(r.Slot, routing.SlotValues) {
		errs = append(errs, validator.ValidationError{Field: "slot", Message: "slot must be one of: " + strings.Join(routing.SlotValues, ", ")})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRunRequest struct {
	Vehicle *string `json:"vehicle"`
	Crew    *string `json:"crew"`
	Notes   *string `json:"notes"`
}

type OptimizeRequest struct {
	// Origin and Destination are free-form addresses. With an origin the
	// whole run is optimized as a round trip; without one the current first
	// and last stops stay fixed and only the middle is reordered.
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
}

type StopResponse struct {
	Type          string  `json:"type"`
	ID            string  `json:"id"`
	CustomerName  string  `json:"customer_name"`
	Address       string  `json:"address"`
	Postcode      string  `json:"postcode"`
	Slot          string  `json:"slot"`
	Collected     bool    `json:"collected"`
	CompletedAt   *string `json:"completed_at,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
}

func (s Stop) ToResponse() StopResponse {
	resp := StopResponse{
		Type:          string(s.Type),
		ID:            s.ID,
		CustomerName:  s.CustomerName,
		Address:       s.Address,
		Postcode:      s.Postcode,
		Slot:          string(s.Slot),
		Collected:     s.Collected,
		CustomerPhone: s.CustomerPhone,
	}
	if s.CompletedAt != nil {
		t := s.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &t
	}
	return resp
}

type RunResponse struct {
	ID        string    `json:"id"`
	RunDate   string    `json:"run_date"`
	RouteDay  string    `json:"route_day"`
	RouteArea string    `json:"route_area"`
	Slot      string    `json:"slot"`
	Vehicle   string    `json:"vehicle,omitempty"`
	Crew      string    `json:"crew,omitempty"`
	StopOrder []StopRef `json:"stop_order,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt string    `json:"created_at"`
	UpdatedAt string    `json:"updated_at"`
}

func (r *DailyRun) ToResponse() RunResponse {
	return RunResponse{
		ID:        r.ID,
		RunDate:   r.RunDate.Format("2006-01-02"),
		RouteDay:  r.RouteDay,
		RouteArea: r.RouteArea,
		Slot:      string(r.Slot),
		Vehicle:   r.Vehicle,
		Crew:      r.Crew,
		StopOrder: r.StopOrder,
		Notes:     r.Notes,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type OptimizeResponse struct {
	StopOrder []StopRef `json:"stop_order"`
	Truncated bool      `json:"truncated"`
}
