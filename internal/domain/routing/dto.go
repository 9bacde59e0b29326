package routing

import (
	"strings"

	"github.com/clearway/collections-backend-go/internal/pkg/validator"
)

type CreateRouteRuleRequest struct {
	Prefix    string `json:"prefix"`
	RouteDay  string `json:"route_day"`
	RouteArea string `json:"route_area"`
	Slot      string `json:"slot"`
	Active    *bool  `json:"active"`
}

func (r *CreateRouteRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Prefix) {
		errs = append(errs, validator.ValidationError{
			Field:   "prefix",
			Message: "prefix is required",
		})
	}
	if !validator.IsInSlice(r.RouteDay, WeekdayValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "route_day",
			Message: "route_day must be one of: " + strings.Join(WeekdayValues, ", "),
		})
	}
	if validator.IsEmpty(r.RouteArea) {
		errs = append(errs, validator.ValidationError{
			Field:   "route_area",
			Message: "route_area is required",
		})
	}
	if r.Slot == "" {
		r.Slot = string(SlotAny)
	}
	if !validator.IsInSlice(r.Slot, SlotValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "slot",
			Message: "slot must be one of: " + strings.Join(SlotValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateRouteRuleRequest struct {
	Prefix    *string `json:"prefix"`
	RouteDay  *string `json:"route_day"`
	RouteArea *string `json:"route_area"`
	Slot      *string `json:"slot"`
	Active    *bool   `json:"active"`
}

func (r *UpdateRouteRuleRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Prefix != nil && validator.IsEmpty(*r.Prefix) {
		errs = append(errs, validator.ValidationError{
			Field:   "prefix",
			Message: "prefix must not be empty",
		})
	}
	if r.RouteDay != nil && !validator.IsInSlice(*r.RouteDay, WeekdayValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "route_day",
			Message: "route_day must be one of: " + strings.Join(WeekdayValues, ", "),
		})
	}
	if r.RouteArea != nil && validator.IsEmpty(*r.RouteArea) {
		errs = append(errs, validator.ValidationError{
			Field:   "route_area",
			Message: "route_area must not be empty",
		})
	}
	if r.Slot != nil && !validator.IsInSlice(*r.Slot, SlotValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "slot",
			Message: "slot must be one of: " + strings.Join(SlotValues, ", "),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PostcodeCheckRequest struct {
	Postcode string `json:"postcode"`
}

func (r *PostcodeCheckRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Postcode) {
		errs = append(errs, validator.ValidationError{
			Field:   "postcode",
			Message: "postcode is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RouteRuleResponse struct {
	ID        string `json:"id"`
	Prefix    string `json:"prefix"`
	RouteDay  string `json:"route_day"`
	RouteArea string `json:"route_area"`
	Slot      string `json:"slot"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func (r *RouteRule) ToResponse() RouteRuleResponse {
	return RouteRuleResponse{
		ID:        r.ID,
		Prefix:    r.Prefix,
		RouteDay:  r.RouteDay,
		RouteArea: r.RouteArea,
		Slot:      string(r.Slot),
		Active:    r.Active,
		CreatedAt: r.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: r.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type PostcodeCheckResponse struct {
	InArea             bool                `json:"in_area"`
	NormalizedPostcode string              `json:"normalized_postcode"`
	Matches            []RouteRuleResponse `json:"matches"`
	Default            *RouteRuleResponse  `json:"default,omitempty"`
}

func (m *MatchResult) ToResponse() PostcodeCheckResponse {
	matches := make([]RouteRuleResponse, len(m.Matches))
	for i := range m.Matches {
		matches[i] = m.Matches[i].ToResponse()
	}

	resp := PostcodeCheckResponse{
		InArea:             m.InArea,
		NormalizedPostcode: m.NormalizedPostcode,
		Matches:            matches,
	}
	if m.Default != nil {
		d := m.Default.ToResponse()
		resp.Default = &d
	}
	return resp
}
