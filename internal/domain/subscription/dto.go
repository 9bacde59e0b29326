package subscription

import (
	"strings"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/pkg/validator"
)

type CreateSubscriptionRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	Address       string `json:"address"`
	Postcode      string `json:"postcode"`
	Frequency     string `json:"frequency"`
	AnchorDate    string `json:"anchor_date"` // YYYY-MM-DD

	// Optional manual route assignment. Setting any of these marks the
	// subscription as route-overridden.
	RouteDay  *string `json:"route_day"`
	RouteArea *string `json:"route_area"`
	RouteSlot *string `json:"route_slot"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CustomerName) {
		errs = append(errs, validator.ValidationError{Field: "customer_name", Message: "customer_name is required"})
	}
	if validator.IsEmpty(r.CustomerEmail) {
		errs = append(errs, validator.ValidationError{Field: "customer_email", Message: "customer_email is required"})
	} else if !validator.IsValidEmail(r.CustomerEmail) {
		errs = append(errs, validator.ValidationError{Field: "customer_email", Message: "customer_email must be a valid email address"})
	}
	if !validator.IsEmpty(r.CustomerPhone) && !validator.IsValidPhoneNumber(r.CustomerPhone) {
		errs = append(errs, validator.ValidationError{Field: "customer_phone", Message: "customer_phone must be a valid UK phone number"})
	}
	if validator.IsEmpty(r.Address) {
		errs = append(errs, validator.ValidationError{Field: "address", Message: "address is required"})
	}
	if validator.IsEmpty(r.Postcode) {
		errs = append(errs, validator.ValidationError{Field: "postcode", Message: "postcode is required"})
	} else if !validator.IsValidPostcode(r.Postcode) {
		errs = append(errs, validator.ValidationError{Field: "postcode", Message: "postcode must be a valid UK postcode"})
	}
	if !validator.IsInSlice(r.Frequency, FrequencyValues) {
		errs = append(errs, validator.ValidationError{Field: "frequency", Message: "frequency must be one of: " + strings.Join(FrequencyValues, ", ")})
	}
	if _, ok := validator.IsValidDate(r.AnchorDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "anchor_date", Message: "anchor_date must be a date in YYYY-MM-DD format"})
	}
	if r.RouteDay != nil && !validator.IsInSlice(*r.RouteDay, routing.WeekdayValues) {
		errs = append(errs, validator.ValidationError{Field: "route_day", Message: "route_day must be one of: " + strings.Join(routing.WeekdayValues, ", ")})
	}
	if r.RouteSlot != nil && !validator.IsInSlice(*r.RouteSlot, routing.SlotValues) {
		errs = append(errs, validator.ValidationError{Field: "route_slot", Message: "route_slot must be one of: " + strings.Join(routing.SlotValues, ", ")})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateSubscriptionRequest struct {
	CustomerName  *string `json:"customer_name"`
	CustomerEmail *string `json:"customer_email"`
	CustomerPhone *string `json:"customer_phone"`
	Address       *string `json:"address"`
	Postcode      *string `json:"postcode"`
	Frequency     *string `json:"frequency"`
	AnchorDate    *string `json:"anchor_date"`
	Status        *string `json:"status"`
	RouteDay      *string `json:"route_day"`
	RouteArea     *string `json:"route_area"`
	RouteSlot     *string `json:"route_slot"`
	RouteOverride *bool   `json:"route_override"`
}

func (r *UpdateSubscriptionRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CustomerEmail != nil && !validator.IsValidEmail(*r.CustomerEmail) {
		errs = append(errs, validator.ValidationError{Field: "customer_email", Message: "customer_email must be a valid email address"})
	}
	if r.Postcode != nil && !validator.IsValidPostcode(*r.Postcode) {
		errs = append(errs, validator.ValidationError{Field: "postcode", Message: "postcode must be a valid UK postcode"})
	}
	if r.Frequency != nil && !validator.IsInSlice(*r.Frequency, FrequencyValues) {
		errs = append(errs, validator.ValidationError{Field: "frequency", Message: "frequency must be one of: " + strings.Join(FrequencyValues, ", ")})
	}
	if r.AnchorDate != nil {
		if _, ok := validator.IsValidDate(*r.AnchorDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "anchor_date", Message: "anchor_date must be a date in YYYY-MM-DD format"})
		}
	}
	if r.Status != nil && !validator.IsInSlice(*r.Status, StatusValues) {
		errs = append(errs, validator.ValidationError{Field: "status", Message: "status must be one of: " + strings.Join(StatusValues, ", ")})
	}
	if r.RouteDay != nil && !validator.IsInSlice(*r.RouteDay, routing.WeekdayValues) {
		errs = append(errs, validator.ValidationError{Field: "route_day", Message: "route_day must be one of: " + strings.Join(routing.WeekdayValues, ", ")})
	}
	if r.RouteSlot != nil && !validator.IsInSlice(*r.RouteSlot, routing.SlotValues) {
		errs = append(errs, validator.ValidationError{Field: "route_slot", Message: "route_slot must be one of: " + strings.Join(routing.SlotValues, ", ")})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PauseRequest struct {
	PauseFrom string `json:"pause_from"` // YYYY-MM-DD
	PauseTo   string `json:"pause_to"`   // YYYY-MM-DD, may be empty for open-ended
}

func (r *PauseRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.PauseFrom); !ok {
		errs = append(errs, validator.ValidationError{Field: "pause_from", Message: "pause_from must be a date in YYYY-MM-DD format"})
	}
	if r.PauseTo != "" {
		if _, ok := validator.IsValidDate(r.PauseTo); !ok {
			errs = append(errs, validator.ValidationError{Field: "pause_to", Message: "pause_to must be a date in YYYY-MM-DD format"})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ConfirmCollectionRequest struct {
	CollectionDate string  `json:"collection_date"` // YYYY-MM-DD
	RunID          *string `json:"run_id"`
}

func (r *ConfirmCollectionRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.CollectionDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "collection_date", Message: "collection_date must be a date in YYYY-MM-DD format"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SubscriptionResponse struct {
	ID                 string  `json:"id"`
	CustomerName       string  `json:"customer_name"`
	CustomerEmail      string  `json:"customer_email"`
	CustomerPhone      string  `json:"customer_phone,omitempty"`
	Address            string  `json:"address"`
	Postcode           string  `json:"postcode"`
	Frequency          string  `json:"frequency"`
	AnchorDate         string  `json:"anchor_date"`
	NextCollectionDate *string `json:"next_collection_date,omitempty"`
	RouteDay           string  `json:"route_day"`
	RouteArea          string  `json:"route_area"`
	RouteSlot          string  `json:"route_slot"`
	RouteOverride      bool    `json:"route_override"`
	Status             string  `json:"status"`
	PauseFrom          *string `json:"pause_from,omitempty"`
	PauseTo            *string `json:"pause_to,omitempty"`
	CreatedAt          string  `json:"created_at"`
	UpdatedAt          string  `json:"updated_at"`
}

func (s *Subscription) ToResponse() SubscriptionResponse {
	resp := SubscriptionResponse{
		ID:            s.ID,
		CustomerName:  s.CustomerName,
		CustomerEmail: s.CustomerEmail,
		CustomerPhone: s.CustomerPhone,
		Address:       s.Address,
		Postcode:      s.Postcode,
		Frequency:     string(s.Frequency),
		AnchorDate:    s.AnchorDate.Format("2006-01-02"),
		RouteDay:      s.RouteDay,
		RouteArea:     s.RouteArea,
		RouteSlot:     string(s.RouteSlot),
		RouteOverride: s.RouteOverride,
		Status:        string(s.Status),
		CreatedAt:     s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if s.NextCollectionDate != nil {
		d := s.NextCollectionDate.Format("2006-01-02")
		resp.NextCollectionDate = &d
	}
	if s.PauseFrom != nil {
		d := s.PauseFrom.Format("2006-01-02")
		resp.PauseFrom = &d
	}
	if s.PauseTo != nil {
		d := s.PauseTo.Format("2006-01-02")
		resp.PauseTo = &d
	}
	return resp
}
