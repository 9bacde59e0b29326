package booking

import (
	"strings"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type ItemRequest struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type CreateBookingRequest struct {
	CustomerName  string        `json:"customer_name"`
	CustomerEmail string        `json:"customer_email"`
	CustomerPhone string        `json:"customer_phone"`
	Address       string        `json:"address"`
	Postcode      string        `json:"postcode"`
	ServiceDate   string        `json:"service_date"` // YYYY-MM-DD
	Items         []ItemRequest `json:"items"`

	RouteDay  *string `json:"route_day"`
	RouteArea *string `json:"route_area"`
	RouteSlot *string `json:"route_slot"`
}

func (r *CreateBookingRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CustomerName) {
		errs = append(errs, validator.ValidationError{Field: "customer_name", Message: "customer_name is required"})
	}
	if validator.IsEmpty(r.CustomerEmail) {
		errs = append(errs, validator.ValidationError{Field: "customer_email", Message: "customer_email is required"})
	} else if !validator.IsValidEmail(r.CustomerEmail) {
		errs = append(errs, validator.ValidationError{Field: "customer_email", Message: "customer_email must be a valid email address"})
	}
	if validator.IsEmpty(r.Address) {
		errs = append(errs, validator.ValidationError{Field: "address", Message: "address is required"})
	}
	if validator.IsEmpty(r.Postcode) {
		errs = append(errs, validator.ValidationError{Field: "postcode", Message: "postcode is required"})
	} else if !validator.IsValidPostcode(r.Postcode) {
		errs = append(errs, validator.ValidationError{Field: "postcode", Message: "postcode must be a valid UK postcode"})
	}
	if _, ok := validator.IsValidDate(r.ServiceDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "service_date", Message: "service_date must be a date in YYYY-MM-DD format"})
	}
	if len(r.Items) == 0 {
		errs = append(errs, validator.ValidationError{Field: "items", Message: "at least one item is required"})
	}
	for _, it := range r.Items {
		if validator.IsEmpty(it.Name) || it.Quantity < 1 || it.UnitPrice.IsNegative() {
			errs = append(errs, validator.ValidationError{Field: "items", Message: "each item needs a name, a positive quantity and a non-negative unit_price"})
			break
		}
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

type UpdateBookingRequest struct {
	CustomerName  *string `json:"customer_name"`
	CustomerEmail *string `json:"customer_email"`
	CustomerPhone *string `json:"customer_phone"`
	Address       *string `json:"address"`
	Postcode      *string `json:"postcode"`
	ServiceDate   *string `json:"service_date"`
	Status        *string `json:"status"`
	RouteDay      *string `json:"route_day"`
	RouteArea     *string `json:"route_area"`
	RouteSlot     *string `json:"route_slot"`
}

func (r *UpdateBookingRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CustomerEmail != nil && !validator.IsValidEmail(*r.CustomerEmail) {
		errs = append(errs, validator.ValidationError{Field: "customer_email", Message: "customer_email must be a valid email address"})
	}
	if r.Postcode != nil && !validator.IsValidPostcode(*r.Postcode) {
		errs = append(errs, validator.ValidationError{Field: "postcode", Message: "postcode must be a valid UK postcode"})
	}
	if r.ServiceDate != nil {
		if _, ok := validator.IsValidDate(*r.ServiceDate); !ok {
			errs = append(errs, validator.ValidationError{Field: "service_date", Message: "service_date must be a date in YYYY-MM-DD format"})
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

type ItemResponse struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type BookingResponse struct {
	ID            string          `json:"id"`
	CustomerName  string          `json:"customer_name"`
	CustomerEmail string          `json:"customer_email"`
	CustomerPhone string          `json:"customer_phone,omitempty"`
	Address       string          `json:"address"`
	Postcode      string          `json:"postcode"`
	ServiceDate   *string         `json:"service_date,omitempty"`
	RouteDay      string          `json:"route_day"`
	RouteArea     string          `json:"route_area"`
	RouteSlot     string          `json:"route_slot"`
	Status        string          `json:"status"`
	Items         []ItemResponse  `json:"items"`
	Total         decimal.Decimal `json:"total"`
	CompletedAt   *string         `json:"completed_at,omitempty"`
	CreatedAt     string          `json:"created_at"`
	UpdatedAt     string          `json:"updated_at"`
}

func (b *Booking) ToResponse() BookingResponse {
	items := make([]ItemResponse, len(b.Items))
	for i, it := range b.Items {
		items[i] = ItemResponse{Name: it.Name, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}

	resp := BookingResponse{
		ID:            b.ID,
		CustomerName:  b.CustomerName,
		CustomerEmail: b.CustomerEmail,
		CustomerPhone: b.CustomerPhone,
		Address:       b.Address,
		Postcode:      b.Postcode,
		RouteDay:      b.RouteDay,
		RouteArea:     b.RouteArea,
		RouteSlot:     string(b.RouteSlot),
		Status:        string(b.Status),
		Items:         items,
		Total:         b.Total,
		CreatedAt:     b.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:     b.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if due := b.DueDate(); due != nil {
		d := due.Format("2006-01-02")
		resp.ServiceDate = &d
	}
	if b.CompletedAt != nil {
		t := b.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
		resp.CompletedAt = &t
	}
	return resp
}
