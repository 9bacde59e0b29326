package booking

import "errors"

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrAlreadyCancelled = errors.New("booking is cancelled")
	ErrEmptyBasket      = errors.New("booking has no items")
)
