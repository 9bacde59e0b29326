package run

import "errors"

var (
	ErrRunNotFound            = errors.New("daily run not found")
	ErrRunExists              = errors.New("a run already exists for this date, area, day and slot")
	ErrOptimizerNotConfigured = errors.New("route optimizer is not configured")
	ErrOptimizerFailed        = errors.New("route optimizer request failed")
)
