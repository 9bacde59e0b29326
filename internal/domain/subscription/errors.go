package subscription

import "errors"

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotEligible          = errors.New("subscription is not eligible for collection")
	ErrInvalidPauseWindow   = errors.New("pause window end is before its start")
	ErrNotCollected         = errors.New("no collection recorded for this date")
)
