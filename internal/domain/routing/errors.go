package routing

import "errors"

var (
	ErrRouteRuleNotFound = errors.New("route rule not found")
	ErrRuleExists        = errors.New("route rule with this prefix, day and slot already exists")
)
