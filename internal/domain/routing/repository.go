package routing

import "context"

// RouteRuleRepository persists route rules.
type RouteRuleRepository interface {
	Create(ctx context.Context, rule RouteRule) (RouteRule, error)
	GetByID(ctx context.Context, id string) (RouteRule, error)
	List(ctx context.Context) ([]RouteRule, error)
	ListActive(ctx context.Context) ([]RouteRule, error)
	Update(ctx context.Context, rule RouteRule) (RouteRule, error)
	Delete(ctx context.Context, id string) error
}
