package routing

import (
	"context"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/pkg/database"
)

// RouteRuleService manages route rules and performs coverage checks.
type RouteRuleService interface {
	Create(ctx context.Context, req routing.CreateRouteRuleRequest) (routing.RouteRuleResponse, error)
	Get(ctx context.Context, id string) (routing.RouteRuleResponse, error)
	List(ctx context.Context) ([]routing.RouteRuleResponse, error)
	Update(ctx context.Context, id string, req routing.UpdateRouteRuleRequest) (routing.RouteRuleResponse, error)
	Delete(ctx context.Context, id string) error
	CheckPostcode(ctx context.Context, req routing.PostcodeCheckRequest) (routing.PostcodeCheckResponse, error)
}

type routeRuleServiceImpl struct {
	db       *database.DB
	ruleRepo routing.RouteRuleRepository
	matcher  *Matcher
}

func NewRouteRuleService(db *database.DB, ruleRepo routing.RouteRuleRepository, matcher *Matcher) RouteRuleService {
	return &routeRuleServiceImpl{
		db:       db,
		ruleRepo: ruleRepo,
		matcher:  matcher,
	}
}

func (s *routeRuleServiceImpl) Create(ctx context.Context, req routing.CreateRouteRuleRequest) (routing.RouteRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return routing.RouteRuleResponse{}, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule := routing.RouteRule{
		Prefix:    routing.NormalizePostcode(req.Prefix),
		PrefixKey: routing.PrefixKey(req.Prefix),
		RouteDay:  req.RouteDay,
		RouteArea: req.RouteArea,
		Slot:      routing.Slot(req.Slot),
		Active:    active,
	}

	created, err := s.ruleRepo.Create(ctx, rule)
	if err != nil {
		return routing.RouteRuleResponse{}, err
	}
	return created.ToResponse(), nil
}

func (s *routeRuleServiceImpl) Get(ctx context.Context, id string) (routing.RouteRuleResponse, error) {
	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return routing.RouteRuleResponse{}, err
	}
	return rule.ToResponse(), nil
}

func (s *routeRuleServiceImpl) List(ctx context.Context) ([]routing.RouteRuleResponse, error) {
	rules, err := s.ruleRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	resp := make([]routing.RouteRuleResponse, len(rules))
	for i := range rules {
		resp[i] = rules[i].ToResponse()
	}
	return resp, nil
}

func (s *routeRuleServiceImpl) Update(ctx context.Context, id string, req routing.UpdateRouteRuleRequest) (routing.RouteRuleResponse, error) {
	if err := req.Validate(); err != nil {
		return routing.RouteRuleResponse{}, err
	}

	rule, err := s.ruleRepo.GetByID(ctx, id)
	if err != nil {
		return routing.RouteRuleResponse{}, err
	}

	if req.Prefix != nil {
		rule.Prefix = routing.NormalizePostcode(*req.Prefix)
		rule.PrefixKey = routing.PrefixKey(*req.Prefix)
	}
	if req.RouteDay != nil {
		rule.RouteDay = *req.RouteDay
	}
	if req.RouteArea != nil {
		rule.RouteArea = *req.RouteArea
	}
	if req.Slot != nil {
		rule.Slot = routing.Slot(*req.Slot)
	}
	if req.Active != nil {
		rule.Active = *req.Active
	}

	updated, err := s.ruleRepo.Update(ctx, rule)
	if err != nil {
		return routing.RouteRuleResponse{}, err
	}
	return updated.ToResponse(), nil
}

func (s *routeRuleServiceImpl) Delete(ctx context.Context, id string) error {
	return s.ruleRepo.Delete(ctx, id)
}

func (s *routeRuleServiceImpl) CheckPostcode(ctx context.Context, req routing.PostcodeCheckRequest) (routing.PostcodeCheckResponse, error) {
	if err := req.Validate(); err != nil {
		return routing.PostcodeCheckResponse{}, err
	}

	rules, err := s.ruleRepo.ListActive(ctx)
	if err != nil {
		return routing.PostcodeCheckResponse{}, err
	}

	result := s.matcher.Match(req.Postcode, rules)
	return result.ToResponse(), nil
}
