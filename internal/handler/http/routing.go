package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clearway/collections-backend-go/internal/domain/routing"
	"github.com/clearway/collections-backend-go/internal/handler/http/response"
	routingService "github.com/clearway/collections-backend-go/internal/service/routing"
)

// RouteRuleHandler manages route rules and the public coverage check.
type RouteRuleHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	GetByID(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	CheckPostcode(w http.ResponseWriter, r *http.Request)
}

type routeRuleHandlerImpl struct {
	ruleService routingService.RouteRuleService
}

func NewRouteRuleHandler(ruleService routingService.RouteRuleService) RouteRuleHandler {
	return &routeRuleHandlerImpl{ruleService: ruleService}
}

// List implements RouteRuleHandler.
func (h *routeRuleHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	rules, err := h.ruleService.List(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, rules)
}

// Create implements RouteRuleHandler.
func (h *routeRuleHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req routing.CreateRouteRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	rule, err := h.ruleService.Create(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Route rule created successfully", rule)
}

// GetByID implements RouteRuleHandler.
func (h *routeRuleHandlerImpl) GetByID(w http.ResponseWriter, r *http.Request) {
	rule, err := h.ruleService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, rule)
}

// Update implements RouteRuleHandler.
func (h *routeRuleHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req routing.UpdateRouteRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	rule, err := h.ruleService.Update(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Route rule updated successfully", rule)
}

// Delete implements RouteRuleHandler.
func (h *routeRuleHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ruleService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Route rule deleted successfully", nil)
}

// CheckPostcode implements RouteRuleHandler. Public: the storefront calls
// it before offering a booking form.
func (h *routeRuleHandlerImpl) CheckPostcode(w http.ResponseWriter, r *http.Request) {
	req := routing.PostcodeCheckRequest{Postcode: r.URL.Query().Get("postcode")}

	result, err := h.ruleService.CheckPostcode(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, result)
}
