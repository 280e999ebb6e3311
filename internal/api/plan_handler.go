package api

import (
	"github.com/gin-gonic/gin"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/models"
)

// PlanHandler serves the shared-plan and favorites callables. All of them require a
// signed-in caller and nothing more.
type PlanHandler struct {
	planService     core.PlanService
	favoriteService core.FavoriteService
	authz           *core.Authorizer
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(ps core.PlanService, fs core.FavoriteService) *PlanHandler {
	return &PlanHandler{planService: ps, favoriteService: fs, authz: core.NewAuthorizer(nil)}
}

type idResult struct {
	ID string `json:"id"`
}

type planListResult struct {
	Plans []models.PlanStats `json:"plans"`
}

type favoriteListResult struct {
	Favorites []*models.Favorite `json:"favorites"`
}

type ratingResult struct {
	ID      string  `json:"id"`
	Average float64 `json:"avg"`
	Count   int     `json:"count"`
}

func (h *PlanHandler) decodeAuthenticated(caller *models.Caller, decode func(interface{}) error, dst interface{}) error {
	if err := h.authz.RequireAuthenticated(caller); err != nil {
		return err
	}
	return decode(dst)
}

func (h *PlanHandler) SharePlan(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.SharePlanRequest
	if err := h.decodeAuthenticated(caller, decode, &req); err != nil {
		return nil, err
	}
	id, err := h.planService.Share(c.Request.Context(), caller, req)
	if err != nil {
		return nil, err
	}
	return idResult{ID: id}, nil
}

func (h *PlanHandler) ListSharedPlans(c *gin.Context, caller *models.Caller, _ func(interface{}) error) (interface{}, error) {
	plans, err := h.planService.List(c.Request.Context(), caller)
	if err != nil {
		return nil, err
	}
	return planListResult{Plans: plans}, nil
}

func (h *PlanHandler) RatePlan(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.RatePlanRequest
	if err := h.decodeAuthenticated(caller, decode, &req); err != nil {
		return nil, err
	}
	stats, err := h.planService.Rate(c.Request.Context(), caller, req)
	if err != nil {
		return nil, err
	}
	return ratingResult{ID: stats.ID, Average: stats.Average, Count: stats.Count}, nil
}

func (h *PlanHandler) RemovePlan(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.RemovePlanRequest
	if err := h.decodeAuthenticated(caller, decode, &req); err != nil {
		return nil, err
	}
	if err := h.planService.Remove(c.Request.Context(), caller, req); err != nil {
		return nil, err
	}
	return okResult{OK: true}, nil
}

func (h *PlanHandler) SaveFavorite(c *gin.Context, caller *models.Caller, decode func(interface{}) error) (interface{}, error) {
	var req models.SaveFavoriteRequest
	if err := h.decodeAuthenticated(caller, decode, &req); err != nil {
		return nil, err
	}
	id, err := h.favoriteService.Save(c.Request.Context(), caller, req)
	if err != nil {
		return nil, err
	}
	return idResult{ID: id}, nil
}

func (h *PlanHandler) ListFavorites(c *gin.Context, caller *models.Caller, _ func(interface{}) error) (interface{}, error) {
	favorites, err := h.favoriteService.List(c.Request.Context(), caller)
	if err != nil {
		return nil, err
	}
	return favoriteListResult{Favorites: favorites}, nil
}
