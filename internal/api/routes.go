package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/luminher/luminher-api/internal/core"
	"github.com/luminher/luminher-api/internal/middleware"
)

// Deps collects what SetupRoutes needs.
type Deps struct {
	APIKey   string
	Verifier core.TokenVerifier
	Admin    *AdminHandler
	Plans    *PlanHandler
	Ops      *OpsHandler
	Logger   *zap.Logger
}

// SetupRoutes registers the API-key endpoints and the callables on router.
// Global middleware (logging, recovery, CORS) is applied by the caller.
func SetupRoutes(router *gin.Engine, d Deps) {
	router.GET("/apiHealth", d.Ops.Health)

	keyed := router.Group("/", middleware.RequireAPIKey(d.APIKey, d.Logger))
	{
		keyed.GET("/apiMetrics", d.Ops.Metrics)
		keyed.GET("/apiDailySignups", d.Ops.DailySignups)
		keyed.POST("/apiSendEmail", d.Ops.SendEmail)
		keyed.POST("/apiAdvice", d.Ops.Advice)
		keyed.GET("/apiUserProgress", d.Ops.UserProgress)
	}

	callables := router.Group("/callable", middleware.IdentityToken(d.Verifier, d.Logger))
	{
		register := func(name string, fn callableFunc) {
			callables.POST("/"+name, callable(d.Logger, fn))
		}
		register("ensureAdminClaim", d.Admin.EnsureAdminClaim)
		register("listUsers", d.Admin.ListUsers)
		register("createUser", d.Admin.CreateUser)
		register("deleteUser", d.Admin.DeleteUser)
		register("setUserRole", d.Admin.SetUserRole)
		register("generateResetLink", d.Admin.GenerateResetLink)

		register("sharePlan", d.Plans.SharePlan)
		register("listSharedPlans", d.Plans.ListSharedPlans)
		register("ratePlan", d.Plans.RatePlan)
		register("removePlan", d.Plans.RemovePlan)
		register("saveFavorite", d.Plans.SaveFavorite)
		register("listFavorites", d.Plans.ListFavorites)
	}

	d.Logger.Info("API routes registered")
}
