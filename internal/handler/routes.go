package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/course-planner-api/internal/middleware"
	"github.com/noah-isme/course-planner-api/internal/models"
)

type tokenValidator interface {
	ValidateToken(token string) (*models.JWTClaims, error)
}

// Routes bundles the handlers mounted by RegisterRoutes. Jobs and Catalogs
// are optional; their endpoints are left out when nil.
type Routes struct {
	Planner  *PlannerHandler
	Jobs     *PlanJobHandler
	Catalogs *CatalogHandler
	Metrics  *MetricsHandler
	Tokens   tokenValidator
	Logger   *zap.Logger
}

// RegisterRoutes mounts the probes at the root and the API under prefix.
func RegisterRoutes(r *gin.Engine, prefix string, routes Routes) {
	if routes.Metrics != nil {
		r.GET("/health", routes.Metrics.Health)
		r.GET("/ready", routes.Metrics.Ready)
		r.GET("/metrics", routes.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	if routes.Metrics != nil {
		api.GET("/metrics/summary", routes.Metrics.Summary)
	}

	if routes.Planner != nil {
		planner := api.Group("/planner")
		planner.POST("/calendar", routes.Planner.Calendar)
		planner.POST("/auto", routes.Planner.Auto)
		planner.POST("/export", routes.Planner.Export)
		if routes.Jobs != nil {
			planner.POST("/jobs", routes.Jobs.Submit)
			planner.GET("/jobs/:id", routes.Jobs.Get)
		}
	}

	if routes.Catalogs != nil {
		catalogs := api.Group("/catalogs")
		catalogs.GET("", routes.Catalogs.List)
		catalogs.GET("/:id", routes.Catalogs.Get)

		writers := catalogs.Group("")
		writers.Use(middleware.JWT(routes.Tokens), middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
		writers.POST("", middleware.Audit(routes.Logger, "import", "catalog"), routes.Catalogs.Import)
		writers.DELETE("/:id", middleware.Audit(routes.Logger, "delete", "catalog"), routes.Catalogs.Delete)
	}
}
