package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/exam-seating-api/internal/handler"
	internalmiddleware "github.com/noah-isme/exam-seating-api/internal/middleware"
	"github.com/noah-isme/exam-seating-api/internal/models"
	"github.com/noah-isme/exam-seating-api/pkg/config"
)

type routeHandlers struct {
	departments *handler.DepartmentHandler
	halls       *handler.HallHandler
	seating     *handler.SeatingHandler
	exports     *handler.ExportHandler
	metrics     *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, cfg *config.Config, auth internalmiddleware.TokenValidator, h routeHandlers) {
	r.GET("/health", h.metrics.Health)
	r.GET("/ready", h.metrics.Ready)
	r.GET("/metrics", h.metrics.Prometheus)

	if cfg.Env != config.EnvProduction && cfg.Docs.Enabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(auth))

	admin := internalmiddleware.RequireRoles(models.RoleAdmin)
	viewer := internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleFaculty)

	api.GET("/metrics/summary", admin, h.metrics.Snapshot)

	departments := api.Group("/departments", admin)
	departments.GET("", h.departments.List)
	departments.POST("", h.departments.Create)
	departments.POST("/validate-range", h.departments.ValidateRange)
	departments.GET("/:id", h.departments.Get)
	departments.PUT("/:id", h.departments.Update)
	departments.DELETE("/:id", h.departments.Delete)

	halls := api.Group("/halls")
	halls.GET("", admin, h.halls.List)
	halls.POST("", admin, h.halls.Create)
	halls.GET("/:id", admin, h.halls.Get)
	halls.PUT("/:id", admin, h.halls.Update)
	halls.DELETE("/:id", admin, h.halls.Delete)
	halls.GET("/:id/plan", viewer, h.halls.Plan)
	halls.GET("/:id/plan/export", viewer, h.exports.HallPlan)
	halls.POST("/:id/seating/generate", admin, h.seating.GenerateForHall)

	seating := api.Group("/seating", admin)
	seating.POST("/generate", h.seating.GenerateForAllHalls)
	seating.GET("/assignments", h.seating.Assignments)
	seating.GET("/consolidated", h.seating.Consolidated)
	seating.GET("/consolidated/export", h.exports.Consolidated)

	api.GET("/me/halls", internalmiddleware.RequireRoles(models.RoleFaculty), h.halls.Mine)
}
