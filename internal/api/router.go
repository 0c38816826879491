package api

import (
	"github.com/gin-gonic/gin"
	v1 "github.com/intunedeck/intunedeck/internal/api/v1"
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/rest/middleware"
	"github.com/intunedeck/intunedeck/internal/types"
)

type Handlers struct {
	Health      *v1.HealthHandler
	Assignment  *v1.AssignmentHandler
	Application *v1.ApplicationHandler
	Group       *v1.GroupHandler
	Device      *v1.DeviceHandler
	AuditLog    *v1.AuditLogHandler
}

func NewRouter(handlers Handlers, cfg *config.Configuration, log *logger.Logger) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestIDMiddleware,
		middleware.CORSMiddleware,
		middleware.SentryMiddleware(cfg),
		middleware.ErrorHandler(),
	)

	router.GET("/health", handlers.Health.Health)

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	// Assignment routes
	assignments := router.Group("/assignments")
	{
		assignments.POST("/bulk", handlers.Assignment.PerformBulkAssignment)
		assignments.POST("/retry", handlers.Assignment.RetryFailedAssignments)
		assignments.POST("/cancel", handlers.Assignment.CancelActiveAssignments)
		assignments.GET("/progress", handlers.Assignment.GetProgress)
		assignments.GET("/history", handlers.Assignment.GetAssignmentHistory)
	}

	// Application catalog routes
	applications := router.Group("/applications")
	{
		applications.GET("", handlers.Application.GetApplications)
		applications.GET("/:id", handlers.Application.GetApplication)
	}

	// Group routes
	groups := router.Group("/groups")
	{
		groups.GET("", handlers.Group.GetGroups)
		groups.GET("/:id", handlers.Group.GetGroup)
	}

	// Device routes
	devices := router.Group("/devices")
	{
		devices.GET("", handlers.Device.GetDevices)
		devices.GET("/:id", handlers.Device.GetDevice)
	}

	// Audit routes
	audit := router.Group("/audit")
	{
		audit.GET("/events", handlers.AuditLog.GetAuditEvents)
	}
}
