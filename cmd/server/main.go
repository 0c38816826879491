package main

import (
	"context"
	"time"

	"github.com/intunedeck/intunedeck/internal/api"
	v1 "github.com/intunedeck/intunedeck/internal/api/v1"
	"github.com/intunedeck/intunedeck/internal/auth"
	"github.com/intunedeck/intunedeck/internal/cache"
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/httpclient"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/ratelimit"
	"github.com/intunedeck/intunedeck/internal/repository"
	"github.com/intunedeck/intunedeck/internal/sentry"
	"github.com/intunedeck/intunedeck/internal/service"
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/intunedeck/intunedeck/internal/validator"
	"go.uber.org/fx"

	"github.com/gin-gonic/gin"
)

// @title IntuneDeck API
// @version 1.0
// @description Bulk application assignment service for Microsoft Intune
// @BasePath /v1
// @schemes http https

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	// Core dependencies
	opts = append(opts,
		fx.Provide(
			// Validator
			validator.NewValidator,

			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Monitoring
			sentry.NewSentryService,

			// Cache
			cache.Initialize,

			// HTTP Client
			httpclient.NewDefaultClient,

			// Azure AD token provider
			provideTokenProvider,

			// Graph client
			graph.NewExecutor,
			graph.NewClient,

			// Rate limiter
			ratelimit.NewLimiter,

			// Repositories
			repository.NewApplicationRepository,
			repository.NewGroupRepository,
			repository.NewDeviceRepository,
			repository.NewAuditLogRepository,
			repository.NewAssignmentRepository,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,

			service.NewAssignmentService,
			service.NewApplicationService,
			service.NewGroupService,
			service.NewDeviceService,
			service.NewAuditLogService,
		),
	)

	// API
	opts = append(opts,
		fx.Provide(
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(
			sentry.RegisterHooks,
			startServer,
		),
	)

	app := fx.New(opts...)
	app.Run()
}

func provideTokenProvider(cfg *config.Configuration, c cache.Cache, log *logger.Logger) auth.TokenProvider {
	return auth.NewClientCredentialsProvider(cfg, c, log)
}

func provideHandlers(
	logger *logger.Logger,
	assignmentService service.AssignmentService,
	applicationService service.ApplicationService,
	groupService service.GroupService,
	deviceService service.DeviceService,
	auditLogService service.AuditLogService,
) api.Handlers {
	return api.Handlers{
		Health:      v1.NewHealthHandler(logger),
		Assignment:  v1.NewAssignmentHandler(assignmentService, logger),
		Application: v1.NewApplicationHandler(applicationService, logger),
		Group:       v1.NewGroupHandler(groupService, logger),
		Device:      v1.NewDeviceHandler(deviceService, logger),
		AuditLog:    v1.NewAuditLogHandler(auditLogService, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration, logger *logger.Logger) *gin.Engine {
	return api.NewRouter(handlers, cfg, logger)
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	r *gin.Engine,
	log *logger.Logger,
) {
	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal, types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	default:
		log.Fatalf("Unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting API server...")
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("Failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("Shutting down server...")
			return nil
		},
	})
}
