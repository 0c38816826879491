package service

import (
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
	"github.com/intunedeck/intunedeck/internal/domain/device"
	"github.com/intunedeck/intunedeck/internal/domain/group"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/ratelimit"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger      *logger.Logger
	Config      *config.Configuration
	GraphClient graph.Client
	Limiter     *ratelimit.Limiter

	// Repositories
	AppRepo        application.Repository
	GroupRepo      group.Repository
	DeviceRepo     device.Repository
	AuditRepo      auditlog.Repository
	AssignmentRepo assignment.Repository
}

// NewServiceParams creates a new ServiceParams with all dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	graphClient graph.Client,
	limiter *ratelimit.Limiter,
	appRepo application.Repository,
	groupRepo group.Repository,
	deviceRepo device.Repository,
	auditRepo auditlog.Repository,
	assignmentRepo assignment.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:         logger,
		Config:         config,
		GraphClient:    graphClient,
		Limiter:        limiter,
		AppRepo:        appRepo,
		GroupRepo:      groupRepo,
		DeviceRepo:     deviceRepo,
		AuditRepo:      auditRepo,
		AssignmentRepo: assignmentRepo,
	}
}
