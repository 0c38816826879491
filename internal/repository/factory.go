package repository

import (
	"github.com/intunedeck/intunedeck/internal/cache"
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
	"github.com/intunedeck/intunedeck/internal/domain/device"
	"github.com/intunedeck/intunedeck/internal/domain/group"
	"github.com/intunedeck/intunedeck/internal/graph"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/repository/graphrepo"
	"github.com/intunedeck/intunedeck/internal/repository/memory"
)

func NewApplicationRepository(client graph.Client, c cache.Cache, cfg *config.Configuration, log *logger.Logger) application.Repository {
	return graphrepo.NewApplicationRepository(client, c, cfg, log)
}

func NewGroupRepository(client graph.Client, c cache.Cache, cfg *config.Configuration, log *logger.Logger) group.Repository {
	return graphrepo.NewGroupRepository(client, c, cfg, log)
}

func NewDeviceRepository(client graph.Client, c cache.Cache, cfg *config.Configuration, log *logger.Logger) device.Repository {
	return graphrepo.NewDeviceRepository(client, c, cfg, log)
}

func NewAuditLogRepository(client graph.Client, log *logger.Logger) auditlog.Repository {
	return graphrepo.NewAuditLogRepository(client, log)
}

func NewAssignmentRepository(log *logger.Logger) assignment.Repository {
	return memory.NewAssignmentRepository(log)
}
