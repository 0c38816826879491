package testutil

import (
	"context"
	"time"

	"github.com/intunedeck/intunedeck/internal/cache"
	"github.com/intunedeck/intunedeck/internal/config"
	"github.com/intunedeck/intunedeck/internal/domain/application"
	"github.com/intunedeck/intunedeck/internal/domain/assignment"
	"github.com/intunedeck/intunedeck/internal/domain/auditlog"
	"github.com/intunedeck/intunedeck/internal/domain/device"
	"github.com/intunedeck/intunedeck/internal/domain/group"
	"github.com/intunedeck/intunedeck/internal/logger"
	"github.com/intunedeck/intunedeck/internal/ratelimit"
	"github.com/intunedeck/intunedeck/internal/types"
	"github.com/intunedeck/intunedeck/internal/validator"
	"github.com/stretchr/testify/suite"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	AppRepo        application.Repository
	GroupRepo      group.Repository
	DeviceRepo     device.Repository
	AuditRepo      auditlog.Repository
	AssignmentRepo assignment.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	stores      Stores
	graphClient *MockGraphClient
	limiter     *ratelimit.Limiter
	logger      *logger.Logger
	config      *config.Configuration
	now         time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	// Keep the rate limiter wide open so tests exercise orchestration, not
	// throttling delays.
	cfg.RateLimit.RequestsPerWindow = 10000
	cfg.RateLimit.Window = time.Second
	cfg.RateLimit.Burst = 10000
	cfg.RateLimit.MaxBackoff = 10 * time.Millisecond

	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}

	cache.Initialize(cfg, s.logger)
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = SetupContext()
}

func (s *BaseServiceTestSuite) setupStores() {
	appStore := NewInMemoryApplicationStore()
	s.stores = Stores{
		AppRepo:        appStore,
		GroupRepo:      NewInMemoryGroupStore(),
		DeviceRepo:     NewInMemoryDeviceStore(),
		AuditRepo:      NewInMemoryAuditLogStore(),
		AssignmentRepo: NewInMemoryAssignmentStore(),
	}

	s.graphClient = NewMockGraphClient()
	s.graphClient.OnSuccess = appStore.RecordAssignments
	s.limiter = ratelimit.NewLimiter(s.config, s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.AppRepo.(*InMemoryApplicationStore).Clear()
	s.stores.GroupRepo.(*InMemoryGroupStore).Clear()
	s.stores.DeviceRepo.(*InMemoryDeviceStore).Clear()
	s.stores.AuditRepo.(*InMemoryAuditLogStore).Clear()
	s.stores.AssignmentRepo.(*InMemoryAssignmentStore).Clear()
	s.graphClient.Clear()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns the test stores
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetGraphClient returns the mock graph client
func (s *BaseServiceTestSuite) GetGraphClient() *MockGraphClient {
	return s.graphClient
}

// GetLimiter returns the test rate limiter
func (s *BaseServiceTestSuite) GetLimiter() *ratelimit.Limiter {
	return s.limiter
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetUUID returns a new UUID
func (s *BaseServiceTestSuite) GetUUID() string {
	return types.GenerateUUID()
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
