package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/waterbills/waterbills/internal/config"
	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/domain/meter"
	"github.com/waterbills/waterbills/internal/domain/payment"
	"github.com/waterbills/waterbills/internal/domain/premise"
	"github.com/waterbills/waterbills/internal/domain/settings"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/types"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	BuildingRepo building.Repository
	PremiseRepo  premise.Repository
	MeterRepo    meter.Repository
	ReadingRepo  meter.ReadingRepository
	InvoiceRepo  invoice.Repository
	PaymentRepo  payment.Repository
	ReceiptRepo  payment.ReceiptRepository
	SettingsRepo settings.Repository
	AuditLogRepo auditlog.Repository
}

// BaseServiceTestSuite provides common functionality for all service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	pubsub *InMemoryPubSub
	db     postgres.IClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{
			Level: types.LogLevelInfo,
		},
		Jobs: config.JobsConfig{
			MaxRetries:      3,
			InitialInterval: 100 * time.Millisecond,
			MaxInterval:     time.Second,
			Multiplier:      2,
			MaxElapsedTime:  5 * time.Second,
			HandlerTimeout:  time.Minute,
		},
		Scheduler: config.SchedulerConfig{
			Enabled:        true,
			TickInterval:   time.Minute,
			GenerationDay:  25,
			GenerationHour: 0,
			PenaltyHour:    0,
			DisconnectHour: 6,
		},
	}
	var err error
	s.config = cfg
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
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
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		BuildingRepo: NewInMemoryBuildingStore(),
		PremiseRepo:  NewInMemoryPremiseStore(),
		MeterRepo:    NewInMemoryMeterStore(),
		ReadingRepo:  NewInMemoryReadingStore(),
		InvoiceRepo:  NewInMemoryInvoiceStore(),
		PaymentRepo:  NewInMemoryPaymentStore(),
		ReceiptRepo:  NewInMemoryReceiptStore(),
		SettingsRepo: NewInMemorySettingsStore(),
		AuditLogRepo: NewInMemoryAuditLogStore(),
	}

	s.db = NewMockPostgresClient(s.logger)
	s.pubsub = NewInMemoryPubSub()
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.BuildingRepo.(*InMemoryBuildingStore).Clear()
	s.stores.PremiseRepo.(*InMemoryPremiseStore).Clear()
	s.stores.MeterRepo.(*InMemoryMeterStore).Clear()
	s.stores.ReadingRepo.(*InMemoryReadingStore).Clear()
	s.stores.InvoiceRepo.(*InMemoryInvoiceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.ReceiptRepo.(*InMemoryReceiptStore).Clear()
	s.stores.SettingsRepo.(*InMemorySettingsStore).Clear()
	s.stores.AuditLogRepo.(*InMemoryAuditLogStore).Clear()
	s.pubsub.Clear()
}

// ClearStores removes all data from every store
func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetPubSub returns the test pubsub
func (s *BaseServiceTestSuite) GetPubSub() *InMemoryPubSub {
	return s.pubsub
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
