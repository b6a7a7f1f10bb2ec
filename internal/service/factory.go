package service

import (
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
)

// NewServiceParams assembles the common service dependencies
func NewServiceParams(
	logger *logger.Logger,
	config *config.Configuration,
	db postgres.IClient,
	buildingRepo building.Repository,
	premiseRepo premise.Repository,
	meterRepo meter.Repository,
	readingRepo meter.ReadingRepository,
	invoiceRepo invoice.Repository,
	paymentRepo payment.Repository,
	receiptRepo payment.ReceiptRepository,
	settingsRepo settings.Repository,
	auditLogRepo auditlog.Repository,
) ServiceParams {
	return ServiceParams{
		Logger:       logger,
		Config:       config,
		DB:           db,
		BuildingRepo: buildingRepo,
		PremiseRepo:  premiseRepo,
		MeterRepo:    meterRepo,
		ReadingRepo:  readingRepo,
		InvoiceRepo:  invoiceRepo,
		PaymentRepo:  paymentRepo,
		ReceiptRepo:  receiptRepo,
		SettingsRepo: settingsRepo,
		AuditLogRepo: auditLogRepo,
	}
}

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
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
