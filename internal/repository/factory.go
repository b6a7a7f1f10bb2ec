package repository

import (
	"github.com/waterbills/waterbills/internal/domain/auditlog"
	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/domain/meter"
	"github.com/waterbills/waterbills/internal/domain/payment"
	"github.com/waterbills/waterbills/internal/domain/premise"
	"github.com/waterbills/waterbills/internal/domain/settings"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	pgrepo "github.com/waterbills/waterbills/internal/repository/postgres"
)

// Constructors for the postgres backed repositories. Each returns the domain
// interface so the service layer never sees the storage implementation.

func NewBuildingRepository(client postgres.IClient, log *logger.Logger) building.Repository {
	return pgrepo.NewBuildingRepository(client, log)
}

func NewPremiseRepository(client postgres.IClient, log *logger.Logger) premise.Repository {
	return pgrepo.NewPremiseRepository(client, log)
}

func NewMeterRepository(client postgres.IClient, log *logger.Logger) meter.Repository {
	return pgrepo.NewMeterRepository(client, log)
}

func NewReadingRepository(client postgres.IClient, log *logger.Logger) meter.ReadingRepository {
	return pgrepo.NewReadingRepository(client, log)
}

func NewInvoiceRepository(client postgres.IClient, log *logger.Logger) invoice.Repository {
	return pgrepo.NewInvoiceRepository(client, log)
}

func NewPaymentRepository(client postgres.IClient, log *logger.Logger) payment.Repository {
	return pgrepo.NewPaymentRepository(client, log)
}

func NewReceiptRepository(client postgres.IClient, log *logger.Logger) payment.ReceiptRepository {
	return pgrepo.NewReceiptRepository(client, log)
}

func NewSettingsRepository(client postgres.IClient, log *logger.Logger) settings.Repository {
	return pgrepo.NewSettingsRepository(client, log)
}

func NewAuditLogRepository(client postgres.IClient, log *logger.Logger) auditlog.Repository {
	return pgrepo.NewAuditLogRepository(client, log)
}
