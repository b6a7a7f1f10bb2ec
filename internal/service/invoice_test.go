package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

type InvoiceServiceSuite struct {
	testutil.BaseServiceTestSuite
	service InvoiceService
	fixture *billingFixture
}

func TestInvoiceService(t *testing.T) {
	suite.Run(t, new(InvoiceServiceSuite))
}

func (s *InvoiceServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewInvoiceService(newServiceParams(&s.BaseServiceTestSuite))
	s.fixture = seedBillingFixture(&s.BaseServiceTestSuite, "A1", "A2")
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceComputesAmounts() {
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	inv, err := s.service.GenerateInvoice(s.GetContext(), s.fixture.Premises[0].ID, period)
	s.NoError(err)

	s.True(inv.RentAmount.Equal(decimal.NewFromInt(15000)))
	s.True(inv.WaterAmount.Equal(decimal.NewFromInt(5100)))
	s.True(inv.PreviousBalance.IsZero())
	s.True(inv.PenaltyAmount.IsZero())
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(20100)))
	s.True(inv.AmountPaid.IsZero())
	s.Equal(types.InvoiceStatusUnpaid, inv.InvoiceStatus)
	s.Equal(types.ConnectionStatusConnected, inv.ConnectionStatus)

	// Due on the 8th of the month after the period
	s.Equal(time.Date(2025, 3, 8, 0, 0, 0, 0, time.UTC), inv.DueDate)
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceIncludesPreviousBalance() {
	ctx := s.GetContext()
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	p := s.fixture.Premises[1]
	p.PreviousBalance = decimal.NewFromInt(2500)
	s.NoError(s.GetStores().PremiseRepo.Update(ctx, p))

	inv, err := s.service.GenerateInvoice(ctx, p.ID, period)
	s.NoError(err)

	s.True(inv.WaterAmount.Equal(decimal.NewFromInt(1700)))
	s.True(inv.PreviousBalance.Equal(decimal.NewFromInt(2500)))
	// 15000 + 1700 + 2500
	s.True(inv.TotalAmount.Equal(decimal.NewFromInt(19200)))
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceIsIdempotent() {
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	first, err := s.service.GenerateInvoice(s.GetContext(), s.fixture.Premises[0].ID, period)
	s.NoError(err)
	second, err := s.service.GenerateInvoice(s.GetContext(), s.fixture.Premises[0].ID, period)
	s.NoError(err)

	s.Equal(first.ID, second.ID)
	s.True(first.TotalAmount.Equal(second.TotalAmount))

	invoices, err := s.service.ListBuildingInvoices(s.GetContext(), s.fixture.Building.ID, period)
	s.NoError(err)
	s.Len(invoices, 1)
}

func (s *InvoiceServiceSuite) TestGenerateBuildingInvoicesFansOut() {
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	results, err := s.service.GenerateBuildingInvoices(s.GetContext(), s.fixture.Building.ID, period)
	s.NoError(err)
	s.Len(results, 2)

	for _, r := range results {
		s.True(r.Success, "premise %s failed: %s", r.PremiseID, r.Error)
		s.NotNil(r.Invoice)
	}

	invoices, err := s.service.ListBuildingInvoices(s.GetContext(), s.fixture.Building.ID, period)
	s.NoError(err)
	s.Len(invoices, 2)
}

func (s *InvoiceServiceSuite) TestBuildingGenerationIsolatesPremiseFailures() {
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	// An invoice that already exists is a no-op success, so break the batch
	// by removing settings after pre-generating one premise.
	first, err := s.service.GenerateInvoice(s.GetContext(), s.fixture.Premises[0].ID, period)
	s.NoError(err)
	s.GetStores().SettingsRepo.(*testutil.InMemorySettingsStore).Clear()

	results, err := s.service.GenerateBuildingInvoices(s.GetContext(), s.fixture.Building.ID, period)
	s.NoError(err)
	s.Len(results, 2)

	byPremise := map[string]*GenerationResult{}
	for _, r := range results {
		byPremise[r.PremiseID] = r
	}

	// The pre-generated premise still succeeds via the idempotent no-op
	s.True(byPremise[s.fixture.Premises[0].ID].Success)
	s.Equal(first.ID, byPremise[s.fixture.Premises[0].ID].Invoice.ID)

	// The other premise fails without aborting the batch
	s.False(byPremise[s.fixture.Premises[1].ID].Success)
	s.NotEmpty(byPremise[s.fixture.Premises[1].ID].Error)
}

func (s *InvoiceServiceSuite) TestZeroConsumptionBuildingGeneratesZeroWater() {
	period := types.Period("2025-02")
	// No readings recorded at all

	inv, err := s.service.GenerateInvoice(s.GetContext(), s.fixture.Premises[0].ID, period)
	s.NoError(err)
	s.True(inv.WaterAmount.IsZero())
	s.True(inv.TotalAmount.Equal(inv.RentAmount))
}

func (s *InvoiceServiceSuite) TestGenerateInvoiceRecordsAudit() {
	period := types.Period("2025-02")
	s.fixture.seedExampleReadings(period)

	inv, err := s.service.GenerateInvoice(s.GetContext(), s.fixture.Premises[0].ID, period)
	s.NoError(err)

	entries, err := s.GetStores().AuditLogRepo.ListByEntity(s.GetContext(), "invoice", inv.ID)
	s.NoError(err)
	s.Len(entries, 1)
}
