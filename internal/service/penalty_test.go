package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

type PenaltyServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PenaltyService
	fixture *billingFixture
}

func TestPenaltyService(t *testing.T) {
	suite.Run(t, new(PenaltyServiceSuite))
}

func (s *PenaltyServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPenaltyService(newServiceParams(&s.BaseServiceTestSuite))
	s.fixture = seedBillingFixture(&s.BaseServiceTestSuite, "A1")
}

func (s *PenaltyServiceSuite) TestLinearAccrualTenDaysLate() {
	dueDate := time.Now().UTC().AddDate(0, 0, -10).Add(-time.Hour)
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000, dueDate)

	result, err := s.service.RecalculatePenalty(s.GetContext(), inv.ID)
	s.NoError(err)

	// 10 days x 150/day
	s.Equal(10, result.DaysLate)
	s.True(result.Penalty.Equal(decimal.NewFromInt(1500)), "penalty = %s", result.Penalty)
	s.True(result.NewTotal.Equal(decimal.NewFromInt(11500)), "new total = %s", result.NewTotal)
	s.Equal(types.InvoiceStatusOverdue, result.Status)

	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(stored.PenaltyAmount.Equal(decimal.NewFromInt(1500)))
	s.True(stored.TotalAmount.Equal(decimal.NewFromInt(11500)))
	s.Equal(types.InvoiceStatusOverdue, stored.InvoiceStatus)
}

func (s *PenaltyServiceSuite) TestRecomputationIsIdempotentSameDay() {
	dueDate := time.Now().UTC().AddDate(0, 0, -10).Add(-time.Hour)
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000, dueDate)

	first, err := s.service.RecalculatePenalty(s.GetContext(), inv.ID)
	s.NoError(err)
	second, err := s.service.RecalculatePenalty(s.GetContext(), inv.ID)
	s.NoError(err)

	// Recomputed from scratch, not incrementally added
	s.True(first.Penalty.Equal(second.Penalty))
	s.True(first.NewTotal.Equal(second.NewTotal))
}

func (s *PenaltyServiceSuite) TestPenaltyGrowsWithLateness() {
	var previous decimal.Decimal
	for _, days := range []int{1, 5, 20} {
		s.ClearStores()
		s.fixture = seedBillingFixture(&s.BaseServiceTestSuite, "A1")

		dueDate := time.Now().UTC().AddDate(0, 0, -days).Add(-time.Hour)
		inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000, dueDate)

		result, err := s.service.RecalculatePenalty(s.GetContext(), inv.ID)
		s.NoError(err)
		s.True(result.Penalty.GreaterThan(previous),
			"penalty %s at %d days not above %s", result.Penalty, days, previous)
		previous = result.Penalty
	}
}

func (s *PenaltyServiceSuite) TestNoPenaltyBeforeDueDate() {
	dueDate := time.Now().UTC().AddDate(0, 0, 5)
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000, dueDate)

	result, err := s.service.RecalculatePenalty(s.GetContext(), inv.ID)
	s.NoError(err)

	s.Equal(0, result.DaysLate)
	s.True(result.Penalty.IsZero())
	s.Equal(types.InvoiceStatusUnpaid, result.Status)
}

func (s *PenaltyServiceSuite) TestSettledInvoiceAccruesNothing() {
	ctx := s.GetContext()
	dueDate := time.Now().UTC().AddDate(0, 0, -10).Add(-time.Hour)
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000, dueDate)

	inv.AmountPaid = decimal.NewFromInt(10000)
	inv.InvoiceStatus = types.InvoiceStatusPaid
	s.NoError(s.GetStores().InvoiceRepo.Update(ctx, inv))

	result, err := s.service.RecalculatePenalty(ctx, inv.ID)
	s.NoError(err)

	s.True(result.Penalty.IsZero())
	s.True(result.NewTotal.Equal(decimal.NewFromInt(10000)))
	s.Equal(types.InvoiceStatusPaid, result.Status)
}

func (s *PenaltyServiceSuite) TestPartialPaymentKeepsPartialStatus() {
	ctx := s.GetContext()
	dueDate := time.Now().UTC().AddDate(0, 0, -10).Add(-time.Hour)
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000, dueDate)

	inv.AmountPaid = decimal.NewFromInt(4000)
	inv.InvoiceStatus = types.InvoiceStatusPartial
	s.NoError(s.GetStores().InvoiceRepo.Update(ctx, inv))

	result, err := s.service.RecalculatePenalty(ctx, inv.ID)
	s.NoError(err)

	// Unpaid balance remains, so the penalty accrues and partial wins over
	// overdue in the status priority
	s.True(result.Penalty.Equal(decimal.NewFromInt(1500)))
	s.Equal(types.InvoiceStatusPartial, result.Status)
}
