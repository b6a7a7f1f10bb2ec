package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PaymentService
	fixture *billingFixture
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPaymentService(newServiceParams(&s.BaseServiceTestSuite))
	s.fixture = seedBillingFixture(&s.BaseServiceTestSuite, "A1")
}

func (s *PaymentServiceSuite) TestPartialPaymentAgainstPenalizedTotal() {
	// Invoice total 11500 after penalty accrual (10000 + 1500)
	dueDate := time.Now().UTC().AddDate(0, 0, -10).Add(-time.Hour)
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000, dueDate)
	inv.PenaltyAmount = decimal.NewFromInt(1500)
	inv.TotalAmount = decimal.NewFromInt(11500)
	inv.InvoiceStatus = types.InvoiceStatusOverdue
	s.NoError(s.GetStores().InvoiceRepo.Update(s.GetContext(), inv))

	result, err := s.service.ApplyPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount: decimal.NewFromInt(10000),
		Method: types.PaymentMethodCash,
	})
	s.NoError(err)

	s.True(result.Invoice.AmountPaid.Equal(decimal.NewFromInt(10000)))
	s.Equal(types.InvoiceStatusPartial, result.Invoice.InvoiceStatus)
	// Penalty is not recomputed during payment application
	s.True(result.Invoice.TotalAmount.Equal(decimal.NewFromInt(11500)))
}

func (s *PaymentServiceSuite) TestFullPaymentSettlesInvoice() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	result, err := s.service.ApplyPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount: decimal.NewFromInt(10000),
		Method: types.PaymentMethodBank,
	})
	s.NoError(err)

	s.Equal(types.InvoiceStatusPaid, result.Invoice.InvoiceStatus)
	s.True(result.Invoice.UnpaidAmount().IsZero())
	s.Len(result.Invoice.Payments, 1)
	s.Equal(result.Payment.ID, result.Invoice.Payments[0].PaymentID)
}

func (s *PaymentServiceSuite) TestNonPositiveAmountRejected() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	_, err := s.service.ApplyPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount: decimal.Zero,
		Method: types.PaymentMethodCash,
	})
	s.Error(err)
	s.True(ierr.IsInvalidAmount(err))

	stored, getErr := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(getErr)
	s.True(stored.AmountPaid.IsZero())
}

func (s *PaymentServiceSuite) TestPaymentIssuesReceipt() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	result, err := s.service.ApplyPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount: decimal.NewFromInt(2500),
		Method: types.PaymentMethodCash,
	})
	s.NoError(err)

	s.NotNil(result.Receipt)
	s.NotEmpty(result.Receipt.ReceiptNumber)
	s.True(result.Receipt.Amount.Equal(decimal.NewFromInt(2500)))

	receipt, err := s.service.GetReceipt(s.GetContext(), result.Payment.ID)
	s.NoError(err)
	s.Equal(result.Receipt.ID, receipt.ID)
}

func (s *PaymentServiceSuite) TestSuccessivePaymentsAccumulate() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	_, err := s.service.ApplyPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount: decimal.NewFromInt(4000),
		Method: types.PaymentMethodCash,
	})
	s.NoError(err)

	result, err := s.service.ApplyPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount: decimal.NewFromInt(6000),
		Method: types.PaymentMethodCash,
	})
	s.NoError(err)

	s.True(result.Invoice.AmountPaid.Equal(decimal.NewFromInt(10000)))
	s.Equal(types.InvoiceStatusPaid, result.Invoice.InvoiceStatus)
	s.Len(result.Invoice.Payments, 2)
}

func (s *PaymentServiceSuite) TestGatewayPaymentPendingThenCompleted() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	pending, err := s.service.RecordPendingPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount:         decimal.NewFromInt(10000),
		Method:         types.PaymentMethodMpesa,
		TransactionRef: "MPESA-REF-001",
	})
	s.NoError(err)
	s.Equal(types.PaymentStatusPending, pending.PaymentStatus)

	// The invoice is untouched until the gateway confirms
	stored, err := s.GetStores().InvoiceRepo.Get(s.GetContext(), inv.ID)
	s.NoError(err)
	s.True(stored.AmountPaid.IsZero())

	result, err := s.service.CompleteGatewayPayment(s.GetContext(), "MPESA-REF-001")
	s.NoError(err)
	s.Equal(types.PaymentStatusCompleted, result.Payment.PaymentStatus)
	s.True(result.Invoice.AmountPaid.Equal(decimal.NewFromInt(10000)))
	s.Equal(types.InvoiceStatusPaid, result.Invoice.InvoiceStatus)
}

func (s *PaymentServiceSuite) TestGatewayCallbackRetryIsNoOp() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	_, err := s.service.RecordPendingPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount:         decimal.NewFromInt(10000),
		Method:         types.PaymentMethodMpesa,
		TransactionRef: "MPESA-REF-002",
	})
	s.NoError(err)

	first, err := s.service.CompleteGatewayPayment(s.GetContext(), "MPESA-REF-002")
	s.NoError(err)

	// A retried callback must not double-apply the payment
	second, err := s.service.CompleteGatewayPayment(s.GetContext(), "MPESA-REF-002")
	s.NoError(err)

	s.Equal(first.Payment.ID, second.Payment.ID)
	s.True(second.Invoice.AmountPaid.Equal(decimal.NewFromInt(10000)))
	s.Len(second.Invoice.Payments, 1)
}

func (s *PaymentServiceSuite) TestDuplicateTransactionRefRejected() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	_, err := s.service.RecordPendingPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount:         decimal.NewFromInt(10000),
		Method:         types.PaymentMethodMpesa,
		TransactionRef: "MPESA-REF-003",
	})
	s.NoError(err)

	// The storage layer rejects a second payment reusing the reference
	_, err = s.service.RecordPendingPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount:         decimal.NewFromInt(10000),
		Method:         types.PaymentMethodMpesa,
		TransactionRef: "MPESA-REF-003",
	})
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *PaymentServiceSuite) TestPendingPaymentRequiresAsyncMethod() {
	inv := s.fixture.seedInvoice(s.fixture.Premises[0].ID, "2025-01", 10000,
		time.Now().UTC().AddDate(0, 0, 10))

	_, err := s.service.RecordPendingPayment(s.GetContext(), inv.ID, ApplyPaymentInput{
		Amount:         decimal.NewFromInt(1000),
		Method:         types.PaymentMethodCash,
		TransactionRef: "ref",
	})
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestUnknownTransactionRefNotFound() {
	_, err := s.service.CompleteGatewayPayment(s.GetContext(), "no-such-ref")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}
