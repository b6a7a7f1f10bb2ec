package testutil

import (
	"context"

	domainPayment "github.com/waterbills/waterbills/internal/domain/payment"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/types"
)

// InMemoryPaymentStore implements an in-memory payment repository for testing
type InMemoryPaymentStore struct {
	*InMemoryStore[*domainPayment.Payment]
}

// NewInMemoryPaymentStore creates a new in-memory payment store
func NewInMemoryPaymentStore() *InMemoryPaymentStore {
	return &InMemoryPaymentStore{
		InMemoryStore: NewInMemoryStore[*domainPayment.Payment](),
	}
}

func (s *InMemoryPaymentStore) Create(ctx context.Context, p *domainPayment.Payment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Mirror the storage layer's partial unique index on transaction_ref.
	// Manual payments carry no reference and are exempt
	if p.TransactionRef != "" {
		for _, existing := range s.items {
			if existing.TransactionRef == p.TransactionRef && existing.Status == types.StatusPublished {
				return ierr.NewError("payment already exists").
					WithHintf("A payment with transaction reference %s already exists", p.TransactionRef).
					WithReportableDetails(map[string]any{
						"transaction_ref": p.TransactionRef,
					}).
					Mark(ierr.ErrAlreadyExists)
			}
		}
	}

	if _, exists := s.items[p.ID]; exists {
		return ierr.NewError("payment already exists").
			WithHintf("Payment with ID %s already exists", p.ID).
			Mark(ierr.ErrAlreadyExists)
	}

	s.items[p.ID] = p
	return nil
}

func (s *InMemoryPaymentStore) Get(ctx context.Context, id string) (*domainPayment.Payment, error) {
	return s.InMemoryStore.Get(ctx, id)
}

func (s *InMemoryPaymentStore) Update(ctx context.Context, p *domainPayment.Payment) error {
	return s.InMemoryStore.Update(ctx, p.ID, p)
}

func (s *InMemoryPaymentStore) GetByTransactionRef(ctx context.Context, transactionRef string) (*domainPayment.Payment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.items {
		if p.TransactionRef == transactionRef && p.Status == types.StatusPublished {
			return p, nil
		}
	}

	return nil, ierr.NewError("payment not found").
		WithHintf("No payment found with transaction reference %s", transactionRef).
		WithReportableDetails(map[string]any{
			"transaction_ref": transactionRef,
		}).
		Mark(ierr.ErrNotFound)
}

func (s *InMemoryPaymentStore) ListByInvoice(ctx context.Context, invoiceID string) ([]*domainPayment.Payment, error) {
	return s.InMemoryStore.List(ctx, nil,
		func(ctx context.Context, p *domainPayment.Payment, _ interface{}) bool {
			return p.InvoiceID == invoiceID && p.Status == types.StatusPublished
		},
		func(i, j *domainPayment.Payment) bool {
			return i.PaymentDate.Before(j.PaymentDate)
		},
	)
}

// InMemoryReceiptStore implements an in-memory receipt repository for testing
type InMemoryReceiptStore struct {
	*InMemoryStore[*domainPayment.Receipt]
}

// NewInMemoryReceiptStore creates a new in-memory receipt store
func NewInMemoryReceiptStore() *InMemoryReceiptStore {
	return &InMemoryReceiptStore{
		InMemoryStore: NewInMemoryStore[*domainPayment.Receipt](),
	}
}

func (s *InMemoryReceiptStore) Create(ctx context.Context, r *domainPayment.Receipt) error {
	return s.InMemoryStore.Create(ctx, r.ID, r)
}

func (s *InMemoryReceiptStore) GetByPayment(ctx context.Context, paymentID string) (*domainPayment.Receipt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, r := range s.items {
		if r.PaymentID == paymentID && r.Status == types.StatusPublished {
			return r, nil
		}
	}

	return nil, ierr.NewError("receipt not found").
		WithHintf("No receipt found for payment %s", paymentID).
		WithReportableDetails(map[string]any{
			"payment_id": paymentID,
		}).
		Mark(ierr.ErrNotFound)
}
