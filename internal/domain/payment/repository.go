package payment

import "context"

// Repository defines the interface for payment persistence operations
type Repository interface {
	// Create creates a new payment
	Create(ctx context.Context, p *Payment) error

	// Get retrieves a payment by ID
	Get(ctx context.Context, id string) (*Payment, error)

	// Update updates an existing payment. Only the pending → completed
	// status transition is expected here.
	Update(ctx context.Context, p *Payment) error

	// GetByTransactionRef retrieves a payment by its gateway transaction
	// reference. Returns a not found error when absent.
	GetByTransactionRef(ctx context.Context, transactionRef string) (*Payment, error)

	// ListByInvoice retrieves all payments recorded against an invoice
	ListByInvoice(ctx context.Context, invoiceID string) ([]*Payment, error)
}

// ReceiptRepository defines the interface for receipt persistence operations
type ReceiptRepository interface {
	// Create creates a new receipt
	Create(ctx context.Context, r *Receipt) error

	// GetByPayment retrieves the receipt issued for a payment
	GetByPayment(ctx context.Context, paymentID string) (*Receipt, error)
}
