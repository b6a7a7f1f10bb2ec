package testutil

import (
	"context"

	"gorm.io/gorm"

	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil)

// MockPostgresClient is a mock postgres client for testing. The in-memory
// stores never touch the database, so transactions just run the function.
type MockPostgresClient struct {
	logger *logger.Logger
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger) postgres.IClient {
	return &MockPostgresClient{logger: logger}
}

// WithTx executes the given function without a real transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// Querier returns nil; in-memory repositories never query it
func (c *MockPostgresClient) Querier(ctx context.Context) *gorm.DB {
	return nil
}
