package postgres

import (
	"context"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/waterbills/waterbills/internal/config"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/types"
)

// IClient defines the interface for postgres client operations
type IClient interface {
	// WithTx wraps the given function in a transaction
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error

	// Querier returns the current transaction handle if in a transaction,
	// or the regular handle
	Querier(ctx context.Context) *gorm.DB
}

type ctxTxKey struct{}

// Client wraps *gorm.DB to provide transaction management
type Client struct {
	db     *gorm.DB
	logger *logger.Logger
}

// NewDB opens the postgres connection
func NewDB(cfg *config.Configuration, log *logger.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
		// Surfaces unique-index violations as gorm.ErrDuplicatedKey so the
		// repositories can mark them as already-exists errors.
		TranslateError: true,
	}
	if cfg.Logging.Level == types.LogLevelDebug {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.Postgres.DSN()), gormCfg)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to connect to postgres").
			Mark(ierr.ErrDatabase)
	}

	log.Infow("connected to postgres",
		"host", cfg.Postgres.Host,
		"database", cfg.Postgres.DBName,
	)
	return db, nil
}

// NewClient creates a new postgres client
func NewClient(db *gorm.DB, log *logger.Logger) IClient {
	return &Client{db: db, logger: log}
}

// WithTx wraps the given function in a transaction. Nested calls reuse the
// transaction already stored in the context.
func (c *Client) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB); ok && tx != nil {
		return fn(ctx)
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, ctxTxKey{}, tx))
	})
}

// Querier returns the transaction handle from the context if present, or the
// base connection otherwise.
func (c *Client) Querier(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(ctxTxKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return c.db.WithContext(ctx)
}
