package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterbills/waterbills/internal/config"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

// stubInvoiceService lets tests drive handler outcomes per attempt.
type stubInvoiceService struct {
	service.InvoiceService
	err   error
	calls int
}

func (s *stubInvoiceService) GenerateBuildingInvoices(ctx context.Context, buildingID string, period types.Period) ([]*service.GenerationResult, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return []*service.GenerationResult{}, nil
}

func newTestWorker(t *testing.T) (*Worker, *stubInvoiceService, Publisher, *testutil.InMemoryPubSub) {
	t.Helper()
	log, err := logger.NewLogger(&config.Configuration{
		Logging: config.LoggingConfig{Level: types.LogLevelInfo},
	})
	require.NoError(t, err)

	cfg := &config.Configuration{
		Jobs: config.JobsConfig{HandlerTimeout: time.Minute},
	}
	ps := testutil.NewInMemoryPubSub()
	pub := NewPublisher(ps, log)
	invoiceService := &stubInvoiceService{}
	w := NewWorker(nil, ps, pub, cfg, log, invoiceService, nil, nil)
	return w, invoiceService, pub, ps
}

func TestKeyStaysHeldWhileRetryIsPending(t *testing.T) {
	w, invoiceService, pub, ps := newTestWorker(t)
	ctx := context.Background()

	require.NoError(t, pub.EnqueueGeneration(ctx, "bld_1", "2025-02"))
	msg := ps.Messages(types.JobKindGeneration.Topic())[0]

	// First attempt fails transiently; the router owes the message a retry
	invoiceService.err = ierr.NewError("connection refused").
		WithHint("Failed to load premises").
		Mark(ierr.ErrDatabase)
	require.Error(t, w.handleGeneration(msg))

	// A repeated trigger in the retry window must be deduplicated
	require.NoError(t, pub.EnqueueGeneration(ctx, "bld_1", "2025-02"))
	assert.Len(t, ps.Messages(types.JobKindGeneration.Topic()), 1)

	// The retry succeeds and releases the key for the next trigger
	invoiceService.err = nil
	require.NoError(t, w.handleGeneration(msg))
	require.NoError(t, pub.EnqueueGeneration(ctx, "bld_1", "2025-02"))
	assert.Len(t, ps.Messages(types.JobKindGeneration.Topic()), 2)
	assert.Equal(t, 2, invoiceService.calls)
}

func TestPermanentFailureReleasesKey(t *testing.T) {
	w, invoiceService, pub, ps := newTestWorker(t)
	ctx := context.Background()

	require.NoError(t, pub.EnqueueGeneration(ctx, "bld_1", "2025-02"))
	msg := ps.Messages(types.JobKindGeneration.Topic())[0]

	// A not-found building is dropped without redelivery, so the key must
	// not stay held
	invoiceService.err = ierr.NewError("building not found").
		WithHint("Building not found").
		Mark(ierr.ErrNotFound)
	require.Error(t, w.handleGeneration(msg))

	require.NoError(t, pub.EnqueueGeneration(ctx, "bld_1", "2025-02"))
	assert.Len(t, ps.Messages(types.JobKindGeneration.Topic()), 2)
}

func TestDeadLetterHandlerReleasesKey(t *testing.T) {
	w, _, pub, ps := newTestWorker(t)
	ctx := context.Background()

	require.NoError(t, pub.EnqueueGeneration(ctx, "bld_1", "2025-02"))
	msg := ps.Messages(types.JobKindGeneration.Topic())[0]

	// Retry exhaustion parks the message on the dead letter topic; the
	// handler there frees the key so the next trigger can enqueue again
	require.NoError(t, w.handleDeadLetter(msg))

	require.NoError(t, pub.EnqueueGeneration(ctx, "bld_1", "2025-02"))
	assert.Len(t, ps.Messages(types.JobKindGeneration.Topic()), 2)
}
