package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/waterbills/waterbills/internal/config"
	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/jobs"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/testutil"
	"github.com/waterbills/waterbills/internal/types"
)

type schedulerFixture struct {
	scheduler *Scheduler
	pubsub    *testutil.InMemoryPubSub
	buildings *testutil.InMemoryBuildingStore
	invoices  *testutil.InMemoryInvoiceStore
	ctx       context.Context
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()

	cfg := &config.Configuration{
		Logging: config.LoggingConfig{Level: types.LogLevelInfo},
		Scheduler: config.SchedulerConfig{
			Enabled:        true,
			TickInterval:   time.Minute,
			GenerationDay:  25,
			GenerationHour: 2,
			PenaltyHour:    4,
			DisconnectHour: 6,
		},
	}
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	ps := testutil.NewInMemoryPubSub()
	buildings := testutil.NewInMemoryBuildingStore()
	invoices := testutil.NewInMemoryInvoiceStore()

	return &schedulerFixture{
		scheduler: NewScheduler(cfg, jobs.NewPublisher(ps, log), buildings, invoices, log),
		pubsub:    ps,
		buildings: buildings,
		invoices:  invoices,
		ctx:       types.SetUserID(context.Background(), types.DefaultUserID),
	}
}

func (f *schedulerFixture) seedBuilding(t *testing.T, name string) *building.Building {
	t.Helper()
	b := &building.Building{
		ID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUILDING),
		Name:      name,
		Address:   "1 Test Road",
		BaseModel: types.GetDefaultBaseModel(f.ctx),
	}
	require.NoError(t, f.buildings.Create(f.ctx, b))
	return b
}

func (f *schedulerFixture) seedInvoice(t *testing.T, status types.InvoiceStatus, dueDate time.Time) *invoice.Invoice {
	t.Helper()
	inv := &invoice.Invoice{
		ID:               types.GenerateUUIDWithPrefix(types.UUID_PREFIX_INVOICE),
		PremiseID:        types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PREMISE),
		BuildingID:       types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BUILDING),
		Period:           types.Period("2025-02"),
		InvoiceDate:      dueDate.AddDate(0, -1, 0),
		DueDate:          dueDate,
		RentAmount:       decimal.NewFromInt(15000),
		TotalAmount:      decimal.NewFromInt(15000),
		InvoiceStatus:    status,
		ConnectionStatus: types.ConnectionStatusConnected,
		BaseModel:        types.GetDefaultBaseModel(f.ctx),
	}
	if status == types.InvoiceStatusPaid {
		inv.AmountPaid = inv.TotalAmount
	}
	require.NoError(t, f.invoices.Create(f.ctx, inv))
	return inv
}

func TestGenerationFiresOnGenerationDay(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedBuilding(t, "Mji Plaza")
	f.seedBuilding(t, "Upper Hill Court")

	now := time.Date(2025, 3, 25, 2, 0, 0, 0, time.UTC)
	f.scheduler.runDue(now)

	msgs := f.pubsub.Messages(types.JobKindGeneration.Topic())
	require.Len(t, msgs, 2)
	for _, msg := range msgs {
		require.Contains(t, string(msg.Payload), types.NextPeriod(now).String())
	}
}

func TestGenerationSkipsOtherDays(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedBuilding(t, "Mji Plaza")

	f.scheduler.runDue(time.Date(2025, 3, 24, 2, 0, 0, 0, time.UTC))
	require.Empty(t, f.pubsub.Messages(types.JobKindGeneration.Topic()))
}

func TestGenerationWaitsForConfiguredHour(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedBuilding(t, "Mji Plaza")

	f.scheduler.runDue(time.Date(2025, 3, 25, 1, 59, 0, 0, time.UTC))
	require.Empty(t, f.pubsub.Messages(types.JobKindGeneration.Topic()))

	f.scheduler.runDue(time.Date(2025, 3, 25, 2, 0, 0, 0, time.UTC))
	require.Len(t, f.pubsub.Messages(types.JobKindGeneration.Topic()), 1)
}

func TestTriggerFiresOncePerDay(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedBuilding(t, "Mji Plaza")

	day := time.Date(2025, 3, 25, 2, 0, 0, 0, time.UTC)
	f.scheduler.runDue(day)
	f.scheduler.runDue(day.Add(time.Minute))
	f.scheduler.runDue(day.Add(3 * time.Hour))

	require.Len(t, f.pubsub.Messages(types.JobKindGeneration.Topic()), 1)
}

func TestPenaltyEnqueuesOverdueInvoices(t *testing.T) {
	f := newSchedulerFixture(t)

	now := time.Date(2025, 3, 18, 4, 0, 0, 0, time.UTC)
	overdue1 := f.seedInvoice(t, types.InvoiceStatusUnpaid, now.AddDate(0, 0, -10))
	overdue2 := f.seedInvoice(t, types.InvoiceStatusOverdue, now.AddDate(0, 0, -3))
	f.seedInvoice(t, types.InvoiceStatusPaid, now.AddDate(0, 0, -10))
	f.seedInvoice(t, types.InvoiceStatusUnpaid, now.AddDate(0, 0, 5))

	f.scheduler.runDue(now)

	msgs := f.pubsub.Messages(types.JobKindPenalty.Topic())
	require.Len(t, msgs, 2)
	payloads := string(msgs[0].Payload) + string(msgs[1].Payload)
	require.Contains(t, payloads, overdue1.ID)
	require.Contains(t, payloads, overdue2.ID)
}

func TestPenaltyFiresAgainNextDay(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedInvoice(t, types.InvoiceStatusUnpaid, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	f.scheduler.runDue(time.Date(2025, 3, 18, 4, 0, 0, 0, time.UTC))
	f.scheduler.runDue(time.Date(2025, 3, 19, 4, 0, 0, 0, time.UTC))

	require.Len(t, f.pubsub.Messages(types.JobKindPenalty.Topic()), 2)
}

func TestDisconnectFiresAtConfiguredHour(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedBuilding(t, "Mji Plaza")

	f.scheduler.runDue(time.Date(2025, 3, 18, 5, 0, 0, 0, time.UTC))
	require.Empty(t, f.pubsub.Messages(types.JobKindDisconnect.Topic()))

	f.scheduler.runDue(time.Date(2025, 3, 18, 6, 0, 0, 0, time.UTC))
	require.Len(t, f.pubsub.Messages(types.JobKindDisconnect.Topic()), 1)
}

func TestMissedTickCatchesUpLaterInDay(t *testing.T) {
	f := newSchedulerFixture(t)
	f.seedBuilding(t, "Mji Plaza")
	f.seedInvoice(t, types.InvoiceStatusUnpaid, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))

	f.scheduler.runDue(time.Date(2025, 3, 25, 21, 30, 0, 0, time.UTC))

	require.Len(t, f.pubsub.Messages(types.JobKindGeneration.Topic()), 1)
	require.Len(t, f.pubsub.Messages(types.JobKindPenalty.Topic()), 1)
	require.Len(t, f.pubsub.Messages(types.JobKindDisconnect.Topic()), 1)
}
