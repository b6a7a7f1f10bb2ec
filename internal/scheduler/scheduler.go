package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/waterbills/waterbills/internal/config"
	"github.com/waterbills/waterbills/internal/domain/building"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/jobs"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/types"
)

// Scheduler drives the recurring billing jobs. On every tick it checks
// which triggers are due and calls the idempotent enqueue operations:
// invoice generation for the next period on the configured day of month,
// penalty recomputation and disconnection evaluation daily.
//
// The timer is a plain tick loop with per-trigger last-run guards, so a
// missed tick is caught up on the next one and a repeated tick is a no-op.
// The clock is injectable for tests.
type Scheduler struct {
	cfg       config.SchedulerConfig
	log       *logger.Logger
	publisher jobs.Publisher

	buildingRepo building.Repository
	invoiceRepo  invoice.Repository

	clock func() time.Time

	mu                 sync.Mutex
	lastGenerationDate string
	lastPenaltyDate    string
	lastDisconnectDate string

	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

// NewScheduler creates a new scheduler
func NewScheduler(
	cfg *config.Configuration,
	publisher jobs.Publisher,
	buildingRepo building.Repository,
	invoiceRepo invoice.Repository,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		cfg:          cfg.Scheduler,
		log:          log,
		publisher:    publisher,
		buildingRepo: buildingRepo,
		invoiceRepo:  invoiceRepo,
		clock:        time.Now,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start begins the tick loop. Returns immediately; triggers fire from a
// background goroutine until Stop is called.
func (s *Scheduler) Start() {
	if !s.cfg.Enabled {
		s.log.Info("scheduler disabled")
		close(s.done)
		return
	}

	tick := s.cfg.TickInterval
	if tick <= 0 {
		tick = time.Minute
	}

	s.log.Infow("scheduler starting",
		"tick_interval", tick,
		"generation_day", s.cfg.GenerationDay,
		"penalty_hour", s.cfg.PenaltyHour,
		"disconnect_hour", s.cfg.DisconnectHour,
	)

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(tick)
		defer ticker.Stop()

		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.runDue(s.clock().UTC())
			}
		}
	}()
}

// Stop halts the tick loop and waits for it to drain.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stop) })
	<-s.done
}

// runDue fires every trigger that is due at the given instant.
func (s *Scheduler) runDue(now time.Time) {
	today := now.Format("2006-01-02")

	s.mu.Lock()
	fireGeneration := now.Day() == s.cfg.GenerationDay &&
		now.Hour() >= s.cfg.GenerationHour &&
		s.lastGenerationDate != today
	if fireGeneration {
		s.lastGenerationDate = today
	}
	firePenalty := now.Hour() >= s.cfg.PenaltyHour && s.lastPenaltyDate != today
	if firePenalty {
		s.lastPenaltyDate = today
	}
	fireDisconnect := now.Hour() >= s.cfg.DisconnectHour && s.lastDisconnectDate != today
	if fireDisconnect {
		s.lastDisconnectDate = today
	}
	s.mu.Unlock()

	ctx := types.SetUserID(context.Background(), types.DefaultUserID)

	if fireGeneration {
		s.triggerGeneration(ctx, now)
	}
	if firePenalty {
		s.triggerPenalties(ctx, now)
	}
	if fireDisconnect {
		s.triggerDisconnects(ctx)
	}
}

// triggerGeneration enqueues invoice generation for the upcoming period for
// every building. Running near the end of the month, it targets the next
// calendar month.
func (s *Scheduler) triggerGeneration(ctx context.Context, now time.Time) {
	period := types.NextPeriod(now)
	buildings, err := s.buildingRepo.List(ctx)
	if err != nil {
		s.log.Errorw("generation trigger failed to list buildings", "error", err)
		return
	}

	for _, b := range buildings {
		if err := s.publisher.EnqueueGeneration(ctx, b.ID, period); err != nil {
			s.log.Errorw("failed to enqueue generation job",
				"building_id", b.ID,
				"period", period,
				"error", err,
			)
		}
	}
	s.log.Infow("generation trigger fired",
		"period", period,
		"buildings", len(buildings),
	)
}

// triggerPenalties enqueues a penalty recomputation for every invoice that
// is past due and not settled.
func (s *Scheduler) triggerPenalties(ctx context.Context, now time.Time) {
	invoices, err := s.invoiceRepo.ListOverdueEligible(ctx, now)
	if err != nil {
		s.log.Errorw("penalty trigger failed to list invoices", "error", err)
		return
	}

	for _, inv := range invoices {
		if err := s.publisher.EnqueuePenalty(ctx, inv.ID); err != nil {
			s.log.Errorw("failed to enqueue penalty job",
				"invoice_id", inv.ID,
				"error", err,
			)
		}
	}
	s.log.Infow("penalty trigger fired", "invoices", len(invoices))
}

func (s *Scheduler) triggerDisconnects(ctx context.Context) {
	buildings, err := s.buildingRepo.List(ctx)
	if err != nil {
		s.log.Errorw("disconnect trigger failed to list buildings", "error", err)
		return
	}

	for _, b := range buildings {
		if err := s.publisher.EnqueueDisconnect(ctx, b.ID); err != nil {
			s.log.Errorw("failed to enqueue disconnect job",
				"building_id", b.ID,
				"error", err,
			)
		}
	}
	s.log.Infow("disconnect trigger fired", "buildings", len(buildings))
}
