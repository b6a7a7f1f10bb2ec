package main

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/waterbills/waterbills/internal/api"
	"github.com/waterbills/waterbills/internal/api/cron"
	v1 "github.com/waterbills/waterbills/internal/api/v1"
	"github.com/waterbills/waterbills/internal/config"
	"github.com/waterbills/waterbills/internal/domain/invoice"
	"github.com/waterbills/waterbills/internal/jobs"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/postgres"
	"github.com/waterbills/waterbills/internal/pubsub"
	"github.com/waterbills/waterbills/internal/pubsub/memory"
	pubsubRouter "github.com/waterbills/waterbills/internal/pubsub/router"
	"github.com/waterbills/waterbills/internal/repository"
	pgrepo "github.com/waterbills/waterbills/internal/repository/postgres"
	"github.com/waterbills/waterbills/internal/scheduler"
	"github.com/waterbills/waterbills/internal/service"
	"github.com/waterbills/waterbills/internal/types"
	"gorm.io/gorm"
)

func init() {
	// All billing periods, due dates and trigger hours are UTC
	time.Local = time.UTC
}

func main() {
	var opts []fx.Option

	opts = append(opts,
		fx.Provide(
			// Config
			config.NewConfig,

			// Logger
			logger.NewLogger,

			// Postgres
			postgres.NewDB,
			postgres.NewClient,

			// Repositories
			repository.NewBuildingRepository,
			repository.NewPremiseRepository,
			repository.NewMeterRepository,
			repository.NewReadingRepository,
			repository.NewInvoiceRepository,
			repository.NewPaymentRepository,
			repository.NewReceiptRepository,
			repository.NewSettingsRepository,
			repository.NewAuditLogRepository,

			// PubSub and job queue
			memory.NewPubSub,
			providePublisher,
			pubsubRouter.NewRouter,
		),
	)

	// Service layer
	opts = append(opts,
		fx.Provide(
			service.NewServiceParams,
			service.NewRegistryService,
			service.NewAllocationService,
			service.NewInvoiceService,
			service.NewPenaltyService,
			service.NewPaymentService,
			service.NewDisconnectionService,
		),
	)

	// Workers, scheduler, API
	opts = append(opts,
		fx.Provide(
			provideWorker,
			scheduler.NewScheduler,
			provideHandlers,
			provideRouter,
		),
		fx.Invoke(startApp),
	)

	app := fx.New(opts...)
	app.Run()
}

func providePublisher(ps pubsub.PubSub, log *logger.Logger) jobs.Publisher {
	return jobs.NewPublisher(ps, log)
}

func provideWorker(
	r *pubsubRouter.Router,
	ps pubsub.PubSub,
	publisher jobs.Publisher,
	cfg *config.Configuration,
	log *logger.Logger,
	invoiceService service.InvoiceService,
	penaltyService service.PenaltyService,
	disconnectionService service.DisconnectionService,
) *jobs.Worker {
	return jobs.NewWorker(r, ps, publisher, cfg, log,
		invoiceService, penaltyService, disconnectionService)
}

func provideHandlers(
	logger *logger.Logger,
	registryService service.RegistryService,
	allocationService service.AllocationService,
	invoiceService service.InvoiceService,
	paymentService service.PaymentService,
	publisher jobs.Publisher,
	invoiceRepo invoice.Repository,
) api.Handlers {
	return api.Handlers{
		Building: v1.NewBuildingHandler(registryService, allocationService, logger),
		Meter:    v1.NewMeterHandler(registryService, logger),
		Invoice:  v1.NewInvoiceHandler(invoiceService, logger),
		Payment:  v1.NewPaymentHandler(paymentService, logger),
		Cron:     cron.NewBillingHandler(publisher, registryService, invoiceRepo, logger),
	}
}

func provideRouter(handlers api.Handlers, cfg *config.Configuration) *gin.Engine {
	if cfg.Deployment.Mode != types.ModeLocal {
		gin.SetMode(gin.ReleaseMode)
	}
	return api.NewRouter(handlers)
}

func startApp(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	db *gorm.DB,
	r *gin.Engine,
	router *pubsubRouter.Router,
	worker *jobs.Worker,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	if cfg.Postgres.AutoMigrate {
		if err := pgrepo.Migrate(db); err != nil {
			log.Fatalf("failed to run schema migration: %v", err)
		}
	}

	mode := cfg.Deployment.Mode
	if mode == "" {
		mode = types.ModeLocal
	}

	switch mode {
	case types.ModeLocal:
		startAPIServer(lc, r, cfg, log)
		startWorker(lc, router, worker, log)
		startScheduler(lc, sched, log)
	case types.ModeAPI:
		startAPIServer(lc, r, cfg, log)
	case types.ModeWorker:
		startWorker(lc, router, worker, log)
		startScheduler(lc, sched, log)
	default:
		log.Fatalf("unknown deployment mode: %s", mode)
	}
}

func startAPIServer(
	lc fx.Lifecycle,
	r *gin.Engine,
	cfg *config.Configuration,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Infow("starting API server", "address", cfg.Server.Address)
			go func() {
				if err := r.Run(cfg.Server.Address); err != nil {
					log.Fatalf("failed to start server: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down server")
			return nil
		},
	})
}

func startWorker(
	lc fx.Lifecycle,
	router *pubsubRouter.Router,
	worker *jobs.Worker,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting job worker")
			worker.RegisterHandlers()
			go func() {
				if err := router.Run(); err != nil {
					log.Errorw("message router stopped", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping job worker")
			return router.Close()
		},
	})
}

func startScheduler(
	lc fx.Lifecycle,
	sched *scheduler.Scheduler,
	log *logger.Logger,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting scheduler")
			sched.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping scheduler")
			sched.Stop()
			return nil
		},
	})
}
