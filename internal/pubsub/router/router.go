package router

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/waterbills/waterbills/internal/config"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/pubsub"
	"github.com/waterbills/waterbills/internal/types"
)

// Router manages all job message routing
type Router struct {
	router *message.Router
	logger *logger.Logger
	config *config.JobsConfig
}

// NewRouter creates a new message router. Failed messages that exhaust
// their retries are parked on the dead letter topic instead of being
// redelivered forever.
func NewRouter(cfg *config.Configuration, ps pubsub.PubSub, logger *logger.Logger) (*Router, error) {
	router, err := message.NewRouter(
		message.RouterConfig{},
		watermill.NewStdLogger(false, false),
	)
	if err != nil {
		return nil, err
	}

	poisonQueue, err := middleware.PoisonQueue(
		publisherAdapter{ps},
		types.JobsDeadLetterTopic,
	)
	if err != nil {
		return nil, err
	}

	// Order matters: poison queue must be outermost so it only sees errors
	// that survived the retry policy.
	router.AddMiddleware(
		poisonQueue,
		middleware.Recoverer,
		middleware.CorrelationID,
		middleware.Retry{
			MaxRetries:          cfg.Jobs.MaxRetries,
			InitialInterval:     cfg.Jobs.InitialInterval,
			MaxInterval:         cfg.Jobs.MaxInterval,
			Multiplier:          cfg.Jobs.Multiplier,
			MaxElapsedTime:      cfg.Jobs.MaxElapsedTime,
			RandomizationFactor: 0.5,
			Logger:              watermill.NewStdLogger(false, false),
			OnRetryHook: func(retryNum int, delay time.Duration) {
				logger.Infow("retrying message",
					"retry_number", retryNum,
					"max_retries", cfg.Jobs.MaxRetries,
					"delay", delay,
				)
			},
		}.Middleware,
	)

	return &Router{
		router: router,
		logger: logger,
		config: &cfg.Jobs,
	}, nil
}

// AddNoPublishHandler adds a handler that doesn't publish messages
func (r *Router) AddNoPublishHandler(
	handlerName string,
	topicName string,
	subscriber message.Subscriber,
	handlerFunc func(msg *message.Message) error,
	middlewares ...message.HandlerMiddleware,
) {
	handler := r.router.AddNoPublisherHandler(
		handlerName,
		topicName,
		subscriber,
		func(msg *message.Message) error {
			err := handlerFunc(msg)
			if err != nil {
				r.logger.Errorw("handler failed",
					"handler", handlerName,
					"error", err,
					"correlation_id", middleware.MessageCorrelationID(msg),
					"message_uuid", msg.UUID,
				)
			}
			return err
		},
	)

	for _, middleware := range middlewares {
		handler.AddMiddleware(middleware)
	}
}

// Running is closed once all handlers are started.
func (r *Router) Running() chan struct{} {
	return r.router.Running()
}

// Run starts the router
func (r *Router) Run() error {
	r.logger.Info("starting job router")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	return r.router.Run(ctx)
}

// Close gracefully shuts down the router
func (r *Router) Close() error {
	r.logger.Info("closing job router")
	return r.router.Close()
}

// publisherAdapter exposes a pubsub.Publisher as a watermill
// message.Publisher so middleware can publish to it directly.
type publisherAdapter struct {
	ps pubsub.Publisher
}

func (a publisherAdapter) Publish(topic string, messages ...*message.Message) error {
	for _, msg := range messages {
		if err := a.ps.Publish(context.Background(), topic, msg); err != nil {
			return err
		}
	}
	return nil
}

func (a publisherAdapter) Close() error {
	return nil
}
