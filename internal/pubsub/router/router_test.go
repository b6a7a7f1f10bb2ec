package router

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/waterbills/waterbills/internal/config"
	ierr "github.com/waterbills/waterbills/internal/errors"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/pubsub/memory"
	"github.com/waterbills/waterbills/internal/types"
)

func TestRetryExhaustionParksMessageOnDeadLetterTopic(t *testing.T) {
	cfg := &config.Configuration{
		Logging: config.LoggingConfig{Level: types.LogLevelInfo},
		Jobs: config.JobsConfig{
			MaxRetries:      1,
			InitialInterval: time.Millisecond,
			MaxInterval:     5 * time.Millisecond,
			Multiplier:      1,
		},
	}
	log, err := logger.NewLogger(cfg)
	require.NoError(t, err)

	ps := memory.NewPubSub(cfg, log)
	r, err := NewRouter(cfg, ps, log)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	deadLetters, err := ps.Subscribe(ctx, types.JobsDeadLetterTopic)
	require.NoError(t, err)

	var attempts atomic.Int32
	r.AddNoPublishHandler(
		"failing_worker",
		"jobs.always_failing",
		ps,
		func(msg *message.Message) error {
			attempts.Add(1)
			return ierr.NewError("connection refused").
				WithHint("Failed to reach the database").
				Mark(ierr.ErrDatabase)
		},
	)

	go func() {
		_ = r.Run()
	}()
	defer r.Close()

	select {
	case <-r.Running():
	case <-time.After(10 * time.Second):
		t.Fatal("router did not start")
	}

	msg := message.NewMessage(watermill.NewUUID(), []byte(`{"building_id":"bld_1"}`))
	require.NoError(t, ps.Publish(ctx, "jobs.always_failing", msg))

	select {
	case dead := <-deadLetters:
		dead.Ack()
		assert.Equal(t, msg.Payload, dead.Payload)
		assert.NotEmpty(t, dead.Metadata.Get(middleware.ReasonForPoisonedKey))
	case <-time.After(10 * time.Second):
		t.Fatal("message never reached the dead letter topic")
	}

	// The initial delivery plus the configured retry
	assert.GreaterOrEqual(t, attempts.Load(), int32(2))
}

func TestPermanentFailureClassification(t *testing.T) {
	permanent := []error{
		ierr.NewError("bad input").Mark(ierr.ErrValidation),
		ierr.NewError("missing").Mark(ierr.ErrNotFound),
		ierr.NewError("wrong state").Mark(ierr.ErrInvalidOperation),
		ierr.NewError("no settings").Mark(ierr.ErrConfigurationMissing),
	}
	for _, err := range permanent {
		assert.True(t, IsPermanentFailure(err), "expected permanent: %v", err)
	}

	transient := []error{
		ierr.NewError("connection refused").Mark(ierr.ErrDatabase),
		ierr.NewError("unknown").Mark(ierr.ErrSystem),
	}
	for _, err := range transient {
		assert.False(t, IsPermanentFailure(err), "expected transient: %v", err)
	}
}
