package memory

import (
	"context"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/waterbills/waterbills/internal/config"
	"github.com/waterbills/waterbills/internal/logger"
	"github.com/waterbills/waterbills/internal/pubsub"
)

// PubSub implements both Publisher and Subscriber interfaces using
// watermill's gochannel. A single process runs both the enqueue side and
// the workers, so an in-process channel is enough.
type PubSub struct {
	pubsub *gochannel.GoChannel
	config *config.JobsConfig
	logger *logger.Logger
}

// NewPubSub creates a new memory-based pubsub
func NewPubSub(
	cfg *config.Configuration,
	logger *logger.Logger,
) pubsub.PubSub {
	goChannel := gochannel.NewGoChannel(
		gochannel.Config{
			// Messages published before a subscriber attaches are kept
			Persistent:                     true,
			BlockPublishUntilSubscriberAck: false,
			OutputChannelBuffer:            100,
		},
		watermill.NewStdLogger(false, false),
	)

	return &PubSub{
		pubsub: goChannel,
		config: &cfg.Jobs,
		logger: logger,
	}
}

// Publish publishes a job message
func (p *PubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	return p.pubsub.Publish(topic, msg)
}

// Subscribe starts consuming job messages
func (p *PubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, topic)
}

// Close closes both publisher and subscriber
func (p *PubSub) Close() error {
	return p.pubsub.Close()
}
