package testutil

import (
	"context"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
)

// InMemoryPubSub is an in-memory implementation of the pubsub.PubSub interface
type InMemoryPubSub struct {
	subscribers map[string][]chan *message.Message
	messages    map[string][]*message.Message
	mu          sync.RWMutex
}

// NewInMemoryPubSub creates a new instance of InMemoryPubSub
func NewInMemoryPubSub() *InMemoryPubSub {
	return &InMemoryPubSub{
		subscribers: make(map[string][]chan *message.Message),
		messages:    make(map[string][]*message.Message),
	}
}

// Publish implements pubsub.Publisher
func (ps *InMemoryPubSub) Publish(ctx context.Context, topic string, msg *message.Message) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.messages[topic] = append(ps.messages[topic], msg)

	for _, ch := range ps.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Skip when the channel is full; tests read via Messages
		}
	}

	return nil
}

// Subscribe implements pubsub.Subscriber
func (ps *InMemoryPubSub) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ch := make(chan *message.Message, 100)
	ps.subscribers[topic] = append(ps.subscribers[topic], ch)
	return ch, nil
}

// Close implements pubsub.PubSub
func (ps *InMemoryPubSub) Close() error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	for _, chans := range ps.subscribers {
		for _, ch := range chans {
			close(ch)
		}
	}
	ps.subscribers = make(map[string][]chan *message.Message)
	return nil
}

// Messages returns all messages published to a topic
func (ps *InMemoryPubSub) Messages(topic string) []*message.Message {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return append([]*message.Message{}, ps.messages[topic]...)
}

// Clear removes all stored messages
func (ps *InMemoryPubSub) Clear() {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.messages = make(map[string][]*message.Message)
}
