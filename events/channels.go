package events

import (
	"context"

	"github.com/algorand/go-deadlock"
	log "github.com/sirupsen/logrus"
)

const eventChannelBuffer = 100

// ChannelPublisher delivers events in process. A subscriber that does not
// keep up misses events rather than blocking the publisher.
type ChannelPublisher struct {
	log *log.Logger

	mu          deadlock.Mutex
	subscribers map[chan Event]struct{}
	closed      bool
}

// MakeChannelPublisher creates an in-process publisher.
func MakeChannelPublisher(logger *log.Logger) *ChannelPublisher {
	return &ChannelPublisher{
		log:         logger,
		subscribers: make(map[chan Event]struct{}),
	}
}

// Publish is part of Publisher.
func (cp *ChannelPublisher) Publish(ctx context.Context, event Event) error {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	for sub := range cp.subscribers {
		select {
		case sub <- event:
		case <-ctx.Done():
			return ctx.Err()
		default:
			cp.log.WithField("height", event.Height).Warn("skipping full event channel")
		}
	}
	return nil
}

// Subscribe is part of Publisher.
func (cp *ChannelPublisher) Subscribe(ctx context.Context) (<-chan Event, error) {
	sub := make(chan Event, eventChannelBuffer)

	cp.mu.Lock()
	if cp.closed {
		cp.mu.Unlock()
		close(sub)
		return sub, nil
	}
	cp.subscribers[sub] = struct{}{}
	cp.mu.Unlock()

	go func() {
		<-ctx.Done()
		cp.unsubscribe(sub)
	}()
	return sub, nil
}

func (cp *ChannelPublisher) unsubscribe(sub chan Event) {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	if _, ok := cp.subscribers[sub]; ok {
		delete(cp.subscribers, sub)
		close(sub)
	}
}

// Close ends every subscription.
func (cp *ChannelPublisher) Close() error {
	cp.mu.Lock()
	defer cp.mu.Unlock()
	for sub := range cp.subscribers {
		delete(cp.subscribers, sub)
		close(sub)
	}
	cp.closed = true
	return nil
}
