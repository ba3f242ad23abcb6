package events

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/ledgerkit/ledgerdb/internal/encoding"
)

// RedisPublisher publishes events on a redis pub/sub channel so that other
// processes can follow the ledger.
type RedisPublisher struct {
	log    *log.Logger
	client *redis.Client
}

// MakeRedisPublisher connects to redis and checks the connection.
func MakeRedisPublisher(ctx context.Context, opts *redis.Options, logger *log.Logger) (*RedisPublisher, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("MakeRedisPublisher() err: %w", err)
	}
	logger.WithField("addr", opts.Addr).Info("connected to redis")
	return &RedisPublisher{log: logger, client: client}, nil
}

// Publish is part of Publisher.
func (rp *RedisPublisher) Publish(ctx context.Context, event Event) error {
	err := rp.client.Publish(ctx, Channel, encoding.EncodeJSON(event)).Err()
	if err != nil {
		return fmt.Errorf("Publish() err: %w", err)
	}
	return nil
}

// Subscribe is part of Publisher. Messages that do not decode are logged and
// dropped.
func (rp *RedisPublisher) Subscribe(ctx context.Context) (<-chan Event, error) {
	pubsub := rp.client.Subscribe(ctx, Channel)
	// Wait for the subscription so no event published after Subscribe
	// returns is missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("Subscribe() err: %w", err)
	}

	out := make(chan Event, eventChannelBuffer)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var event Event
				if err := encoding.DecodeJSON([]byte(msg.Payload), &event); err != nil {
					rp.log.WithError(err).Warnf("Subscribe() dropping undecodable event '%s'", msg.Payload)
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Close is part of Publisher.
func (rp *RedisPublisher) Close() error {
	return rp.client.Close()
}
