package events

import (
	"context"
	"testing"
	"time"

	"github.com/orlangure/gnomock"
	redispreset "github.com/orlangure/gnomock/preset/redis"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	select {
	case event, ok := <-ch:
		require.True(t, ok, "subscription closed")
		return event
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for event")
	}
	return Event{}
}

func TestChannelPublisher(t *testing.T) {
	logger, _ := test.NewNullLogger()
	pub := MakeChannelPublisher(logger)
	defer pub.Close()

	ctx, cancel := context.WithCancel(context.Background())
	first, err := pub.Subscribe(ctx)
	require.NoError(t, err)
	second, err := pub.Subscribe(context.Background())
	require.NoError(t, err)

	event := Event{Type: BlockCommitted, Height: 7, Transactions: []string{"t1"}}
	require.NoError(t, pub.Publish(context.Background(), event))
	assert.Equal(t, event, receive(t, first))
	assert.Equal(t, event, receive(t, second))

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-first
		return !ok
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, pub.Close())
	_, ok := <-second
	assert.False(t, ok)

	// Subscribing after Close returns a closed channel.
	late, err := pub.Subscribe(context.Background())
	require.NoError(t, err)
	_, ok = <-late
	assert.False(t, ok)
}

// A full subscriber channel drops events instead of blocking.
func TestChannelPublisherSkipsFullSubscriber(t *testing.T) {
	logger, hook := test.NewNullLogger()
	pub := MakeChannelPublisher(logger)
	defer pub.Close()

	sub, err := pub.Subscribe(context.Background())
	require.NoError(t, err)

	for i := 0; i < eventChannelBuffer+1; i++ {
		require.NoError(t, pub.Publish(context.Background(), Event{Type: BlockCommitted, Height: uint64(i)}))
	}
	assert.Len(t, sub, eventChannelBuffer)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "skipping full event channel", hook.LastEntry().Message)
}

func TestMakePublisher(t *testing.T) {
	logger, _ := test.NewNullLogger()

	for _, conn := range []string{"", "channels://"} {
		pub, err := MakePublisher(context.Background(), conn, logger)
		require.NoError(t, err)
		assert.IsType(t, &ChannelPublisher{}, pub)
	}

	_, err := MakePublisher(context.Background(), "kafka://localhost:9092", logger)
	assert.EqualError(t, err, "unsupported event publisher scheme: kafka://localhost:9092")

	_, err = MakePublisher(context.Background(), "redis://:bad:port/x", logger)
	assert.Error(t, err)
}

func TestRedisPublisher(t *testing.T) {
	container, err := gnomock.Start(redispreset.Preset())
	require.NoError(t, err, "Error starting gnomock")
	defer func() {
		require.NoError(t, gnomock.Stop(container))
	}()

	logger, _ := test.NewNullLogger()
	ctx := context.Background()
	pub, err := MakePublisher(ctx, "redis://"+container.DefaultAddress(), logger)
	require.NoError(t, err)
	defer pub.Close()
	require.IsType(t, &RedisPublisher{}, pub)

	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	sub, err := pub.Subscribe(subCtx)
	require.NoError(t, err)

	event := Event{Type: BlockCommitted, Height: 3, Transactions: []string{"t1", "t2"}}
	require.NoError(t, pub.Publish(ctx, event))
	assert.Equal(t, event, receive(t, sub))

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-sub
		return !ok
	}, 5*time.Second, 10*time.Millisecond)
}
