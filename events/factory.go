package events

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// MakePublisher creates the Publisher named by a connection string:
//   - redis://[:password@]host:port[/db] publishes through redis
//   - channels:// or an empty string publishes in process
func MakePublisher(ctx context.Context, connection string, logger *log.Logger) (Publisher, error) {
	if connection == "" {
		connection = "channels://"
	}

	switch {
	case strings.HasPrefix(connection, "redis://"), strings.HasPrefix(connection, "rediss://"):
		opts, err := redis.ParseURL(connection)
		if err != nil {
			return nil, fmt.Errorf("MakePublisher() bad redis url: %w", err)
		}
		return MakeRedisPublisher(ctx, opts, logger)

	case strings.HasPrefix(connection, "channels://"):
		return MakeChannelPublisher(logger), nil

	default:
		return nil, fmt.Errorf("unsupported event publisher scheme: %s", connection)
	}
}
