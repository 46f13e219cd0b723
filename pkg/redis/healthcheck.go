package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
}

// Healthcheck reports ErrUnavailable while the server does not answer PING.
// Mounted as the "redis" readiness check of notifyd.
func Healthcheck(client pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil
	}
}
