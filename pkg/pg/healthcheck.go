package pg

import (
	"context"
	"fmt"
)

type pinger interface {
	Ping(ctx context.Context) error
}

// Healthcheck reports ErrNotificationStoreDown while the pool cannot reach
// the notifications database.
func Healthcheck(pool pinger) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %w", ErrNotificationStoreDown, err)
		}
		return nil
	}
}
