package redis_test

import (
	"context"
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/modernmen/notifier/pkg/redis"
)

type stubPinger struct{ err error }

func (s stubPinger) Ping(ctx context.Context) *goredis.StatusCmd {
	cmd := goredis.NewStatusCmd(ctx)
	if s.err != nil {
		cmd.SetErr(s.err)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func TestHealthcheck(t *testing.T) {
	t.Parallel()

	assert.NoError(t, redis.Healthcheck(stubPinger{})(context.Background()))

	err := redis.Healthcheck(stubPinger{err: errors.New("connection refused")})(context.Background())
	assert.ErrorIs(t, err, redis.ErrUnavailable)
	assert.ErrorContains(t, err, "connection refused")
}
