package notifications

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ContactResolver looks up side-channel addresses for a recipient.
type ContactResolver interface {
	Resolve(ctx context.Context, recipient string) (Contact, error)
}

type ContactResolverFunc func(ctx context.Context, recipient string) (Contact, error)

func (f ContactResolverFunc) Resolve(ctx context.Context, recipient string) (Contact, error) {
	return f(ctx, recipient)
}

type hashGetter interface {
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

// RedisContacts reads contacts from hashes named "<prefix>:<recipient>"
// with the fields email, phone and push_token. Unknown recipients resolve
// to an empty Contact.
type RedisContacts struct {
	client hashGetter
	prefix string
}

func NewRedisContacts(client hashGetter, prefix string) *RedisContacts {
	if prefix == "" {
		prefix = "notify:contact"
	}
	return &RedisContacts{client: client, prefix: prefix}
}

func (r *RedisContacts) Resolve(ctx context.Context, recipient string) (Contact, error) {
	fields, err := r.client.HGetAll(ctx, r.prefix+":"+recipient).Result()
	if err != nil {
		return Contact{}, fmt.Errorf("resolve contact: %w", err)
	}
	return Contact{
		Email:     fields["email"],
		Phone:     fields["phone"],
		PushToken: fields["push_token"],
	}, nil
}
