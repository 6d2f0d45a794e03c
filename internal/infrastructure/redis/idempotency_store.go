package redisstore

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"fxhistory-service/internal/application"
)

const idemPrefix = "fxhistory:idem:"

var _ application.IdempotencyStore = (*Store)(nil)

// Store reserves idempotency keys with SET NX and a TTL.
type Store struct {
	Client *redis.Client
	TTL    time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Store {
	return &Store{Client: client, TTL: ttl}
}

func (s *Store) TryReserve(ctx context.Context, key string) (bool, error) {
	return s.Client.SetNX(ctx, idemPrefix+key, "1", s.TTL).Result()
}
