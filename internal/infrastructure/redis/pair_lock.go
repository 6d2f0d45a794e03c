package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"fxhistory-service/internal/application"
	infraconfig "fxhistory-service/internal/infrastructure/config"
)

const lockPrefix = "fxhistory:lock:"

var _ application.PairLocker = (*PairLock)(nil)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// PairLock is a redis lock shared by every process using the same redis,
// so api and worker processes serialize pair creation together.
type PairLock struct {
	Client *redis.Client
	TTL    time.Duration
	Poll   time.Duration
}

func NewPairLock(client *redis.Client, ttl time.Duration) *PairLock {
	return &PairLock{Client: client, TTL: ttl, Poll: infraconfig.DefaultPairLockPoll}
}

func (l *PairLock) Lock(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	k := lockPrefix + key
	poll := l.Poll
	if poll <= 0 {
		poll = infraconfig.DefaultPairLockPoll
	}
	for {
		ok, err := l.Client.SetNX(ctx, k, token, l.TTL).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire %s: %w", key, err)
		}
		if ok {
			break
		}
		t := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
	return func() {
		_ = releaseScript.Run(context.WithoutCancel(ctx), l.Client, []string{k}, token).Err()
	}, nil
}
