package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	adserrors "github.com/Aztech-1729/sliptads/internal/domain/ads/errors"
)

const keyPrefix = "sliptads:lease:"

const refreshScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0`

const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// Client is the subset of the Redis client used by Lease
type Client interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *goredis.Cmd
}

// Lease is a per-user worker lease shared by all replicas
type Lease struct {
	client Client
	owner  string
	ttl    time.Duration
	logger zerolog.Logger
}

// NewLease creates a lease owned by this process
func NewLease(client Client, ttl time.Duration, logger zerolog.Logger) *Lease {
	return &Lease{
		client: client,
		owner:  uuid.NewString(),
		ttl:    ttl,
		logger: logger.With().Str("component", "worker_lease").Logger(),
	}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Acquire takes the lease unless another owner holds it
func (l *Lease) Acquire(ctx context.Context, userID int64) (bool, error) {
	ok, err := l.client.SetNX(ctx, key(userID), l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lease: %w", err)
	}
	if !ok {
		l.logger.Debug().Int64("user_id", userID).Msg("Lease held by another replica")
	}
	return ok, nil
}

// Refresh extends the lease if this process still owns it
func (l *Lease) Refresh(ctx context.Context, userID int64) error {
	res, err := l.client.Eval(ctx, refreshScript, []string{key(userID)}, l.owner, l.ttl.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("failed to refresh lease: %w", err)
	}
	if res == 0 {
		return fmt.Errorf("%w: user %d", adserrors.ErrLeaseLost, userID)
	}
	return nil
}

// Release drops the lease if this process owns it
func (l *Lease) Release(ctx context.Context, userID int64) error {
	if err := l.client.Eval(ctx, releaseScript, []string{key(userID)}, l.owner).Err(); err != nil {
		return fmt.Errorf("failed to release lease: %w", err)
	}
	return nil
}
