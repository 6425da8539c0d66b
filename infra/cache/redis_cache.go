package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/domain/account"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisAccountCache implements AccountCache using Redis.
type RedisAccountCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// NewRedisAccountCacheWithOptions creates a new RedisAccountCache from redis.Options.
func NewRedisAccountCacheWithOptions(
	opt *redis.Options,
	prefix string,
	ttl time.Duration,
	logger *slog.Logger,
) *RedisAccountCache {
	return &RedisAccountCache{
		client: redis.NewClient(opt),
		prefix: prefix + "accounts:",
		ttl:    ttl,
		logger: logger,
	}
}

func (r *RedisAccountCache) key(familyID uuid.UUID) string {
	return r.prefix + familyID.String()
}

func (r *RedisAccountCache) Get(ctx context.Context, familyID uuid.UUID) ([]*account.Account, bool, error) {
	val, err := r.client.Get(ctx, r.key(familyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.logger.Debug("Redis cache miss", "family_id", familyID)
		return nil, false, nil
	}
	if err != nil {
		r.logger.Error("Redis cache get error", "family_id", familyID, "error", err)
		return nil, false, err
	}
	var accounts []*account.Account
	if err := json.Unmarshal(val, &accounts); err != nil {
		r.logger.Error("Redis cache unmarshal error", "family_id", familyID, "error", err)
		return nil, false, err
	}
	r.logger.Debug("Redis cache hit", "family_id", familyID, "accounts", len(accounts))
	return accounts, true, nil
}

func (r *RedisAccountCache) Set(ctx context.Context, familyID uuid.UUID, accounts []*account.Account) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		r.logger.Error("Redis cache marshal error", "family_id", familyID, "error", err)
		return err
	}
	if err := r.client.Set(ctx, r.key(familyID), data, r.ttl).Err(); err != nil {
		r.logger.Error("Redis cache set error", "family_id", familyID, "error", err)
		return err
	}
	return nil
}

func (r *RedisAccountCache) Invalidate(ctx context.Context, familyID uuid.UUID) error {
	if err := r.client.Del(ctx, r.key(familyID)).Err(); err != nil {
		r.logger.Error("Redis cache delete error", "family_id", familyID, "error", err)
		return err
	}
	r.logger.Debug("Redis cache delete", "family_id", familyID)
	return nil
}

// Flush deletes every key under the cache prefix.
func (r *RedisAccountCache) Flush(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the underlying client.
func (r *RedisAccountCache) Close() error {
	return r.client.Close()
}

var _ cache.AccountCache = (*RedisAccountCache)(nil)
