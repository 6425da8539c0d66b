package infra

import (
	"fmt"
	"io"
	"log/slog"

	infra_cache "github.com/fammee/finance/infra/cache"
	infra_eventbus "github.com/fammee/finance/infra/eventbus"
	"github.com/fammee/finance/pkg/cache"
	"github.com/fammee/finance/pkg/config"
	"github.com/fammee/finance/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

// NewEventBus builds the configured bus. The returned closer releases its connections.
func NewEventBus(cfg *config.App, logger *slog.Logger) (eventbus.Bus, io.Closer, error) {
	switch cfg.EventBus.Driver {
	case "", "memory":
		bus := infra_eventbus.NewWithMemory(logger)
		return bus, bus, nil
	case "redis":
		bus, err := infra_eventbus.NewWithRedis(cfg.Redis.URL, cfg.EventBus.RedisStream, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Redis event bus: %w", err)
		}
		return bus, bus, nil
	case "kafka":
		bus, err := infra_eventbus.NewWithKafka(cfg.EventBus.KafkaBrokers, cfg.EventBus.KafkaTopic, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Kafka event bus: %w", err)
		}
		return bus, bus, nil
	default:
		return nil, nil, fmt.Errorf("unknown event bus driver %q", cfg.EventBus.Driver)
	}
}

// NewAccountCache builds the configured account list cache.
func NewAccountCache(cfg *config.App, logger *slog.Logger) (cache.AccountCache, error) {
	switch cfg.Cache.Driver {
	case "none":
		return cache.Nop{}, nil
	case "", "memory":
		return infra_cache.NewMemoryCache(cfg.Cache.TTL), nil
	case "redis":
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			logger.Error("Invalid Redis URL", "error", err)
			return nil, err
		}
		opt.PoolSize = cfg.Redis.PoolSize
		opt.DialTimeout = cfg.Redis.DialTimeout
		opt.ReadTimeout = cfg.Redis.ReadTimeout
		opt.WriteTimeout = cfg.Redis.WriteTimeout
		return infra_cache.NewRedisAccountCacheWithOptions(opt, cfg.Redis.KeyPrefix, cfg.Cache.TTL, logger), nil
	default:
		return nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
	}
}
