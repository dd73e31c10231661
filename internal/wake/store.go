package wake

import (
	"fmt"

	"github.com/koios/epaper-weather/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewStore builds the store selected by cfg.Store.
// rdb may be nil unless the redis store is selected.
func NewStore(cfg config.WakeConfig, rdb redis.Cmdable, logger *zap.Logger) (Store, error) {
	switch cfg.Store {
	case "file", "":
		return NewFileStore(cfg.StatePath, logger), nil
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis wake store requires a Redis connection")
		}
		return NewRedisStore(rdb, cfg.RedisKey, logger), nil
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown wake store %q", cfg.Store)
	}
}
