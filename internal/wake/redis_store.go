package wake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/koios/epaper-weather/pkg/models"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisStore keeps the state as a JSON value under one key
type RedisStore struct {
	client redis.Cmdable
	key    string
	state  models.WakeState
	logger *zap.Logger
}

// NewRedisStore creates a store on an existing client
func NewRedisStore(client redis.Cmdable, key string, logger *zap.Logger) *RedisStore {
	return &RedisStore{client: client, key: key, logger: logger}
}

// Begin fetches the key; a missing key or an unparsable value is not valid state
func (s *RedisStore) Begin(ctx context.Context) bool {
	s.state = models.WakeState{}

	val, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("Failed to read wake state from Redis", zap.String("key", s.key), zap.Error(err))
		}
		return false
	}

	var state models.WakeState
	if err := json.Unmarshal(val, &state); err != nil || state.Counter < 0 {
		s.logger.Warn("Corrupt wake state in Redis", zap.String("key", s.key))
		return false
	}

	s.state = state
	return true
}

// Data returns the working state
func (s *RedisStore) Data() *models.WakeState {
	return &s.state
}

// Save stores the state without expiry
func (s *RedisStore) Save(ctx context.Context) error {
	data, err := json.Marshal(s.state)
	if err != nil {
		return fmt.Errorf("failed to marshal wake state: %w", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store wake state: %w", err)
	}
	return nil
}
