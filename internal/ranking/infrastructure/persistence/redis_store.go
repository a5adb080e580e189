package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key holding the weight document.
const DefaultRedisKey = "triage:weights"

// RedisWeightStore keeps the JSON weight document under a single key.
// Update uses WATCH/MULTI so concurrent writers retry instead of
// overwriting each other.
type RedisWeightStore struct {
	client redis.UniversalClient
	key    string
	logger *slog.Logger
}

// NewRedisWeightStore creates a store for key ("" means DefaultRedisKey).
func NewRedisWeightStore(client redis.UniversalClient, key string, logger *slog.Logger) *RedisWeightStore {
	if key == "" {
		key = DefaultRedisKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisWeightStore{client: client, key: key, logger: logger}
}

// Load reads and decodes the document.
func (s *RedisWeightStore) Load(ctx context.Context) (domain.WeightConfig, error) {
	return s.get(ctx, s.client)
}

// Save overwrites the document.
func (s *RedisWeightStore) Save(ctx context.Context, cfg domain.WeightConfig) error {
	data, err := EncodeConfig(cfg, FormatJSON)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.key, err)
	}
	return nil
}

// Update runs an optimistic read-modify-write cycle, retrying when the
// key changes between WATCH and EXEC.
func (s *RedisWeightStore) Update(ctx context.Context, fn func(domain.WeightConfig, bool) (domain.WeightConfig, error)) (domain.WeightConfig, error) {
	var next domain.WeightConfig

	txf := func(tx *redis.Tx) error {
		current, err := s.get(ctx, tx)
		found := err == nil
		switch {
		case errors.Is(err, domain.ErrConfigNotFound):
		case errors.Is(err, domain.ErrConfigCorrupt):
			s.logger.WarnContext(ctx, "replacing malformed weight document", "key", s.key, "error", err)
		case err != nil:
			return err
		}

		next, err = fn(current, found)
		if err != nil {
			return err
		}
		data, err := EncodeConfig(next, FormatJSON)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.key, data, 0)
			return nil
		})
		return err
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, s.key)
		if err == nil {
			return next, nil
		}
		if !errors.Is(err, redis.TxFailedErr) {
			return domain.WeightConfig{}, err
		}
		s.logger.DebugContext(ctx, "weight document changed during update, retrying",
			"key", s.key,
			"attempt", attempt,
		)
	}
	return domain.WeightConfig{}, ErrConcurrentUpdate
}

// Ping verifies the server is reachable.
func (s *RedisWeightStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// redisGetter is satisfied by clients and *redis.Tx.
type redisGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (s *RedisWeightStore) get(ctx context.Context, c redisGetter) (domain.WeightConfig, error) {
	data, err := c.Get(ctx, s.key).Bytes()
	if err == redis.Nil {
		return domain.WeightConfig{}, domain.ErrConfigNotFound
	}
	if err != nil {
		return domain.WeightConfig{}, fmt.Errorf("failed to read %s: %w", s.key, err)
	}
	return DecodeConfig(data, FormatJSON)
}
