package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/internal/ranking/infrastructure/persistence"
	"github.com/felixgeelhaar/triage/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/triage/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/triage/pkg/config"
	"github.com/felixgeelhaar/triage/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const postgresMaxConns = 4

// StoreFactory opens the weight store selected by configuration. It keeps
// the connections it opened so the container can close them.
type StoreFactory struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics observability.Metrics

	sqliteDB    *sql.DB
	pool        *pgxpool.Pool
	redisClient *redis.Client
}

// NewStoreFactory creates a new store factory.
func NewStoreFactory(cfg *config.Config, logger *slog.Logger, metrics observability.Metrics) *StoreFactory {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &StoreFactory{cfg: cfg, logger: logger, metrics: metrics}
}

// WeightStore opens the configured store. Remote stores are wrapped in a
// circuit breaker.
func (f *StoreFactory) WeightStore(ctx context.Context) (domain.AtomicWeightStore, error) {
	switch f.cfg.WeightStore {
	case config.StoreMemory:
		return persistence.NewMemoryWeightStore(), nil

	case config.StoreFile, "":
		store, err := persistence.NewFileWeightStore(f.cfg.WeightsPath, f.logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open weights file: %w", err)
		}
		return store, nil

	case config.StoreSQLite:
		db, err := database.OpenSQLite(ctx, f.cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		f.sqliteDB = db
		f.logger.Info("weight store ready", "driver", config.StoreSQLite, "path", f.cfg.SQLitePath)
		return persistence.NewSQLiteWeightStore(db), nil

	case config.StorePostgres:
		pool, err := database.OpenPostgres(ctx, f.cfg.DatabaseURL, postgresMaxConns)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		f.pool = pool
		f.logger.Info("weight store ready", "driver", config.StorePostgres)
		return f.guard(config.StorePostgres, persistence.NewPostgresWeightStore(pool)), nil

	case config.StoreRedis:
		opt, err := redis.ParseURL(f.cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opt)
		if err := client.Ping(ctx).Err(); err != nil {
			// Reads fall back to the default table while Redis is down.
			f.logger.Warn("Redis not reachable, weights will use defaults until it is", "error", err)
		}
		f.redisClient = client
		f.logger.Info("weight store ready", "driver", config.StoreRedis, "key", f.cfg.RedisKey)
		return f.guard(config.StoreRedis, persistence.NewRedisWeightStore(client, f.cfg.RedisKey, f.logger)), nil

	default:
		return nil, fmt.Errorf("unsupported weight store: %s", f.cfg.WeightStore)
	}
}

func (f *StoreFactory) guard(name string, inner domain.AtomicWeightStore) domain.AtomicWeightStore {
	breaker := persistence.DefaultBreakerConfig(name)
	if f.cfg.BreakerFailures > 0 {
		breaker.FailureThreshold = f.cfg.BreakerFailures
	}
	if f.cfg.BreakerTimeout > 0 {
		breaker.Timeout = f.cfg.BreakerTimeout
	}
	return persistence.NewResilientWeightStore(inner, breaker, f.logger, f.metrics)
}

// Close releases every connection the factory opened.
func (f *StoreFactory) Close() {
	if f.redisClient != nil {
		if err := f.redisClient.Close(); err != nil {
			f.logger.Warn("error closing Redis connection", "error", err)
		}
		f.redisClient = nil
	}
	if f.pool != nil {
		f.pool.Close()
		f.pool = nil
	}
	if f.sqliteDB != nil {
		if err := f.sqliteDB.Close(); err != nil {
			f.logger.Warn("error closing SQLite connection", "error", err)
		}
		f.sqliteDB = nil
	}
}
