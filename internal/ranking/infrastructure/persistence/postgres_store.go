package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresWeightStore keeps one row per strategy and signal in PostgreSQL.
type PostgresWeightStore struct {
	pool *pgxpool.Pool
}

// NewPostgresWeightStore creates a store over a migrated database.
func NewPostgresWeightStore(pool *pgxpool.Pool) *PostgresWeightStore {
	return &PostgresWeightStore{pool: pool}
}

// pgQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Load returns the stored configuration, or ErrConfigNotFound when the
// table is empty.
func (s *PostgresWeightStore) Load(ctx context.Context) (domain.WeightConfig, error) {
	return loadPostgres(ctx, s.pool)
}

// Save replaces every stored row in one transaction.
func (s *PostgresWeightStore) Save(ctx context.Context, cfg domain.WeightConfig) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return replacePostgres(ctx, tx, cfg)
	})
}

// Update locks the table, then loads, transforms and replaces the
// configuration in one transaction.
func (s *PostgresWeightStore) Update(ctx context.Context, fn func(domain.WeightConfig, bool) (domain.WeightConfig, error)) (domain.WeightConfig, error) {
	var next domain.WeightConfig
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `LOCK TABLE strategy_weights IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock weights: %w", err)
		}

		current, err := loadPostgres(ctx, tx)
		found := err == nil
		if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
			return err
		}

		next, err = fn(current, found)
		if err != nil {
			return err
		}
		return replacePostgres(ctx, tx, next)
	})
	if err != nil {
		return domain.WeightConfig{}, err
	}
	return next, nil
}

// Ping verifies the pool can reach the server.
func (s *PostgresWeightStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func loadPostgres(ctx context.Context, q pgQuerier) (domain.WeightConfig, error) {
	rows, err := q.Query(ctx, `SELECT strategy, signal, weight FROM strategy_weights ORDER BY strategy, signal`)
	if err != nil {
		return domain.WeightConfig{}, fmt.Errorf("failed to query weights: %w", err)
	}
	defer rows.Close()

	cfg := domain.WeightConfig{Weights: make(map[string]domain.WeightVector)}
	for rows.Next() {
		var strategy, signal string
		var weight float64
		if err := rows.Scan(&strategy, &signal, &weight); err != nil {
			return domain.WeightConfig{}, fmt.Errorf("failed to scan weight: %w", err)
		}
		if cfg.Weights[strategy] == nil {
			cfg.Weights[strategy] = make(domain.WeightVector)
		}
		cfg.Weights[strategy][domain.Signal(signal)] = weight
	}
	if err := rows.Err(); err != nil {
		return domain.WeightConfig{}, fmt.Errorf("failed to read weights: %w", err)
	}
	if len(cfg.Weights) == 0 {
		return domain.WeightConfig{}, domain.ErrConfigNotFound
	}
	return cfg, nil
}

func replacePostgres(ctx context.Context, q pgQuerier, cfg domain.WeightConfig) error {
	if _, err := q.Exec(ctx, `DELETE FROM strategy_weights`); err != nil {
		return fmt.Errorf("failed to clear weights: %w", err)
	}
	for _, strategy := range cfg.Strategies() {
		for sig, weight := range cfg.Weights[strategy] {
			_, err := q.Exec(ctx,
				`INSERT INTO strategy_weights (strategy, signal, weight, updated_at) VALUES ($1, $2, $3, NOW())`,
				strategy, string(sig), weight,
			)
			if err != nil {
				return fmt.Errorf("failed to insert weight %s.%s: %w", strategy, sig, err)
			}
		}
	}
	return nil
}
