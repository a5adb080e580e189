package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
)

// SQLiteWeightStore keeps one row per strategy and signal.
type SQLiteWeightStore struct {
	db *sql.DB
}

// NewSQLiteWeightStore creates a store over a migrated database.
func NewSQLiteWeightStore(db *sql.DB) *SQLiteWeightStore {
	return &SQLiteWeightStore{db: db}
}

// sqliteQuerier is satisfied by *sql.DB and *sql.Tx.
type sqliteQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Load returns the stored configuration, or ErrConfigNotFound when the
// table is empty.
func (s *SQLiteWeightStore) Load(ctx context.Context) (domain.WeightConfig, error) {
	return loadSQLite(ctx, s.db)
}

// Save replaces every stored row in one transaction.
func (s *SQLiteWeightStore) Save(ctx context.Context, cfg domain.WeightConfig) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := replaceSQLite(ctx, tx, cfg); err != nil {
		return err
	}
	return tx.Commit()
}

// Update loads, transforms and replaces the configuration in one
// transaction.
func (s *SQLiteWeightStore) Update(ctx context.Context, fn func(domain.WeightConfig, bool) (domain.WeightConfig, error)) (domain.WeightConfig, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.WeightConfig{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	current, err := loadSQLite(ctx, tx)
	found := err == nil
	if err != nil && !errors.Is(err, domain.ErrConfigNotFound) {
		return domain.WeightConfig{}, err
	}

	next, err := fn(current, found)
	if err != nil {
		return domain.WeightConfig{}, err
	}
	if err := replaceSQLite(ctx, tx, next); err != nil {
		return domain.WeightConfig{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.WeightConfig{}, fmt.Errorf("failed to commit weights: %w", err)
	}
	return next, nil
}

// Ping verifies the connection is still alive.
func (s *SQLiteWeightStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func loadSQLite(ctx context.Context, q sqliteQuerier) (domain.WeightConfig, error) {
	rows, err := q.QueryContext(ctx, `SELECT strategy, signal, weight FROM strategy_weights ORDER BY strategy, signal`)
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

func replaceSQLite(ctx context.Context, q sqliteQuerier, cfg domain.WeightConfig) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM strategy_weights`); err != nil {
		return fmt.Errorf("failed to clear weights: %w", err)
	}
	for _, strategy := range cfg.Strategies() {
		for sig, weight := range cfg.Weights[strategy] {
			_, err := q.ExecContext(ctx,
				`INSERT INTO strategy_weights (strategy, signal, weight, updated_at)
				 VALUES (?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))`,
				strategy, string(sig), weight,
			)
			if err != nil {
				return fmt.Errorf("failed to insert weight %s.%s: %w", strategy, sig, err)
			}
		}
	}
	return nil
}
