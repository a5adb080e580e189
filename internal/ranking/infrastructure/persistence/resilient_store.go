package persistence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/pkg/observability"
	"github.com/sony/gobreaker/v2"
)

// ErrStoreUnavailable is returned while the circuit breaker is open.
var ErrStoreUnavailable = errors.New("weight store unavailable")

// BreakerConfig configures the circuit breaker around a remote store.
type BreakerConfig struct {
	Name             string
	FailureThreshold uint32
	Timeout          time.Duration
	MaxRequests      uint32
	Interval         time.Duration
}

// DefaultBreakerConfig trips after three consecutive failures and probes
// again after 30 seconds.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		FailureThreshold: 3,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
		Interval:         time.Minute,
	}
}

// Pinger is implemented by stores with a cheap liveness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ResilientWeightStore guards a remote store with a circuit breaker.
// Missing or malformed documents are answers, not failures, and never
// trip the breaker.
type ResilientWeightStore struct {
	inner   domain.AtomicWeightStore
	breaker *gobreaker.CircuitBreaker[domain.WeightConfig]
	logger  *slog.Logger
}

// NewResilientWeightStore wraps inner.
func NewResilientWeightStore(inner domain.AtomicWeightStore, cfg BreakerConfig, logger *slog.Logger, metrics observability.Metrics) *ResilientWeightStore {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}

	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"store", name,
				"from", from.String(),
				"to", to.String(),
			)
			metrics.Gauge(observability.MetricBreakerState, float64(to), observability.T("store", name))
		},
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, domain.ErrConfigNotFound) ||
				errors.Is(err, domain.ErrConfigCorrupt) ||
				errors.Is(err, domain.ErrInvalidAdjustment) ||
				errors.Is(err, context.Canceled)
		},
	}

	return &ResilientWeightStore{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker[domain.WeightConfig](settings),
		logger:  logger,
	}
}

// Load reads through the breaker.
func (s *ResilientWeightStore) Load(ctx context.Context) (domain.WeightConfig, error) {
	cfg, err := s.breaker.Execute(func() (domain.WeightConfig, error) {
		return s.inner.Load(ctx)
	})
	return cfg, s.mapError(err)
}

// Save writes through the breaker.
func (s *ResilientWeightStore) Save(ctx context.Context, cfg domain.WeightConfig) error {
	_, err := s.breaker.Execute(func() (domain.WeightConfig, error) {
		return cfg, s.inner.Save(ctx, cfg)
	})
	return s.mapError(err)
}

// Update runs the inner atomic update through the breaker.
func (s *ResilientWeightStore) Update(ctx context.Context, fn func(domain.WeightConfig, bool) (domain.WeightConfig, error)) (domain.WeightConfig, error) {
	cfg, err := s.breaker.Execute(func() (domain.WeightConfig, error) {
		return s.inner.Update(ctx, fn)
	})
	return cfg, s.mapError(err)
}

// Ping checks the inner store through the breaker when it supports it.
func (s *ResilientWeightStore) Ping(ctx context.Context) error {
	p, ok := s.inner.(Pinger)
	if !ok {
		return nil
	}
	_, err := s.breaker.Execute(func() (domain.WeightConfig, error) {
		return domain.WeightConfig{}, p.Ping(ctx)
	})
	return s.mapError(err)
}

// State returns the breaker state name.
func (s *ResilientWeightStore) State() string {
	return s.breaker.State().String()
}

func (s *ResilientWeightStore) mapError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
