package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/felixgeelhaar/triage/pkg/observability"
)

// WeightSource tells where an effective configuration came from.
type WeightSource string

const (
	WeightSourceStored  WeightSource = "stored"
	WeightSourceDefault WeightSource = "default"
)

// WeightService resolves strategy weights and applies feedback against a
// WeightStore. The store is read on every call.
type WeightService struct {
	store   domain.WeightStore
	logger  *slog.Logger
	metrics observability.Metrics

	// guards read-modify-write for stores without native atomic update
	mu sync.Mutex
}

// NewWeightService creates a new weight service.
func NewWeightService(store domain.WeightStore, logger *slog.Logger, metrics observability.Metrics) *WeightService {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &WeightService{
		store:   store,
		logger:  logger,
		metrics: metrics,
	}
}

// Current returns the effective configuration. A missing, unreadable or
// empty store yields the default table.
func (s *WeightService) Current(ctx context.Context) (domain.WeightConfig, WeightSource) {
	cfg, err := s.store.Load(ctx)
	switch {
	case errors.Is(err, domain.ErrConfigNotFound):
		s.logger.DebugContext(ctx, "no stored weight configuration, using defaults")
		s.metrics.Counter(observability.MetricWeightsFallbacks, 1, observability.T("reason", "missing"))
		return domain.DefaultWeightConfig(), WeightSourceDefault
	case err != nil:
		s.logger.WarnContext(ctx, "weight configuration unavailable, using defaults", "error", err)
		s.metrics.Counter(observability.MetricWeightsFallbacks, 1, observability.T("reason", "error"))
		return domain.DefaultWeightConfig(), WeightSourceDefault
	case len(cfg.Weights) == 0:
		s.logger.WarnContext(ctx, "stored weight configuration is empty, using defaults")
		s.metrics.Counter(observability.MetricWeightsFallbacks, 1, observability.T("reason", "empty"))
		return domain.DefaultWeightConfig(), WeightSourceDefault
	}
	return cfg, WeightSourceStored
}

// Resolve returns the weight vector for a strategy. Lookup order is the
// stored strategy, the built-in strategy, the stored smart_balance and
// finally the built-in smart_balance.
func (s *WeightService) Resolve(ctx context.Context, strategy string) domain.WeightVector {
	if strategy == "" {
		strategy = domain.DefaultStrategy
	}
	cfg, _ := s.Current(ctx)

	if vec, ok := cfg.Weights[strategy]; ok && vec != nil {
		return vec.Clone()
	}
	if vec, ok := domain.DefaultWeightsFor(strategy); ok {
		return vec
	}
	s.logger.DebugContext(ctx, "unknown strategy, using smart_balance", observability.StrategyKey, strategy)
	if vec, ok := cfg.Weights[domain.StrategySmartBalance]; ok && vec != nil {
		return vec.Clone()
	}
	vec, _ := domain.DefaultWeightsFor(domain.StrategySmartBalance)
	return vec
}

// ApplyFeedback adds the adjustments to the stored weights, renormalizes
// every touched strategy and writes the whole configuration back. The
// complete updated configuration is returned.
func (s *WeightService) ApplyFeedback(ctx context.Context, adjustments domain.Adjustments) (domain.WeightConfig, error) {
	if err := adjustments.Validate(); err != nil {
		return domain.WeightConfig{}, err
	}

	if atomic, ok := s.store.(domain.AtomicWeightStore); ok {
		updated, err := atomic.Update(ctx, func(current domain.WeightConfig, found bool) (domain.WeightConfig, error) {
			if !found || len(current.Weights) == 0 {
				current = domain.DefaultWeightConfig()
			}
			return adjustments.Apply(current), nil
		})
		if err != nil {
			return domain.WeightConfig{}, fmt.Errorf("failed to update weights: %w", err)
		}
		return updated, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, _ := s.Current(ctx)
	updated := adjustments.Apply(current)
	if err := s.store.Save(ctx, updated); err != nil {
		return domain.WeightConfig{}, fmt.Errorf("failed to save weights: %w", err)
	}
	return updated, nil
}
