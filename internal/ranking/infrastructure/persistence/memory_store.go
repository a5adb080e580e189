package persistence

import (
	"context"
	"sync"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
)

// MemoryWeightStore keeps the configuration in process memory.
type MemoryWeightStore struct {
	mu  sync.Mutex
	cfg *domain.WeightConfig
}

// NewMemoryWeightStore creates an empty in-memory store.
func NewMemoryWeightStore() *MemoryWeightStore {
	return &MemoryWeightStore{}
}

// NewMemoryWeightStoreWith creates an in-memory store seeded with cfg.
func NewMemoryWeightStoreWith(cfg domain.WeightConfig) *MemoryWeightStore {
	c := cfg.Clone()
	return &MemoryWeightStore{cfg: &c}
}

// Load returns a copy of the stored configuration.
func (s *MemoryWeightStore) Load(_ context.Context) (domain.WeightConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cfg == nil {
		return domain.WeightConfig{}, domain.ErrConfigNotFound
	}
	return s.cfg.Clone(), nil
}

// Save replaces the stored configuration.
func (s *MemoryWeightStore) Save(_ context.Context, cfg domain.WeightConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := cfg.Clone()
	s.cfg = &c
	return nil
}

// Update runs fn under the store lock.
func (s *MemoryWeightStore) Update(_ context.Context, fn func(domain.WeightConfig, bool) (domain.WeightConfig, error)) (domain.WeightConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var current domain.WeightConfig
	found := s.cfg != nil
	if found {
		current = s.cfg.Clone()
	}
	next, err := fn(current, found)
	if err != nil {
		return domain.WeightConfig{}, err
	}
	c := next.Clone()
	s.cfg = &c
	return next.Clone(), nil
}

// Ping always succeeds.
func (s *MemoryWeightStore) Ping(context.Context) error {
	return nil
}
