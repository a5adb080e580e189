package persistence

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleConfig() domain.WeightConfig {
	return domain.WeightConfig{Weights: map[string]domain.WeightVector{
		domain.StrategySmartBalance: {
			domain.SignalUrgency: 0.4, domain.SignalImportance: 0.3, domain.SignalEffort: 0.2, domain.SignalDependency: 0.1,
		},
		"custom": {domain.SignalUrgency: 1},
	}}
}

// runStoreContract exercises the behavior every weight store shares. The
// store must start empty.
func runStoreContract(t *testing.T, store domain.AtomicWeightStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty store reports not found", func(t *testing.T) {
		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrConfigNotFound)
	})

	t.Run("save then load round trip", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sampleConfig()))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, sampleConfig(), got)
	})

	t.Run("save replaces removed strategies", func(t *testing.T) {
		cfg := sampleConfig()
		delete(cfg.Weights, "custom")
		require.NoError(t, store.Save(ctx, cfg))

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{domain.StrategySmartBalance}, got.Strategies())
	})

	t.Run("update sees the current document", func(t *testing.T) {
		updated, err := store.Update(ctx, func(current domain.WeightConfig, found bool) (domain.WeightConfig, error) {
			assert.True(t, found)
			current.Weights["added"] = domain.WeightVector{domain.SignalEffort: 1}
			return current, nil
		})
		require.NoError(t, err)
		assert.Contains(t, updated.Weights, "added")

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("update error leaves store untouched", func(t *testing.T) {
		before, err := store.Load(ctx)
		require.NoError(t, err)

		boom := errors.New("boom")
		_, err = store.Update(ctx, func(domain.WeightConfig, bool) (domain.WeightConfig, error) {
			return domain.WeightConfig{}, boom
		})
		assert.ErrorIs(t, err, boom)

		after, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
	})

	t.Run("concurrent updates are not lost", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.WeightConfig{Weights: map[string]domain.WeightVector{
			"counter": {domain.SignalUrgency: 0},
		}}))

		const writers = 8
		var wg sync.WaitGroup
		for i := 0; i < writers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := store.Update(ctx, func(current domain.WeightConfig, _ bool) (domain.WeightConfig, error) {
					current.Weights["counter"][domain.SignalUrgency]++
					return current, nil
				})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, float64(writers), got.Weights["counter"][domain.SignalUrgency])
	})
}
