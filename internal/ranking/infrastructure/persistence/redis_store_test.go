package persistence

import (
	"context"
	"os"
	"testing"

	"github.com/felixgeelhaar/triage/internal/ranking/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisWeightStore(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	client := redis.NewClient(opt)
	defer client.Close()

	ctx := context.Background()
	key := "triage:test:" + uuid.NewString()
	t.Cleanup(func() { client.Del(context.Background(), key) })

	store := NewRedisWeightStore(client, key, nil)
	runStoreContract(t, store)
	require.NoError(t, store.Ping(ctx))

	t.Run("malformed document", func(t *testing.T) {
		require.NoError(t, client.Set(ctx, key, "{oops", 0).Err())

		_, err := store.Load(ctx)
		assert.ErrorIs(t, err, domain.ErrConfigCorrupt)

		_, err = store.Update(ctx, func(_ domain.WeightConfig, found bool) (domain.WeightConfig, error) {
			assert.False(t, found)
			return domain.DefaultWeightConfig(), nil
		})
		require.NoError(t, err)
	})
}

func TestNewRedisWeightStore_DefaultKey(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	defer client.Close()

	store := NewRedisWeightStore(client, "", nil)
	assert.Equal(t, DefaultRedisKey, store.key)
}
