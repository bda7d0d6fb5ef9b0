package rediscache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"cv-tracker-backend/internal/domain"
	"cv-tracker-backend/internal/repository/rediscache"
)

func TestListaCacheUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	cache := rediscache.NewListaCache(client, time.Minute)
	ctx := context.Background()

	t.Run("Should report errors instead of a miss", func(t *testing.T) {
		listas, ok, err := cache.Get(ctx)
		assert.Error(t, err)
		assert.False(t, ok)
		assert.Nil(t, listas)
	})

	t.Run("Should wrap write errors", func(t *testing.T) {
		stored, err := cache.Set(ctx, 0, []domain.ListaDetail{})
		assert.ErrorContains(t, err, "redis set listas")
		assert.False(t, stored)
		assert.ErrorContains(t, cache.Invalidate(ctx), "redis del listas")
	})

	t.Run("Should wrap generation read errors", func(t *testing.T) {
		generation, err := cache.Generation(ctx)
		assert.ErrorContains(t, err, "redis get listas generation")
		assert.Zero(t, generation)
	})
}
