package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"cv-tracker-backend/internal/domain"
)

const (
	listasKey     = "cv-tracker:listas:all"
	generationKey = "cv-tracker:listas:generation"
)

// setIfGenerationScript writes the snapshot only while the generation
// counter still holds the value read before loading.
// KEYS[1] = snapshot, KEYS[2] = generation
// ARGV[1] = expected generation, ARGV[2] = payload, ARGV[3] = ttl in ms
const setIfGenerationScript = `
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`

type listaCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewListaCache stores the populated read-all result under a single key.
func NewListaCache(client *redis.Client, ttl time.Duration) domain.ListaCache {
	return &listaCache{client: client, ttl: ttl}
}

func (c *listaCache) Get(ctx context.Context) ([]domain.ListaDetail, bool, error) {
	raw, err := c.client.Get(ctx, listasKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get listas: %w", err)
	}

	var listas []domain.ListaDetail
	if err := json.Unmarshal(raw, &listas); err != nil {
		// corrupt entry, drop it and report a miss
		_ = c.client.Del(ctx, listasKey).Err()
		return nil, false, nil
	}
	return listas, true, nil
}

// Generation returns the invalidation counter; a missing key is 0.
func (c *listaCache) Generation(ctx context.Context) (int64, error) {
	generation, err := c.client.Get(ctx, generationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get listas generation: %w", err)
	}
	return generation, nil
}

func (c *listaCache) Set(ctx context.Context, generation int64, listas []domain.ListaDetail) (bool, error) {
	raw, err := json.Marshal(listas)
	if err != nil {
		return false, fmt.Errorf("marshal listas: %w", err)
	}
	stored, err := c.client.Eval(ctx, setIfGenerationScript,
		[]string{listasKey, generationKey},
		strconv.FormatInt(generation, 10), raw, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis set listas: %w", err)
	}
	return stored == 1, nil
}

// Invalidate drops the snapshot and bumps the generation in one MULTI so a
// load that started earlier cannot write its result back.
func (c *listaCache) Invalidate(ctx context.Context) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, listasKey)
		pipe.Incr(ctx, generationKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis del listas: %w", err)
	}
	return nil
}
