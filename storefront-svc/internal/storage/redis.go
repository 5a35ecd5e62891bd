package storage

import (
	"context"
	"errors"
	"fmt"

	"huongque-storefront/pkg/events"
	"huongque-storefront/storefront-svc/internal/domain"

	"github.com/redis/go-redis/v9"
)

type RedisBackend struct {
	Client *redis.Client
}

func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{Client: client}
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := b.Client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return data, nil
}

func (b *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if err := b.Client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (b *RedisBackend) SetMany(ctx context.Context, entries map[string][]byte) error {
	_, err := b.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for key, value := range entries {
			pipe.Set(ctx, key, value, 0)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis multi set failed: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.Client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// PopularityReader reads the dish ranking maintained by agg-svc.
type PopularityReader struct {
	Client *redis.Client
}

func NewPopularityReader(client *redis.Client) *PopularityReader {
	return &PopularityReader{Client: client}
}

func (p *PopularityReader) TopDishes(ctx context.Context, limit int) ([]domain.DishPopularity, error) {
	if limit <= 0 {
		limit = 10
	}
	result, err := p.Client.ZRevRangeWithScores(ctx, events.PopularDishesKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis zrevrange failed: %w", err)
	}

	dishes := make([]domain.DishPopularity, 0, len(result))
	for _, member := range result {
		id, ok := member.Member.(string)
		if !ok {
			continue
		}
		dishes = append(dishes, domain.DishPopularity{DishID: id, Ordered: int(member.Score)})
	}
	return dishes, nil
}
