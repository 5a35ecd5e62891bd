package storage

import (
	"context"
	"fmt"
	"time"

	"huongque-storefront/pkg/events"

	"github.com/redis/go-redis/v9"
)

const dailyTTL = 7 * 24 * time.Hour

type Store struct {
	rdb *redis.Client
}

func NewStore(rdb *redis.Client) *Store {
	return &Store{rdb: rdb}
}

// RecordOrder adds each item's quantity to the all-time and daily dish
// rankings.
func (s *Store) RecordOrder(ctx context.Context, items []events.EventItem, day time.Time) error {
	if day.IsZero() {
		day = time.Now()
	}
	dailyKey := events.DailyDishesPrefix + day.Format("2006-01-02")

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, item := range items {
			if item.DishID == "" || item.Quantity <= 0 {
				continue
			}
			pipe.ZIncrBy(ctx, events.PopularDishesKey, float64(item.Quantity), item.DishID)
			pipe.ZIncrBy(ctx, dailyKey, float64(item.Quantity), item.DishID)
		}
		pipe.Expire(ctx, dailyKey, dailyTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record order: %w", err)
	}
	return nil
}

// RecordBooking counts a booking and its guests against the booked date.
func (s *Store) RecordBooking(ctx context.Context, day string, guests int) error {
	if day == "" {
		return fmt.Errorf("record booking: missing date")
	}
	key := events.DailyBookingPrefix + day

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HIncrBy(ctx, key, "count", 1)
		pipe.HIncrBy(ctx, key, "guests", int64(guests))
		pipe.Expire(ctx, key, dailyTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("record booking: %w", err)
	}
	return nil
}
