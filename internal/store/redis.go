package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"grislo/internal/config"
	"grislo/internal/models"

	"github.com/redis/go-redis/v9"
)

const (
	keySchedule     = "grislo:schedule"
	keyReservations = "grislo:reservations"
	keyLocations    = "grislo:locations"
)

// RedisCache is the local cache tier: one JSON blob per collection under a
// fixed key, the same shape the remote collections use. Mutations are
// load-modify-store; there is a single logical actor per session so no
// cross-key transaction is needed.
type RedisCache struct {
	client *redis.Client
}

// NewRedisClient creates a redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Name() string { return "cache" }

func getJSON[T any](ctx context.Context, client *redis.Client, key string) ([]T, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get %s from redis: %w", key, err)
	}

	var out []T
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return out, nil
}

func setJSON[T any](ctx context.Context, client *redis.Client, key string, records []T) error {
	if client == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := client.Set(ctx, key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s in redis: %w", key, err)
	}
	return nil
}

func (c *RedisCache) LoadSchedule(ctx context.Context) ([]models.OperatingDay, error) {
	return getJSON[models.OperatingDay](ctx, c.client, keySchedule)
}

func (c *RedisCache) LoadReservations(ctx context.Context) ([]models.Reservation, error) {
	return getJSON[models.Reservation](ctx, c.client, keyReservations)
}

func (c *RedisCache) LoadLocations(ctx context.Context) ([]models.PickupLocation, error) {
	return getJSON[models.PickupLocation](ctx, c.client, keyLocations)
}

func (c *RedisCache) ReplaceSchedule(ctx context.Context, days []models.OperatingDay) error {
	return setJSON(ctx, c.client, keySchedule, days)
}

func (c *RedisCache) ReplaceReservations(ctx context.Context, rs []models.Reservation) error {
	return setJSON(ctx, c.client, keyReservations, rs)
}

func (c *RedisCache) ReplaceLocations(ctx context.Context, locs []models.PickupLocation) error {
	return setJSON(ctx, c.client, keyLocations, locs)
}

func (c *RedisCache) UpsertOperatingDay(ctx context.Context, day models.OperatingDay) error {
	days, err := c.LoadSchedule(ctx)
	if err != nil {
		return err
	}
	days = upsertDay(days, day)
	return c.ReplaceSchedule(ctx, days)
}

func (c *RedisCache) DeleteOperatingDay(ctx context.Context, date string) error {
	days, err := c.LoadSchedule(ctx)
	if err != nil {
		return err
	}
	return c.ReplaceSchedule(ctx, removeDay(days, date))
}

func (c *RedisCache) InsertReservation(ctx context.Context, r models.Reservation) error {
	rs, err := c.LoadReservations(ctx)
	if err != nil {
		return err
	}
	return c.ReplaceReservations(ctx, upsertReservation(rs, r))
}

func (c *RedisCache) UpdateReservationStatus(ctx context.Context, id, status string) error {
	rs, err := c.LoadReservations(ctx)
	if err != nil {
		return err
	}
	updated, found := setReservationStatus(rs, id, status)
	if !found {
		return ErrNoRecord
	}
	return c.ReplaceReservations(ctx, updated)
}

func (c *RedisCache) InsertLocation(ctx context.Context, loc models.PickupLocation) error {
	locs, err := c.LoadLocations(ctx)
	if err != nil {
		return err
	}
	return c.ReplaceLocations(ctx, append(locs, loc))
}

func (c *RedisCache) DeleteLocation(ctx context.Context, id string) error {
	locs, err := c.LoadLocations(ctx)
	if err != nil {
		return err
	}
	return c.ReplaceLocations(ctx, removeLocation(locs, id))
}

// Ping verifies the redis connection.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping redis: %w", err)
	}
	return nil
}
