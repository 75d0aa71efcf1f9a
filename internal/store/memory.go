package store

import (
	"context"
	"sync"

	"grislo/internal/models"
)

// MemoryCache is the cache tier used when redis is not configured. Same
// contract as RedisCache, process-local only.
type MemoryCache struct {
	mu           sync.RWMutex
	schedule     []models.OperatingDay
	reservations []models.Reservation
	locations    []models.PickupLocation
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Name() string { return "cache" }

func (c *MemoryCache) LoadSchedule(ctx context.Context) ([]models.OperatingDay, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.OperatingDay(nil), c.schedule...), nil
}

func (c *MemoryCache) LoadReservations(ctx context.Context) ([]models.Reservation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.Reservation(nil), c.reservations...), nil
}

func (c *MemoryCache) LoadLocations(ctx context.Context) ([]models.PickupLocation, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]models.PickupLocation(nil), c.locations...), nil
}

func (c *MemoryCache) ReplaceSchedule(ctx context.Context, days []models.OperatingDay) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule = append([]models.OperatingDay(nil), days...)
	return nil
}

func (c *MemoryCache) ReplaceReservations(ctx context.Context, rs []models.Reservation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservations = append([]models.Reservation(nil), rs...)
	return nil
}

func (c *MemoryCache) ReplaceLocations(ctx context.Context, locs []models.PickupLocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations = append([]models.PickupLocation(nil), locs...)
	return nil
}

func (c *MemoryCache) UpsertOperatingDay(ctx context.Context, day models.OperatingDay) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule = upsertDay(c.schedule, day)
	return nil
}

func (c *MemoryCache) DeleteOperatingDay(ctx context.Context, date string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.schedule = removeDay(c.schedule, date)
	return nil
}

func (c *MemoryCache) InsertReservation(ctx context.Context, r models.Reservation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reservations = upsertReservation(c.reservations, r)
	return nil
}

func (c *MemoryCache) UpdateReservationStatus(ctx context.Context, id, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	updated, found := setReservationStatus(c.reservations, id, status)
	if !found {
		return ErrNoRecord
	}
	c.reservations = updated
	return nil
}

func (c *MemoryCache) InsertLocation(ctx context.Context, loc models.PickupLocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations = append(c.locations, loc)
	return nil
}

func (c *MemoryCache) DeleteLocation(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.locations = removeLocation(c.locations, id)
	return nil
}
