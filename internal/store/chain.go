package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"grislo/internal/metrics"
	"grislo/internal/models"

	"github.com/rs/zerolog"
)

// DefaultRecoveryInterval is how long the chain waits before probing a remote
// tier it has marked down.
const DefaultRecoveryInterval = time.Minute

// Chain presents the three collections as one logical read/write surface over
// the tiers in descending precedence: remote, cache, seed.
//
// Reads fall through tier by tier and never surface an error: callers always
// get data or an empty result. A successful remote read that yields data
// overwrites the cache wholesale for that collection; an empty schedule or
// locations read falls through instead (see loadKind). Writes go to the
// remote store and the cache
// independently; a remote failure does not block the cache write and is never
// rolled back, so the tiers may diverge until the next successful remote read
// reconciles them.
type Chain struct {
	remote Writer // nil when the remote tier is not configured
	cache  CacheTier
	seed   Tier // nil when no seed data is bundled
	logger *zerolog.Logger

	recoveryInterval time.Duration
	isDown           atomic.Bool
	mu               sync.Mutex
	lastCheck        time.Time
}

func NewChain(remote Writer, cache CacheTier, seed Tier, logger *zerolog.Logger) *Chain {
	return &Chain{
		remote:           remote,
		cache:            cache,
		seed:             seed,
		logger:           logger,
		recoveryInterval: DefaultRecoveryInterval,
	}
}

// SetRecoveryInterval overrides the probe interval. Tests shorten it.
func (c *Chain) SetRecoveryInterval(d time.Duration) {
	c.recoveryInterval = d
}

// RemoteDown reports whether the remote tier is currently considered
// unreachable.
func (c *Chain) RemoteDown() bool {
	return c.remote == nil || c.isDown.Load()
}

func (c *Chain) remoteUsable() bool {
	if c.remote == nil {
		return false
	}
	if !c.isDown.Load() {
		return true
	}

	// Down: allow one probe per recovery interval.
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastCheck) > c.recoveryInterval {
		c.lastCheck = time.Now()
		return true
	}
	return false
}

func (c *Chain) remoteSucceeded() {
	c.isDown.Store(false)
}

func (c *Chain) remoteFailed(kind Kind, op string, err error) {
	c.logger.Error().Err(err).Str("kind", string(kind)).Str("op", op).
		Msg("remote store failed, continuing on lower tiers")
	c.mu.Lock()
	c.lastCheck = time.Now()
	c.mu.Unlock()
	c.isDown.Store(true)
}

// loadKind walks the tiers for one collection: remote (mirrored into the
// cache on success), then cache, then seed.
//
// trustEmptyRemote decides what a reachable remote with zero records means.
// For reservations an empty set is real data (the collection starts empty and
// stays the source of truth, so stale cache entries must not resurrect). For
// schedule and locations an empty read means the tier was never provisioned;
// those fall through without mirroring so the cache or the bundled seed can
// still serve.
func loadKind[T any](
	ctx context.Context,
	c *Chain,
	kind Kind,
	trustEmptyRemote bool,
	fromRemote func(Writer) ([]T, error),
	fromCache func(CacheTier) ([]T, error),
	mirror func(CacheTier, []T) error,
	fromSeed func(Tier) ([]T, error),
) []T {
	if c.remoteUsable() {
		records, err := fromRemote(c.remote)
		if err == nil {
			c.remoteSucceeded()
			if len(records) > 0 || trustEmptyRemote {
				if mirrorErr := mirror(c.cache, records); mirrorErr != nil {
					c.logger.Warn().Err(mirrorErr).Str("kind", string(kind)).
						Msg("cache mirror failed after remote read")
				}
				return records
			}
		} else {
			c.remoteFailed(kind, "load", err)
		}
	}

	records, err := fromCache(c.cache)
	if err != nil {
		c.logger.Warn().Err(err).Str("kind", string(kind)).Msg("cache read failed")
	} else if len(records) > 0 {
		metrics.IncTierFallback(string(kind), "cache")
		return records
	}

	if c.seed != nil {
		records, err = fromSeed(c.seed)
		if err != nil {
			c.logger.Warn().Err(err).Str("kind", string(kind)).Msg("seed read failed")
		} else if len(records) > 0 {
			metrics.IncTierFallback(string(kind), "seed")
			return records
		}
	}

	return nil
}

func (c *Chain) LoadSchedule(ctx context.Context) []models.OperatingDay {
	return loadKind(ctx, c, KindSchedule, false,
		func(w Writer) ([]models.OperatingDay, error) { return w.LoadSchedule(ctx) },
		func(t CacheTier) ([]models.OperatingDay, error) { return t.LoadSchedule(ctx) },
		func(t CacheTier, days []models.OperatingDay) error { return t.ReplaceSchedule(ctx, days) },
		func(t Tier) ([]models.OperatingDay, error) { return t.LoadSchedule(ctx) },
	)
}

func (c *Chain) LoadReservations(ctx context.Context) []models.Reservation {
	return loadKind(ctx, c, KindReservations, true,
		func(w Writer) ([]models.Reservation, error) { return w.LoadReservations(ctx) },
		func(t CacheTier) ([]models.Reservation, error) { return t.LoadReservations(ctx) },
		func(t CacheTier, rs []models.Reservation) error { return t.ReplaceReservations(ctx, rs) },
		func(t Tier) ([]models.Reservation, error) { return t.LoadReservations(ctx) },
	)
}

func (c *Chain) LoadLocations(ctx context.Context) []models.PickupLocation {
	return loadKind(ctx, c, KindLocations, false,
		func(w Writer) ([]models.PickupLocation, error) { return w.LoadLocations(ctx) },
		func(t CacheTier) ([]models.PickupLocation, error) { return t.LoadLocations(ctx) },
		func(t CacheTier, locs []models.PickupLocation) error { return t.ReplaceLocations(ctx, locs) },
		func(t Tier) ([]models.PickupLocation, error) { return t.LoadLocations(ctx) },
	)
}

// LoadSnapshot reads all three collections once, for a single render cycle.
func (c *Chain) LoadSnapshot(ctx context.Context) *Snapshot {
	return &Snapshot{
		Schedule:     c.LoadSchedule(ctx),
		Reservations: c.LoadReservations(ctx),
		Locations:    c.LoadLocations(ctx),
		LoadedAt:     time.Now(),
	}
}

// writeBoth applies one mutation to the remote store and the cache. The two
// writes are independent; neither failure rolls back the other.
func (c *Chain) writeBoth(kind Kind, op string, mutate func(Writer) error) error {
	var remoteOK, remoteNotFound bool

	if c.remoteUsable() {
		err := mutate(c.remote)
		switch {
		case err == nil:
			c.remoteSucceeded()
			remoteOK = true
		case errors.Is(err, ErrNoRecord):
			remoteNotFound = true
		default:
			metrics.IncRemoteWriteFailure(string(kind))
			c.remoteFailed(kind, op, err)
		}
	} else if c.remote != nil {
		// Skipped during the down-window: the tiers still diverge.
		metrics.IncRemoteWriteFailure(string(kind))
	}

	cacheErr := mutate(c.cache)
	if cacheErr == nil {
		return nil
	}
	if errors.Is(cacheErr, ErrNoRecord) {
		if remoteOK {
			// Remote had the record; cache will catch up on next sync.
			return nil
		}
		return ErrNoRecord
	}

	c.logger.Error().Err(cacheErr).Str("kind", string(kind)).Str("op", op).Msg("cache write failed")
	if remoteOK {
		return nil
	}
	if remoteNotFound {
		return ErrNoRecord
	}
	return cacheErr
}

func (c *Chain) SaveReservation(ctx context.Context, r models.Reservation) error {
	return c.writeBoth(KindReservations, "insert", func(w Writer) error {
		return w.InsertReservation(ctx, r)
	})
}

// CancelReservation marks the record cancelled in both tiers. Returns
// ErrNoRecord when the id resolves nowhere. The seat is not "returned"
// anywhere; remaining-slot figures are always recomputed from the live set.
func (c *Chain) CancelReservation(ctx context.Context, id string) error {
	return c.writeBoth(KindReservations, "cancel", func(w Writer) error {
		return w.UpdateReservationStatus(ctx, id, models.StatusCancelled)
	})
}

func (c *Chain) UpsertOperatingDay(ctx context.Context, day models.OperatingDay) error {
	return c.writeBoth(KindSchedule, "upsert", func(w Writer) error {
		return w.UpsertOperatingDay(ctx, day)
	})
}

func (c *Chain) DeleteOperatingDay(ctx context.Context, date string) error {
	return c.writeBoth(KindSchedule, "delete", func(w Writer) error {
		return w.DeleteOperatingDay(ctx, date)
	})
}

func (c *Chain) SaveLocation(ctx context.Context, loc models.PickupLocation) error {
	return c.writeBoth(KindLocations, "insert", func(w Writer) error {
		return w.InsertLocation(ctx, loc)
	})
}

func (c *Chain) DeleteLocation(ctx context.Context, id string) error {
	return c.writeBoth(KindLocations, "delete", func(w Writer) error {
		return w.DeleteLocation(ctx, id)
	})
}
