package store

import (
	"context"
	"time"

	"grislo/internal/models"
)

// Kind names one of the logical collections the chain manages.
type Kind string

const (
	KindSchedule     Kind = "schedule"
	KindReservations Kind = "reservations"
	KindLocations    Kind = "locations"
)

// Tier is the read surface every storage tier exposes. Tiers are composed in
// descending precedence (remote, cache, seed); each one either answers or the
// chain moves down.
type Tier interface {
	Name() string
	LoadSchedule(ctx context.Context) ([]models.OperatingDay, error)
	LoadReservations(ctx context.Context) ([]models.Reservation, error)
	LoadLocations(ctx context.Context) ([]models.PickupLocation, error)
}

// Writer is a tier that accepts per-record mutations. The remote and cache
// tiers implement it; the seed tier is read-only.
type Writer interface {
	Tier
	UpsertOperatingDay(ctx context.Context, day models.OperatingDay) error
	DeleteOperatingDay(ctx context.Context, date string) error
	InsertReservation(ctx context.Context, r models.Reservation) error
	UpdateReservationStatus(ctx context.Context, id, status string) error
	InsertLocation(ctx context.Context, loc models.PickupLocation) error
	DeleteLocation(ctx context.Context, id string) error
}

// CacheTier additionally supports wholesale replacement, used to mirror a
// successful remote read.
type CacheTier interface {
	Writer
	ReplaceSchedule(ctx context.Context, days []models.OperatingDay) error
	ReplaceReservations(ctx context.Context, rs []models.Reservation) error
	ReplaceLocations(ctx context.Context, locs []models.PickupLocation) error
}

// Snapshot is a point-in-time view of all three collections, taken once per
// render cycle so a single render stays internally consistent.
type Snapshot struct {
	Schedule     []models.OperatingDay
	Reservations []models.Reservation
	Locations    []models.PickupLocation
	LoadedAt     time.Time
}

// ActiveReservationsFor returns the day's non-cancelled reservations in
// stored order.
func (s *Snapshot) ActiveReservationsFor(date string) []models.Reservation {
	var out []models.Reservation
	for _, r := range s.Reservations {
		if r.Date == date && r.Active() {
			out = append(out, r)
		}
	}
	return out
}

// FindReservation returns the record with the given id, or nil. Linear scan;
// the expected cardinality is hundreds, not millions.
func (s *Snapshot) FindReservation(id string) *models.Reservation {
	for i := range s.Reservations {
		if s.Reservations[i].ID == id {
			return &s.Reservations[i]
		}
	}
	return nil
}

// FindLocation returns the pickup location with the given id, or nil.
func (s *Snapshot) FindLocation(id string) *models.PickupLocation {
	for i := range s.Locations {
		if s.Locations[i].ID == id {
			return &s.Locations[i]
		}
	}
	return nil
}
