package domain

import (
	"context"
	"time"

	"grislo/internal/availability"
	"grislo/internal/models"
	"grislo/internal/store"
)

// Store is the tiered storage surface services depend on. Loads walk the
// fallback chain and never fail; writes report the combined dual-write
// outcome.
type Store interface {
	LoadSnapshot(ctx context.Context) *store.Snapshot
	LoadSchedule(ctx context.Context) []models.OperatingDay
	LoadReservations(ctx context.Context) []models.Reservation
	LoadLocations(ctx context.Context) []models.PickupLocation
	SaveReservation(ctx context.Context, r models.Reservation) error
	CancelReservation(ctx context.Context, id string) error
	UpsertOperatingDay(ctx context.Context, day models.OperatingDay) error
	DeleteOperatingDay(ctx context.Context, date string) error
	SaveLocation(ctx context.Context, loc models.PickupLocation) error
	DeleteLocation(ctx context.Context, id string) error
	RemoteDown() bool
}

// SessionStore keeps the per-session list of reservation ids.
type SessionStore interface {
	MyReservations(ctx context.Context, sessionID string) ([]string, error)
	AppendReservation(ctx context.Context, sessionID, reservationID string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MirrorEnqueuer wakes the sheets mirror after a data change.
type MirrorEnqueuer interface {
	Kick()
}

// CreateReservation is the input for ReservationService.Create.
type CreateReservation struct {
	Name           string
	Date           string
	Time           string
	PickupLocation string
	Notes          string
	Passengers     int
	SessionID      string
}

type ReservationService interface {
	Snapshot(ctx context.Context) *availability.Snapshot
	Create(ctx context.Context, req CreateReservation) (*models.Reservation, error)
	Cancel(ctx context.Context, id string, admin bool) error
	FindByID(ctx context.Context, id string) (*models.Reservation, error)
	MyReservations(ctx context.Context, sessionID string) ([]models.Reservation, error)
	Locations(ctx context.Context) []models.PickupLocation
}

type ScheduleService interface {
	OperatingDays(ctx context.Context) []models.OperatingDay
	AddOperatingDay(ctx context.Context, day models.OperatingDay) error
	RemoveOperatingDay(ctx context.Context, date string) error
	AddLocation(ctx context.Context, name, address string) (*models.PickupLocation, error)
	RemoveLocation(ctx context.Context, id string) error
	Stats(ctx context.Context, now time.Time) (*models.Stats, error)
	UpcomingReservations(ctx context.Context, now time.Time, limit int) []models.Reservation
}
