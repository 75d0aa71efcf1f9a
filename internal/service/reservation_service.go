package service

import (
	"context"
	"time"

	"grislo/internal/availability"
	"grislo/internal/domain"
	"grislo/internal/events"
	"grislo/internal/metrics"
	"grislo/internal/models"

	"github.com/rs/zerolog"
)

// ReservationService drives the reservation lifecycle over the storage chain.
// All availability decisions happen on a snapshot taken at the start of the
// call; the capacity check and the write are two separate steps, so two
// clients racing for the last seat can both succeed. That overrun is part of
// the contract and is corrected manually by cancellation.
type ReservationService struct {
	store      domain.Store
	sessions   domain.SessionStore
	eventBus   domain.EventPublisher
	mirror     domain.MirrorEnqueuer
	capacity   int
	windowDays int
	maxPax     int
	slots      []string
	now        func() time.Time
	logger     *zerolog.Logger
}

func NewReservationService(
	store domain.Store,
	sessions domain.SessionStore,
	eventBus domain.EventPublisher,
	mirror domain.MirrorEnqueuer,
	capacity, windowDays, maxPassengers int,
	defaultSlots []string,
	logger *zerolog.Logger,
) *ReservationService {
	if capacity <= 0 {
		capacity = models.DefaultVehicleCapacity
	}
	if windowDays <= 0 {
		windowDays = models.DefaultBookingWindowDays
	}
	if maxPassengers <= 0 {
		maxPassengers = models.DefaultMaxPassengers
	}
	if len(defaultSlots) == 0 {
		defaultSlots = models.DefaultTimeSlots
	}
	return &ReservationService{
		store:      store,
		sessions:   sessions,
		eventBus:   eventBus,
		mirror:     mirror,
		capacity:   capacity,
		windowDays: windowDays,
		maxPax:     maxPassengers,
		slots:      defaultSlots,
		now:        time.Now,
		logger:     logger,
	}
}

// SetClock overrides the wall clock, for tests.
func (s *ReservationService) SetClock(now func() time.Time) {
	s.now = now
}

// Snapshot loads all collections once and freezes them with the current
// policy. One snapshot serves one render cycle.
func (s *ReservationService) Snapshot(ctx context.Context) *availability.Snapshot {
	return availability.NewSnapshot(s.now(), s.capacity, s.windowDays, s.slots, s.store.LoadSnapshot(ctx))
}

// Create validates the request against a fresh snapshot, then writes through
// the chain. Validation failures happen before any write.
func (s *ReservationService) Create(ctx context.Context, req domain.CreateReservation) (*models.Reservation, error) {
	if req.PickupLocation == "" {
		return nil, ErrNoPickupLocation
	}
	if req.Passengers > s.maxPax {
		return nil, ErrTooManyPassengers
	}
	date, err := time.Parse(models.DateFormat, req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}
	if _, err := time.Parse(models.TimeSlotFormat, req.Time); err != nil {
		return nil, ErrInvalidTimeSlot
	}

	snap := s.Snapshot(ctx)
	switch {
	case !snap.WithinBookingWindow(date):
		return nil, ErrOutsideWindow
	case !snap.IsOperatingDay(date):
		return nil, ErrDayNotOperating
	case !snap.SlotOffered(date, req.Time):
		return nil, ErrSlotNotOffered
	case snap.RemainingSlots(date, req.Time) <= 0:
		return nil, ErrCapacityExceeded
	}

	now := s.now()
	label := models.AnonymizedLabel(len(snap.ActiveReservationsFor(date)))
	name := req.Name
	if name == "" {
		name = label
	}
	reservation := models.Reservation{
		ID:             models.NewReservationID(now),
		Name:           name,
		DisplayName:    label,
		Date:           req.Date,
		Time:           req.Time,
		PickupLocation: req.PickupLocation,
		Notes:          req.Notes,
		Status:         models.StatusConfirmed,
		CreatedAt:      now,
	}

	if err := s.store.SaveReservation(ctx, reservation); err != nil {
		return nil, err
	}
	metrics.IncReservation("created")

	if req.SessionID != "" {
		if err := s.sessions.AppendReservation(ctx, req.SessionID, reservation.ID); err != nil {
			s.logger.Warn().Err(err).Str("reservation_id", reservation.ID).
				Msg("failed to remember reservation for session")
		}
	}

	s.publish(events.EventReservationCreated, &reservation, "customer")
	s.kickMirror()

	s.logger.Info().
		Str("reservation_id", reservation.ID).
		Str("date", reservation.Date).
		Str("time", reservation.Time).
		Msg("reservation created")
	return &reservation, nil
}

// Cancel flips the reservation to cancelled. Self-service cancellation must
// happen before the service day; admin bypasses the deadline. Cancelling an
// already cancelled reservation reports ErrAlreadyCancelled and changes
// nothing.
func (s *ReservationService) Cancel(ctx context.Context, id string, admin bool) error {
	snap := s.Snapshot(ctx)
	reservation := snap.Data.FindReservation(id)
	if reservation == nil {
		return ErrNotFound
	}
	if !reservation.Active() {
		return ErrAlreadyCancelled
	}

	if !admin {
		date, err := time.Parse(models.DateFormat, reservation.Date)
		if err != nil || !snap.CanCancel(date) {
			return ErrCancelDeadline
		}
	}

	if err := s.store.CancelReservation(ctx, id); err != nil {
		return err
	}
	metrics.IncReservation("cancelled")

	cancelled := *reservation
	cancelled.Status = models.StatusCancelled
	actor := "customer"
	if admin {
		actor = "admin"
	}
	s.publish(events.EventReservationCancelled, &cancelled, actor)
	s.kickMirror()

	s.logger.Info().Str("reservation_id", id).Bool("admin", admin).Msg("reservation cancelled")
	return nil
}

// FindByID looks the reservation up in the current snapshot.
func (s *ReservationService) FindByID(ctx context.Context, id string) (*models.Reservation, error) {
	r := s.store.LoadSnapshot(ctx).FindReservation(id)
	if r == nil {
		return nil, ErrNotFound
	}
	return r, nil
}

// MyReservations resolves the session's reservation ids against current data.
// Ids whose records have disappeared are skipped.
func (s *ReservationService) MyReservations(ctx context.Context, sessionID string) ([]models.Reservation, error) {
	ids, err := s.sessions.MyReservations(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	snap := s.store.LoadSnapshot(ctx)
	var out []models.Reservation
	for _, id := range ids {
		if r := snap.FindReservation(id); r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// Locations returns the pickup locations in sort order.
func (s *ReservationService) Locations(ctx context.Context) []models.PickupLocation {
	return s.store.LoadLocations(ctx)
}

func (s *ReservationService) publish(eventType string, r *models.Reservation, actor string) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.PublishJSON(eventType, events.ReservationEventPayload{
		ReservationID: r.ID,
		DisplayName:   r.DisplayName,
		Date:          r.Date,
		Time:          r.Time,
		Location:      r.PickupLocation,
		Status:        r.Status,
		ChangedBy:     actor,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("event", eventType).Msg("failed to publish event")
	}
}

func (s *ReservationService) kickMirror() {
	if s.mirror != nil {
		s.mirror.Kick()
	}
}
