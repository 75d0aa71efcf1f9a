package service

import (
	"context"
	"time"

	"grislo/internal/domain"
	"grislo/internal/events"
	"grislo/internal/models"

	"github.com/rs/zerolog"
)

// ScheduleService covers the admin side: operating days, pickup locations
// and the dashboard numbers.
type ScheduleService struct {
	store    domain.Store
	eventBus domain.EventPublisher
	mirror   domain.MirrorEnqueuer
	logger   *zerolog.Logger
}

func NewScheduleService(store domain.Store, eventBus domain.EventPublisher, mirror domain.MirrorEnqueuer, logger *zerolog.Logger) *ScheduleService {
	return &ScheduleService{
		store:    store,
		eventBus: eventBus,
		mirror:   mirror,
		logger:   logger,
	}
}

// OperatingDays returns the schedule sorted by date.
func (s *ScheduleService) OperatingDays(ctx context.Context) []models.OperatingDay {
	return s.store.LoadSchedule(ctx)
}

// AddOperatingDay validates and upserts one schedule entry. An existing entry
// for the same date is replaced.
func (s *ScheduleService) AddOperatingDay(ctx context.Context, day models.OperatingDay) error {
	if _, err := time.Parse(models.DateFormat, day.Date); err != nil {
		return ErrInvalidDate
	}
	seen := make(map[string]bool, len(day.TimeSlots))
	for _, slot := range day.TimeSlots {
		if _, err := time.Parse(models.TimeSlotFormat, slot); err != nil {
			return ErrInvalidTimeSlot
		}
		if seen[slot] {
			return ErrInvalidTimeSlot
		}
		seen[slot] = true
	}

	if err := s.store.UpsertOperatingDay(ctx, day); err != nil {
		return err
	}
	s.publishSchedule("upsert", day.Date)
	s.logger.Info().Str("date", day.Date).Int("slots", len(day.TimeSlots)).Msg("operating day saved")
	return nil
}

// RemoveOperatingDay deletes the entry for the date. A missing date reports
// ErrNotFound.
func (s *ScheduleService) RemoveOperatingDay(ctx context.Context, date string) error {
	if _, err := time.Parse(models.DateFormat, date); err != nil {
		return ErrInvalidDate
	}
	if err := s.store.DeleteOperatingDay(ctx, date); err != nil {
		return err
	}
	s.publishSchedule("delete", date)
	s.logger.Info().Str("date", date).Msg("operating day removed")
	return nil
}

// AddLocation creates a pickup location with a generated id, appended after
// the current sort order.
func (s *ScheduleService) AddLocation(ctx context.Context, name, address string) (*models.PickupLocation, error) {
	if name == "" {
		return nil, ErrNoPickupLocation
	}

	maxOrder := 0
	for _, loc := range s.store.LoadLocations(ctx) {
		if loc.SortOrder > maxOrder {
			maxOrder = loc.SortOrder
		}
	}
	loc := models.PickupLocation{
		ID:        models.NewLocationID(),
		Name:      name,
		Address:   address,
		SortOrder: maxOrder + 1,
	}
	if err := s.store.SaveLocation(ctx, loc); err != nil {
		return nil, err
	}
	s.publishSchedule("location_added", "")
	s.logger.Info().Str("location_id", loc.ID).Str("name", name).Msg("pickup location added")
	return &loc, nil
}

// RemoveLocation deletes a pickup location by id.
func (s *ScheduleService) RemoveLocation(ctx context.Context, id string) error {
	if err := s.store.DeleteLocation(ctx, id); err != nil {
		return err
	}
	s.publishSchedule("location_removed", "")
	s.logger.Info().Str("location_id", id).Msg("pickup location removed")
	return nil
}

// Stats computes the dashboard counters: today's active reservations, total
// active, scheduled days from today on, and total cancelled.
func (s *ScheduleService) Stats(ctx context.Context, now time.Time) (*models.Stats, error) {
	snap := s.store.LoadSnapshot(ctx)
	today := now.Format(models.DateFormat)

	stats := &models.Stats{}
	for _, r := range snap.Reservations {
		if !r.Active() {
			stats.Cancelled++
			continue
		}
		stats.TotalReservations++
		if r.Date == today {
			stats.TodayReservations++
		}
	}
	for _, d := range snap.Schedule {
		if d.Available && d.Date >= today {
			stats.UpcomingDays++
		}
	}
	return stats, nil
}

// UpcomingReservations lists active reservations from today on, soonest
// first, capped at limit.
func (s *ScheduleService) UpcomingReservations(ctx context.Context, now time.Time, limit int) []models.Reservation {
	today := now.Format(models.DateFormat)

	var upcoming []models.Reservation
	for _, r := range s.store.LoadReservations(ctx) {
		if r.Active() && r.Date >= today {
			upcoming = append(upcoming, r)
		}
	}
	sortReservationsByDeparture(upcoming)
	if limit > 0 && len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming
}

func (s *ScheduleService) publishSchedule(action, date string) {
	if s.eventBus == nil {
		return
	}
	err := s.eventBus.PublishJSON(events.EventScheduleUpdated, events.ScheduleEventPayload{
		Action: action,
		Date:   date,
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("action", action).Msg("failed to publish event")
	}
	if s.mirror != nil {
		s.mirror.Kick()
	}
}
