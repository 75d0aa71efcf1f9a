// Package availability answers, for a point-in-time snapshot of schedule,
// reservations and policy, whether a given day is operable, whether a slot
// can be booked, and how many seats remain. Everything here is pure; storage
// access happens upstream once per render cycle.
package availability

import (
	"time"

	"grislo/internal/models"
	"grislo/internal/store"
)

// Snapshot is the frozen input for one render cycle.
type Snapshot struct {
	// Today is the current calendar day, normalized to midnight.
	Today time.Time

	// Policy fields from the service configuration.
	Capacity     int
	WindowDays   int
	DefaultSlots []string

	Data *store.Snapshot
}

// NewSnapshot freezes the given data against a wall-clock "now".
func NewSnapshot(now time.Time, capacity, windowDays int, defaultSlots []string, data *store.Snapshot) *Snapshot {
	if data == nil {
		data = &store.Snapshot{}
	}
	return &Snapshot{
		Today:        Midnight(now),
		Capacity:     capacity,
		WindowDays:   windowDays,
		DefaultSlots: defaultSlots,
		Data:         data,
	}
}

// Midnight truncates a timestamp to its calendar day.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DateKey formats a day the way the collections key it.
func DateKey(t time.Time) string {
	return t.Format(models.DateFormat)
}

// WithinBookingWindow reports today <= date <= today+WindowDays, inclusive on
// both ends, ignoring time of day.
func (s *Snapshot) WithinBookingWindow(date time.Time) bool {
	day := Midnight(date)
	if day.Before(s.Today) {
		return false
	}
	maxDay := s.Today.AddDate(0, 0, s.WindowDays)
	return !day.After(maxDay)
}

// IsOperatingDay reports whether a schedule record exists for the date with
// its availability flag set.
func (s *Snapshot) IsOperatingDay(date time.Time) bool {
	key := DateKey(date)
	for _, d := range s.Data.Schedule {
		if d.Date == key && d.Available {
			return true
		}
	}
	return false
}

// TimeSlotsFor returns the operating day's own slot list when one exists,
// else the configured default.
func (s *Snapshot) TimeSlotsFor(date time.Time) []string {
	key := DateKey(date)
	for _, d := range s.Data.Schedule {
		if d.Date == key && d.TimeSlots != nil {
			return d.TimeSlots
		}
	}
	return s.DefaultSlots
}

// ActiveReservationsFor returns the day's non-cancelled reservations in
// stored order. The order determines anonymized labels, so it shifts when an
// earlier reservation is cancelled; that instability is part of the contract.
func (s *Snapshot) ActiveReservationsFor(date time.Time) []models.Reservation {
	return s.Data.ActiveReservationsFor(DateKey(date))
}

// BookedCount counts non-cancelled reservations at (date, slot).
func (s *Snapshot) BookedCount(date time.Time, slot string) int {
	count := 0
	for _, r := range s.ActiveReservationsFor(date) {
		if r.Time == slot {
			count++
		}
	}
	return count
}

// RemainingSlots is capacity minus the booked count. Negative values are
// possible after a capacity overrun; callers treat anything <= 0 as full.
func (s *Snapshot) RemainingSlots(date time.Time, slot string) int {
	return s.Capacity - s.BookedCount(date, slot)
}

// SlotOffered reports whether the slot appears in the day's list. A day whose
// list is empty offers nothing.
func (s *Snapshot) SlotOffered(date time.Time, slot string) bool {
	for _, t := range s.TimeSlotsFor(date) {
		if t == slot {
			return true
		}
	}
	return false
}

// CanBook is the full bookability predicate for one (date, slot) candidate.
func (s *Snapshot) CanBook(date time.Time, slot string) bool {
	return s.WithinBookingWindow(date) &&
		s.IsOperatingDay(date) &&
		s.SlotOffered(date, slot) &&
		s.RemainingSlots(date, slot) > 0
}

// DayFullyBooked reports whether every slot of an operating day is exhausted.
// A day with no slots at all counts as not bookable but also not "full"; the
// view layer renders it disabled.
func (s *Snapshot) DayFullyBooked(date time.Time) bool {
	slots := s.TimeSlotsFor(date)
	if len(slots) == 0 {
		return false
	}
	for _, slot := range slots {
		if s.RemainingSlots(date, slot) > 0 {
			return false
		}
	}
	return true
}

// CanCancel applies the self-service deadline: cancellation must happen
// strictly before the service day.
func (s *Snapshot) CanCancel(date time.Time) bool {
	dayBefore := Midnight(date).AddDate(0, 0, -1)
	return !s.Today.After(dayBefore)
}
