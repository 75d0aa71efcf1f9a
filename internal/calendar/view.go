// Package calendar renders month and slot views over a frozen availability
// snapshot. It performs no storage access and holds no state of its own.
package calendar

import (
	"time"

	"grislo/internal/availability"
	"grislo/internal/models"
)

// DayState classifies a calendar cell.
type DayState string

const (
	// StateInactive marks padding cells outside the displayed month.
	StateInactive DayState = "inactive"
	// StateDisabled marks days outside the booking window, non-operating
	// days and operating days with an empty slot list.
	StateDisabled DayState = "disabled"
	// StateFull marks operating days whose every slot is exhausted.
	StateFull DayState = "full"
	// StateAvailable marks operating days with at least one open slot.
	StateAvailable DayState = "available"
)

// DayCell is one cell of a month grid.
type DayCell struct {
	Date     string   `json:"date,omitempty"`
	Day      int      `json:"day,omitempty"`
	State    DayState `json:"state"`
	Today    bool     `json:"today,omitempty"`
	Selected bool     `json:"selected,omitempty"`
}

// MonthView is a Sunday-first grid for one displayed month.
type MonthView struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Cells []DayCell `json:"cells"`
}

// SlotView describes one time slot of a day.
type SlotView struct {
	Time      string   `json:"time"`
	Remaining int      `json:"remaining"`
	Booked    bool     `json:"booked"`
	Bookers   []string `json:"bookers,omitempty"`
}

// DaySummary aggregates a day's seats for the summary card.
type DaySummary struct {
	Date          string `json:"date"`
	TotalCapacity int    `json:"totalCapacity"`
	Booked        int    `json:"booked"`
	Open          int    `json:"open"`
}

// ClassifyDay maps one in-month date to its state. Today/selected decorations
// are applied by the caller; they are orthogonal to bookability.
func ClassifyDay(s *availability.Snapshot, date time.Time) DayState {
	if !s.WithinBookingWindow(date) || !s.IsOperatingDay(date) {
		return StateDisabled
	}
	slots := s.TimeSlotsFor(date)
	if len(slots) == 0 {
		return StateDisabled
	}
	if s.DayFullyBooked(date) {
		return StateFull
	}
	return StateAvailable
}

// BuildMonthView lays out the given month. Leading cells before the first
// weekday are inactive; selected may be zero for no selection.
func BuildMonthView(s *availability.Snapshot, year int, month time.Month, selected time.Time) *MonthView {
	first := time.Date(year, month, 1, 0, 0, 0, 0, s.Today.Location())
	daysInMonth := first.AddDate(0, 1, -1).Day()
	selectedKey := ""
	if !selected.IsZero() {
		selectedKey = availability.DateKey(selected)
	}

	view := &MonthView{
		Year:  year,
		Month: int(month),
		Cells: make([]DayCell, 0, int(first.Weekday())+daysInMonth),
	}
	for i := 0; i < int(first.Weekday()); i++ {
		view.Cells = append(view.Cells, DayCell{State: StateInactive})
	}
	for day := 1; day <= daysInMonth; day++ {
		date := time.Date(year, month, day, 0, 0, 0, 0, s.Today.Location())
		key := availability.DateKey(date)
		view.Cells = append(view.Cells, DayCell{
			Date:     key,
			Day:      day,
			State:    ClassifyDay(s, date),
			Today:    date.Equal(s.Today),
			Selected: key == selectedKey,
		})
	}
	return view
}

// SlotsForDay builds per-slot views with anonymized booker labels. Labels
// follow ordinal position among the day's active reservations, so they shift
// when an earlier reservation is cancelled.
func SlotsForDay(s *availability.Snapshot, date time.Time) []SlotView {
	slots := s.TimeSlotsFor(date)
	active := s.ActiveReservationsFor(date)

	views := make([]SlotView, 0, len(slots))
	for _, slot := range slots {
		var bookers []string
		for i, r := range active {
			if r.Time == slot {
				bookers = append(bookers, models.AnonymizedLabel(i))
			}
		}
		remaining := s.RemainingSlots(date, slot)
		views = append(views, SlotView{
			Time:      slot,
			Remaining: remaining,
			Booked:    remaining <= 0,
			Bookers:   bookers,
		})
	}
	return views
}

// SummarizeDay totals capacity across the day's slots.
func SummarizeDay(s *availability.Snapshot, date time.Time) DaySummary {
	slots := s.TimeSlotsFor(date)
	booked := 0
	for _, slot := range slots {
		booked += s.BookedCount(date, slot)
	}
	total := s.Capacity * len(slots)
	open := total - booked
	if open < 0 {
		open = 0
	}
	return DaySummary{
		Date:          availability.DateKey(date),
		TotalCapacity: total,
		Booked:        booked,
		Open:          open,
	}
}
