package store

import (
	"errors"
	"sort"

	"grislo/internal/models"
)

// ErrNoRecord signals a by-key mutation that matched nothing. Chain callers
// translate it to a NotFound result; it never escapes as a panic or a fatal.
var ErrNoRecord = errors.New("store: no such record")

func upsertDay(days []models.OperatingDay, day models.OperatingDay) []models.OperatingDay {
	for i := range days {
		if days[i].Date == day.Date {
			days[i] = day
			return days
		}
	}
	days = append(days, day)
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func removeDay(days []models.OperatingDay, date string) []models.OperatingDay {
	out := days[:0]
	for _, d := range days {
		if d.Date != date {
			out = append(out, d)
		}
	}
	return out
}

func upsertReservation(rs []models.Reservation, r models.Reservation) []models.Reservation {
	for i := range rs {
		if rs[i].ID == r.ID {
			rs[i] = r
			return rs
		}
	}
	return append(rs, r)
}

func setReservationStatus(rs []models.Reservation, id, status string) ([]models.Reservation, bool) {
	for i := range rs {
		if rs[i].ID == id {
			rs[i].Status = status
			return rs, true
		}
	}
	return rs, false
}

func removeLocation(locs []models.PickupLocation, id string) []models.PickupLocation {
	out := locs[:0]
	for _, l := range locs {
		if l.ID != id {
			out = append(out, l)
		}
	}
	return out
}
