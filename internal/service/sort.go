package service

import (
	"sort"

	"grislo/internal/models"
)

// sortReservationsByDeparture orders by date, then time slot, then id for a
// stable tiebreak. The string formats sort chronologically as-is.
func sortReservationsByDeparture(rs []models.Reservation) {
	sort.Slice(rs, func(i, j int) bool {
		if rs[i].Date != rs[j].Date {
			return rs[i].Date < rs[j].Date
		}
		if rs[i].Time != rs[j].Time {
			return rs[i].Time < rs[j].Time
		}
		return rs[i].ID < rs[j].ID
	})
}
