package models

import "github.com/google/uuid"

// OperatingDay marks a calendar date on which the shuttle runs, with the slot
// list offered that day. A date without a record is implicitly non-operating.
type OperatingDay struct {
	Date      string   `json:"date"`
	TimeSlots []string `json:"time_slots"`
	Available bool     `json:"available"`
}

// PickupLocation is a boarding point customers choose at booking time.
// Locations are append/remove only; ids are never reused.
type PickupLocation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address,omitempty"`
	SortOrder int    `json:"sort_order,omitempty"`
}

// NewLocationID generates a stable pickup-location identifier.
func NewLocationID() string {
	return "loc-" + uuid.NewString()
}
