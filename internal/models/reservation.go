package models

import (
	"fmt"
	"math/rand"
	"time"
)

// Reservation is one seat on one departure. Date and Time are kept as the
// wire strings ("2006-01-02", "15:04") because every tier of the store and
// the remote collections exchange them in that form.
type Reservation struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	DisplayName    string    `json:"display_name"`
	Date           string    `json:"date"`
	Time           string    `json:"time"`
	PickupLocation string    `json:"pickup_location"`
	Notes          string    `json:"notes,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Active reports whether the reservation still occupies a seat.
func (r *Reservation) Active() bool {
	return r.Status != StatusCancelled
}

// NewReservationID builds an identifier in the RES-YYYYMMDD-NNN format.
// The 3-digit suffix is random; collisions are possible and accepted, the
// remote tier upserts by id so a collision overwrites rather than fails.
func NewReservationID(now time.Time) string {
	return fmt.Sprintf("RES-%s-%03d", now.Format("20060102"), rand.Intn(1000))
}

// AnonymizedLabel derives the pseudonym shown to other customers from the
// reservation's ordinal position among the day's active reservations.
// Wraps after Z.
func AnonymizedLabel(ordinal int) string {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	if ordinal < 0 {
		ordinal = 0
	}
	return string(letters[ordinal%len(letters)])
}
