package service

import "errors"

// Validation failures are reported before any write is attempted; no partial
// reservation is ever created.
var (
	ErrInvalidDate       = errors.New("date must be YYYY-MM-DD")
	ErrInvalidTimeSlot   = errors.New("time must be HH:MM")
	ErrNoPickupLocation  = errors.New("pickup location is required")
	ErrTooManyPassengers = errors.New("passenger count exceeds the limit")
	ErrOutsideWindow     = errors.New("date is outside the booking window")
	ErrDayNotOperating   = errors.New("no service on this date")
	ErrSlotNotOffered    = errors.New("time slot is not offered on this date")
)

// Write-time refusals.
var (
	ErrCapacityExceeded = errors.New("time slot is fully booked")
	ErrNotFound         = errors.New("reservation not found")
	ErrAlreadyCancelled = errors.New("reservation is already cancelled")
	ErrCancelDeadline   = errors.New("cancellation deadline has passed")
)
