package models

const (
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	// DateFormat is the calendar-day key used across all storage tiers.
	DateFormat = "2006-01-02"

	// TimeSlotFormat is the departure time-of-day format.
	TimeSlotFormat = "15:04"
)

const (
	// DefaultVehicleCapacity seats per departure when config is silent.
	DefaultVehicleCapacity = 6

	// DefaultBookingWindowDays length of the rolling booking window.
	DefaultBookingWindowDays = 40

	// DefaultCancelDeadlineHours cancellation cutoff carried in config.
	DefaultCancelDeadlineHours = 24

	// DefaultMaxPassengers per reservation.
	DefaultMaxPassengers = 1
)

// DefaultTimeSlots is the seed slot list used when neither an operating day
// nor the configuration provides one.
var DefaultTimeSlots = []string{"09:00", "10:00", "11:00", "13:00", "14:00", "15:00", "16:00"}
