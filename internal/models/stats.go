package models

// Stats is the admin dashboard summary.
type Stats struct {
	TodayReservations int `json:"todayReservations"`
	TotalReservations int `json:"totalReservations"`
	UpcomingDays      int `json:"upcomingDays"`
	Cancelled         int `json:"cancelled"`
}
