package calendar

import (
	"testing"
	"time"

	"grislo/internal/availability"
	"grislo/internal/models"
	"grislo/internal/store"

	"github.com/stretchr/testify/assert"
)

var today = time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

func snapshot(data *store.Snapshot) *availability.Snapshot {
	return availability.NewSnapshot(today, 6, 40, []string{"09:00", "10:00"}, data)
}

func confirmed(id, date, slot, name string) models.Reservation {
	return models.Reservation{ID: id, Name: name, Date: date, Time: slot, Status: models.StatusConfirmed}
}

func TestClassifyDay(t *testing.T) {
	data := &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-01", TimeSlots: []string{"09:00", "10:00"}, Available: true},
			{Date: "2025-06-02", TimeSlots: []string{"09:00"}, Available: true},
			{Date: "2025-06-03", TimeSlots: []string{}, Available: true},
			{Date: "2025-09-01", TimeSlots: []string{"09:00"}, Available: true},
		},
	}
	for i := 0; i < 6; i++ {
		data.Reservations = append(data.Reservations,
			confirmed(string(rune('a'+i)), "2025-06-02", "09:00", "guest"))
	}
	s := snapshot(data)

	day := func(d string) time.Time {
		ts, err := time.Parse(models.DateFormat, d)
		assert.NoError(t, err)
		return ts.UTC()
	}

	assert.Equal(t, StateAvailable, ClassifyDay(s, day("2025-06-01")))
	assert.Equal(t, StateFull, ClassifyDay(s, day("2025-06-02")), "single slot exhausted")
	assert.Equal(t, StateDisabled, ClassifyDay(s, day("2025-06-03")), "empty slot list")
	assert.Equal(t, StateDisabled, ClassifyDay(s, day("2025-06-04")), "no operating day")
	assert.Equal(t, StateDisabled, ClassifyDay(s, day("2025-09-01")), "outside window")
}

func TestClassifyDay_PartiallyFullIsAvailable(t *testing.T) {
	// One of two slots exhausted leaves the day available, not full.
	data := &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-01", TimeSlots: []string{"09:00", "10:00"}, Available: true},
		},
	}
	for i := 0; i < 6; i++ {
		data.Reservations = append(data.Reservations,
			confirmed(string(rune('a'+i)), "2025-06-01", "09:00", "guest"))
	}
	s := snapshot(data)

	assert.Equal(t, StateAvailable, ClassifyDay(s, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestBuildMonthView(t *testing.T) {
	data := &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-01", TimeSlots: []string{"09:00"}, Available: true},
		},
	}
	s := snapshot(data)
	selected := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	view := BuildMonthView(s, 2025, time.June, selected)

	// June 2025 starts on a Sunday: no leading padding, 30 day cells.
	assert.Equal(t, 30, len(view.Cells))
	assert.Equal(t, "2025-06-01", view.Cells[0].Date)
	assert.True(t, view.Cells[0].Selected)
	assert.Equal(t, StateAvailable, view.Cells[0].State)
	assert.Equal(t, StateDisabled, view.Cells[1].State)
}

func TestBuildMonthView_LeadingInactiveCells(t *testing.T) {
	s := snapshot(&store.Snapshot{})

	// May 2025 starts on a Thursday: four inactive cells before day 1.
	view := BuildMonthView(s, 2025, time.May, time.Time{})

	assert.Equal(t, 4+31, len(view.Cells))
	for i := 0; i < 4; i++ {
		assert.Equal(t, StateInactive, view.Cells[i].State)
		assert.Empty(t, view.Cells[i].Date)
	}
	assert.Equal(t, 1, view.Cells[4].Day)

	var todayCell *DayCell
	for i := range view.Cells {
		if view.Cells[i].Today {
			todayCell = &view.Cells[i]
		}
	}
	if assert.NotNil(t, todayCell) {
		assert.Equal(t, "2025-05-20", todayCell.Date)
	}
}

func TestSlotsForDay_LabelsFollowOrdinals(t *testing.T) {
	data := &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-01", TimeSlots: []string{"09:00", "10:00"}, Available: true},
		},
		Reservations: []models.Reservation{
			confirmed("r1", "2025-06-01", "09:00", "first"),
			confirmed("r2", "2025-06-01", "10:00", "second"),
			confirmed("r3", "2025-06-01", "09:00", "third"),
		},
	}
	s := snapshot(data)
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	views := SlotsForDay(s, day)
	assert.Len(t, views, 2)
	assert.Equal(t, []string{"A", "C"}, views[0].Bookers)
	assert.Equal(t, []string{"B"}, views[1].Bookers)
	assert.Equal(t, 4, views[0].Remaining)
	assert.False(t, views[0].Booked)

	// Cancelling the first reservation shifts later labels on the next view.
	data.Reservations[0].Status = models.StatusCancelled
	views = SlotsForDay(s, day)
	assert.Equal(t, []string{"B"}, views[0].Bookers)
	assert.Equal(t, []string{"A"}, views[1].Bookers)
	assert.Equal(t, 5, views[0].Remaining)
}

func TestSlotsForDay_BookedFlag(t *testing.T) {
	data := &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-01", TimeSlots: []string{"09:00"}, Available: true},
		},
	}
	for i := 0; i < 6; i++ {
		data.Reservations = append(data.Reservations,
			confirmed(string(rune('a'+i)), "2025-06-01", "09:00", "guest"))
	}
	s := snapshot(data)

	views := SlotsForDay(s, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, views[0].Booked)
	assert.Equal(t, 0, views[0].Remaining)
	assert.Len(t, views[0].Bookers, 6)
}

func TestSummarizeDay(t *testing.T) {
	data := &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-01", TimeSlots: []string{"09:00", "10:00", "11:00"}, Available: true},
		},
		Reservations: []models.Reservation{
			confirmed("r1", "2025-06-01", "09:00", "a"),
			confirmed("r2", "2025-06-01", "10:00", "b"),
		},
	}
	s := snapshot(data)

	sum := SummarizeDay(s, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 18, sum.TotalCapacity)
	assert.Equal(t, 2, sum.Booked)
	assert.Equal(t, 16, sum.Open)
}
