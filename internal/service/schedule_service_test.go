package service

import (
	"context"
	"testing"
	"time"

	"grislo/internal/events"
	"grislo/internal/models"
	"grislo/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestAddOperatingDay(t *testing.T) {
	st := new(MockStore)
	bus := new(MockEventPublisher)
	day := models.OperatingDay{Date: "2025-06-01", TimeSlots: []string{"09:00", "10:00"}, Available: true}
	st.On("UpsertOperatingDay", mock.Anything, day).Return(nil)
	bus.On("PublishJSON", events.EventScheduleUpdated, mock.Anything).Return(nil)

	svc := NewScheduleService(st, bus, nil, testLogger())
	assert.NoError(t, svc.AddOperatingDay(context.Background(), day))
	st.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestAddOperatingDay_Validation(t *testing.T) {
	svc := NewScheduleService(new(MockStore), nil, nil, testLogger())
	ctx := context.Background()

	err := svc.AddOperatingDay(ctx, models.OperatingDay{Date: "June 1"})
	assert.ErrorIs(t, err, ErrInvalidDate)

	err = svc.AddOperatingDay(ctx, models.OperatingDay{Date: "2025-06-01", TimeSlots: []string{"25:00"}})
	assert.ErrorIs(t, err, ErrInvalidTimeSlot)

	err = svc.AddOperatingDay(ctx, models.OperatingDay{Date: "2025-06-01", TimeSlots: []string{"09:00", "09:00"}})
	assert.ErrorIs(t, err, ErrInvalidTimeSlot, "duplicate slots rejected")
}

func TestRemoveOperatingDay(t *testing.T) {
	st := new(MockStore)
	bus := new(MockEventPublisher)
	st.On("DeleteOperatingDay", mock.Anything, "2025-06-01").Return(nil)
	bus.On("PublishJSON", events.EventScheduleUpdated, mock.Anything).Return(nil)

	svc := NewScheduleService(st, bus, nil, testLogger())
	assert.NoError(t, svc.RemoveOperatingDay(context.Background(), "2025-06-01"))
	st.AssertExpectations(t)

	assert.ErrorIs(t, svc.RemoveOperatingDay(context.Background(), "bad-date"), ErrInvalidDate)
}

func TestAddLocation_AssignsIDAndOrder(t *testing.T) {
	st := new(MockStore)
	st.On("LoadLocations", mock.Anything).Return([]models.PickupLocation{
		{ID: "loc-a", SortOrder: 3},
		{ID: "loc-b", SortOrder: 1},
	})
	st.On("SaveLocation", mock.Anything, mock.MatchedBy(func(loc models.PickupLocation) bool {
		return loc.Name == "Station East" && loc.SortOrder == 4
	})).Return(nil)

	svc := NewScheduleService(st, nil, nil, testLogger())
	loc, err := svc.AddLocation(context.Background(), "Station East", "1-2-3 Ekimae")

	assert.NoError(t, err)
	assert.Regexp(t, `^loc-`, loc.ID)
	assert.Equal(t, 4, loc.SortOrder)
	st.AssertExpectations(t)
}

func TestAddLocation_NameRequired(t *testing.T) {
	svc := NewScheduleService(new(MockStore), nil, nil, testLogger())
	_, err := svc.AddLocation(context.Background(), "", "addr")
	assert.ErrorIs(t, err, ErrNoPickupLocation)
}

func TestStats(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-05-19", Available: true},
			{Date: "2025-05-20", Available: true},
			{Date: "2025-05-25", Available: true},
			{Date: "2025-05-26", Available: false},
		},
		Reservations: []models.Reservation{
			{ID: "r1", Date: "2025-05-20", Status: models.StatusConfirmed},
			{ID: "r2", Date: "2025-05-20", Status: models.StatusCancelled},
			{ID: "r3", Date: "2025-05-25", Status: models.StatusConfirmed},
		},
	})

	svc := NewScheduleService(st, nil, nil, testLogger())
	stats, err := svc.Stats(context.Background(), now)

	assert.NoError(t, err)
	assert.Equal(t, 1, stats.TodayReservations)
	assert.Equal(t, 2, stats.TotalReservations)
	assert.Equal(t, 2, stats.UpcomingDays, "past and unavailable days excluded")
	assert.Equal(t, 1, stats.Cancelled)
}

func TestUpcomingReservations(t *testing.T) {
	now := time.Date(2025, 5, 20, 15, 0, 0, 0, time.UTC)
	st := new(MockStore)
	st.On("LoadReservations", mock.Anything).Return([]models.Reservation{
		{ID: "r1", Date: "2025-05-25", Time: "10:00", Status: models.StatusConfirmed},
		{ID: "r2", Date: "2025-05-19", Time: "09:00", Status: models.StatusConfirmed},
		{ID: "r3", Date: "2025-05-20", Time: "09:00", Status: models.StatusConfirmed},
		{ID: "r4", Date: "2025-05-25", Time: "09:00", Status: models.StatusCancelled},
		{ID: "r5", Date: "2025-05-22", Time: "09:00", Status: models.StatusConfirmed},
	})

	svc := NewScheduleService(st, nil, nil, testLogger())
	upcoming := svc.UpcomingReservations(context.Background(), now, 2)

	assert.Len(t, upcoming, 2)
	assert.Equal(t, "r3", upcoming[0].ID, "today counts as upcoming")
	assert.Equal(t, "r5", upcoming[1].ID)
}
