package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"grislo/internal/domain"
	"grislo/internal/events"
	"grislo/internal/models"
	"grislo/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

var testNow = time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)

func testLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

func newTestService(st domain.Store, sessions domain.SessionStore, bus domain.EventPublisher, mirror domain.MirrorEnqueuer) *ReservationService {
	svc := NewReservationService(st, sessions, bus, mirror, 6, 40, 1,
		[]string{"09:00", "10:00"}, testLogger())
	svc.SetClock(func() time.Time { return testNow })
	return svc
}

func operatingSnapshot(reservations ...models.Reservation) *store.Snapshot {
	return &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-01", TimeSlots: []string{"09:00", "10:00"}, Available: true},
		},
		Reservations: reservations,
	}
}

func validRequest() domain.CreateReservation {
	return domain.CreateReservation{
		Date:           "2025-06-01",
		Time:           "09:00",
		PickupLocation: "loc-1",
		SessionID:      "sess-1",
	}
}

func TestCreate_Success(t *testing.T) {
	st := new(MockStore)
	sessions := new(MockSessionStore)
	bus := new(MockEventPublisher)
	mirror := new(MockMirror)

	st.On("LoadSnapshot", mock.Anything).Return(operatingSnapshot())
	st.On("SaveReservation", mock.Anything, mock.MatchedBy(func(r models.Reservation) bool {
		return r.Date == "2025-06-01" && r.Time == "09:00" && r.Status == models.StatusConfirmed
	})).Return(nil)
	sessions.On("AppendReservation", mock.Anything, "sess-1", mock.Anything).Return(nil)
	bus.On("PublishJSON", events.EventReservationCreated, mock.Anything).Return(nil)
	mirror.On("Kick").Return()

	svc := newTestService(st, sessions, bus, mirror)
	r, err := svc.Create(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Regexp(t, `^RES-20250520-\d{3}$`, r.ID)
	assert.Equal(t, "A", r.DisplayName, "first reservation of the day")
	assert.Equal(t, models.StatusConfirmed, r.Status)
	st.AssertExpectations(t)
	sessions.AssertExpectations(t)
	bus.AssertExpectations(t)
	mirror.AssertExpectations(t)
}

func TestCreate_LabelFollowsActiveCount(t *testing.T) {
	existing := []models.Reservation{
		{ID: "r1", Date: "2025-06-01", Time: "09:00", Status: models.StatusConfirmed},
		{ID: "r2", Date: "2025-06-01", Time: "10:00", Status: models.StatusConfirmed},
		{ID: "r3", Date: "2025-06-01", Time: "09:00", Status: models.StatusCancelled},
	}
	st := new(MockStore)
	sessions := new(MockSessionStore)

	st.On("LoadSnapshot", mock.Anything).Return(operatingSnapshot(existing...))
	st.On("SaveReservation", mock.Anything, mock.Anything).Return(nil)
	sessions.On("AppendReservation", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(st, sessions, nil, nil)
	r, err := svc.Create(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.Equal(t, "C", r.DisplayName, "cancelled rows do not count")
	assert.Equal(t, "C", r.Name, "empty name falls back to the label")
}

func TestCreate_ValidationBeforeAnyWrite(t *testing.T) {
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(operatingSnapshot())

	svc := newTestService(st, new(MockSessionStore), nil, nil)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*domain.CreateReservation)
		wantErr error
	}{
		{"no location", func(r *domain.CreateReservation) { r.PickupLocation = "" }, ErrNoPickupLocation},
		{"bad date", func(r *domain.CreateReservation) { r.Date = "06/01/2025" }, ErrInvalidDate},
		{"bad slot format", func(r *domain.CreateReservation) { r.Time = "9am" }, ErrInvalidTimeSlot},
		{"too many passengers", func(r *domain.CreateReservation) { r.Passengers = 2 }, ErrTooManyPassengers},
		{"outside window", func(r *domain.CreateReservation) { r.Date = "2025-06-30" }, ErrOutsideWindow},
		{"not operating", func(r *domain.CreateReservation) { r.Date = "2025-06-02" }, ErrDayNotOperating},
		{"slot not offered", func(r *domain.CreateReservation) { r.Time = "13:00" }, ErrSlotNotOffered},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Create(ctx, req)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
	st.AssertNotCalled(t, "SaveReservation", mock.Anything, mock.Anything)
}

func TestCreate_WindowBoundary(t *testing.T) {
	// windowDays=40 from 2025-05-20: 2025-06-29 books, 2025-06-30 does not.
	st := new(MockStore)
	sessions := new(MockSessionStore)
	snap := &store.Snapshot{
		Schedule: []models.OperatingDay{
			{Date: "2025-06-29", TimeSlots: []string{"09:00"}, Available: true},
			{Date: "2025-06-30", TimeSlots: []string{"09:00"}, Available: true},
		},
	}
	st.On("LoadSnapshot", mock.Anything).Return(snap)
	st.On("SaveReservation", mock.Anything, mock.Anything).Return(nil)
	sessions.On("AppendReservation", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(st, sessions, nil, nil)

	req := validRequest()
	req.Date = "2025-06-29"
	_, err := svc.Create(context.Background(), req)
	assert.NoError(t, err)

	req.Date = "2025-06-30"
	_, err = svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, ErrOutsideWindow)
}

func TestCreate_CapacityExceeded(t *testing.T) {
	full := make([]models.Reservation, 6)
	for i := range full {
		full[i] = models.Reservation{ID: string(rune('a' + i)), Date: "2025-06-01", Time: "09:00", Status: models.StatusConfirmed}
	}
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(operatingSnapshot(full...))

	svc := newTestService(st, new(MockSessionStore), nil, nil)
	_, err := svc.Create(context.Background(), validRequest())

	assert.ErrorIs(t, err, ErrCapacityExceeded)
	st.AssertNotCalled(t, "SaveReservation", mock.Anything, mock.Anything)
}

func TestCreate_SessionAppendFailureDoesNotFailCreate(t *testing.T) {
	st := new(MockStore)
	sessions := new(MockSessionStore)
	st.On("LoadSnapshot", mock.Anything).Return(operatingSnapshot())
	st.On("SaveReservation", mock.Anything, mock.Anything).Return(nil)
	sessions.On("AppendReservation", mock.Anything, "sess-1", mock.Anything).
		Return(errors.New("redis down"))

	svc := newTestService(st, sessions, nil, nil)
	r, err := svc.Create(context.Background(), validRequest())

	assert.NoError(t, err)
	assert.NotNil(t, r)
}

func TestCancel_SelfServiceDeadline(t *testing.T) {
	reservation := models.Reservation{ID: "r1", Date: "2025-05-20", Time: "09:00", Status: models.StatusConfirmed}
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Reservations: []models.Reservation{reservation},
	})

	svc := newTestService(st, new(MockSessionStore), nil, nil)
	err := svc.Cancel(context.Background(), "r1", false)

	assert.ErrorIs(t, err, ErrCancelDeadline, "cancelling on the service day is too late")
	st.AssertNotCalled(t, "CancelReservation", mock.Anything, mock.Anything)
}

func TestCancel_AdminBypassesDeadline(t *testing.T) {
	reservation := models.Reservation{ID: "r1", Date: "2025-05-20", Time: "09:00", Status: models.StatusConfirmed}
	st := new(MockStore)
	bus := new(MockEventPublisher)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Reservations: []models.Reservation{reservation},
	})
	st.On("CancelReservation", mock.Anything, "r1").Return(nil)
	bus.On("PublishJSON", events.EventReservationCancelled, mock.MatchedBy(func(p events.ReservationEventPayload) bool {
		return p.ChangedBy == "admin" && p.Status == models.StatusCancelled
	})).Return(nil)

	svc := newTestService(st, new(MockSessionStore), bus, nil)
	err := svc.Cancel(context.Background(), "r1", true)

	assert.NoError(t, err)
	st.AssertExpectations(t)
	bus.AssertExpectations(t)
}

func TestCancel_BeforeDeadline(t *testing.T) {
	reservation := models.Reservation{ID: "r1", Date: "2025-05-21", Time: "09:00", Status: models.StatusConfirmed}
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Reservations: []models.Reservation{reservation},
	})
	st.On("CancelReservation", mock.Anything, "r1").Return(nil)

	svc := newTestService(st, new(MockSessionStore), nil, nil)
	assert.NoError(t, svc.Cancel(context.Background(), "r1", false))
}

func TestCancel_IdempotentSecondCall(t *testing.T) {
	reservation := models.Reservation{ID: "r1", Date: "2025-06-01", Time: "09:00", Status: models.StatusCancelled}
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Reservations: []models.Reservation{reservation},
	})

	svc := newTestService(st, new(MockSessionStore), nil, nil)
	err := svc.Cancel(context.Background(), "r1", false)

	assert.ErrorIs(t, err, ErrAlreadyCancelled)
	st.AssertNotCalled(t, "CancelReservation", mock.Anything, mock.Anything)
}

func TestCancel_NotFound(t *testing.T) {
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{})

	svc := newTestService(st, new(MockSessionStore), nil, nil)
	assert.ErrorIs(t, svc.Cancel(context.Background(), "missing", false), ErrNotFound)
}

func TestFindByID(t *testing.T) {
	reservation := models.Reservation{ID: "r1", Date: "2025-06-01", Time: "09:00", Status: models.StatusConfirmed}
	st := new(MockStore)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Reservations: []models.Reservation{reservation},
	})

	svc := newTestService(st, new(MockSessionStore), nil, nil)

	found, err := svc.FindByID(context.Background(), "r1")
	assert.NoError(t, err)
	assert.Equal(t, "r1", found.ID)

	_, err = svc.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMyReservations_SkipsMissingIDs(t *testing.T) {
	st := new(MockStore)
	sessions := new(MockSessionStore)
	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Reservations: []models.Reservation{
			{ID: "r1", Date: "2025-06-01", Time: "09:00", Status: models.StatusConfirmed},
		},
	})
	sessions.On("MyReservations", mock.Anything, "sess-1").Return([]string{"r1", "gone"}, nil)

	svc := newTestService(st, sessions, nil, nil)
	mine, err := svc.MyReservations(context.Background(), "sess-1")

	assert.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Equal(t, "r1", mine[0].ID)
}

func TestMyReservations_EmptySession(t *testing.T) {
	sessions := new(MockSessionStore)
	sessions.On("MyReservations", mock.Anything, "fresh").Return(nil, nil)

	svc := newTestService(new(MockStore), sessions, nil, nil)
	mine, err := svc.MyReservations(context.Background(), "fresh")

	assert.NoError(t, err)
	assert.Empty(t, mine)
}

func TestCreateThenFindRoundTrip(t *testing.T) {
	// The saved record is observable through FindByID with the same fields.
	st := new(MockStore)
	sessions := new(MockSessionStore)
	var saved models.Reservation
	st.On("LoadSnapshot", mock.Anything).Return(operatingSnapshot()).Once()
	st.On("SaveReservation", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { saved = args.Get(1).(models.Reservation) }).
		Return(nil)
	sessions.On("AppendReservation", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(st, sessions, nil, nil)
	created, err := svc.Create(context.Background(), validRequest())
	assert.NoError(t, err)

	st.On("LoadSnapshot", mock.Anything).Return(&store.Snapshot{
		Reservations: []models.Reservation{saved},
	})
	found, err := svc.FindByID(context.Background(), created.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, found.Status)
	assert.Equal(t, created.Date, found.Date)
	assert.Equal(t, created.Time, found.Time)
	assert.Equal(t, created.PickupLocation, found.PickupLocation)
}
