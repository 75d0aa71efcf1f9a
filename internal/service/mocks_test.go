package service

import (
	"context"

	"grislo/internal/models"
	"grislo/internal/store"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) LoadSnapshot(ctx context.Context) *store.Snapshot {
	args := m.Called(ctx)
	return args.Get(0).(*store.Snapshot)
}

func (m *MockStore) LoadSchedule(ctx context.Context) []models.OperatingDay {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.OperatingDay)
}

func (m *MockStore) LoadReservations(ctx context.Context) []models.Reservation {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Reservation)
}

func (m *MockStore) LoadLocations(ctx context.Context) []models.PickupLocation {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.PickupLocation)
}

func (m *MockStore) SaveReservation(ctx context.Context, r models.Reservation) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockStore) CancelReservation(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) UpsertOperatingDay(ctx context.Context, day models.OperatingDay) error {
	args := m.Called(ctx, day)
	return args.Error(0)
}

func (m *MockStore) DeleteOperatingDay(ctx context.Context, date string) error {
	args := m.Called(ctx, date)
	return args.Error(0)
}

func (m *MockStore) SaveLocation(ctx context.Context, loc models.PickupLocation) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *MockStore) DeleteLocation(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStore) RemoteDown() bool {
	args := m.Called()
	return args.Bool(0)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) MyReservations(ctx context.Context, sessionID string) ([]string, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSessionStore) AppendReservation(ctx context.Context, sessionID, reservationID string) error {
	args := m.Called(ctx, sessionID, reservationID)
	return args.Error(0)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishJSON(eventType string, payload interface{}) error {
	args := m.Called(eventType, payload)
	return args.Error(0)
}

type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) Kick() {
	m.Called()
}
