package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// SessionStore keeps the per-browser/session list of reservation identifiers
// the caller created. The list lives apart from the reservation records so the
// "my reservations" view can be scoped without exposing other customers.
type SessionStore interface {
	MyReservations(ctx context.Context, sessionID string) ([]string, error)
	AppendReservation(ctx context.Context, sessionID, reservationID string) error
}

// RedisSessionStore persists session sets in redis with a TTL.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func sessionKey(sessionID string) string {
	return fmt.Sprintf("grislo:session:%s:reservations", sessionID)
}

func (s *RedisSessionStore) MyReservations(ctx context.Context, sessionID string) ([]string, error) {
	if s.client == nil {
		return nil, errors.New("redis client is nil")
	}
	val, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session from redis: %w", err)
	}

	var ids []string
	if err := json.Unmarshal([]byte(val), &ids); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return ids, nil
}

func (s *RedisSessionStore) AppendReservation(ctx context.Context, sessionID, reservationID string) error {
	ids, err := s.MyReservations(ctx, sessionID)
	if err != nil {
		return err
	}
	ids = append(ids, reservationID)

	data, err := json.Marshal(ids)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(sessionID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session in redis: %w", err)
	}
	return nil
}

// MemorySessionStore is the process-local fallback.
type MemorySessionStore struct {
	sessions sync.Map // map[string][]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) MyReservations(ctx context.Context, sessionID string) ([]string, error) {
	val, ok := s.sessions.Load(sessionID)
	if !ok {
		return nil, nil
	}
	ids := val.([]string)
	return append([]string(nil), ids...), nil
}

func (s *MemorySessionStore) AppendReservation(ctx context.Context, sessionID, reservationID string) error {
	val, _ := s.sessions.Load(sessionID)
	var ids []string
	if val != nil {
		ids = val.([]string)
	}
	s.sessions.Store(sessionID, append(append([]string(nil), ids...), reservationID))
	return nil
}

// FailoverSessionStore prefers the primary store and falls back to the
// secondary when the primary errors, probing the primary again after a
// recovery window.
type FailoverSessionStore struct {
	primary   SessionStore
	fallback  SessionStore
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
	recovery  time.Duration
}

func NewFailoverSessionStore(primary, fallback SessionStore, logger *zerolog.Logger) *FailoverSessionStore {
	return &FailoverSessionStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		recovery: DefaultRecoveryInterval,
	}
}

func (s *FailoverSessionStore) primaryUsable() bool {
	if !s.isDown.Load() {
		return true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if time.Since(s.lastCheck) > s.recovery {
		s.lastCheck = time.Now()
		return true
	}
	return false
}

func (s *FailoverSessionStore) markDown(err error) {
	s.logger.Error().Err(err).Msg("primary session store failed, falling back to memory")
	s.mu.Lock()
	s.lastCheck = time.Now()
	s.mu.Unlock()
	s.isDown.Store(true)
}

func (s *FailoverSessionStore) MyReservations(ctx context.Context, sessionID string) ([]string, error) {
	if s.primaryUsable() {
		ids, err := s.primary.MyReservations(ctx, sessionID)
		if err == nil {
			s.isDown.Store(false)
			return ids, nil
		}
		s.markDown(err)
	}
	return s.fallback.MyReservations(ctx, sessionID)
}

func (s *FailoverSessionStore) AppendReservation(ctx context.Context, sessionID, reservationID string) error {
	if s.primaryUsable() {
		err := s.primary.AppendReservation(ctx, sessionID, reservationID)
		if err == nil {
			s.isDown.Store(false)
			return nil
		}
		s.markDown(err)
	}
	return s.fallback.AppendReservation(ctx, sessionID, reservationID)
}
