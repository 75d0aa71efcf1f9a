// Package worker runs the background mirror that copies the reservations
// collection into Google Sheets. The mirror is decoupled from the storage
// chain: its retries never touch the chain's own no-retry write policy.
package worker

import (
	"context"
	"time"

	"grislo/internal/models"

	"github.com/rs/zerolog"
)

// ReservationSource provides the current full reservation set.
type ReservationSource interface {
	LoadReservations(ctx context.Context) []models.Reservation
}

// MirrorTarget receives the full set on every push.
type MirrorTarget interface {
	ReplaceReservations(ctx context.Context, reservations []models.Reservation) error
}

// Mirror coalesces change notifications and pushes a wholesale copy of the
// reservations to the target. Multiple kicks while a push is in flight fold
// into one follow-up push.
type Mirror struct {
	source      ReservationSource
	target      MirrorTarget
	retry       RetryPolicy
	kicks       chan struct{}
	pushTimeout time.Duration
	logger      *zerolog.Logger
}

func NewMirror(source ReservationSource, target MirrorTarget, retry RetryPolicy, logger *zerolog.Logger) *Mirror {
	return &Mirror{
		source:      source,
		target:      target,
		retry:       retry.withDefaults(),
		kicks:       make(chan struct{}, 1),
		pushTimeout: 30 * time.Second,
		logger:      logger,
	}
}

// Kick schedules a push. Never blocks; a pending kick absorbs further ones.
func (m *Mirror) Kick() {
	select {
	case m.kicks <- struct{}{}:
	default:
	}
}

// Run consumes kicks until the context ends. Call it from its own goroutine.
func (m *Mirror) Run(ctx context.Context) {
	m.logger.Info().Msg("sheets mirror started")
	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("sheets mirror stopped")
			return
		case <-m.kicks:
			m.push(ctx)
		}
	}
}

func (m *Mirror) push(ctx context.Context) {
	reservations := m.source.LoadReservations(ctx)

	for attempt := 1; attempt <= m.retry.MaxRetries; attempt++ {
		pushCtx, cancel := context.WithTimeout(ctx, m.pushTimeout)
		err := m.target.ReplaceReservations(pushCtx, reservations)
		cancel()
		if err == nil {
			m.logger.Debug().Int("count", len(reservations)).Msg("reservations mirrored to sheet")
			return
		}

		m.logger.Warn().Err(err).Int("attempt", attempt).Msg("sheet push failed")
		if attempt == m.retry.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.retry.NextDelay(attempt)):
		}
	}
	m.logger.Error().Int("attempts", m.retry.MaxRetries).
		Msg("giving up on sheet push until the next change")
}
