package models

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewReservationID_Format(t *testing.T) {
	now := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	re := regexp.MustCompile(`^RES-20250601-\d{3}$`)

	for i := 0; i < 20; i++ {
		id := NewReservationID(now)
		assert.True(t, re.MatchString(id), "unexpected id format: %s", id)
	}
}

func TestAnonymizedLabel(t *testing.T) {
	assert.Equal(t, "A", AnonymizedLabel(0))
	assert.Equal(t, "B", AnonymizedLabel(1))
	assert.Equal(t, "Z", AnonymizedLabel(25))
	// Wraps after Z.
	assert.Equal(t, "A", AnonymizedLabel(26))
	assert.Equal(t, "C", AnonymizedLabel(28))
	// Negative ordinals clamp instead of panicking.
	assert.Equal(t, "A", AnonymizedLabel(-1))
}

func TestReservationActive(t *testing.T) {
	r := Reservation{Status: StatusConfirmed}
	assert.True(t, r.Active())

	r.Status = StatusCancelled
	assert.False(t, r.Active())
}

func TestNewLocationID(t *testing.T) {
	a := NewLocationID()
	b := NewLocationID()

	assert.True(t, strings.HasPrefix(a, "loc-"))
	assert.NotEqual(t, a, b)
}
