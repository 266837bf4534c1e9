package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	at := func(min int) time.Time { return base.Add(time.Duration(min) * time.Minute) }

	// Plain intersection.
	assert.True(t, Overlaps(at(0), at(120), at(60), at(180)))
	assert.True(t, Overlaps(at(60), at(180), at(0), at(120)))

	// Containment.
	assert.True(t, Overlaps(at(0), at(180), at(30), at(60)))

	// Disjoint.
	assert.False(t, Overlaps(at(0), at(60), at(120), at(180)))

	// Back-to-back sessions share only the boundary instant and do not
	// overlap.
	assert.False(t, Overlaps(at(0), at(60), at(60), at(120)))
	assert.False(t, Overlaps(at(60), at(120), at(0), at(60)))
}

func TestSeatReservationActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	r := SeatReservation{ExpiresAt: now.Add(time.Minute)}
	assert.True(t, r.Active(now))
	assert.False(t, r.Active(now.Add(time.Minute)))
	assert.False(t, r.Active(now.Add(2*time.Minute)))
}

func TestSeatLabel(t *testing.T) {
	assert.Equal(t, "A1", Seat{RowLabel: "A", SeatNumber: 1}.Label())
	assert.Equal(t, "AA12", Seat{RowLabel: "AA", SeatNumber: 12}.Label())
}
