package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edmoraes/cinepos/internal/model"
)

func seatMap() []model.Seat {
	return []model.Seat{
		{ID: 1, RowLabel: "A", SeatNumber: 1, IsActive: true},
		{ID: 2, RowLabel: "A", SeatNumber: 2, IsActive: true},
		{ID: 3, RowLabel: "B", SeatNumber: 1, Accessible: true, IsActive: true},
		{ID: 4, RowLabel: "B", SeatNumber: 2, IsActive: true},
	}
}

func TestClassifySeatsAllAvailable(t *testing.T) {
	got := ClassifySeats(seatMap(), nil, nil)
	require.Len(t, got, 4)
	for _, st := range got {
		assert.Equal(t, SeatAvailable, st.Status)
	}
}

func TestClassifySeatsSoldAndHeld(t *testing.T) {
	sold := map[uint64]bool{2: true}
	held := map[uint64]string{3: "tok-1"}

	got := ClassifySeats(seatMap(), sold, held)
	require.Len(t, got, 4)
	assert.Equal(t, SeatAvailable, got[0].Status)
	assert.Equal(t, SeatSold, got[1].Status)
	assert.Equal(t, SeatReserved, got[2].Status)
	assert.Equal(t, SeatAvailable, got[3].Status)
}

func TestClassifySeatsSoldWinsOverHeld(t *testing.T) {
	// Finalization issues the ticket before the hold row is gone; the
	// seat must already read as SOLD.
	sold := map[uint64]bool{1: true}
	held := map[uint64]string{1: "tok-1"}

	got := ClassifySeats(seatMap(), sold, held)
	assert.Equal(t, SeatSold, got[0].Status)
}

func TestClassifySeatsCarriesSeatMetadata(t *testing.T) {
	got := ClassifySeats(seatMap(), nil, nil)
	assert.Equal(t, uint64(3), got[2].SeatID)
	assert.Equal(t, "B", got[2].RowLabel)
	assert.Equal(t, uint32(1), got[2].SeatNumber)
	assert.True(t, got[2].Accessible)
}
