package model

import (
	"strconv"
	"time"
)

// Seat is a physical seat inside a room's seat map.  Position
// (row label + number) is immutable once created; only the active
// flag may change.  Inactive seats never appear in availability
// results and cannot be reserved or sold.
type Seat struct {
	ID         uint64    // seats.id
	CompanyID  uint64    // seats.company_id
	RoomID     uint64    // seats.room_id
	RowLabel   string    // seats.row_label (A, B, ..., AA)
	SeatNumber uint32    // seats.seat_number (1-based within the row)
	Accessible bool      // seats.accessible (wheelchair space)
	IsActive   bool      // seats.is_active
	CreatedAt  time.Time // seats.created_at
}

// Label renders the human-readable position, e.g. "A1".
func (s Seat) Label() string {
	return s.RowLabel + strconv.FormatUint(uint64(s.SeatNumber), 10)
}
