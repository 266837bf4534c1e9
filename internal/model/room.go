package model

import "time"

// Room is a screening room owned by a company.  Its seat map is the
// set of Seat rows referencing the room; the map is generated once at
// creation time and individual seats are only toggled active/inactive
// afterwards.
type Room struct {
	ID        uint64    // rooms.id
	CompanyID uint64    // rooms.company_id
	Name      string    // rooms.name
	IsActive  bool      // rooms.is_active
	CreatedAt time.Time // rooms.created_at
	UpdatedAt time.Time // rooms.updated_at
}
