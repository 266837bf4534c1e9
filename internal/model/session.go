package model

import "time"

// Session statuses.
const (
	SessionScheduled  = "SCHEDULED"
	SessionInProgress = "IN_PROGRESS"
	SessionCompleted  = "COMPLETED"
	SessionCanceled   = "CANCELED"
)

// Session represents a scheduled screening of a movie in a room.
// EndsAt must be strictly after StartsAt, and no two non-canceled
// sessions in the same room may overlap on [StartsAt, EndsAt).
//
// Fields:
//  ID             – primary key identifier.
//  CompanyID      – owning tenant.
//  MovieID        – movie being screened.
//  RoomID         – room where the screening happens.
//  StartsAt       – when the session begins (UTC).
//  EndsAt         – when the session ends (UTC).
//  BasePriceCents – default ticket price in cents.
//  Status         – SCHEDULED, IN_PROGRESS, COMPLETED or CANCELED.
type Session struct {
	ID             uint64    // sessions.id
	CompanyID      uint64    // sessions.company_id
	MovieID        uint64    // sessions.movie_id
	RoomID         uint64    // sessions.room_id
	StartsAt       time.Time // sessions.starts_at
	EndsAt         time.Time // sessions.ends_at
	BasePriceCents uint64    // sessions.base_price_cents
	Status         string    // sessions.status
	CreatedAt      time.Time // sessions.created_at
	UpdatedAt      time.Time // sessions.updated_at
}

// Overlaps reports whether two half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.  Back-to-back sessions sharing a boundary
// instant do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
