package model

import "time"

// Movie is a catalog entry that sessions reference.  Movies are
// read-only from the point of view of the sales workflow; only their
// existence and active flag are checked before a session is scheduled.
type Movie struct {
	ID              uint64    // movies.id
	CompanyID       uint64    // movies.company_id
	Title           string    // movies.title
	DurationMinutes uint32    // movies.duration_minutes
	Rating          string    // movies.rating (age rating label)
	IsActive        bool      // movies.is_active
	CreatedAt       time.Time // movies.created_at
	UpdatedAt       time.Time // movies.updated_at
}
