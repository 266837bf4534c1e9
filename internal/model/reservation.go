package model

import "time"

// HoldDuration is how long a seat reservation stays active after it is
// created or refreshed.  Expiry is enforced lazily at read time; there
// is no background timer.
const HoldDuration = 15 * time.Minute

// SeatReservation is a temporary hold on a seat for a session during
// checkout.  The reservation token is opaque to the server and
// correlates all holds taken by one client.  At most one reservation
// may exist per (session, seat) pair, enforced by a unique key.
type SeatReservation struct {
	ID               uint64    // seat_reservations.id
	CompanyID        uint64    // seat_reservations.company_id
	SessionID        uint64    // seat_reservations.session_id
	SeatID           uint64    // seat_reservations.seat_id
	ReservationToken string    // seat_reservations.reservation_token
	ExpiresAt        time.Time // seat_reservations.expires_at
	CreatedAt        time.Time // seat_reservations.created_at
}

// Active reports whether the hold is still valid at the given instant.
func (r SeatReservation) Active(now time.Time) bool {
	return r.ExpiresAt.After(now)
}
