package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// Seat availability statuses.  SOLD takes precedence over RESERVED: a
// ticket always supersedes whatever hold produced it.
const (
	SeatAvailable = "AVAILABLE"
	SeatSold      = "SOLD"
	SeatReserved  = "RESERVED"
)

// ErrNoSeatMap is returned when the session's room has no active
// seats, so there is nothing to resolve availability against.
var ErrNoSeatMap = errors.New("room has no seat map")

// SeatStatus is one seat's availability within a session.
type SeatStatus struct {
	SeatID     uint64 `json:"seat_id"`
	RowLabel   string `json:"row_label"`
	SeatNumber uint32 `json:"seat_number"`
	Accessible bool   `json:"accessible"`
	Status     string `json:"status"`
}

// SessionAvailability is the full availability picture for a session.
type SessionAvailability struct {
	SessionID uint64       `json:"session_id"`
	Seats     []SeatStatus `json:"seats"`
}

// availabilityTTL bounds how stale a cached availability snapshot can
// get between invalidations; holds expiring passively are picked up at
// the next cache miss.
const availabilityTTL = 10 * time.Second

// AvailabilityService resolves which seats of a session are sold, held
// or free.  Resolution is a pure read; the only side channel is an
// optional Redis snapshot cache that every seat-affecting write
// invalidates.
type AvailabilityService struct {
	sessions     *repository.SessionRepo
	seats        *repository.SeatRepo
	tickets      *repository.TicketRepo
	reservations *repository.ReservationRepo
	cache        *redis.Client // nil disables caching
}

// NewAvailabilityService constructs an AvailabilityService.  The cache
// client may be nil, in which case every call hits the database.
func NewAvailabilityService(sessions *repository.SessionRepo, seats *repository.SeatRepo, tickets *repository.TicketRepo, reservations *repository.ReservationRepo, cache *redis.Client) *AvailabilityService {
	if sessions == nil || seats == nil || tickets == nil || reservations == nil {
		panic("nil repository passed to NewAvailabilityService")
	}
	return &AvailabilityService{
		sessions:     sessions,
		seats:        seats,
		tickets:      tickets,
		reservations: reservations,
		cache:        cache,
	}
}

func availabilityKey(companyID, sessionID uint64) string {
	return fmt.Sprintf("avail:%d:%d", companyID, sessionID)
}

// Resolve computes availability for every active seat of the session's
// room.  It returns repository.ErrSessionNotFound when the session is
// not in the tenant's scope and ErrNoSeatMap when the room has no
// active seats.
func (s *AvailabilityService) Resolve(ctx context.Context, companyID, sessionID uint64) (*SessionAvailability, error) {
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, availabilityKey(companyID, sessionID)).Bytes(); err == nil {
			var cached SessionAvailability
			if json.Unmarshal(raw, &cached) == nil {
				return &cached, nil
			}
		}
	}
	sess, err := s.sessions.GetByID(ctx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListByRoom(ctx, companyID, sess.RoomID, true)
	if err != nil {
		return nil, err
	}
	if len(seats) == 0 {
		return nil, ErrNoSeatMap
	}
	sold, err := s.tickets.SoldSeatIDsBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	held, err := s.reservations.ActiveBySession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	out := &SessionAvailability{
		SessionID: sessionID,
		Seats:     ClassifySeats(seats, sold, held),
	}
	if s.cache != nil {
		if raw, err := json.Marshal(out); err == nil {
			_ = s.cache.Set(ctx, availabilityKey(companyID, sessionID), raw, availabilityTTL).Err()
		}
	}
	return out, nil
}

// Invalidate drops the cached snapshot for a session.  Called by every
// write that changes a seat's state.  A nil cache makes this a no-op.
func (s *AvailabilityService) Invalidate(ctx context.Context, companyID, sessionID uint64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, availabilityKey(companyID, sessionID)).Err()
}

// ClassifySeats assigns each seat its availability status.  sold maps
// seat IDs with a live ticket; held maps seat IDs to the token of
// their unexpired hold.  A seat that is both sold and held reports
// SOLD.
func ClassifySeats(seats []model.Seat, sold map[uint64]bool, held map[uint64]string) []SeatStatus {
	out := make([]SeatStatus, 0, len(seats))
	for _, seat := range seats {
		status := SeatAvailable
		switch {
		case sold[seat.ID]:
			status = SeatSold
		case held[seat.ID] != "":
			status = SeatReserved
		}
		out = append(out, SeatStatus{
			SeatID:     seat.ID,
			RowLabel:   seat.RowLabel,
			SeatNumber: seat.SeatNumber,
			Accessible: seat.Accessible,
			Status:     status,
		})
	}
	return out
}
