package service

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// ReserveResult reports the outcome of a batch hold attempt.  On
// success Reserved lists every requested seat; on conflict no holds
// are created and Conflicts lists the seats that blocked the batch.
type ReserveResult struct {
	Token     string    `json:"reservation_token"`
	Reserved  []uint64  `json:"reserved,omitempty"`
	Conflicts []uint64  `json:"conflicts,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ReservationService manages short-lived seat holds.  All conflict
// checking happens inside the same transaction that inserts the holds,
// with the unique key on (session, seat) as the final arbiter, so a
// racing request cannot slip between a read and a write.
type ReservationService struct {
	db           *sql.DB
	sessions     *repository.SessionRepo
	seats        *repository.SeatRepo
	tickets      *repository.TicketRepo
	reservations *repository.ReservationRepo
	availability *AvailabilityService
	audit        Auditor
}

// NewReservationService constructs a ReservationService.
func NewReservationService(db *sql.DB, sessions *repository.SessionRepo, seats *repository.SeatRepo, tickets *repository.TicketRepo, reservations *repository.ReservationRepo, availability *AvailabilityService, audit Auditor) *ReservationService {
	if db == nil || sessions == nil || seats == nil || tickets == nil || reservations == nil || availability == nil {
		panic("nil dependency passed to NewReservationService")
	}
	if audit == nil {
		audit = NopAuditor{}
	}
	return &ReservationService{
		db:           db,
		sessions:     sessions,
		seats:        seats,
		tickets:      tickets,
		reservations: reservations,
		availability: availability,
		audit:        audit,
	}
}

// Reserve places 15-minute holds on the requested seats for the given
// session, all or nothing.  A seat already sold, or held under a
// different token, is a conflict and fails the whole batch with
// ErrSeatConflict; the result then carries the conflicting seat IDs.
// Re-reserving seats already held under the same token refreshes their
// expiry instead of conflicting.  An empty token is replaced with a
// generated one, returned in the result.
func (s *ReservationService) Reserve(ctx context.Context, companyID, sessionID uint64, seatIDs []uint64, token string) (*ReserveResult, error) {
	seatIDs = dedupeIDs(seatIDs)
	if token == "" {
		token = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sess, err := s.sessions.GetByIDTx(ctx, tx, companyID, sessionID)
	if err != nil {
		return nil, err
	}
	if sess.Status != model.SessionScheduled {
		return nil, ErrSessionNotSellable
	}

	// Stale holds never block a seat: sweep them inside this
	// transaction before looking at what is taken.
	if _, err := s.reservations.SweepExpiredSessionTx(ctx, tx, sessionID); err != nil {
		return nil, err
	}

	active, err := s.seats.ActiveSeatsByRoomTx(ctx, tx, companyID, sess.RoomID)
	if err != nil {
		return nil, err
	}
	activeIDs := make(map[uint64]bool, len(active))
	for _, seat := range active {
		activeIDs[seat.ID] = true
	}
	for _, sid := range seatIDs {
		if !activeIDs[sid] {
			return nil, repository.ErrSeatNotFound
		}
	}

	sold, err := s.tickets.SoldSeatIDsBySessionTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}
	held, err := s.reservations.ActiveBySessionTx(ctx, tx, sessionID)
	if err != nil {
		return nil, err
	}

	toCreate, toRefresh, conflicts := SplitReservable(seatIDs, sold, held, token)
	if len(conflicts) > 0 {
		return &ReserveResult{Token: token, Conflicts: conflicts}, ErrSeatConflict
	}

	expiresAt := time.Now().UTC().Add(model.HoldDuration)
	if err := s.reservations.CreateBulkTx(ctx, tx, companyID, sessionID, toCreate, token, expiresAt); err != nil {
		// A concurrent insert beat us to the unique key after our read.
		if err == repository.ErrConflict {
			return nil, ErrSeatConflict
		}
		return nil, err
	}
	if err := s.reservations.RefreshExpiryTx(ctx, tx, sessionID, toRefresh, token, expiresAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	s.availability.Invalidate(ctx, companyID, sessionID)
	return &ReserveResult{Token: token, Reserved: seatIDs, ExpiresAt: expiresAt}, nil
}

// Release deletes every hold correlated by the token, across sessions,
// and returns how many were removed.  Releasing an unknown token is a
// no-op, not an error, so retries are harmless.
func (s *ReservationService) Release(ctx context.Context, companyID uint64, token, actor string) (int, error) {
	holds, err := s.reservations.DeleteByToken(ctx, companyID, token)
	if err != nil {
		return 0, err
	}
	touched := make(map[uint64]bool)
	for _, h := range holds {
		touched[h.SessionID] = true
	}
	for sessionID := range touched {
		s.availability.Invalidate(ctx, companyID, sessionID)
	}
	if len(holds) > 0 {
		s.audit.Record(ctx, AuditEntry{
			CompanyID:  companyID,
			Actor:      actor,
			Action:     "reservation.released",
			TargetType: "reservation_token",
			TargetID:   token,
			Metadata:   map[string]string{"released": strconv.Itoa(len(holds))},
		})
	}
	return len(holds), nil
}

// SweepExpired removes every expired hold in the tenant and returns
// the count.  Intended to be called opportunistically; an empty sweep
// is not an error.
func (s *ReservationService) SweepExpired(ctx context.Context, companyID uint64) (int64, error) {
	return s.reservations.SweepExpired(ctx, companyID)
}

// SplitReservable classifies the requested seats against current
// session state: seats with a live ticket or a foreign active hold are
// conflicts, seats already held under the caller's own token are
// refreshes, the rest are new holds.
func SplitReservable(requested []uint64, sold map[uint64]bool, held map[uint64]string, token string) (toCreate, toRefresh, conflicts []uint64) {
	for _, sid := range requested {
		switch {
		case sold[sid]:
			conflicts = append(conflicts, sid)
		case held[sid] == "":
			toCreate = append(toCreate, sid)
		case held[sid] == token:
			toRefresh = append(toRefresh, sid)
		default:
			conflicts = append(conflicts, sid)
		}
	}
	return toCreate, toRefresh, conflicts
}

// dedupeIDs drops zero and repeated IDs while preserving order.
func dedupeIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			out = append(out, id)
		}
	}
	return out
}
