package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/edmoraes/cinepos/internal/model"
)

// ReservationRepo provides data access to the seat_reservations table.
// A reservation is a short-lived hold on a (session, seat) pair keyed
// by an opaque client token.  The unique key on (session_id, seat_id)
// is the authoritative guard against double holds: concurrent inserts
// collide there instead of racing a prior availability read.  All
// expiry comparisons are performed in UTC.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// SweepExpiredSessionTx removes holds for one session whose expiry has
// passed and returns the seat IDs that were freed.  Reservation and
// finalize flows call this first so stale holds never block a seat
// inside the same transaction that writes.  When there are no expired
// holds it returns an empty slice and nil error.
func (r *ReservationRepo) SweepExpiredSessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) ([]uint64, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_id FROM seat_reservations WHERE session_id = ? AND expires_at <= UTC_TIMESTAMP()`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	var freed []uint64
	for rows.Next() {
		var sid uint64
		if scanErr := rows.Scan(&sid); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		freed = append(freed, sid)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(freed) == 0 {
		return []uint64{}, nil
	}
	_, err = tx.ExecContext(ctx,
		`DELETE FROM seat_reservations WHERE session_id = ? AND expires_at <= UTC_TIMESTAMP()`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	return freed, nil
}

// SweepExpired deletes every hold in the company whose expiry has
// passed and returns the number removed.  It is safe to call at any
// time; an empty result is not an error.
func (r *ReservationRepo) SweepExpired(ctx context.Context, companyID uint64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM seat_reservations WHERE company_id = ? AND expires_at <= UTC_TIMESTAMP()`,
		companyID,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ActiveBySessionTx returns a map of seat ID to holding token for all
// non-expired holds of a session, read within the caller's
// transaction.
func (r *ReservationRepo) ActiveBySessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (map[uint64]string, error) {
	const q = `SELECT seat_id, reservation_token FROM seat_reservations
	           WHERE session_id = ? AND expires_at > UTC_TIMESTAMP()`
	rows, err := tx.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	held := make(map[uint64]string)
	for rows.Next() {
		var sid uint64
		var token string
		if err := rows.Scan(&sid, &token); err != nil {
			return nil, err
		}
		held[sid] = token
	}
	return held, rows.Err()
}

// ActiveBySession is ActiveBySessionTx without a transaction, for the
// pure availability read path.
func (r *ReservationRepo) ActiveBySession(ctx context.Context, sessionID uint64) (map[uint64]string, error) {
	const q = `SELECT seat_id, reservation_token FROM seat_reservations
	           WHERE session_id = ? AND expires_at > UTC_TIMESTAMP()`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	held := make(map[uint64]string)
	for rows.Next() {
		var sid uint64
		var token string
		if err := rows.Scan(&sid, &token); err != nil {
			return nil, err
		}
		held[sid] = token
	}
	return held, rows.Err()
}

// CreateBulkTx inserts holds for the given seats in a single statement
// within the provided transaction.  A unique-key collision (another
// transaction holding or having just held one of the seats) surfaces
// as ErrConflict so the whole batch can be rolled back.  Passing no
// seats has no effect and returns nil.
func (r *ReservationRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, companyID, sessionID uint64, seatIDs []uint64, token string, expiresAt time.Time) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `INSERT INTO seat_reservations (company_id, session_id, seat_id, reservation_token, expires_at) VALUES `
	args := make([]interface{}, 0, len(seatIDs)*5)
	for i, sid := range seatIDs {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, companyID, sessionID, sid, token, expiresAt.UTC())
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		if IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// RefreshExpiryTx pushes the expiry of the caller's own holds on the
// given seats forward.  Re-reserving under the same token is a refresh,
// not a conflict.
func (r *ReservationRepo) RefreshExpiryTx(ctx context.Context, tx *sql.Tx, sessionID uint64, seatIDs []uint64, token string, expiresAt time.Time) error {
	if len(seatIDs) == 0 {
		return nil
	}
	placeholders := strings.Repeat("?,", len(seatIDs)-1) + "?"
	args := make([]interface{}, 0, len(seatIDs)+3)
	args = append(args, expiresAt.UTC(), sessionID, token)
	for _, sid := range seatIDs {
		args = append(args, sid)
	}
	_, err := tx.ExecContext(ctx,
		`UPDATE seat_reservations SET expires_at = ? WHERE session_id = ? AND reservation_token = ? AND seat_id IN (`+placeholders+`)`,
		args...)
	return err
}

// ActiveByTokenTx returns all non-expired holds correlated by the
// given token, across sessions, within the caller's transaction.  The
// finalize flow uses this to match ticket line items against their
// holds.
func (r *ReservationRepo) ActiveByTokenTx(ctx context.Context, tx *sql.Tx, companyID uint64, token string) ([]model.SeatReservation, error) {
	const q = `SELECT id, company_id, session_id, seat_id, reservation_token, expires_at, created_at
	           FROM seat_reservations
	           WHERE company_id = ? AND reservation_token = ? AND expires_at > UTC_TIMESTAMP()`
	rows, err := tx.QueryContext(ctx, q, companyID, token)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var holds []model.SeatReservation
	for rows.Next() {
		var h model.SeatReservation
		if err := rows.Scan(&h.ID, &h.CompanyID, &h.SessionID, &h.SeatID, &h.ReservationToken, &h.ExpiresAt, &h.CreatedAt); err != nil {
			return nil, err
		}
		holds = append(holds, h)
	}
	return holds, rows.Err()
}

// DeleteByToken removes every hold for the token, regardless of
// session, and returns the (session, seat) pairs released so callers
// can invalidate availability caches.  Deleting a token with no holds
// is a no-op, not an error.
func (r *ReservationRepo) DeleteByToken(ctx context.Context, companyID uint64, token string) ([]model.SeatReservation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, company_id, session_id, seat_id, reservation_token, expires_at, created_at
		 FROM seat_reservations WHERE company_id = ? AND reservation_token = ?`,
		companyID, token)
	if err != nil {
		return nil, err
	}
	var holds []model.SeatReservation
	for rows.Next() {
		var h model.SeatReservation
		if scanErr := rows.Scan(&h.ID, &h.CompanyID, &h.SessionID, &h.SeatID, &h.ReservationToken, &h.ExpiresAt, &h.CreatedAt); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		holds = append(holds, h)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}
	if len(holds) == 0 {
		return holds, nil
	}
	if _, err = r.db.ExecContext(ctx,
		`DELETE FROM seat_reservations WHERE company_id = ? AND reservation_token = ?`,
		companyID, token); err != nil {
		return nil, err
	}
	return holds, nil
}

// DeleteByTokenTx is DeleteByToken inside a caller-owned transaction,
// used when canceling a sale releases its holds atomically with the
// status change.
func (r *ReservationRepo) DeleteByTokenTx(ctx context.Context, tx *sql.Tx, companyID uint64, token string) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM seat_reservations WHERE company_id = ? AND reservation_token = ?`,
		companyID, token)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// DeleteByIDTx removes a single hold by primary key.  The finalize
// flow deletes each hold as it is converted into a ticket.
func (r *ReservationRepo) DeleteByIDTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM seat_reservations WHERE id = ?`, id)
	return err
}
