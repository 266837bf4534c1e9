package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrSessionNotFound indicates that a session was not located in the
// caller's tenant scope.
var ErrSessionNotFound = errors.New("session not found")

// SessionRepo manages persistence for screening sessions.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo constructs a SessionRepo with the given DB handle.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions
// spanning multiple repositories (reserve, finalize).
func (r *SessionRepo) DB() *sql.DB { return r.db }

const sessionCols = `id, company_id, movie_id, room_id, starts_at, ends_at, base_price_cents, status, created_at, updated_at`

func scanSession(scan func(dest ...interface{}) error) (*model.Session, error) {
	var s model.Session
	err := scan(&s.ID, &s.CompanyID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.EndsAt, &s.BasePriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a new session and populates DB defaults back onto the
// struct.  Overlap validation happens in the service before calling
// this.
func (r *SessionRepo) Create(ctx context.Context, s *model.Session) error {
	const q = `INSERT INTO sessions (company_id, movie_id, room_id, starts_at, ends_at, base_price_cents) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.CompanyID, s.MovieID, s.RoomID, s.StartsAt.UTC(), s.EndsAt.UTC(), s.BasePriceCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	got, err := scanSession(r.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM sessions WHERE id = ?`, s.ID).Scan)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID retrieves a session within the company scope.  It returns
// ErrSessionNotFound if there is no matching row.
func (r *SessionRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Session, error) {
	return scanSession(r.db.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE id = ? AND company_id = ?`, id, companyID).Scan)
}

// GetByIDTx is GetByID inside a caller-owned transaction, used by the
// reservation and finalize flows so session state is read under the
// same transaction that writes.
func (r *SessionRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, companyID, id uint64) (*model.Session, error) {
	return scanSession(tx.QueryRowContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE id = ? AND company_id = ?`, id, companyID).Scan)
}

// ListByCompany returns sessions of a company ordered by start time.
func (r *SessionRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Session, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionCols+` FROM sessions WHERE company_id = ? ORDER BY starts_at`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Session, 0)
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.EndsAt, &s.BasePriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// FindOverlapping finds non-canceled sessions in the room whose
// scheduled interval intersects [start, end).  A session overlaps when
// it starts before the new end and ends after the new start.  The
// excludeID parameter lets updates ignore the session being edited;
// pass zero when creating.
func (r *SessionRepo) FindOverlapping(ctx context.Context, companyID, roomID, excludeID uint64, start, end time.Time) ([]model.Session, error) {
	const q = `SELECT ` + sessionCols + `
	           FROM sessions
	           WHERE company_id = ? AND room_id = ? AND id <> ?
	             AND status <> 'CANCELED'
	             AND starts_at < ? AND ends_at > ?`
	rows, err := r.db.QueryContext(ctx, q, companyID, roomID, excludeID, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var overlaps []model.Session
	for rows.Next() {
		var s model.Session
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.MovieID, &s.RoomID, &s.StartsAt, &s.EndsAt, &s.BasePriceCents, &s.Status, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		overlaps = append(overlaps, s)
	}
	return overlaps, rows.Err()
}

// UpdateStatus transitions a session's status within the company
// scope.  Validity of the transition is the service's concern.
func (r *SessionRepo) UpdateStatus(ctx context.Context, companyID, id uint64, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET status = ? WHERE id = ? AND company_id = ?`, status, id, companyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// Update rewrites schedule and price fields of a session within the
// company scope.
func (r *SessionRepo) Update(ctx context.Context, s *model.Session) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sessions SET movie_id = ?, room_id = ?, starts_at = ?, ends_at = ?, base_price_cents = ? WHERE id = ? AND company_id = ?`,
		s.MovieID, s.RoomID, s.StartsAt.UTC(), s.EndsAt.UTC(), s.BasePriceCents, s.ID, s.CompanyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSessionNotFound
	}
	return nil
}
