package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrSeatNotFound indicates that a seat was not located in the
// caller's tenant scope.
var ErrSeatNotFound = errors.New("seat not found")

// SeatRepo manages persistence for room seat maps.  Seats are created
// in bulk when a room is generated and afterwards only their active
// flag changes.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// CreateBulkTx inserts multiple seats in a single statement within the
// provided transaction.  Passing an empty slice has no effect and
// returns nil.
func (r *SeatRepo) CreateBulkTx(ctx context.Context, tx *sql.Tx, seats []model.Seat) error {
	if len(seats) == 0 {
		return nil
	}
	query := `INSERT INTO seats (company_id, room_id, row_label, seat_number, accessible) VALUES `
	args := make([]interface{}, 0, len(seats)*5)
	for i, s := range seats {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?)"
		args = append(args, s.CompanyID, s.RoomID, s.RowLabel, s.SeatNumber, s.Accessible)
	}
	_, err := tx.ExecContext(ctx, query, args...)
	return err
}

const seatCols = `id, company_id, room_id, row_label, seat_number, accessible, is_active, created_at`

// ListByRoom returns all seats of a room ordered by row and number.
// When activeOnly is set, inactive seats are filtered out.
func (r *SeatRepo) ListByRoom(ctx context.Context, companyID, roomID uint64, activeOnly bool) ([]model.Seat, error) {
	q := `SELECT ` + seatCols + ` FROM seats WHERE room_id = ? AND company_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY row_label, seat_number`
	rows, err := r.db.QueryContext(ctx, q, roomID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.Accessible, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ActiveSeatsByRoomTx returns the active seats of a room inside a
// transaction.  The availability and reservation flows use this so the
// seat map they validate against is read under the same transaction
// that writes holds or tickets.
func (r *SeatRepo) ActiveSeatsByRoomTx(ctx context.Context, tx *sql.Tx, companyID, roomID uint64) ([]model.Seat, error) {
	const q = `SELECT ` + seatCols + ` FROM seats WHERE room_id = ? AND company_id = ? AND is_active = 1 ORDER BY row_label, seat_number`
	rows, err := tx.QueryContext(ctx, q, roomID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0)
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.CompanyID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.Accessible, &s.IsActive, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetByID retrieves a single seat within the company scope.
func (r *SeatRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Seat, error) {
	var s model.Seat
	err := r.db.QueryRowContext(ctx,
		`SELECT `+seatCols+` FROM seats WHERE id = ? AND company_id = ?`, id, companyID).Scan(
		&s.ID, &s.CompanyID, &s.RoomID, &s.RowLabel, &s.SeatNumber, &s.Accessible, &s.IsActive, &s.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSeatNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetActive toggles a seat's active flag within the company scope.
// Position fields are immutable, so this is the only seat update.
func (r *SeatRepo) SetActive(ctx context.Context, companyID, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE seats SET is_active = ? WHERE id = ? AND company_id = ?`, active, id, companyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSeatNotFound
	}
	return nil
}
