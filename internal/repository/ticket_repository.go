package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrTicketNotFound indicates that a ticket was not located in the
// caller's tenant scope.
var ErrTicketNotFound = errors.New("ticket not found")

// TicketRepo provides data access to the tickets table.  Tickets are
// append-only apart from status transitions; the generated
// active_seat_id column (NULL when refunded) carries the unique key
// that prevents two live tickets for the same (session, seat).
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketCols = `id, company_id, session_id, seat_id, sale_id, price_cents, status, created_at, updated_at`

// CreateTx inserts a ticket within the provided transaction and
// populates the generated ID.  A unique-key collision on the live-seat
// index surfaces as ErrConflict, which is how a concurrent sale of the
// same seat is detected at the moment of writing.
func (r *TicketRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Ticket) error {
	const q = `INSERT INTO tickets (company_id, session_id, seat_id, sale_id, price_cents) VALUES (?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, t.CompanyID, t.SessionID, t.SeatID, t.SaleID, t.PriceCents)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	t.Status = model.TicketIssued
	return nil
}

// SoldSeatIDsBySessionTx returns the seat IDs with a non-refunded
// ticket for the session, read within the caller's transaction.
func (r *TicketRepo) SoldSeatIDsBySessionTx(ctx context.Context, tx *sql.Tx, sessionID uint64) (map[uint64]bool, error) {
	const q = `SELECT seat_id FROM tickets WHERE session_id = ? AND status <> 'REFUNDED'`
	rows, err := tx.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sold := make(map[uint64]bool)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		sold[sid] = true
	}
	return sold, rows.Err()
}

// SoldSeatIDsBySession is the non-transactional variant used by the
// availability read path.
func (r *TicketRepo) SoldSeatIDsBySession(ctx context.Context, sessionID uint64) (map[uint64]bool, error) {
	const q = `SELECT seat_id FROM tickets WHERE session_id = ? AND status <> 'REFUNDED'`
	rows, err := r.db.QueryContext(ctx, q, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	sold := make(map[uint64]bool)
	for rows.Next() {
		var sid uint64
		if err := rows.Scan(&sid); err != nil {
			return nil, err
		}
		sold[sid] = true
	}
	return sold, rows.Err()
}

// GetByID retrieves a ticket within the company scope.
func (r *TicketRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Ticket, error) {
	var t model.Ticket
	var saleID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE id = ? AND company_id = ?`, id, companyID).Scan(
		&t.ID, &t.CompanyID, &t.SessionID, &t.SeatID, &saleID, &t.PriceCents, &t.Status, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTicketNotFound
	}
	if err != nil {
		return nil, err
	}
	if saleID.Valid {
		sid := uint64(saleID.Int64)
		t.SaleID = &sid
	}
	return &t, nil
}

// ListBySale returns the tickets issued for a sale.
func (r *TicketRepo) ListBySale(ctx context.Context, companyID, saleID uint64) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ticketCols+` FROM tickets WHERE sale_id = ? AND company_id = ? ORDER BY id`, saleID, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Ticket, 0)
	for rows.Next() {
		var t model.Ticket
		var sid sql.NullInt64
		if err := rows.Scan(&t.ID, &t.CompanyID, &t.SessionID, &t.SeatID, &sid, &t.PriceCents, &t.Status, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		if sid.Valid {
			v := uint64(sid.Int64)
			t.SaleID = &v
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Refund flips a ticket to REFUNDED, which nulls its active_seat_id
// and frees the seat for resale.  Refunding an already-refunded ticket
// returns ErrConflict; a missing ticket returns ErrTicketNotFound.
func (r *TicketRepo) Refund(ctx context.Context, companyID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = 'REFUNDED' WHERE id = ? AND company_id = ? AND status <> 'REFUNDED'`,
		id, companyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish missing from already refunded.
		var exists int
		err := r.db.QueryRowContext(ctx,
			`SELECT 1 FROM tickets WHERE id = ? AND company_id = ?`, id, companyID).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrTicketNotFound
		}
		if err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}
