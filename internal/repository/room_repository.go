package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrRoomNotFound indicates that a room was not located in the
// caller's tenant scope.
var ErrRoomNotFound = errors.New("room not found")

// RoomRepo manages persistence for screening rooms.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying sql.DB.  It allows callers to begin
// transactions spanning multiple repositories, such as creating a room
// together with its generated seat map.
func (r *RoomRepo) DB() *sql.DB { return r.db }

// CreateTx inserts a new room using the provided transaction.  The
// caller must commit or roll back.  A duplicate name within the
// company surfaces as ErrConflict.
func (r *RoomRepo) CreateTx(ctx context.Context, tx *sql.Tx, room *model.Room) error {
	const q = `INSERT INTO rooms (company_id, name) VALUES (?, ?)`
	res, err := tx.ExecContext(ctx, q, room.CompanyID, room.Name)
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
	room.ID = uint64(id)
	const sel = `SELECT id, company_id, name, is_active, created_at, updated_at FROM rooms WHERE id = ?`
	return tx.QueryRowContext(ctx, sel, room.ID).Scan(
		&room.ID, &room.CompanyID, &room.Name, &room.IsActive, &room.CreatedAt, &room.UpdatedAt,
	)
}

// GetByID retrieves a room within the company scope.  It returns
// ErrRoomNotFound if there is no matching row.
func (r *RoomRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Room, error) {
	const q = `SELECT id, company_id, name, is_active, created_at, updated_at FROM rooms WHERE id = ? AND company_id = ?`
	var room model.Room
	err := r.db.QueryRowContext(ctx, q, id, companyID).Scan(
		&room.ID, &room.CompanyID, &room.Name, &room.IsActive, &room.CreatedAt, &room.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByCompany returns all rooms of a company ordered by name.
func (r *RoomRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Room, error) {
	const q = `SELECT id, company_id, name, is_active, created_at, updated_at FROM rooms WHERE company_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var room model.Room
		if err := rows.Scan(&room.ID, &room.CompanyID, &room.Name, &room.IsActive, &room.CreatedAt, &room.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, room)
	}
	return out, rows.Err()
}

// Update changes name and active flag of a room within the company
// scope.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE rooms SET name = ?, is_active = ? WHERE id = ? AND company_id = ?`,
		room.Name, room.IsActive, room.ID, room.CompanyID)
	if err != nil {
		if IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRoomNotFound
	}
	return nil
}
