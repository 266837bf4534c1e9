package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrCompanyNotFound indicates that a company was not located in the DB.
var ErrCompanyNotFound = errors.New("company not found")

// CompanyRepo manages persistence for companies (tenants).  It is the
// only repository whose queries are not scoped by a company_id, since
// it backs the cross-tenant system administration surface.
type CompanyRepo struct {
	db *sql.DB
}

// NewCompanyRepo constructs a CompanyRepo with the given DB handle.
func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }

// Create inserts a new company and assigns the generated ID back to
// the struct.  A duplicate CNPJ surfaces as ErrConflict.
func (r *CompanyRepo) Create(ctx context.Context, c *model.Company) error {
	const q = `INSERT INTO companies (name, cnpj) VALUES (?, ?)`
	res, err := r.db.ExecContext(ctx, q, c.Name, c.CNPJ)
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
	c.ID = uint64(id)
	const sel = `SELECT id, name, cnpj, is_active, created_at, updated_at FROM companies WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, c.ID).Scan(
		&c.ID, &c.Name, &c.CNPJ, &c.IsActive, &c.CreatedAt, &c.UpdatedAt,
	)
}

// GetByID retrieves a company by its ID.  It returns
// ErrCompanyNotFound if there is no matching row.
func (r *CompanyRepo) GetByID(ctx context.Context, id uint64) (*model.Company, error) {
	const q = `SELECT id, name, cnpj, is_active, created_at, updated_at FROM companies WHERE id = ?`
	var c model.Company
	err := r.db.QueryRowContext(ctx, q, id).Scan(&c.ID, &c.Name, &c.CNPJ, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCompanyNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all companies ordered by name.
func (r *CompanyRepo) List(ctx context.Context) ([]model.Company, error) {
	const q = `SELECT id, name, cnpj, is_active, created_at, updated_at FROM companies ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CNPJ, &c.IsActive, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetActive toggles a company's active flag.  Returns
// ErrCompanyNotFound when no row was affected.
func (r *CompanyRepo) SetActive(ctx context.Context, id uint64, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE companies SET is_active = ? WHERE id = ?`, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrCompanyNotFound
	}
	return nil
}
