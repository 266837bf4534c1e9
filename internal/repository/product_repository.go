package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrProductNotFound indicates that a product was not located in the
// caller's tenant scope.
var ErrProductNotFound = errors.New("product not found")

// ErrInsufficientStock is returned when a stock decrement would go
// below zero.
var ErrInsufficientStock = errors.New("insufficient stock")

// ProductRepo manages persistence for concession inventory.
type ProductRepo struct {
	db *sql.DB
}

// NewProductRepo constructs a ProductRepo with the given DB handle.
func NewProductRepo(db *sql.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, company_id, name, price_cents, stock, is_active, created_at, updated_at`

func scanProduct(scan func(dest ...interface{}) error) (*model.Product, error) {
	var p model.Product
	err := scan(&p.ID, &p.CompanyID, &p.Name, &p.PriceCents, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProductNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create inserts a new product.  A duplicate name within the company
// surfaces as ErrConflict.
func (r *ProductRepo) Create(ctx context.Context, p *model.Product) error {
	const q = `INSERT INTO products (company_id, name, price_cents, stock) VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.CompanyID, p.Name, p.PriceCents, p.Stock)
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
	p.ID = uint64(id)
	got, err := scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productCols+` FROM products WHERE id = ?`, p.ID).Scan)
	if err != nil {
		return err
	}
	*p = *got
	return nil
}

// GetByID retrieves a product within the company scope.
func (r *ProductRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Product, error) {
	return scanProduct(r.db.QueryRowContext(ctx,
		`SELECT `+productCols+` FROM products WHERE id = ? AND company_id = ?`, id, companyID).Scan)
}

// GetByIDTx is GetByID inside a caller-owned transaction, used when a
// sale adds an inventory line so the price read participates in the
// sale's transaction.
func (r *ProductRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, companyID, id uint64) (*model.Product, error) {
	return scanProduct(tx.QueryRowContext(ctx,
		`SELECT `+productCols+` FROM products WHERE id = ? AND company_id = ?`, id, companyID).Scan)
}

// ListByCompany returns all products of a company ordered by name.
func (r *ProductRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Product, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+productCols+` FROM products WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Product, 0)
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(&p.ID, &p.CompanyID, &p.Name, &p.PriceCents, &p.Stock, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Update changes name, price, stock and active flag of a product
// within the company scope.
func (r *ProductRepo) Update(ctx context.Context, p *model.Product) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE products SET name = ?, price_cents = ?, stock = ?, is_active = ? WHERE id = ? AND company_id = ?`,
		p.Name, p.PriceCents, p.Stock, p.IsActive, p.ID, p.CompanyID)
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
		return ErrProductNotFound
	}
	return nil
}

// DecrementStockTx consumes stock for a finalized sale line.  The
// guard is in the UPDATE itself so concurrent finalizations cannot
// oversell; zero affected rows means the stock ran out, surfaced as
// ErrInsufficientStock.
func (r *ProductRepo) DecrementStockTx(ctx context.Context, tx *sql.Tx, companyID, id uint64, qty uint32) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE products SET stock = stock - ? WHERE id = ? AND company_id = ? AND stock >= ?`,
		qty, id, companyID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}
