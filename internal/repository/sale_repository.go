package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrSaleNotFound indicates that a sale was not located in the
// caller's tenant scope.
var ErrSaleNotFound = errors.New("sale not found")

// ErrSaleItemNotFound indicates that a line item does not belong to
// the sale.
var ErrSaleItemNotFound = errors.New("sale item not found")

// SaleRepo provides data access to sales, sale_items, sale_discounts
// and payments.  Mutating flows (add/remove item, apply discount,
// finalize, cancel) load the sale row with GetForUpdateTx so two
// concurrent requests against the same sale serialize on the row lock.
type SaleRepo struct {
	db *sql.DB
}

// NewSaleRepo returns a SaleRepo bound to the given database.
func NewSaleRepo(db *sql.DB) *SaleRepo { return &SaleRepo{db: db} }

// DB exposes the underlying sql.DB so the service layer can begin
// transactions spanning sales, reservations, tickets and inventory.
func (r *SaleRepo) DB() *sql.DB { return r.db }

const saleCols = `id, company_id, status, buyer_cpf, cashier_cpf, reservation_token,
	sub_total_cents, discount_total_cents, grand_total_cents, cancel_reason, created_at, updated_at`

func scanSale(scan func(dest ...interface{}) error) (*model.Sale, error) {
	var s model.Sale
	var buyer, token, reason sql.NullString
	err := scan(&s.ID, &s.CompanyID, &s.Status, &buyer, &s.CashierCPF, &token,
		&s.SubTotalCents, &s.DiscountTotalCents, &s.GrandTotalCents, &reason, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSaleNotFound
	}
	if err != nil {
		return nil, err
	}
	if buyer.Valid {
		v := buyer.String
		s.BuyerCPF = &v
	}
	if token.Valid {
		v := token.String
		s.ReservationToken = &v
	}
	if reason.Valid {
		v := reason.String
		s.CancelReason = &v
	}
	return &s, nil
}

// Create inserts a new OPEN sale and populates DB defaults back onto
// the struct.
func (r *SaleRepo) Create(ctx context.Context, s *model.Sale) error {
	const q = `INSERT INTO sales (company_id, buyer_cpf, cashier_cpf) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.CompanyID, s.BuyerCPF, s.CashierCPF)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	got, err := scanSale(r.db.QueryRowContext(ctx, `SELECT `+saleCols+` FROM sales WHERE id = ?`, s.ID).Scan)
	if err != nil {
		return err
	}
	*s = *got
	return nil
}

// GetByID retrieves a sale within the company scope.
func (r *SaleRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Sale, error) {
	return scanSale(r.db.QueryRowContext(ctx,
		`SELECT `+saleCols+` FROM sales WHERE id = ? AND company_id = ?`, id, companyID).Scan)
}

// GetForUpdateTx loads a sale with a row lock so concurrent mutations
// of the same sale serialize instead of interleaving.
func (r *SaleRepo) GetForUpdateTx(ctx context.Context, tx *sql.Tx, companyID, id uint64) (*model.Sale, error) {
	return scanSale(tx.QueryRowContext(ctx,
		`SELECT `+saleCols+` FROM sales WHERE id = ? AND company_id = ? FOR UPDATE`, id, companyID).Scan)
}

const itemCols = `id, sale_id, kind, session_id, seat_id, product_id, quantity, unit_price_cents, line_total_cents, created_at`

func scanItems(rows *sql.Rows) ([]model.SaleItem, error) {
	defer rows.Close()
	out := make([]model.SaleItem, 0)
	for rows.Next() {
		var it model.SaleItem
		var sessionID, seatID, productID sql.NullInt64
		if err := rows.Scan(&it.ID, &it.SaleID, &it.Kind, &sessionID, &seatID, &productID,
			&it.Quantity, &it.UnitPriceCents, &it.LineTotalCents, &it.CreatedAt); err != nil {
			return nil, err
		}
		if sessionID.Valid {
			v := uint64(sessionID.Int64)
			it.SessionID = &v
		}
		if seatID.Valid {
			v := uint64(seatID.Int64)
			it.SeatID = &v
		}
		if productID.Valid {
			v := uint64(productID.Int64)
			it.ProductID = &v
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// ItemsTx returns the line items of a sale within the caller's
// transaction, oldest first.
func (r *SaleRepo) ItemsTx(ctx context.Context, tx *sql.Tx, saleID uint64) ([]model.SaleItem, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+itemCols+` FROM sale_items WHERE sale_id = ? ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// Items is ItemsTx without a transaction, for read endpoints.
func (r *SaleRepo) Items(ctx context.Context, saleID uint64) ([]model.SaleItem, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+itemCols+` FROM sale_items WHERE sale_id = ? ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	return scanItems(rows)
}

// AddItemTx inserts a line item within the provided transaction and
// populates the generated ID.
func (r *SaleRepo) AddItemTx(ctx context.Context, tx *sql.Tx, it *model.SaleItem) error {
	const q = `INSERT INTO sale_items (sale_id, kind, session_id, seat_id, product_id, quantity, unit_price_cents, line_total_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, it.SaleID, it.Kind, it.SessionID, it.SeatID, it.ProductID,
		it.Quantity, it.UnitPriceCents, it.LineTotalCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	it.ID = uint64(id)
	return nil
}

// DeleteItemTx removes one line item of a sale.  Returns
// ErrSaleItemNotFound when the item does not belong to the sale.
func (r *SaleRepo) DeleteItemTx(ctx context.Context, tx *sql.Tx, saleID, itemID uint64) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM sale_items WHERE id = ? AND sale_id = ?`, itemID, saleID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrSaleItemNotFound
	}
	return nil
}

// UpdateTotalsTx persists recomputed totals onto the sale row.
func (r *SaleRepo) UpdateTotalsTx(ctx context.Context, tx *sql.Tx, saleID uint64, sub, discount, grand uint64) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE sales SET sub_total_cents = ?, discount_total_cents = ?, grand_total_cents = ? WHERE id = ?`,
		sub, discount, grand, saleID)
	return err
}

// SetReservationTokenTx records the reservation token the sale's
// ticket items are correlated with.  Set once, when the first ticket
// item is added.
func (r *SaleRepo) SetReservationTokenTx(ctx context.Context, tx *sql.Tx, saleID uint64, token string) error {
	_, err := tx.ExecContext(ctx, `UPDATE sales SET reservation_token = ? WHERE id = ?`, token, saleID)
	return err
}

// SetStatusTx transitions the sale status; reason is only stored for
// cancellations and may be empty otherwise.
func (r *SaleRepo) SetStatusTx(ctx context.Context, tx *sql.Tx, saleID uint64, status string, reason *string) error {
	_, err := tx.ExecContext(ctx, `UPDATE sales SET status = ?, cancel_reason = ? WHERE id = ?`, status, reason, saleID)
	return err
}

// AddPaymentTx inserts a payment row within the provided transaction.
func (r *SaleRepo) AddPaymentTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		`INSERT INTO payments (sale_id, method, amount_cents) VALUES (?, ?, ?)`,
		p.SaleID, p.Method, p.AmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// PaymentsSumTx returns the total of already-recorded payments for the
// sale within the caller's transaction.
func (r *SaleRepo) PaymentsSumTx(ctx context.Context, tx *sql.Tx, saleID uint64) (uint64, error) {
	var sum uint64
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount_cents), 0) FROM payments WHERE sale_id = ?`, saleID).Scan(&sum)
	return sum, err
}

// Payments returns the payment rows of a sale, oldest first.
func (r *SaleRepo) Payments(ctx context.Context, saleID uint64) ([]model.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, sale_id, method, amount_cents, created_at FROM payments WHERE sale_id = ? ORDER BY id`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Payment, 0)
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.AmountCents, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// AddDiscountTx records a discount code application against the sale.
// The composite primary key makes a second application of the same
// code collide, surfaced as ErrConflict.
func (r *SaleRepo) AddDiscountTx(ctx context.Context, tx *sql.Tx, saleID, discountID uint64) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sale_discounts (sale_id, discount_id) VALUES (?, ?)`, saleID, discountID); err != nil {
		if IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// AppliedDiscountsTx returns the discount codes applied to a sale
// within the caller's transaction, in application order.
func (r *SaleRepo) AppliedDiscountsTx(ctx context.Context, tx *sql.Tx, saleID uint64) ([]model.DiscountCode, error) {
	const q = `SELECT d.id, d.company_id, d.code, d.type, d.value, d.valid_from, d.valid_to,
	                  d.max_uses, d.current_uses, d.cpf_range_start, d.cpf_range_end, d.created_at, d.updated_at
	           FROM sale_discounts sd
	           JOIN discount_codes d ON d.id = sd.discount_id
	           WHERE sd.sale_id = ?
	           ORDER BY sd.applied_at`
	rows, err := tx.QueryContext(ctx, q, saleID)
	if err != nil {
		return nil, err
	}
	return scanDiscounts(rows)
}
