package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrDiscountNotFound indicates that a discount code was not located
// in the caller's tenant scope.
var ErrDiscountNotFound = errors.New("discount code not found")

// DiscountRepo provides data access to discount_codes.  The usage
// counter is only moved by IncrementUsageTx, which re-checks the cap
// in the same statement so two finalizations cannot both consume the
// last use.
type DiscountRepo struct {
	db *sql.DB
}

// NewDiscountRepo returns a DiscountRepo bound to the given database.
func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{db: db} }

const discountCols = `id, company_id, code, type, value, valid_from, valid_to,
	max_uses, current_uses, cpf_range_start, cpf_range_end, created_at, updated_at`

func scanDiscount(scan func(dest ...interface{}) error) (*model.DiscountCode, error) {
	var d model.DiscountCode
	var maxUses sql.NullInt64
	var rangeStart, rangeEnd sql.NullString
	err := scan(&d.ID, &d.CompanyID, &d.Code, &d.Type, &d.Value, &d.ValidFrom, &d.ValidTo,
		&maxUses, &d.CurrentUses, &rangeStart, &rangeEnd, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDiscountNotFound
	}
	if err != nil {
		return nil, err
	}
	if maxUses.Valid {
		v := uint32(maxUses.Int64)
		d.MaxUses = &v
	}
	if rangeStart.Valid {
		v := rangeStart.String
		d.CPFRangeStart = &v
	}
	if rangeEnd.Valid {
		v := rangeEnd.String
		d.CPFRangeEnd = &v
	}
	return &d, nil
}

func scanDiscounts(rows *sql.Rows) ([]model.DiscountCode, error) {
	defer rows.Close()
	out := make([]model.DiscountCode, 0)
	for rows.Next() {
		var d model.DiscountCode
		var maxUses sql.NullInt64
		var rangeStart, rangeEnd sql.NullString
		if err := rows.Scan(&d.ID, &d.CompanyID, &d.Code, &d.Type, &d.Value, &d.ValidFrom, &d.ValidTo,
			&maxUses, &d.CurrentUses, &rangeStart, &rangeEnd, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		if maxUses.Valid {
			v := uint32(maxUses.Int64)
			d.MaxUses = &v
		}
		if rangeStart.Valid {
			v := rangeStart.String
			d.CPFRangeStart = &v
		}
		if rangeEnd.Valid {
			v := rangeEnd.String
			d.CPFRangeEnd = &v
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Create inserts a new discount code.  A duplicate code within the
// company surfaces as ErrConflict.
func (r *DiscountRepo) Create(ctx context.Context, d *model.DiscountCode) error {
	const q = `INSERT INTO discount_codes
	           (company_id, code, type, value, valid_from, valid_to, max_uses, cpf_range_start, cpf_range_end)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, d.CompanyID, d.Code, d.Type, d.Value,
		d.ValidFrom.UTC(), d.ValidTo.UTC(), d.MaxUses, d.CPFRangeStart, d.CPFRangeEnd)
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
	d.ID = uint64(id)
	got, err := scanDiscount(r.db.QueryRowContext(ctx,
		`SELECT `+discountCols+` FROM discount_codes WHERE id = ?`, d.ID).Scan)
	if err != nil {
		return err
	}
	*d = *got
	return nil
}

// GetByCodeTx looks a code up within the company scope, with a row
// lock.  The discount apply flow reads under FOR UPDATE so the checks
// and the sale_discounts insert happen against a stable row.
func (r *DiscountRepo) GetByCodeTx(ctx context.Context, tx *sql.Tx, companyID uint64, code string) (*model.DiscountCode, error) {
	return scanDiscount(tx.QueryRowContext(ctx,
		`SELECT `+discountCols+` FROM discount_codes WHERE company_id = ? AND code = ? FOR UPDATE`,
		companyID, code).Scan)
}

// GetByID retrieves a discount code within the company scope.
func (r *DiscountRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.DiscountCode, error) {
	return scanDiscount(r.db.QueryRowContext(ctx,
		`SELECT `+discountCols+` FROM discount_codes WHERE id = ? AND company_id = ?`, id, companyID).Scan)
}

// ListByCompany returns all discount codes of a company ordered by code.
func (r *DiscountRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.DiscountCode, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+discountCols+` FROM discount_codes WHERE company_id = ? ORDER BY code`, companyID)
	if err != nil {
		return nil, err
	}
	return scanDiscounts(rows)
}

// IncrementUsageTx consumes one use of the code.  The cap is
// re-checked in the UPDATE itself; zero affected rows means another
// transaction took the last use, surfaced as ErrConflict.
func (r *DiscountRepo) IncrementUsageTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE discount_codes SET current_uses = current_uses + 1
		 WHERE id = ? AND (max_uses IS NULL OR current_uses < max_uses)`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Delete removes a discount code.  Codes referenced by finalized sales
// cannot be deleted; the FK violation surfaces as ErrConflict.
func (r *DiscountRepo) Delete(ctx context.Context, companyID, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM discount_codes WHERE id = ? AND company_id = ?`, id, companyID)
	if err != nil {
		if IsForeignKeyViolation(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrDiscountNotFound
	}
	return nil
}
