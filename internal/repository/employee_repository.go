package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
)

// ErrEmployeeNotFound indicates that an employee was not located in
// the caller's tenant scope.
var ErrEmployeeNotFound = errors.New("employee not found")

// EmployeeRepo manages persistence for employees.  All lookups except
// GetByCPFForLogin are scoped by company ID.
type EmployeeRepo struct {
	db *sql.DB
}

// NewEmployeeRepo constructs an EmployeeRepo with the given DB handle.
func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }

const employeeCols = `id, company_id, cpf, name, role, password_hash, is_active, created_at, updated_at`

func scanEmployee(row *sql.Row) (*model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.CompanyID, &e.CPF, &e.Name, &e.Role, &e.PasswordHash, &e.IsActive, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEmployeeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a new employee.  A duplicate CPF within the company
// surfaces as ErrConflict.
func (r *EmployeeRepo) Create(ctx context.Context, e *model.Employee) error {
	const q = `INSERT INTO employees (company_id, cpf, name, role, password_hash) VALUES (?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, e.CompanyID, e.CPF, e.Name, e.Role, e.PasswordHash)
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
	e.ID = uint64(id)
	row := r.db.QueryRowContext(ctx, `SELECT `+employeeCols+` FROM employees WHERE id = ?`, e.ID)
	got, err := scanEmployee(row)
	if err != nil {
		return err
	}
	*e = *got
	return nil
}

// GetByID retrieves an employee by ID within the company scope.
func (r *EmployeeRepo) GetByID(ctx context.Context, companyID, id uint64) (*model.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE id = ? AND company_id = ?`, id, companyID)
	return scanEmployee(row)
}

// GetByCPFForLogin looks an active employee up by CPF across all
// companies.  Login is the one place where the tenant is not yet
// known; the employee row itself supplies the company_id that goes
// into the issued token.
func (r *EmployeeRepo) GetByCPFForLogin(ctx context.Context, cpf string) (*model.Employee, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE cpf = ? AND is_active = 1`, cpf)
	return scanEmployee(row)
}

// ListByCompany returns all employees of a company ordered by name.
func (r *EmployeeRepo) ListByCompany(ctx context.Context, companyID uint64) ([]model.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeCols+` FROM employees WHERE company_id = ? ORDER BY name`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Employee, 0)
	for rows.Next() {
		var e model.Employee
		if err := rows.Scan(&e.ID, &e.CompanyID, &e.CPF, &e.Name, &e.Role, &e.PasswordHash, &e.IsActive, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Update changes mutable fields (name, role, active flag) of an
// employee within the company scope.
func (r *EmployeeRepo) Update(ctx context.Context, companyID, id uint64, name, role string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE employees SET name = ?, role = ?, is_active = ? WHERE id = ? AND company_id = ?`,
		name, role, active, id, companyID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}
