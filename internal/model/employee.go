package model

import "time"

// Employee roles.  SYSADMIN is the only role that may operate across
// tenants; all others are confined to their own company.
const (
	RoleSysAdmin = "SYSADMIN"
	RoleAdmin    = "ADMIN"
	RoleManager  = "MANAGER"
	RoleCashier  = "CASHIER"
)

// Employee represents a staff member who can authenticate against the
// API.  Employees are identified by CPF within their company and carry
// a bcrypt password hash; the plain password never leaves the login
// handler.
type Employee struct {
	ID           uint64    // employees.id
	CompanyID    uint64    // employees.company_id
	CPF          string    // employees.cpf (11 digits)
	Name         string    // employees.name
	Role         string    // employees.role
	PasswordHash string    // employees.password_hash (bcrypt)
	IsActive     bool      // employees.is_active
	CreatedAt    time.Time // employees.created_at
	UpdatedAt    time.Time // employees.updated_at
}
