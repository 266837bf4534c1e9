package model

import "time"

// Company represents one cinema operator (a tenant).  Every other
// entity in the system carries the owning company's ID and queries
// always filter by it, so data never crosses tenant boundaries.
//
// Fields:
//  ID        – primary key identifier.
//  Name      – trade name of the company.
//  CNPJ      – national company registration number (digits only).
//  IsActive  – deactivated companies cannot authenticate or sell.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Company struct {
	ID        uint64    // companies.id
	Name      string    // companies.name
	CNPJ      string    // companies.cnpj
	IsActive  bool      // companies.is_active
	CreatedAt time.Time // companies.created_at
	UpdatedAt time.Time // companies.updated_at
}
