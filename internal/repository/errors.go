// Package repository implements data access on top of database/sql.
// This file defines sentinel error values shared by the repositories so
// that higher layers can distinguish failure scenarios with errors.Is
// instead of string matching.  Entity-specific not-found sentinels live
// next to their repositories.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrConflict is returned when a write collides with existing state,
// such as inserting a reservation for a seat that already has one or
// applying the same discount code twice.  Handlers translate this into
// an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// ErrForbidden is returned when the caller attempts an operation on a
// resource outside their tenant scope or above their role.  Handlers
// translate this into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// IsDuplicateKey reports whether err is a MySQL duplicate-entry error
// (1062).  Unique-key violations are how seat and discount conflicts
// are detected inside the writing transaction, instead of a separate
// read-then-write check that could race.
func IsDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}

// IsForeignKeyViolation reports whether err is a MySQL foreign-key
// error (1451 row is referenced, 1452 referenced row missing).
func IsForeignKeyViolation(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && (me.Number == 1451 || me.Number == 1452)
}
