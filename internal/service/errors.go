// Package service implements the transactional sales workflow on top
// of the repository layer: seat availability, short-lived seat holds,
// the sale aggregate with discounts and payments, and the atomic
// finalization that turns holds into tickets.
package service

import (
	"fmt"

	"github.com/edmoraes/cinepos/internal/repository"
)

// StateError marks a business-rule violation on otherwise well-formed
// input: the request is understood but the current state disallows it.
// Handlers translate these into HTTP 422 responses.
type StateError struct {
	msg string
}

func (e *StateError) Error() string { return e.msg }

func stateErrorf(format string, args ...interface{}) *StateError {
	return &StateError{msg: fmt.Sprintf(format, args...)}
}

// Business-rule failures with a fixed reason.
var (
	ErrSaleNotOpen          = &StateError{msg: "sale is not open"}
	ErrSessionNotSellable   = &StateError{msg: "session is not open for sale"}
	ErrDiscountNotYetValid  = &StateError{msg: "discount code not yet valid"}
	ErrDiscountExpired      = &StateError{msg: "discount code expired"}
	ErrUsageLimitReached    = &StateError{msg: "discount usage limit reached"}
	ErrBuyerRequired        = &StateError{msg: "buyer cpf required for this discount"}
	ErrBuyerNotEligible     = &StateError{msg: "buyer cpf not eligible for this discount"}
	ErrEndBeforeStart       = &StateError{msg: "session must end after it starts"}
	ErrRoomOccupied         = &StateError{msg: "room already has a session in that time range"}
)

// Conflict failures wrap repository.ErrConflict so handlers can map
// every state collision to 409 with a single errors.Is check.
var (
	ErrSeatConflict     = fmt.Errorf("seat already sold or held: %w", repository.ErrConflict)
	ErrAlreadyApplied   = fmt.Errorf("discount already applied to this sale: %w", repository.ErrConflict)
	ErrSeatNotReserved  = fmt.Errorf("seat has no active reservation for this sale: %w", repository.ErrConflict)
	ErrSaleClosed       = fmt.Errorf("sale already finalized or canceled: %w", repository.ErrConflict)
	ErrTokenMismatch    = fmt.Errorf("sale is bound to a different reservation token: %w", repository.ErrConflict)
)

// errInsufficientPayment reports how far the received payments fall
// short of the grand total.
func errInsufficientPayment(requiredCents, receivedCents uint64) *StateError {
	return stateErrorf("insufficient payment. required: %s, received: %s",
		FormatCents(requiredCents), FormatCents(receivedCents))
}

// FormatCents renders an amount of cents as a decimal string, e.g.
// 5400 -> "54.00".
func FormatCents(cents uint64) string {
	return fmt.Sprintf("%d.%02d", cents/100, cents%100)
}

func formatID(id uint64) string {
	return fmt.Sprintf("%d", id)
}
