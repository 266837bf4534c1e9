package model

import "time"

// Ticket statuses.
const (
	TicketIssued   = "ISSUED"
	TicketUsed     = "USED"
	TicketRefunded = "REFUNDED"
)

// Ticket is the permanent record of a sold seat for a session.  It is
// only created inside a sale finalization, where the seat's active
// reservation is converted into a ticket.  Refunding a ticket frees
// the seat for resale while keeping the row for history.
type Ticket struct {
	ID         uint64    // tickets.id
	CompanyID  uint64    // tickets.company_id
	SessionID  uint64    // tickets.session_id
	SeatID     uint64    // tickets.seat_id
	SaleID     *uint64   // tickets.sale_id (nullable)
	PriceCents uint64    // tickets.price_cents
	Status     string    // tickets.status
	CreatedAt  time.Time // tickets.created_at
	UpdatedAt  time.Time // tickets.updated_at
}
