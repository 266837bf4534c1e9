package model

import "time"

// Sale statuses.  OPEN is the only mutable state; FINALIZED and
// CANCELED are both terminal.
const (
	SaleOpen      = "OPEN"
	SaleFinalized = "FINALIZED"
	SaleCanceled  = "CANCELED"
)

// Sale item kinds.
const (
	ItemTicket    = "TICKET"
	ItemInventory = "INVENTORY"
)

// Sale is the cart aggregate: a set of line items plus payments and at
// most one application per discount code.  Totals are recomputed and
// persisted after every mutation so the stored row is always
// authoritative.
type Sale struct {
	ID                 uint64    // sales.id
	CompanyID          uint64    // sales.company_id
	Status             string    // sales.status
	BuyerCPF           *string   // sales.buyer_cpf (nullable)
	CashierCPF         string    // sales.cashier_cpf
	ReservationToken   *string   // sales.reservation_token (nullable until a ticket item is added)
	SubTotalCents      uint64    // sales.sub_total_cents
	DiscountTotalCents uint64    // sales.discount_total_cents
	GrandTotalCents    uint64    // sales.grand_total_cents
	CancelReason       *string   // sales.cancel_reason (nullable)
	CreatedAt          time.Time // sales.created_at
	UpdatedAt          time.Time // sales.updated_at
}

// SaleItem is one line of a sale.  LineTotalCents is frozen at add
// time (quantity × unit price as of then) so later catalog price
// changes never rewrite history.
type SaleItem struct {
	ID             uint64    // sale_items.id
	SaleID         uint64    // sale_items.sale_id
	Kind           string    // sale_items.kind (TICKET or INVENTORY)
	SessionID      *uint64   // sale_items.session_id (ticket items)
	SeatID         *uint64   // sale_items.seat_id (ticket items)
	ProductID      *uint64   // sale_items.product_id (inventory items)
	Quantity       uint32    // sale_items.quantity
	UnitPriceCents uint64    // sale_items.unit_price_cents
	LineTotalCents uint64    // sale_items.line_total_cents
	CreatedAt      time.Time // sale_items.created_at
}

// Payment methods.
const (
	PayCash   = "CASH"
	PayCredit = "CREDIT"
	PayDebit  = "DEBIT"
	PayPix    = "PIX"
)

// Payment is an amount received against a sale.  Several payments may
// be attached; finalization requires their sum to reach the grand
// total.
type Payment struct {
	ID          uint64    // payments.id
	SaleID      uint64    // payments.sale_id
	Method      string    // payments.method
	AmountCents uint64    // payments.amount_cents
	CreatedAt   time.Time // payments.created_at
}
