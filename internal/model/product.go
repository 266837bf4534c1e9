package model

import "time"

// Product is a concession inventory item (popcorn, soda, ...).  Stock
// is decremented transactionally when a sale containing the product is
// finalized, never at add-to-cart time.
type Product struct {
	ID         uint64    // products.id
	CompanyID  uint64    // products.company_id
	Name       string    // products.name
	PriceCents uint64    // products.price_cents
	Stock      uint32    // products.stock
	IsActive   bool      // products.is_active
	CreatedAt  time.Time // products.created_at
	UpdatedAt  time.Time // products.updated_at
}
