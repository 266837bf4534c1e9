package model

import "time"

// Discount types.
const (
	DiscountPercent = "PERCENT"
	DiscountAmount  = "AMOUNT"
)

// DiscountCode is a promotional code unique per company.  PERCENT
// codes store the percentage in Value (10 means 10%); AMOUNT codes
// store a fixed discount in cents.  An optional CPF range restricts
// the code to buyers whose CPF falls inside [CPFRangeStart,
// CPFRangeEnd].  CurrentUses is only incremented when a sale carrying
// the code is finalized, so abandoned carts never consume scarce uses.
type DiscountCode struct {
	ID            uint64    // discount_codes.id
	CompanyID     uint64    // discount_codes.company_id
	Code          string    // discount_codes.code
	Type          string    // discount_codes.type
	Value         uint64    // discount_codes.value (percent or cents)
	ValidFrom     time.Time // discount_codes.valid_from
	ValidTo       time.Time // discount_codes.valid_to
	MaxUses       *uint32   // discount_codes.max_uses (nullable = unlimited)
	CurrentUses   uint32    // discount_codes.current_uses
	CPFRangeStart *string   // discount_codes.cpf_range_start (nullable)
	CPFRangeEnd   *string   // discount_codes.cpf_range_end (nullable)
	CreatedAt     time.Time // discount_codes.created_at
	UpdatedAt     time.Time // discount_codes.updated_at
}
