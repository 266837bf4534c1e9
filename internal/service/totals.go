package service

import (
	"time"

	"github.com/edmoraes/cinepos/internal/model"
)

// Totals is the result of recomputing a sale's running amounts.
type Totals struct {
	SubTotalCents      uint64
	DiscountTotalCents uint64
	GrandTotalCents    uint64
}

// ComputeTotals derives a sale's totals from its line items and the
// discount codes applied to it.  The sub total is the sum of frozen
// line totals; the discount total is the sum of each code's amount
// against the sub total, capped at the sub total; the grand total
// never goes below zero.
func ComputeTotals(items []model.SaleItem, discounts []model.DiscountCode) Totals {
	var t Totals
	for _, it := range items {
		t.SubTotalCents += it.LineTotalCents
	}
	for _, d := range discounts {
		t.DiscountTotalCents += DiscountAmount(d, t.SubTotalCents)
	}
	if t.DiscountTotalCents > t.SubTotalCents {
		t.DiscountTotalCents = t.SubTotalCents
	}
	t.GrandTotalCents = t.SubTotalCents - t.DiscountTotalCents
	return t
}

// DiscountAmount computes how much a single code takes off the given
// sub total.  PERCENT codes use integer math (truncating toward zero);
// AMOUNT codes are capped at the sub total so a large fixed discount
// cannot push a sale negative.
func DiscountAmount(d model.DiscountCode, subTotalCents uint64) uint64 {
	switch d.Type {
	case model.DiscountPercent:
		return subTotalCents * d.Value / 100
	case model.DiscountAmount:
		if d.Value > subTotalCents {
			return subTotalCents
		}
		return d.Value
	}
	return 0
}

// ValidateDiscount runs the ordered eligibility checks for applying a
// code: validity window, usage cap, then CPF targeting.  buyerCPF is
// the sale's buyer, nil when the sale is anonymous.  The first failed
// check decides the returned error; nil means the code is applicable.
func ValidateDiscount(d model.DiscountCode, now time.Time, buyerCPF *string) error {
	if now.Before(d.ValidFrom) {
		return ErrDiscountNotYetValid
	}
	if now.After(d.ValidTo) {
		return ErrDiscountExpired
	}
	if d.MaxUses != nil && d.CurrentUses >= *d.MaxUses {
		return ErrUsageLimitReached
	}
	if d.CPFRangeStart != nil && d.CPFRangeEnd != nil {
		if buyerCPF == nil || *buyerCPF == "" {
			return ErrBuyerRequired
		}
		if *buyerCPF < *d.CPFRangeStart || *buyerCPF > *d.CPFRangeEnd {
			return ErrBuyerNotEligible
		}
	}
	return nil
}
