package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// DiscountService applies discount codes to open sales.  All checks
// and the application run inside one transaction with the code row
// locked, so two concurrent requests cannot both pass the usage-cap
// check before either records an application.  The usage counter
// itself only moves at finalize time: a cart that is abandoned after
// applying a limited code never consumes one of its uses.
type DiscountService struct {
	db        *sql.DB
	sales     *repository.SaleRepo
	discounts *repository.DiscountRepo
	audit     Auditor
}

// NewDiscountService constructs a DiscountService.
func NewDiscountService(db *sql.DB, sales *repository.SaleRepo, discounts *repository.DiscountRepo, audit Auditor) *DiscountService {
	if db == nil || sales == nil || discounts == nil {
		panic("nil dependency passed to NewDiscountService")
	}
	if audit == nil {
		audit = NopAuditor{}
	}
	return &DiscountService{db: db, sales: sales, discounts: discounts, audit: audit}
}

// ApplyResult reports the effect of applying a code.
type ApplyResult struct {
	DiscountAmountCents uint64 `json:"discount_amount_cents"`
	Totals              Totals `json:"totals"`
}

// Apply validates the code against the sale and records the
// application, recomputing the sale's totals.  Checks run in order:
// code exists (repository.ErrDiscountNotFound), validity window,
// usage cap, buyer targeting, then duplicate application
// (ErrAlreadyApplied).  The sale must be OPEN.
func (s *DiscountService) Apply(ctx context.Context, companyID, saleID uint64, code, actor string) (*ApplyResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sale, err := s.sales.GetForUpdateTx(ctx, tx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status != model.SaleOpen {
		return nil, ErrSaleNotOpen
	}
	d, err := s.discounts.GetByCodeTx(ctx, tx, companyID, code)
	if err != nil {
		return nil, err
	}
	if err := ValidateDiscount(*d, time.Now().UTC(), sale.BuyerCPF); err != nil {
		return nil, err
	}
	if err := s.sales.AddDiscountTx(ctx, tx, saleID, d.ID); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAlreadyApplied
		}
		return nil, err
	}

	items, err := s.sales.ItemsTx(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	applied, err := s.sales.AppliedDiscountsTx(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	totals := ComputeTotals(items, applied)
	if err := s.sales.UpdateTotalsTx(ctx, tx, saleID, totals.SubTotalCents, totals.DiscountTotalCents, totals.GrandTotalCents); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		Actor:      actor,
		Action:     "discount.applied",
		TargetType: "sale",
		TargetID:   formatID(saleID),
		Metadata:   map[string]string{"code": d.Code},
	})
	return &ApplyResult{
		DiscountAmountCents: DiscountAmount(*d, totals.SubTotalCents),
		Totals:              totals,
	}, nil
}
