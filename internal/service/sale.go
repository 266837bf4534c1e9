package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// SaleService owns the sale aggregate: creating carts, mutating line
// items while OPEN, and the atomic finalization that charges payments,
// turns seat holds into tickets and consumes inventory in one
// transaction.  Every mutation locks the sale row first so concurrent
// requests against the same sale serialize.
type SaleService struct {
	db           *sql.DB
	sales        *repository.SaleRepo
	sessions     *repository.SessionRepo
	seats        *repository.SeatRepo
	tickets      *repository.TicketRepo
	reservations *repository.ReservationRepo
	products     *repository.ProductRepo
	discounts    *repository.DiscountRepo
	availability *AvailabilityService
	audit        Auditor
}

// NewSaleService constructs a SaleService.
func NewSaleService(db *sql.DB, sales *repository.SaleRepo, sessions *repository.SessionRepo, seats *repository.SeatRepo, tickets *repository.TicketRepo, reservations *repository.ReservationRepo, products *repository.ProductRepo, discounts *repository.DiscountRepo, availability *AvailabilityService, audit Auditor) *SaleService {
	if db == nil || sales == nil || sessions == nil || seats == nil || tickets == nil || reservations == nil || products == nil || discounts == nil || availability == nil {
		panic("nil dependency passed to NewSaleService")
	}
	if audit == nil {
		audit = NopAuditor{}
	}
	return &SaleService{
		db:           db,
		sales:        sales,
		sessions:     sessions,
		seats:        seats,
		tickets:      tickets,
		reservations: reservations,
		products:     products,
		discounts:    discounts,
		availability: availability,
		audit:        audit,
	}
}

// Create opens a new sale for the cashier, optionally bound to a
// buyer's CPF for discount targeting.
func (s *SaleService) Create(ctx context.Context, companyID uint64, buyerCPF *string, cashierCPF string) (*model.Sale, error) {
	sale := &model.Sale{
		CompanyID:  companyID,
		BuyerCPF:   buyerCPF,
		CashierCPF: cashierCPF,
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		return nil, err
	}
	return sale, nil
}

// AddItemInput describes one line to add to a sale.  Ticket lines
// carry the session, seat and the reservation token the seat is held
// under; inventory lines carry the product and quantity.
type AddItemInput struct {
	Kind             string
	SessionID        uint64
	SeatID           uint64
	ReservationToken string
	ProductID        uint64
	Quantity         uint32
}

// AddItem appends a line item to an OPEN sale and recomputes the
// totals.  Ticket lines require an active reservation for the seat
// under the supplied token; the first ticket line binds the sale to
// that token and later lines must reuse it (ErrTokenMismatch
// otherwise).  The unit price is read at add time and frozen into the
// line total.
func (s *SaleService) AddItem(ctx context.Context, companyID, saleID uint64, in AddItemInput) (*model.SaleItem, error) {
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

	item := &model.SaleItem{SaleID: saleID}
	switch in.Kind {
	case model.ItemTicket:
		sess, err := s.sessions.GetByIDTx(ctx, tx, companyID, in.SessionID)
		if err != nil {
			return nil, err
		}
		if sess.Status != model.SessionScheduled {
			return nil, ErrSessionNotSellable
		}
		if sale.ReservationToken != nil && *sale.ReservationToken != in.ReservationToken {
			return nil, ErrTokenMismatch
		}
		roomSeats, err := s.seats.ActiveSeatsByRoomTx(ctx, tx, companyID, sess.RoomID)
		if err != nil {
			return nil, err
		}
		inRoom := false
		for _, st := range roomSeats {
			if st.ID == in.SeatID {
				inRoom = true
				break
			}
		}
		if !inRoom {
			return nil, repository.ErrSeatNotFound
		}
		held, err := s.reservations.ActiveBySessionTx(ctx, tx, in.SessionID)
		if err != nil {
			return nil, err
		}
		if held[in.SeatID] != in.ReservationToken || in.ReservationToken == "" {
			return nil, ErrSeatNotReserved
		}
		if sale.ReservationToken == nil {
			if err := s.sales.SetReservationTokenTx(ctx, tx, saleID, in.ReservationToken); err != nil {
				return nil, err
			}
		}
		sessionID, seatID := in.SessionID, in.SeatID
		item.Kind = model.ItemTicket
		item.SessionID = &sessionID
		item.SeatID = &seatID
		item.Quantity = 1
		item.UnitPriceCents = sess.BasePriceCents
		item.LineTotalCents = sess.BasePriceCents
	case model.ItemInventory:
		if in.Quantity == 0 {
			in.Quantity = 1
		}
		p, err := s.products.GetByIDTx(ctx, tx, companyID, in.ProductID)
		if err != nil {
			return nil, err
		}
		if !p.IsActive {
			return nil, repository.ErrProductNotFound
		}
		productID := in.ProductID
		item.Kind = model.ItemInventory
		item.ProductID = &productID
		item.Quantity = in.Quantity
		item.UnitPriceCents = p.PriceCents
		item.LineTotalCents = p.PriceCents * uint64(in.Quantity)
	default:
		return nil, stateErrorf("unknown item kind %q", in.Kind)
	}

	if err := s.sales.AddItemTx(ctx, tx, item); err != nil {
		return nil, err
	}
	if _, err := s.recalculateTx(ctx, tx, saleID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return item, nil
}

// RemoveItem deletes a line item from an OPEN sale and recomputes the
// totals.
func (s *SaleService) RemoveItem(ctx context.Context, companyID, saleID, itemID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sale, err := s.sales.GetForUpdateTx(ctx, tx, companyID, saleID)
	if err != nil {
		return err
	}
	if sale.Status != model.SaleOpen {
		return ErrSaleNotOpen
	}
	if err := s.sales.DeleteItemTx(ctx, tx, saleID, itemID); err != nil {
		return err
	}
	if _, err := s.recalculateTx(ctx, tx, saleID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// recalculateTx recomputes the sale's totals from its items and
// applied discounts and persists them, all within the caller's
// transaction.  Called after every mutation so the stored totals are
// always authoritative.
func (s *SaleService) recalculateTx(ctx context.Context, tx *sql.Tx, saleID uint64) (Totals, error) {
	items, err := s.sales.ItemsTx(ctx, tx, saleID)
	if err != nil {
		return Totals{}, err
	}
	applied, err := s.sales.AppliedDiscountsTx(ctx, tx, saleID)
	if err != nil {
		return Totals{}, err
	}
	totals := ComputeTotals(items, applied)
	if err := s.sales.UpdateTotalsTx(ctx, tx, saleID, totals.SubTotalCents, totals.DiscountTotalCents, totals.GrandTotalCents); err != nil {
		return Totals{}, err
	}
	return totals, nil
}

// SaleDetail bundles a sale with its lines and payments for read
// endpoints.
type SaleDetail struct {
	Sale     *model.Sale      `json:"sale"`
	Items    []model.SaleItem `json:"items"`
	Payments []model.Payment  `json:"payments"`
}

// Get loads a sale with its items and payments.
func (s *SaleService) Get(ctx context.Context, companyID, saleID uint64) (*SaleDetail, error) {
	sale, err := s.sales.GetByID(ctx, companyID, saleID)
	if err != nil {
		return nil, err
	}
	items, err := s.sales.Items(ctx, saleID)
	if err != nil {
		return nil, err
	}
	payments, err := s.sales.Payments(ctx, saleID)
	if err != nil {
		return nil, err
	}
	return &SaleDetail{Sale: sale, Items: items, Payments: payments}, nil
}

// PaymentInput is one payment tendered at finalization.
type PaymentInput struct {
	Method      string
	AmountCents uint64
}

// Finalize closes an OPEN sale atomically: it recomputes the
// authoritative totals, verifies that recorded plus tendered payments
// cover the grand total, persists the new payments, converts each
// ticket line's reservation into an ISSUED ticket, consumes inventory
// stock, consumes one use of each applied discount code, and flips the
// sale to FINALIZED.  Any failure rolls the whole transaction back:
// the sale stays OPEN with no payments recorded and no tickets issued.
func (s *SaleService) Finalize(ctx context.Context, companyID, saleID uint64, payments []PaymentInput, actor string) (*model.Sale, error) {
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
		return nil, ErrSaleClosed
	}

	// Authoritative totals; never trust what the client last saw.
	totals, err := s.recalculateTx(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}

	recorded, err := s.sales.PaymentsSumTx(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	tendered := recorded
	for _, p := range payments {
		tendered += p.AmountCents
	}
	if tendered < totals.GrandTotalCents {
		return nil, errInsufficientPayment(totals.GrandTotalCents, tendered)
	}
	for _, p := range payments {
		row := &model.Payment{SaleID: saleID, Method: p.Method, AmountCents: p.AmountCents}
		if err := s.sales.AddPaymentTx(ctx, tx, row); err != nil {
			return nil, err
		}
	}

	items, err := s.sales.ItemsTx(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	touchedSessions, err := s.issueTicketsTx(ctx, tx, companyID, saleID, sale.ReservationToken, items)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		if it.Kind != model.ItemInventory || it.ProductID == nil {
			continue
		}
		if err := s.products.DecrementStockTx(ctx, tx, companyID, *it.ProductID, it.Quantity); err != nil {
			return nil, err
		}
	}

	// Usage counters move here, not at apply time, so abandoned carts
	// never burn a limited code.  The cap is re-checked in the update.
	applied, err := s.sales.AppliedDiscountsTx(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	for _, d := range applied {
		if err := s.discounts.IncrementUsageTx(ctx, tx, d.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, ErrUsageLimitReached
			}
			return nil, err
		}
	}

	if err := s.sales.SetStatusTx(ctx, tx, saleID, model.SaleFinalized, nil); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true

	for sessionID := range touchedSessions {
		s.availability.Invalidate(ctx, companyID, sessionID)
	}
	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		Actor:      actor,
		Action:     "sale.finalized",
		TargetType: "sale",
		TargetID:   formatID(saleID),
		Metadata:   map[string]string{"grand_total": FormatCents(totals.GrandTotalCents)},
	})
	return s.sales.GetByID(ctx, companyID, saleID)
}

// issueTicketsTx converts each ticket line's active reservation into a
// permanent ticket and deletes the hold.  A ticket line whose seat has
// no active hold under the sale's token fails with ErrSeatNotReserved:
// reservation is a precondition for issuing through a sale.  A
// unique-key collision on the live-seat index (a concurrent sale of
// the same seat) surfaces as ErrSeatConflict.
func (s *SaleService) issueTicketsTx(ctx context.Context, tx *sql.Tx, companyID, saleID uint64, token *string, items []model.SaleItem) (map[uint64]bool, error) {
	touched := make(map[uint64]bool)
	var holds map[[2]uint64]model.SeatReservation
	for _, it := range items {
		if it.Kind != model.ItemTicket || it.SessionID == nil || it.SeatID == nil {
			continue
		}
		if holds == nil {
			if token == nil {
				return nil, ErrSeatNotReserved
			}
			active, err := s.reservations.ActiveByTokenTx(ctx, tx, companyID, *token)
			if err != nil {
				return nil, err
			}
			holds = make(map[[2]uint64]model.SeatReservation, len(active))
			for _, h := range active {
				holds[[2]uint64{h.SessionID, h.SeatID}] = h
			}
		}
		hold, ok := holds[[2]uint64{*it.SessionID, *it.SeatID}]
		if !ok {
			return nil, ErrSeatNotReserved
		}
		ticket := &model.Ticket{
			CompanyID:  companyID,
			SessionID:  *it.SessionID,
			SeatID:     *it.SeatID,
			SaleID:     &saleID,
			PriceCents: it.LineTotalCents,
		}
		if err := s.tickets.CreateTx(ctx, tx, ticket); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return nil, ErrSeatConflict
			}
			return nil, err
		}
		if err := s.reservations.DeleteByIDTx(ctx, tx, hold.ID); err != nil {
			return nil, err
		}
		touched[*it.SessionID] = true
	}
	return touched, nil
}

// Cancel closes an OPEN sale as CANCELED and releases any seat holds
// bound to it.  Canceling a sale that is already finalized or canceled
// fails with ErrSaleClosed.
func (s *SaleService) Cancel(ctx context.Context, companyID, saleID uint64, reason, actor string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	sale, err := s.sales.GetForUpdateTx(ctx, tx, companyID, saleID)
	if err != nil {
		return err
	}
	if sale.Status != model.SaleOpen {
		return ErrSaleClosed
	}
	var touched []model.SeatReservation
	if sale.ReservationToken != nil {
		// Collect the holds before deleting so caches can be
		// invalidated after commit.
		touched, err = s.reservations.ActiveByTokenTx(ctx, tx, companyID, *sale.ReservationToken)
		if err != nil {
			return err
		}
		if _, err := s.reservations.DeleteByTokenTx(ctx, tx, companyID, *sale.ReservationToken); err != nil {
			return err
		}
	}
	if err := s.sales.SetStatusTx(ctx, tx, saleID, model.SaleCanceled, &reason); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true

	seen := make(map[uint64]bool)
	for _, h := range touched {
		if !seen[h.SessionID] {
			seen[h.SessionID] = true
			s.availability.Invalidate(ctx, companyID, h.SessionID)
		}
	}
	s.audit.Record(ctx, AuditEntry{
		CompanyID:  companyID,
		Actor:      actor,
		Action:     "sale.canceled",
		TargetType: "sale",
		TargetID:   formatID(saleID),
		Metadata:   map[string]string{"reason": reason},
	})
	return nil
}
