package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/repository"
	"github.com/edmoraes/cinepos/internal/service"
)

// TicketHandler serves ticket lookup and refund.
type TicketHandler struct {
	Tickets      *repository.TicketRepo
	Availability *service.AvailabilityService
	Audit        service.Auditor
}

func NewTicketHandler(tickets *repository.TicketRepo, availability *service.AvailabilityService, audit service.Auditor) *TicketHandler {
	if tickets == nil || availability == nil {
		panic("nil dependency passed to NewTicketHandler")
	}
	if audit == nil {
		audit = service.NopAuditor{}
	}
	return &TicketHandler{Tickets: tickets, Availability: availability, Audit: audit}
}

func (h *TicketHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	t, err := h.Tickets.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"ticket": t})
}

// Refund flips the ticket to REFUNDED, freeing the seat for resale
// while keeping the row for history.  Refunding twice is a conflict.
func (h *TicketHandler) Refund(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	cid := companyID(c)

	t, err := h.Tickets.GetByID(ctx, cid, id)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.Tickets.Refund(ctx, cid, id); err != nil {
		return respondError(c, err)
	}
	h.Availability.Invalidate(ctx, cid, t.SessionID)
	h.Audit.Record(ctx, service.AuditEntry{
		CompanyID:  cid,
		Actor:      actorCPF(c),
		Action:     "ticket.refunded",
		TargetType: "ticket",
		TargetID:   strconv.FormatUint(id, 10),
		Metadata: map[string]string{
			"session_id": strconv.FormatUint(t.SessionID, 10),
			"seat_id":    strconv.FormatUint(t.SeatID, 10),
		},
	})
	return ok(c, http.StatusOK, echo.Map{"message": "ticket refunded"})
}
