package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/service"
)

// ReservationHandler serves seat hold creation and release.
type ReservationHandler struct {
	Reservations *service.ReservationService
}

func NewReservationHandler(reservations *service.ReservationService) *ReservationHandler {
	if reservations == nil {
		panic("nil service passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservations: reservations}
}

type reserveReq struct {
	SeatIDs          []uint64 `json:"seat_ids"`
	ReservationToken string   `json:"reservation_token"`
}

// Reserve places holds on the requested seats, all or nothing.  On a
// conflict the response carries the blocking seat IDs so the client
// can adjust its selection.
func (h *ReservationHandler) Reserve(c echo.Context) error {
	sessionID, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req reserveReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	if len(req.SeatIDs) == 0 {
		return fail(c, http.StatusBadRequest, "seat_ids required")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Reservations.Reserve(ctx, companyID(c), sessionID, req.SeatIDs, strings.TrimSpace(req.ReservationToken))
	if err != nil {
		if errors.Is(err, service.ErrSeatConflict) && res != nil {
			return c.JSON(http.StatusConflict, echo.Map{
				"success":   false,
				"message":   "seat already sold or held",
				"conflicts": res.Conflicts,
			})
		}
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"reservation": res})
}

// Release drops every hold under the token.  Releasing an unknown
// token reports zero released holds, not an error.
func (h *ReservationHandler) Release(c echo.Context) error {
	token := strings.TrimSpace(c.Param("token"))
	if token == "" {
		return fail(c, http.StatusBadRequest, "token required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	released, err := h.Reservations.Release(ctx, companyID(c), token, actorCPF(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"released": released})
}
