// Package handler contains the HTTP layer: request binding, input
// validation and the translation of service/repository errors into
// status codes.  Every response is a JSON envelope with a success flag.
package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	mw "github.com/edmoraes/cinepos/internal/middleware"
	"github.com/edmoraes/cinepos/internal/repository"
	"github.com/edmoraes/cinepos/internal/service"
)

// dbTimeout bounds every handler-initiated database call.
const dbTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// companyID returns the tenant from the JWT claims placed in the
// context by the auth middleware.
func companyID(c echo.Context) uint64 {
	v, _ := c.Get(mw.CtxCompanyID).(uint64)
	return v
}

// actorCPF returns the authenticated employee's CPF, used as the audit
// actor and as the cashier on new sales.
func actorCPF(c echo.Context) string {
	v, _ := c.Get(mw.CtxActorCPF).(string)
	return v
}

func roleOf(c echo.Context) string {
	v, _ := c.Get(mw.CtxRole).(string)
	return v
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

func ok(c echo.Context, status int, payload echo.Map) error {
	body := echo.Map{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	return c.JSON(status, body)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"success": false, "message": message})
}

// respondError maps an error coming out of the repository or service
// layer onto the HTTP taxonomy: not-found sentinels to 404, conflicts
// to 409, business-rule violations to 422, everything else to 500.
func respondError(c echo.Context, err error) error {
	switch {
	case isNotFound(err):
		return fail(c, http.StatusNotFound, err.Error())
	case errors.Is(err, repository.ErrForbidden):
		return fail(c, http.StatusForbidden, err.Error())
	case errors.Is(err, repository.ErrInsufficientStock):
		return fail(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, repository.ErrConflict):
		return fail(c, http.StatusConflict, err.Error())
	}
	var state *service.StateError
	if errors.As(err, &state) {
		return fail(c, http.StatusUnprocessableEntity, state.Error())
	}
	c.Logger().Errorf("internal error: %v", err)
	return fail(c, http.StatusInternalServerError, "internal error")
}

func isNotFound(err error) bool {
	for _, sentinel := range []error{
		repository.ErrCompanyNotFound,
		repository.ErrEmployeeNotFound,
		repository.ErrMovieNotFound,
		repository.ErrRoomNotFound,
		repository.ErrSeatNotFound,
		repository.ErrSessionNotFound,
		repository.ErrSaleNotFound,
		repository.ErrSaleItemNotFound,
		repository.ErrTicketNotFound,
		repository.ErrDiscountNotFound,
		repository.ErrProductNotFound,
		service.ErrNoSeatMap,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

// cleanCPF strips separators and validates the 11-digit shape.  Full
// check-digit validation is left to the issuing side; the API only
// guards the format.
func cleanCPF(raw string) (string, bool) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	return s, len(s) == 11
}
