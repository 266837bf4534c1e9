package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edmoraes/cinepos/internal/repository"
	"github.com/edmoraes/cinepos/internal/service"
)

func TestRowLabel(t *testing.T) {
	assert.Equal(t, "A", rowLabel(0))
	assert.Equal(t, "B", rowLabel(1))
	assert.Equal(t, "Z", rowLabel(25))
	assert.Equal(t, "AA", rowLabel(26))
	assert.Equal(t, "AB", rowLabel(27))
	assert.Equal(t, "AZ", rowLabel(51))
	assert.Equal(t, "BA", rowLabel(52))
	assert.Equal(t, "", rowLabel(-1))
}

func TestCleanCPF(t *testing.T) {
	got, valid := cleanCPF("123.456.789-01")
	require.True(t, valid)
	assert.Equal(t, "12345678901", got)

	_, valid = cleanCPF("12345")
	assert.False(t, valid)

	_, valid = cleanCPF("")
	assert.False(t, valid)
}

func testContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", repository.ErrSaleNotFound, http.StatusNotFound},
		{"no seat map", service.ErrNoSeatMap, http.StatusNotFound},
		{"conflict", repository.ErrConflict, http.StatusConflict},
		{"seat conflict wraps conflict", service.ErrSeatConflict, http.StatusConflict},
		{"already applied wraps conflict", service.ErrAlreadyApplied, http.StatusConflict},
		{"sale closed wraps conflict", service.ErrSaleClosed, http.StatusConflict},
		{"state error", service.ErrSaleNotOpen, http.StatusUnprocessableEntity},
		{"insufficient stock", repository.ErrInsufficientStock, http.StatusUnprocessableEntity},
		{"forbidden", repository.ErrForbidden, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := testContext(t)
			require.NoError(t, respondError(c, tc.err))
			assert.Equal(t, tc.want, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}
