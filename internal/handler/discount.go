package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// DiscountHandler serves discount code administration.  Applying a
// code to a sale lives on the sale routes, not here.
type DiscountHandler struct {
	Discounts *repository.DiscountRepo
}

func NewDiscountHandler(discounts *repository.DiscountRepo) *DiscountHandler {
	if discounts == nil {
		panic("nil repository passed to NewDiscountHandler")
	}
	return &DiscountHandler{Discounts: discounts}
}

type discountReq struct {
	Code          string    `json:"code"`
	Type          string    `json:"type"` // PERCENT or AMOUNT
	Value         uint64    `json:"value"`
	ValidFrom     time.Time `json:"valid_from"`
	ValidTo       time.Time `json:"valid_to"`
	MaxUses       *uint32   `json:"max_uses"`
	CPFRangeStart *string   `json:"cpf_range_start"`
	CPFRangeEnd   *string   `json:"cpf_range_end"`
}

func (h *DiscountHandler) Create(c echo.Context) error {
	var req discountReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Type = strings.ToUpper(strings.TrimSpace(req.Type))
	if req.Code == "" || req.Value == 0 || req.ValidFrom.IsZero() || req.ValidTo.IsZero() {
		return fail(c, http.StatusBadRequest, "code, type, value and validity window required")
	}
	if req.Type != model.DiscountPercent && req.Type != model.DiscountAmount {
		return fail(c, http.StatusBadRequest, "type must be PERCENT or AMOUNT")
	}
	if req.Type == model.DiscountPercent && req.Value > 100 {
		return fail(c, http.StatusBadRequest, "percent value must be 1-100")
	}
	if !req.ValidTo.After(req.ValidFrom) {
		return fail(c, http.StatusBadRequest, "valid_to must be after valid_from")
	}
	// CPF targeting requires both ends of the range.
	if (req.CPFRangeStart == nil) != (req.CPFRangeEnd == nil) {
		return fail(c, http.StatusBadRequest, "cpf_range_start and cpf_range_end must be set together")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	d := &model.DiscountCode{
		CompanyID:     companyID(c),
		Code:          req.Code,
		Type:          req.Type,
		Value:         req.Value,
		ValidFrom:     req.ValidFrom.UTC(),
		ValidTo:       req.ValidTo.UTC(),
		MaxUses:       req.MaxUses,
		CPFRangeStart: req.CPFRangeStart,
		CPFRangeEnd:   req.CPFRangeEnd,
	}
	if err := h.Discounts.Create(ctx, d); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"discount": d})
}

func (h *DiscountHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	discounts, err := h.Discounts.ListByCompany(ctx, companyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"discounts": discounts})
}

func (h *DiscountHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	d, err := h.Discounts.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"discount": d})
}

func (h *DiscountHandler) Delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Discounts.Delete(ctx, companyID(c), id); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "discount deleted"})
}
