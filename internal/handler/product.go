package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/repository"
)

// ProductHandler serves concession inventory CRUD.
type ProductHandler struct {
	Products *repository.ProductRepo
}

func NewProductHandler(products *repository.ProductRepo) *ProductHandler {
	if products == nil {
		panic("nil repository passed to NewProductHandler")
	}
	return &ProductHandler{Products: products}
}

type productReq struct {
	Name       string  `json:"name"`
	PriceCents *uint64 `json:"price_cents"`
	Stock      *uint32 `json:"stock"`
	IsActive   *bool   `json:"is_active"`
}

func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" || req.PriceCents == nil {
		return fail(c, http.StatusBadRequest, "name and price_cents required")
	}
	p := &model.Product{
		CompanyID:  companyID(c),
		Name:       req.Name,
		PriceCents: *req.PriceCents,
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Products.Create(ctx, p); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"product": p})
}

func (h *ProductHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	products, err := h.Products.ListByCompany(ctx, companyID(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"products": products})
}

func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"product": p})
}

// Update changes name, price, stock and the active flag.  Stock set
// here is an absolute adjustment (recount), not a delta; sale
// finalization is the only path that decrements.
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	p, err := h.Products.GetByID(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		p.Name = name
	}
	if req.PriceCents != nil {
		p.PriceCents = *req.PriceCents
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
	}
	if req.IsActive != nil {
		p.IsActive = *req.IsActive
	}
	if err := h.Products.Update(ctx, p); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"product": p})
}
