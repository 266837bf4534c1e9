package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/edmoraes/cinepos/internal/model"
	"github.com/edmoraes/cinepos/internal/service"
)

// SaleHandler serves the sale aggregate: cart lifecycle, discounts,
// finalization and cancellation.
type SaleHandler struct {
	Sales     *service.SaleService
	Discounts *service.DiscountService
}

func NewSaleHandler(sales *service.SaleService, discounts *service.DiscountService) *SaleHandler {
	if sales == nil || discounts == nil {
		panic("nil service passed to NewSaleHandler")
	}
	return &SaleHandler{Sales: sales, Discounts: discounts}
}

type createSaleReq struct {
	BuyerCPF string `json:"buyer_cpf"`
}

// Create opens a sale.  buyer_cpf is optional; when present it must be
// a well-formed CPF, and it is what CPF-targeted discounts match on.
func (h *SaleHandler) Create(c echo.Context) error {
	var req createSaleReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	var buyer *string
	if strings.TrimSpace(req.BuyerCPF) != "" {
		cpf, okCPF := cleanCPF(req.BuyerCPF)
		if !okCPF {
			return fail(c, http.StatusBadRequest, "invalid buyer_cpf")
		}
		buyer = &cpf
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sale, err := h.Sales.Create(ctx, companyID(c), buyer, actorCPF(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"sale": sale})
}

func (h *SaleHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	detail, err := h.Sales.Get(ctx, companyID(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{
		"sale":     detail.Sale,
		"items":    detail.Items,
		"payments": detail.Payments,
	})
}

type addItemReq struct {
	Kind             string `json:"kind"` // TICKET or INVENTORY
	SessionID        uint64 `json:"session_id"`
	SeatID           uint64 `json:"seat_id"`
	ReservationToken string `json:"reservation_token"`
	ProductID        uint64 `json:"product_id"`
	Quantity         uint32 `json:"quantity"`
}

func (h *SaleHandler) AddItem(c echo.Context) error {
	saleID, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req addItemReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	kind := strings.ToUpper(strings.TrimSpace(req.Kind))
	switch kind {
	case model.ItemTicket:
		if req.SessionID == 0 || req.SeatID == 0 || strings.TrimSpace(req.ReservationToken) == "" {
			return fail(c, http.StatusBadRequest, "session_id, seat_id and reservation_token required for ticket items")
		}
	case model.ItemInventory:
		if req.ProductID == 0 {
			return fail(c, http.StatusBadRequest, "product_id required for inventory items")
		}
	default:
		return fail(c, http.StatusBadRequest, "kind must be TICKET or INVENTORY")
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	item, err := h.Sales.AddItem(ctx, companyID(c), saleID, service.AddItemInput{
		Kind:             kind,
		SessionID:        req.SessionID,
		SeatID:           req.SeatID,
		ReservationToken: strings.TrimSpace(req.ReservationToken),
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
	})
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusCreated, echo.Map{"item": item})
}

func (h *SaleHandler) RemoveItem(c echo.Context) error {
	saleID, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	itemID, err := pathID(c, "itemID")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Sales.RemoveItem(ctx, companyID(c), saleID, itemID); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "item removed"})
}

type applyDiscountReq struct {
	Code string `json:"code"`
}

func (h *SaleHandler) ApplyDiscount(c echo.Context) error {
	saleID, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req applyDiscountReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Code) == "" {
		return fail(c, http.StatusBadRequest, "code required")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	res, err := h.Discounts.Apply(ctx, companyID(c), saleID, strings.TrimSpace(req.Code), actorCPF(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"applied": res})
}

type finalizeReq struct {
	Payments []struct {
		Method      string `json:"method"`
		AmountCents uint64 `json:"amount_cents"`
	} `json:"payments"`
}

var validPayMethods = map[string]bool{
	model.PayCash:   true,
	model.PayCredit: true,
	model.PayDebit:  true,
	model.PayPix:    true,
}

func (h *SaleHandler) Finalize(c echo.Context) error {
	saleID, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req finalizeReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	payments := make([]service.PaymentInput, 0, len(req.Payments))
	for _, p := range req.Payments {
		method := strings.ToUpper(strings.TrimSpace(p.Method))
		if !validPayMethods[method] {
			return fail(c, http.StatusBadRequest, "invalid payment method: "+p.Method)
		}
		if p.AmountCents == 0 {
			return fail(c, http.StatusBadRequest, "payment amount must be positive")
		}
		payments = append(payments, service.PaymentInput{Method: method, AmountCents: p.AmountCents})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	sale, err := h.Sales.Finalize(ctx, companyID(c), saleID, payments, actorCPF(c))
	if err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"sale": sale})
}

type cancelSaleReq struct {
	Reason string `json:"reason"`
}

func (h *SaleHandler) Cancel(c echo.Context) error {
	saleID, err := pathID(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}
	var req cancelSaleReq
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "invalid body")
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Sales.Cancel(ctx, companyID(c), saleID, strings.TrimSpace(req.Reason), actorCPF(c)); err != nil {
		return respondError(c, err)
	}
	return ok(c, http.StatusOK, echo.Map{"message": "sale canceled"})
}
