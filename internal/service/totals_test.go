package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edmoraes/cinepos/internal/model"
)

func ticketItem(cents uint64) model.SaleItem {
	return model.SaleItem{Kind: model.ItemTicket, Quantity: 1, UnitPriceCents: cents, LineTotalCents: cents}
}

func inventoryItem(cents uint64, qty uint32) model.SaleItem {
	return model.SaleItem{Kind: model.ItemInventory, Quantity: qty, UnitPriceCents: cents, LineTotalCents: cents * uint64(qty)}
}

func percentCode(value uint64) model.DiscountCode {
	return model.DiscountCode{Type: model.DiscountPercent, Value: value}
}

func amountCode(cents uint64) model.DiscountCode {
	return model.DiscountCode{Type: model.DiscountAmount, Value: cents}
}

func TestComputeTotalsEmptySale(t *testing.T) {
	got := ComputeTotals(nil, nil)
	assert.Equal(t, Totals{}, got)
}

func TestComputeTotalsTicketsWithPercent(t *testing.T) {
	items := []model.SaleItem{ticketItem(3000), ticketItem(3000)}
	got := ComputeTotals(items, []model.DiscountCode{percentCode(10)})

	assert.Equal(t, uint64(6000), got.SubTotalCents)
	assert.Equal(t, uint64(600), got.DiscountTotalCents)
	assert.Equal(t, uint64(5400), got.GrandTotalCents)
}

func TestComputeTotalsMixedItems(t *testing.T) {
	items := []model.SaleItem{ticketItem(2500), inventoryItem(800, 3)}
	got := ComputeTotals(items, nil)

	assert.Equal(t, uint64(4900), got.SubTotalCents)
	assert.Equal(t, uint64(0), got.DiscountTotalCents)
	assert.Equal(t, uint64(4900), got.GrandTotalCents)
}

func TestComputeTotalsDiscountNeverExceedsSubTotal(t *testing.T) {
	items := []model.SaleItem{ticketItem(1000)}
	got := ComputeTotals(items, []model.DiscountCode{amountCode(5000)})

	assert.Equal(t, uint64(1000), got.SubTotalCents)
	assert.Equal(t, uint64(1000), got.DiscountTotalCents)
	assert.Equal(t, uint64(0), got.GrandTotalCents)
}

func TestComputeTotalsStackedCodesCapped(t *testing.T) {
	items := []model.SaleItem{ticketItem(2000)}
	codes := []model.DiscountCode{percentCode(60), percentCode(60)}
	got := ComputeTotals(items, codes)

	assert.Equal(t, uint64(2000), got.DiscountTotalCents)
	assert.Equal(t, uint64(0), got.GrandTotalCents)
}

func TestDiscountAmountPercentTruncates(t *testing.T) {
	// 10% of 2505 is 250.5, integer math keeps 250.
	assert.Equal(t, uint64(250), DiscountAmount(percentCode(10), 2505))
}

func TestDiscountAmountFixedCapped(t *testing.T) {
	assert.Equal(t, uint64(500), DiscountAmount(amountCode(500), 2000))
	assert.Equal(t, uint64(2000), DiscountAmount(amountCode(9999), 2000))
}

func TestDiscountAmountUnknownTypeIsZero(t *testing.T) {
	assert.Equal(t, uint64(0), DiscountAmount(model.DiscountCode{Type: "BOGOF", Value: 50}, 1000))
}

func validCode() model.DiscountCode {
	now := time.Now().UTC()
	return model.DiscountCode{
		Type:      model.DiscountPercent,
		Value:     10,
		ValidFrom: now.Add(-time.Hour),
		ValidTo:   now.Add(time.Hour),
	}
}

func TestValidateDiscountOK(t *testing.T) {
	require.NoError(t, ValidateDiscount(validCode(), time.Now().UTC(), nil))
}

func TestValidateDiscountNotYetValid(t *testing.T) {
	d := validCode()
	d.ValidFrom = time.Now().UTC().Add(time.Hour)
	d.ValidTo = time.Now().UTC().Add(2 * time.Hour)
	assert.ErrorIs(t, ValidateDiscount(d, time.Now().UTC(), nil), ErrDiscountNotYetValid)
}

func TestValidateDiscountExpired(t *testing.T) {
	d := validCode()
	d.ValidFrom = time.Now().UTC().Add(-2 * time.Hour)
	d.ValidTo = time.Now().UTC().Add(-time.Hour)
	assert.ErrorIs(t, ValidateDiscount(d, time.Now().UTC(), nil), ErrDiscountExpired)
}

func TestValidateDiscountUsageCap(t *testing.T) {
	d := validCode()
	max := uint32(5)
	d.MaxUses = &max
	d.CurrentUses = 5
	assert.ErrorIs(t, ValidateDiscount(d, time.Now().UTC(), nil), ErrUsageLimitReached)

	d.CurrentUses = 4
	assert.NoError(t, ValidateDiscount(d, time.Now().UTC(), nil))
}

func TestValidateDiscountCPFTargeting(t *testing.T) {
	d := validCode()
	start, end := "10000000000", "19999999999"
	d.CPFRangeStart = &start
	d.CPFRangeEnd = &end

	assert.ErrorIs(t, ValidateDiscount(d, time.Now().UTC(), nil), ErrBuyerRequired)

	empty := ""
	assert.ErrorIs(t, ValidateDiscount(d, time.Now().UTC(), &empty), ErrBuyerRequired)

	outside := "20000000000"
	assert.ErrorIs(t, ValidateDiscount(d, time.Now().UTC(), &outside), ErrBuyerNotEligible)

	inside := "15555555555"
	assert.NoError(t, ValidateDiscount(d, time.Now().UTC(), &inside))

	// Range boundaries are inclusive.
	assert.NoError(t, ValidateDiscount(d, time.Now().UTC(), &start))
	assert.NoError(t, ValidateDiscount(d, time.Now().UTC(), &end))
}

func TestValidateDiscountWindowBeatsUsageCap(t *testing.T) {
	d := validCode()
	d.ValidTo = time.Now().UTC().Add(-time.Minute)
	max := uint32(1)
	d.MaxUses = &max
	d.CurrentUses = 1
	assert.ErrorIs(t, ValidateDiscount(d, time.Now().UTC(), nil), ErrDiscountExpired)
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "0.05", FormatCents(5))
	assert.Equal(t, "54.00", FormatCents(5400))
	assert.Equal(t, "54.30", FormatCents(5430))
	assert.Equal(t, "1234.56", FormatCents(123456))
}

func TestInsufficientPaymentMessage(t *testing.T) {
	err := errInsufficientPayment(5400, 5000)
	require.Error(t, err)
	assert.Equal(t, "insufficient payment. required: 54.00, received: 50.00", err.Error())
}
