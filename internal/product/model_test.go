package product

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestInventory_UnitPrice(t *testing.T) {
	inv := Inventory{Price: decimal.RequireFromString("20.00")}
	assert.Equal(t, "20.00", inv.UnitPrice().StringFixed(2))

	inv.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("15.50"))
	assert.Equal(t, "15.50", inv.UnitPrice().StringFixed(2))

	// a "sale" above list price is ignored
	inv.SalePrice = decimal.NewNullDecimal(decimal.RequireFromString("25.00"))
	assert.Equal(t, "20.00", inv.UnitPrice().StringFixed(2))
}

func TestInventory_Available(t *testing.T) {
	assert.Equal(t, 3, Inventory{Stock: 5, Held: 2}.Available())
	assert.Equal(t, 0, Inventory{Stock: 1, Held: 4}.Available())
}

func TestInventory_Supports(t *testing.T) {
	inv := Inventory{DeliveryEligible: true}
	assert.True(t, inv.Supports(Delivery))
	assert.False(t, inv.Supports(Collection))
	assert.False(t, inv.Supports(Fulfillment("drone")))
}

func TestNormalizePage(t *testing.T) {
	l, o := NormalizePage(0, -4)
	assert.Equal(t, 20, l)
	assert.Equal(t, 0, o)

	l, o = NormalizePage(500, 10)
	assert.Equal(t, 20, l)
	assert.Equal(t, 10, o)

	l, _ = NormalizePage(50, 0)
	assert.Equal(t, 50, l)
}
