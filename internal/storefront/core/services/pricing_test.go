package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func TestPricer_Totals(t *testing.T) {
	settings, err := config.LoadSettings("")
	require.NoError(t, err)
	pricer := NewPricer(settings)

	line := func(price string, qty int) entity.CartItem {
		return entity.CartItem{ProductID: price, UnitPrice: decimal.RequireFromString(price), Quantity: qty}
	}

	tests := []struct {
		name     string
		items    []entity.CartItem
		method   entity.ShippingMethod
		country  string
		shipping string
		tax      string
		total    string
	}{
		{"courier in Romania", []entity.CartItem{line("100.00", 1)}, entity.ShippingCourier, "RO", "15.00", "21.85", "136.85"},
		{"free courier above threshold", []entity.CartItem{line("125.00", 2)}, entity.ShippingCourier, "FR", "0", "50.00", "300.00"},
		{"pickup in Hungary", []entity.CartItem{line("10.00", 3)}, entity.ShippingPickup, "HU", "5.00", "9.45", "44.45"},
		{"no VAT for US", []entity.CartItem{line("40.00", 1)}, entity.ShippingCourier, "US", "15.00", "0", "55.00"},
		{"unknown country uses default rate", []entity.CartItem{line("85.00", 1)}, entity.ShippingCourier, "", "15.00", "19.00", "119.00"},
		{"empty cart ships free", nil, entity.ShippingCourier, "RO", "0", "0", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := pricer.Totals(tt.items, tt.method, tt.country)
			assert.True(t, decimal.RequireFromString(tt.shipping).Equal(got.Shipping), "shipping %s", got.Shipping)
			assert.True(t, decimal.RequireFromString(tt.tax).Equal(got.Tax), "tax %s", got.Tax)
			assert.True(t, decimal.RequireFromString(tt.total).Equal(got.TotalInclTax), "total %s", got.TotalInclTax)
			assert.Equal(t, "EUR", got.Currency)
		})
	}
}

func TestLineTotalInclTax(t *testing.T) {
	item := entity.OrderItem{UnitPrice: decimal.RequireFromString("19.99"), Quantity: 3}
	got := LineTotalInclTax(item, 2, decimal.RequireFromString("0.19"))
	assert.Equal(t, "47.58", got.StringFixed(2))
}
