package services

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

// Pricer turns cart lines into totals using the commercial settings.
type Pricer struct {
	settings *config.Settings
}

func NewPricer(settings *config.Settings) *Pricer {
	return &Pricer{settings: settings}
}

// Totals prices items for delivery to countryCode. An empty country code
// falls back to the default VAT rate. VAT applies to goods and shipping.
func (p *Pricer) Totals(items []entity.CartItem, method entity.ShippingMethod, countryCode string) entity.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.LineTotal())
	}
	subtotal = subtotal.Round(2)

	shipping := decimal.Zero
	if len(items) > 0 {
		shipping = p.shippingCost(method, subtotal)
	}

	rate := p.settings.VATRate(countryCode)
	excl := subtotal.Add(shipping)
	tax := excl.Mul(rate).Round(2)

	return entity.Totals{
		Subtotal:     subtotal,
		Shipping:     shipping,
		VATRate:      rate,
		Tax:          tax,
		TotalExclTax: excl,
		TotalInclTax: excl.Add(tax),
		CountryCode:  countryCode,
		Currency:     p.settings.Currency,
	}
}

func (p *Pricer) shippingCost(method entity.ShippingMethod, subtotal decimal.Decimal) decimal.Decimal {
	if method == entity.ShippingPickup {
		return p.settings.Shipping.Pickup.Price.Round(2)
	}
	courier := p.settings.Shipping.Courier
	if courier.FreeOver.IsPositive() && subtotal.GreaterThanOrEqual(courier.FreeOver) {
		return decimal.Zero
	}
	return courier.Price.Round(2)
}

// LineTotalInclTax is the gross amount paid for quantity units of an order line.
func LineTotalInclTax(item entity.OrderItem, quantity int, vatRate decimal.Decimal) decimal.Decimal {
	net := item.UnitPrice.Mul(decimal.NewFromInt(int64(quantity)))
	return net.Add(net.Mul(vatRate)).Round(2)
}
