package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Cart struct {
	ID                string
	CustomerID        string
	SessionID         string
	Items             []CartItem
	ShippingCountryID int64
	ShippingMethod    ShippingMethod
	PickupPointID     string
	UpdatedAt         time.Time
}

type CartItem struct {
	ProductID string
	SKU       string
	Name      string
	Quantity  int
	UnitPrice decimal.Decimal
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

func (c *Cart) Empty() bool { return len(c.Items) == 0 }

// Totals is the priced view of a cart (and the frozen totals of an order).
type Totals struct {
	Subtotal     decimal.Decimal
	Shipping     decimal.Decimal
	VATRate      decimal.Decimal
	Tax          decimal.Decimal
	TotalExclTax decimal.Decimal
	TotalInclTax decimal.Decimal
	CountryCode  string
	Currency     string
}

type PricedCart struct {
	Cart   *Cart
	Totals Totals
}

type PickupPoint struct {
	ID      string
	Name    string
	CityID  int64
	Address string
}

type GuestSession struct {
	ID         string
	CreatedAt  time.Time
	LastSeenAt time.Time
}
