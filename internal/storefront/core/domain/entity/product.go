package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductType string

const (
	ProductSimple       ProductType = "simple"
	ProductConfigurable ProductType = "configurable"
	ProductVariant      ProductType = "variant"
)

// Purchasable reports whether a product of this type can be put in a cart.
// Configurable products only group their variants.
func (t ProductType) Purchasable() bool {
	return t == ProductSimple || t == ProductVariant
}

type Product struct {
	ID            string
	SKU           string
	Name          string
	Slug          string
	Description   string
	Brand         string
	Price         decimal.Decimal
	StockQuantity int
	CategoryID    string
	Type          ProductType
	ParentID      string
	Active        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Variants is only populated on product detail lookups of configurable products.
	Variants []Product
}

type ProductFilter struct {
	CategoryID string
	Brand      string
	Query      string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	Type       ProductType
	// ExcludeVariants hides variants from storefront listings; they are
	// reached through their configurable parent.
	ExcludeVariants bool
	Active          *bool
	LowStock        *int
	Sort            string
	Page            Page
}

type Category struct {
	ID        string
	Name      string
	Slug      string
	ParentID  string
	Active    bool
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}
