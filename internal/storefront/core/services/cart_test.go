package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func TestCartService_AddItem(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	actor := entity.Actor{SessionID: uuid.NewString()}
	p := e.product(t, "LAP-1", "49.90", 3)

	cart, err := e.carts.AddItem(ctx, actor, p.ID, 1)
	require.NoError(t, err)
	cart, err = e.carts.AddItem(ctx, actor, p.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Cart.Items, 1)
	assert.Equal(t, 3, cart.Cart.Items[0].Quantity)
	assert.Equal(t, "149.70", cart.Totals.Subtotal.StringFixed(2))

	_, err = e.carts.AddItem(ctx, actor, p.ID, 1)
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "quantity")

	cart, err = e.carts.RemoveItem(ctx, actor, p.ID)
	require.NoError(t, err)
	assert.True(t, cart.Cart.Empty())
	assert.True(t, cart.Totals.TotalInclTax.IsZero())
}

func TestCartService_RefusesConfigurableAndInactive(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	actor := entity.Actor{SessionID: uuid.NewString()}

	parent, err := e.catalog.CreateProduct(ctx, ProductInput{
		SKU: "TSHIRT", Name: "T-shirt", Slug: "t-shirt", Price: decimal.RequireFromString("20"),
		CategoryID: e.category.ID, Type: entity.ProductConfigurable, Active: true,
	})
	require.NoError(t, err)
	hidden, err := e.catalog.CreateProduct(ctx, ProductInput{
		SKU: "OLD", Name: "Old", Slug: "old", Price: decimal.RequireFromString("20"), StockQuantity: 4,
		CategoryID: e.category.ID, Type: entity.ProductSimple,
	})
	require.NoError(t, err)

	for _, id := range []string{parent.ID, hidden.ID, "missing"} {
		_, err := e.carts.AddItem(ctx, actor, id, 1)
		var verr *entity.ValidationError
		require.ErrorAs(t, err, &verr, id)
		assert.Contains(t, verr.Fields, "product_id")
	}
}

func TestCartService_ShippingCountryRecalculatesVAT(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	actor := entity.Actor{SessionID: uuid.NewString()}
	p := e.product(t, "LAP-1", "100.00", 3)
	_, err := e.carts.AddItem(ctx, actor, p.ID, 1)
	require.NoError(t, err)

	cart, err := e.carts.SetShippingCountry(ctx, actor, 4) // HU
	require.NoError(t, err)
	assert.Equal(t, "HU", cart.Totals.CountryCode)
	assert.Equal(t, "31.05", cart.Totals.Tax.StringFixed(2))

	cart, err = e.carts.SetShippingCountry(ctx, actor, 5) // US
	require.NoError(t, err)
	assert.True(t, cart.Totals.Tax.IsZero())
	assert.Equal(t, "115.00", cart.Totals.TotalInclTax.StringFixed(2))

	_, err = e.carts.SetShippingCountry(ctx, actor, 99)
	var verr *entity.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "country_id")

	again, err := e.carts.Get(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, "US", again.Totals.CountryCode)
}

func TestCartService_MergeOnLogin(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	sessionID := uuid.NewString()
	a := e.product(t, "A", "10.00", 3)
	b := e.product(t, "B", "20.00", 5)

	_, err := e.carts.AddItem(ctx, entity.Actor{SessionID: sessionID}, a.ID, 2)
	require.NoError(t, err)
	_, err = e.carts.AddItem(ctx, entity.Actor{SessionID: sessionID}, b.ID, 1)
	require.NoError(t, err)

	customer, _, err := e.auth.Register(ctx, RegisterInput{Email: "c@example.com", Password: "secret-pass"}, "")
	require.NoError(t, err)
	owner := entity.Actor{CustomerID: customer.ID}
	_, err = e.carts.AddItem(ctx, owner, a.ID, 2)
	require.NoError(t, err)

	_, _, err = e.auth.Login(ctx, "C@example.com", "secret-pass", sessionID)
	require.NoError(t, err)

	cart, err := e.carts.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, cart.Cart.Items, 2)
	quantities := map[string]int{}
	for _, it := range cart.Cart.Items {
		quantities[it.ProductID] = it.Quantity
	}
	assert.Equal(t, 3, quantities[a.ID], "capped at stock")
	assert.Equal(t, 1, quantities[b.ID])

	guest, err := e.carts.Get(ctx, entity.Actor{SessionID: sessionID})
	require.NoError(t, err)
	assert.True(t, guest.Cart.Empty())
}
