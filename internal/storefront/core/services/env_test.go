package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/auth"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/adapters/sqlite"
)

// testEnv wires every service on a fresh SQLite file and an in-memory cache.
type testEnv struct {
	store     *sqlite.Store
	cache     cache.Cache
	settings  *config.Settings
	catalog   *CatalogService
	geo       *GeoService
	carts     *CartService
	addresses *AddressService
	inventory *InventoryService
	payments  *PaymentService
	checkout  *CheckoutService
	orders    *OrderService
	returns   *ReturnService
	auth      *AuthService
	customers *CustomerService
	users     *UserService
	dashboard *DashboardService
	category  *entity.Category
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	settings, err := config.LoadSettings("")
	require.NoError(t, err)

	e := &testEnv{store: store, cache: cache.NewMemoryCache("storefront-test"), settings: settings}
	e.catalog = NewCatalogService(store, store)
	e.geo = NewGeoService(store)
	e.carts = NewCartService(store, store, store, store, settings)
	e.addresses = NewAddressService(store, store, e.geo)
	e.inventory = NewInventoryService(store)
	e.payments = NewPaymentService(store, settings.CardLimit)
	e.checkout = NewCheckoutService(CheckoutDeps{
		Carts:          store,
		Products:       store,
		Sessions:       store,
		Customers:      store,
		Orders:         store,
		Addresses:      e.addresses,
		Inventory:      e.inventory,
		Payments:       e.payments,
		Saga:           coordinator.NewOrchestrator(nil, nil),
		Cache:          e.cache,
		Pricer:         NewPricer(settings),
		IdempotencyTTL: time.Hour,
	})
	e.orders = NewOrderService(store, e.inventory, e.payments, nil)
	e.returns = NewReturnService(store, store, store)
	e.auth = NewAuthService(store, store, e.carts, auth.NewTokenIssuer("test-secret-0123456789", time.Hour))
	e.customers = NewCustomerService(store, store)
	e.users = NewUserService(store)
	e.dashboard = NewDashboardService(store, store, settings.LowStockThreshold)

	e.category, err = e.catalog.CreateCategory(context.Background(), CategoryInput{Name: "Laptops", Slug: "laptops", Active: true})
	require.NoError(t, err)
	return e
}

func (e *testEnv) product(t *testing.T, sku, price string, stock int) *entity.Product {
	t.Helper()
	p, err := e.catalog.CreateProduct(context.Background(), ProductInput{
		SKU:           sku,
		Name:          "Product " + sku,
		Slug:          "p-" + uuid.NewString()[:8],
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CategoryID:    e.category.ID,
		Type:          entity.ProductSimple,
		Active:        true,
	})
	require.NoError(t, err)
	return p
}

func (e *testEnv) stock(t *testing.T, productID string) int {
	t.Helper()
	p, err := e.store.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.StockQuantity
}

// clujAddress is a valid Romanian address (country 1, state 2, city 3).
func clujAddress() AddressInput {
	return AddressInput{
		FirstName: "Ana",
		LastName:  "Pop",
		Email:     "ana@example.com",
		Phone:     "+40700000000",
		CountryID: 1,
		StateID:   2,
		CityID:    3,
		Street:    "Str. Memorandumului 1",
		Zip:       "400114",
	}
}

// berlinAddress is a valid German address (country 2, state 3, city 4).
func berlinAddress() AddressInput {
	return AddressInput{
		FirstName: "Jan",
		LastName:  "Muller",
		Email:     "jan@example.com",
		Phone:     "+4930000000",
		CountryID: 2,
		StateID:   3,
		CityID:    4,
		Street:    "Friedrichstrasse 1",
		Zip:       "10117",
	}
}

// guestWithCart returns a guest actor holding quantity units of p and a saved
// shipping address.
func (e *testEnv) guestWithCart(t *testing.T, p *entity.Product, quantity int) entity.Actor {
	t.Helper()
	ctx := context.Background()
	actor := entity.Actor{SessionID: "sess-" + uuid.NewString()}
	_, err := e.carts.AddItem(ctx, actor, p.ID, quantity)
	require.NoError(t, err)
	_, _, err = e.addresses.SaveSessionAddresses(ctx, actor.SessionID, clujAddress(), nil)
	require.NoError(t, err)
	return actor
}

func (e *testEnv) placeOrder(t *testing.T, p *entity.Product, quantity int, method entity.PaymentMethod) *entity.Order {
	t.Helper()
	actor := e.guestWithCart(t, p, quantity)
	res, err := e.checkout.PlaceOrder(context.Background(), actor, PlaceOrderInput{
		IdempotencyKey:       uuid.NewString(),
		UseShippingAsBilling: true,
		PaymentMethod:        method,
	})
	require.NoError(t, err)
	order, err := e.store.GetOrder(context.Background(), res.Order.ID)
	require.NoError(t, err)
	return order
}
