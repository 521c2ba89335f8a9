package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "storefront.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedCategory(t *testing.T, s *Store, slug string) *entity.Category {
	t.Helper()
	now := time.Now().UTC()
	c := &entity.Category{ID: uuid.NewString(), Name: slug, Slug: slug, Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateCategory(context.Background(), c))
	return c
}

func seedProduct(t *testing.T, s *Store, categoryID, sku, price string, stock int) *entity.Product {
	t.Helper()
	now := time.Now().UTC()
	p := &entity.Product{
		ID:            uuid.NewString(),
		SKU:           sku,
		Name:          "Product " + sku,
		Slug:          "product-" + sku,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		CategoryID:    categoryID,
		Type:          entity.ProductSimple,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	require.NoError(t, s.CreateProduct(context.Background(), p))
	return p
}

func TestOpen_SeedsGeography(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	countries, err := s.ListCountries(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, countries)

	ro, err := s.GetCountry(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "RO", ro.Code)

	states, err := s.ListStates(ctx, ro.ID)
	require.NoError(t, err)
	require.NotEmpty(t, states)
	for _, st := range states {
		assert.Equal(t, ro.ID, st.CountryID)
	}

	_, err = s.GetCity(ctx, 9999)
	assert.ErrorIs(t, err, entity.ErrNotFound)
}

func TestProducts_CRUDAndFilters(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "laptops")

	cheap := seedProduct(t, s, cat.ID, "LAP-001", "499.90", 3)
	seedProduct(t, s, cat.ID, "LAP-002", "1299.00", 10)

	got, err := s.GetProductBySlug(ctx, cheap.Slug)
	require.NoError(t, err)
	assert.Equal(t, cheap.SKU, got.SKU)
	assert.True(t, cheap.Price.Equal(got.Price))

	maxPrice := decimal.NewFromInt(500)
	page, err := s.ListProducts(ctx, entity.ProductFilter{CategoryID: cat.ID, MaxPrice: &maxPrice})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "LAP-001", page.Items[0].SKU)

	page, err = s.ListProducts(ctx, entity.ProductFilter{Sort: "price_desc"})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "LAP-002", page.Items[0].SKU)

	// duplicate SKU
	dup := *cheap
	dup.ID = uuid.NewString()
	dup.Slug = "other"
	assert.ErrorIs(t, s.CreateProduct(ctx, &dup), entity.ErrConflict)

	got.Name = "Renamed"
	require.NoError(t, s.UpdateProduct(ctx, got))
	got, err = s.GetProduct(ctx, cheap.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)

	assert.ErrorIs(t, s.DeleteProduct(ctx, "missing"), entity.ErrNotFound)
}

func TestAdjustStock_NeverGoesNegative(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, seedCategory(t, s, "misc").ID, "MISC-1", "1.00", 2)

	require.NoError(t, s.AdjustStock(ctx, p.ID, -2))
	assert.ErrorIs(t, s.AdjustStock(ctx, p.ID, -1), entity.ErrInsufficientStock)
	require.NoError(t, s.AdjustStock(ctx, p.ID, 5))

	got, err := s.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)
}

func TestReserveAndRelease(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	cat := seedCategory(t, s, "phones")
	a := seedProduct(t, s, cat.ID, "PH-A", "10.00", 5)
	b := seedProduct(t, s, cat.ID, "PH-B", "20.00", 1)

	order := newTestOrder(a, b)
	require.NoError(t, s.CreateOrder(ctx, order))

	// b only has one unit, so nothing may be reserved
	err := s.Reserve(ctx, order.ID, []entity.OrderItem{
		{ProductID: a.ID, SKU: a.SKU, Quantity: 2},
		{ProductID: b.ID, SKU: b.SKU, Quantity: 2},
	})
	require.ErrorIs(t, err, entity.ErrInsufficientStock)
	got, err := s.GetProduct(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.StockQuantity)

	require.NoError(t, s.Reserve(ctx, order.ID, order.Items[:1]))
	got, _ = s.GetProduct(ctx, a.ID)
	assert.Equal(t, 3, got.StockQuantity)

	released, err := s.Release(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, released)
	got, _ = s.GetProduct(ctx, a.ID)
	assert.Equal(t, 5, got.StockQuantity)

	released, err = s.Release(ctx, order.ID)
	require.NoError(t, err)
	assert.False(t, released)
}

func newTestOrder(products ...*entity.Product) *entity.Order {
	now := time.Now().UTC()
	o := &entity.Order{
		ID:             uuid.NewString(),
		Number:         "SO-" + uuid.NewString()[:8],
		SessionID:      "guest-1",
		Email:          "guest@example.com",
		Status:         entity.StatusPending,
		PaymentStatus:  entity.PaymentPending,
		ShippingMethod: entity.ShippingCourier,
		PaymentMethod:  entity.PaymentCard,
		ShippingAddress: entity.AddressSnapshot{
			FirstName: "Ana", LastName: "Pop", Phone: "0700", CountryCode: "RO",
			Country: "Romania", State: "Cluj", City: "Cluj-Napoca", Street: "Str. 1", Zip: "400000",
		},
		Totals: entity.Totals{
			Subtotal: decimal.NewFromInt(20), Shipping: decimal.Zero, VATRate: decimal.RequireFromString("0.19"),
			Tax: decimal.RequireFromString("3.80"), TotalExclTax: decimal.NewFromInt(20),
			TotalInclTax: decimal.RequireFromString("23.80"), CountryCode: "RO", Currency: "EUR",
		},
		IdempotencyKey: uuid.NewString(),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	o.BillingAddress = o.ShippingAddress
	for _, p := range products {
		o.Items = append(o.Items, entity.OrderItem{ProductID: p.ID, SKU: p.SKU, Name: p.Name, Quantity: 2, UnitPrice: p.Price})
	}
	return o
}

func TestOrders_IdempotencyKeyReleasedOnCancel(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, seedCategory(t, s, "books").ID, "BK-1", "10.00", 10)

	first := newTestOrder(p)
	require.NoError(t, s.CreateOrder(ctx, first))

	found, err := s.GetOrderByIdempotencyKey(ctx, first.IdempotencyKey)
	require.NoError(t, err)
	assert.Equal(t, first.Number, found.Number)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Cluj-Napoca", found.ShippingAddress.City)
	assert.True(t, found.Totals.TotalInclTax.Equal(decimal.RequireFromString("23.80")))

	second := newTestOrder(p)
	second.IdempotencyKey = first.IdempotencyKey
	assert.ErrorIs(t, s.CreateOrder(ctx, second), entity.ErrConflict)

	require.NoError(t, s.UpdateOrderStatus(ctx, first.ID, entity.StatusCancelled))
	_, err = s.GetOrderByIdempotencyKey(ctx, first.IdempotencyKey)
	assert.ErrorIs(t, err, entity.ErrNotFound)

	second.ID = uuid.NewString()
	require.NoError(t, s.CreateOrder(ctx, second))
}

func TestListOrders_FiltersAndPaging(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, seedCategory(t, s, "toys").ID, "TOY-1", "10.00", 10)

	for i := 0; i < 3; i++ {
		o := newTestOrder(p)
		o.CreatedAt = o.CreatedAt.Add(time.Duration(i) * time.Minute)
		require.NoError(t, s.CreateOrder(ctx, o))
	}
	paid := newTestOrder(p)
	paid.PaymentStatus = entity.PaymentPaid
	require.NoError(t, s.CreateOrder(ctx, paid))

	res, err := s.ListOrders(ctx, entity.OrderFilter{Page: entity.Page{Number: 1, PerPage: 2}})
	require.NoError(t, err)
	assert.Equal(t, 4, res.Total)
	assert.Len(t, res.Items, 2)
	for _, o := range res.Items {
		assert.Len(t, o.Items, 1)
	}

	res, err = s.ListOrders(ctx, entity.OrderFilter{PaymentStatus: entity.PaymentPaid})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	assert.Equal(t, paid.Number, res.Items[0].Number)
}

func TestCarts_GuestLifecycle(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, seedCategory(t, s, "audio").ID, "AUD-1", "35.50", 10)

	now := time.Now().UTC()
	require.NoError(t, s.TouchSession(ctx, "sess-1", now))

	actor := entity.Actor{SessionID: "sess-1"}
	cart, err := s.GetCart(ctx, actor)
	require.NoError(t, err)
	assert.True(t, cart.Empty())
	assert.Equal(t, entity.ShippingCourier, cart.ShippingMethod)

	cart.Items = append(cart.Items, entity.CartItem{ProductID: p.ID, Quantity: 2, UnitPrice: p.Price})
	cart.ShippingCountryID = 2
	cart.UpdatedAt = now
	require.NoError(t, s.SaveCart(ctx, cart))

	again, err := s.GetCart(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID)
	require.Len(t, again.Items, 1)
	assert.Equal(t, p.SKU, again.Items[0].SKU)
	assert.Equal(t, int64(2), again.ShippingCountryID)

	purged, err := s.PurgeSessions(ctx, now.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, purged)

	// the cart went with the session
	require.NoError(t, s.TouchSession(ctx, "sess-1", now))
	fresh, err := s.GetCart(ctx, actor)
	require.NoError(t, err)
	assert.NotEqual(t, cart.ID, fresh.ID)
}

func TestAddresses_SingleDefaultPerType(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	c := &entity.Customer{ID: uuid.NewString(), Email: "a@example.com", PasswordHash: "x", FirstName: "A", LastName: "B", Active: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, s.CreateCustomer(ctx, c))

	newAddr := func(def bool) *entity.Address {
		return &entity.Address{
			ID: uuid.NewString(), CustomerID: c.ID, Type: entity.AddressShipping,
			FirstName: "A", LastName: "B", Phone: "1", CountryID: 1, StateID: 1, CityID: 1,
			Street: "S", Zip: "Z", IsDefault: def, CreatedAt: now, UpdatedAt: now,
		}
	}
	first := newAddr(true)
	require.NoError(t, s.CreateAddress(ctx, first))
	second := newAddr(true)
	require.NoError(t, s.CreateAddress(ctx, second))

	list, err := s.ListCustomerAddresses(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
			assert.Equal(t, second.ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestReturns_Quantities(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p := seedProduct(t, s, seedCategory(t, s, "shoes").ID, "SH-1", "50.00", 10)
	o := newTestOrder(p)
	require.NoError(t, s.CreateOrder(ctx, o))

	now := time.Now().UTC()
	r := &entity.Return{
		ID: uuid.NewString(), OrderID: o.ID, ProductID: p.ID, Quantity: 1, Reason: "too small",
		Status: entity.ReturnRequested, RefundAmount: decimal.NewFromInt(50), CreatedAt: now, UpdatedAt: now,
	}
	require.NoError(t, s.CreateReturn(ctx, r))

	got, err := s.GetReturn(ctx, r.ID)
	require.NoError(t, err)
	assert.Equal(t, o.Number, got.OrderNumber)

	n, err := s.ReturnedQuantity(ctx, o.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got.Status = entity.ReturnRefunded
	require.NoError(t, s.UpdateReturn(ctx, got))
	n, err = s.RefundedQuantity(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err := s.CountReturns(ctx, entity.ReturnRequested)
	require.NoError(t, err)
	assert.Zero(t, pending)
}

func TestStore_TranslatesDriverErrors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	s := &Store{db: sqlx.NewDb(db, "sqlite")}
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM products").
		WithArgs("p-1").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, s.DeleteProduct(ctx, "p-1"), entity.ErrNotFound)

	boom := errors.New("disk I/O error")
	mock.ExpectExec("DELETE FROM carts").WillReturnError(boom)
	err = s.DeleteCart(ctx, "c-1")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "delete cart c-1")

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("UNIQUE constraint failed: users.email"))
	err = s.CreateUser(ctx, &entity.User{ID: "u", Email: "x@example.com", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, entity.ErrConflict)

	require.NoError(t, mock.ExpectationsWereMet())
}
