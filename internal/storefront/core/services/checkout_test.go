package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

type CheckoutSuite struct {
	suite.Suite
	env *testEnv
	ctx context.Context
}

func TestCheckoutSuite(t *testing.T) {
	suite.Run(t, new(CheckoutSuite))
}

func (s *CheckoutSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.ctx = context.Background()
}

func (s *CheckoutSuite) place(actor entity.Actor, key string, method entity.PaymentMethod) (*CheckoutResult, error) {
	return s.env.checkout.PlaceOrder(s.ctx, actor, PlaceOrderInput{
		IdempotencyKey:       key,
		UseShippingAsBilling: true,
		PaymentMethod:        method,
	})
}

func (s *CheckoutSuite) TestGuestCheckoutWithCard() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 2)

	res, err := s.place(actor, uuid.NewString(), entity.PaymentCard)
	s.Require().NoError(err)
	s.False(res.Replayed)

	order, err := s.env.store.GetOrderByNumber(s.ctx, res.Order.Number)
	s.Require().NoError(err)
	s.Equal(entity.StatusProcessing, order.Status)
	s.Equal(entity.PaymentPaid, order.PaymentStatus)
	s.Equal("ana@example.com", order.Email)
	s.Equal(actor.SessionID, order.SessionID)
	s.Equal("RO", order.ShippingAddress.CountryCode)
	s.Equal("Cluj-Napoca", order.ShippingAddress.City)
	s.Equal(order.ShippingAddress, order.BillingAddress)
	// 200.00 goods + 15.00 courier, 19% VAT
	s.Equal("15.00", order.Totals.Shipping.StringFixed(2))
	s.Equal("40.85", order.Totals.Tax.StringFixed(2))
	s.Equal("255.85", order.Totals.TotalInclTax.StringFixed(2))

	s.Equal(3, s.env.stock(s.T(), p.ID))
	cart, err := s.env.carts.Get(s.ctx, actor)
	s.Require().NoError(err)
	s.True(cart.Cart.Empty())
}

func (s *CheckoutSuite) TestSameKeyReplaysOrder() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)
	key := uuid.NewString()

	first, err := s.place(actor, key, entity.PaymentCashOnDelivery)
	s.Require().NoError(err)
	second, err := s.place(actor, key, entity.PaymentCashOnDelivery)
	s.Require().NoError(err)

	s.True(second.Replayed)
	s.Equal(first.Order.Number, second.Order.Number)
	s.Equal(4, s.env.stock(s.T(), p.ID))

	all, err := s.env.store.ListOrders(s.ctx, entity.OrderFilter{})
	s.Require().NoError(err)
	s.Equal(1, all.Total)
}

func (s *CheckoutSuite) TestReplayFallsBackToDatabase() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)
	key := uuid.NewString()

	first, err := s.place(actor, key, entity.PaymentCard)
	s.Require().NoError(err)
	s.Require().NoError(s.env.cache.Delete(s.ctx, s.env.cache.GenerateKey("checkout", key)))

	again, err := s.place(actor, key, entity.PaymentCard)
	s.Require().NoError(err)
	s.True(again.Replayed)
	s.Equal(first.Order.ID, again.Order.ID)
}

func (s *CheckoutSuite) TestKeyOfAnotherShopperConflicts() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	key := uuid.NewString()
	_, err := s.place(s.env.guestWithCart(s.T(), p, 1), key, entity.PaymentCard)
	s.Require().NoError(err)

	_, err = s.place(s.env.guestWithCart(s.T(), p, 1), key, entity.PaymentCard)
	s.ErrorIs(err, entity.ErrConflict)
}

func (s *CheckoutSuite) TestConcurrentSubmissionIsRejected() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)
	key := uuid.NewString()

	held, err := s.env.cache.SetNX(s.ctx, s.env.cache.GenerateKey("checkout-lock", key), "session:other", checkoutLockTTL)
	s.Require().NoError(err)
	s.Require().True(held)

	_, err = s.place(actor, key, entity.PaymentCard)
	s.ErrorIs(err, entity.ErrCheckoutInProgress)
	s.Equal(5, s.env.stock(s.T(), p.ID))
}

func (s *CheckoutSuite) TestInsufficientStockRollsBack() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 2)
	actor := s.env.guestWithCart(s.T(), p, 2)
	// someone else bought one unit after it was put in the cart
	s.Require().NoError(s.env.store.AdjustStock(s.ctx, p.ID, -1))

	_, err := s.place(actor, uuid.NewString(), entity.PaymentCard)
	s.ErrorIs(err, entity.ErrInsufficientStock)
	s.Equal(1, s.env.stock(s.T(), p.ID))

	cancelled, err := s.env.store.ListOrders(s.ctx, entity.OrderFilter{Status: entity.StatusCancelled})
	s.Require().NoError(err)
	s.Equal(1, cancelled.Total)

	cart, err := s.env.carts.Get(s.ctx, actor)
	s.Require().NoError(err)
	s.Len(cart.Cart.Items, 1)
}

func (s *CheckoutSuite) TestDeclinedCardReleasesStockAndKey() {
	p := s.env.product(s.T(), "TV-1", "3000.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 2)
	key := uuid.NewString()

	_, err := s.place(actor, key, entity.PaymentCard)
	s.ErrorIs(err, entity.ErrPaymentDeclined)
	s.Equal(5, s.env.stock(s.T(), p.ID))

	// the same key can be retried once the cart is within the card limit
	_, err = s.env.carts.UpdateItem(s.ctx, actor, p.ID, 1)
	s.Require().NoError(err)
	res, err := s.place(actor, key, entity.PaymentCard)
	s.Require().NoError(err)
	s.False(res.Replayed)
	s.Equal(4, s.env.stock(s.T(), p.ID))
}

func (s *CheckoutSuite) TestEmptyCart() {
	actor := entity.Actor{SessionID: uuid.NewString()}
	_, err := s.place(actor, uuid.NewString(), entity.PaymentCard)
	s.ErrorIs(err, entity.ErrEmptyCart)
}

func (s *CheckoutSuite) TestGuestNeedsBillingAddressOrShippingAsBilling() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)

	_, err := s.env.checkout.PlaceOrder(s.ctx, actor, PlaceOrderInput{
		IdempotencyKey: uuid.NewString(),
		PaymentMethod:  entity.PaymentCard,
	})
	var verr *entity.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "billing_address")
}

func (s *CheckoutSuite) TestGuestNeedsEmail() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := entity.Actor{SessionID: uuid.NewString()}
	_, err := s.env.carts.AddItem(s.ctx, actor, p.ID, 1)
	s.Require().NoError(err)
	addr := clujAddress()
	addr.Email = ""
	_, _, err = s.env.addresses.SaveSessionAddresses(s.ctx, actor.SessionID, addr, nil)
	s.Require().NoError(err)

	_, err = s.place(actor, uuid.NewString(), entity.PaymentCard)
	var verr *entity.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "shipping.email")
}

func (s *CheckoutSuite) TestPickupWithoutPointIsRejected() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)

	_, err := s.env.carts.SetShipping(s.ctx, actor, entity.ShippingPickup, "")
	var verr *entity.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "pickup_point_id")

	_, err = s.env.carts.SetShipping(s.ctx, actor, entity.ShippingPickup, "PP-CLJ-01")
	s.Require().NoError(err)
	res, err := s.place(actor, uuid.NewString(), entity.PaymentCashOnDelivery)
	s.Require().NoError(err)
	s.Equal("PP-CLJ-01", res.Order.PickupPointID)
	s.Equal("5.00", res.Order.Totals.Shipping.StringFixed(2))
}

func (s *CheckoutSuite) TestCustomerCheckoutUsesShippingCountryVAT() {
	customer, _, err := s.env.auth.Register(s.ctx, RegisterInput{
		Email: "Marie@Example.com", Password: "secret-pass", FirstName: "Marie", LastName: "Curie",
	}, "")
	s.Require().NoError(err)
	actor := entity.Actor{CustomerID: customer.ID}

	paris := AddressInput{
		Type: entity.AddressShipping, FirstName: "Marie", LastName: "Curie", Phone: "+331000000",
		CountryID: 3, StateID: 5, CityID: 7, Street: "Rue de Rivoli 1", Zip: "75001",
	}
	shipping, err := s.env.addresses.Create(s.ctx, customer.ID, paris)
	s.Require().NoError(err)
	billingIn := berlinAddress()
	billingIn.Type = entity.AddressBilling
	billing, err := s.env.addresses.Create(s.ctx, customer.ID, billingIn)
	s.Require().NoError(err)

	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	_, err = s.env.carts.AddItem(s.ctx, actor, p.ID, 1)
	s.Require().NoError(err)

	res, err := s.env.checkout.PlaceOrder(s.ctx, actor, PlaceOrderInput{
		IdempotencyKey:    uuid.NewString(),
		ShippingAddressID: shipping.ID,
		BillingAddressID:  billing.ID,
		PaymentMethod:     entity.PaymentBankTransfer,
	})
	s.Require().NoError(err)

	order := res.Order
	s.Equal("marie@example.com", order.Email)
	s.Equal(customer.ID, order.CustomerID)
	s.Equal("FR", order.Totals.CountryCode)
	// (100.00 + 15.00) * 20%
	s.Equal("23.00", order.Totals.Tax.StringFixed(2))
	s.Equal("DE", order.BillingAddress.CountryCode)

	stored, err := s.env.store.GetOrder(s.ctx, order.ID)
	s.Require().NoError(err)
	s.Equal(entity.PaymentPending, stored.PaymentStatus)
	s.Equal(entity.StatusProcessing, stored.Status)
}

func (s *CheckoutSuite) TestCustomerCannotUseForeignAddress() {
	a, _, err := s.env.auth.Register(s.ctx, RegisterInput{Email: "a@example.com", Password: "secret-pass"}, "")
	s.Require().NoError(err)
	b, _, err := s.env.auth.Register(s.ctx, RegisterInput{Email: "b@example.com", Password: "secret-pass"}, "")
	s.Require().NoError(err)
	addr := clujAddress()
	addr.Type = entity.AddressShipping
	foreign, err := s.env.addresses.Create(s.ctx, b.ID, addr)
	s.Require().NoError(err)

	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	_, err = s.env.carts.AddItem(s.ctx, entity.Actor{CustomerID: a.ID}, p.ID, 1)
	s.Require().NoError(err)

	_, err = s.env.checkout.PlaceOrder(s.ctx, entity.Actor{CustomerID: a.ID}, PlaceOrderInput{
		IdempotencyKey:       uuid.NewString(),
		ShippingAddressID:    foreign.ID,
		UseShippingAsBilling: true,
		PaymentMethod:        entity.PaymentCard,
	})
	var verr *entity.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "shipping_address_id")
}

func (s *CheckoutSuite) TestWithdrawnProductIsRejected() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)
	p.Active = false
	s.Require().NoError(s.env.store.UpdateProduct(s.ctx, p))

	_, err := s.place(actor, uuid.NewString(), entity.PaymentCard)
	var verr *entity.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "items")
	s.Equal(5, s.env.stock(s.T(), p.ID))

	all, err := s.env.store.ListOrders(s.ctx, entity.OrderFilter{})
	s.Require().NoError(err)
	s.Zero(all.Total)
}

func (s *CheckoutSuite) TestChangedPriceIsConfirmedBeforeOrdering() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)
	p.Price = decimal.RequireFromString("500.00")
	s.Require().NoError(s.env.store.UpdateProduct(s.ctx, p))
	key := uuid.NewString()

	_, err := s.place(actor, key, entity.PaymentCashOnDelivery)
	var verr *entity.ValidationError
	s.Require().ErrorAs(err, &verr)
	s.Contains(verr.Fields, "items")

	cart, err := s.env.carts.Get(s.ctx, actor)
	s.Require().NoError(err)
	s.Require().Len(cart.Cart.Items, 1)
	s.Equal("500.00", cart.Cart.Items[0].UnitPrice.StringFixed(2))
	s.Equal("500.00", cart.Totals.Subtotal.StringFixed(2))

	// the shopper has seen the new total; the same key now places the order
	res, err := s.place(actor, key, entity.PaymentCashOnDelivery)
	s.Require().NoError(err)
	s.Require().Len(res.Order.Items, 1)
	s.Equal("500.00", res.Order.Items[0].UnitPrice.StringFixed(2))
	s.Equal("500.00", res.Order.Totals.Subtotal.StringFixed(2))
}

func (s *CheckoutSuite) TestInactiveCustomerCannotOrder() {
	customer, _, err := s.env.auth.Register(s.ctx, RegisterInput{Email: "gone@example.com", Password: "secret-pass"}, "")
	s.Require().NoError(err)
	addr := clujAddress()
	addr.Type = entity.AddressShipping
	shipping, err := s.env.addresses.Create(s.ctx, customer.ID, addr)
	s.Require().NoError(err)

	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := entity.Actor{CustomerID: customer.ID}
	_, err = s.env.carts.AddItem(s.ctx, actor, p.ID, 1)
	s.Require().NoError(err)

	customer.Active = false
	s.Require().NoError(s.env.store.UpdateCustomer(s.ctx, customer))

	_, err = s.env.checkout.PlaceOrder(s.ctx, actor, PlaceOrderInput{
		IdempotencyKey:       uuid.NewString(),
		ShippingAddressID:    shipping.ID,
		UseShippingAsBilling: true,
		PaymentMethod:        entity.PaymentCard,
	})
	s.ErrorIs(err, entity.ErrForbidden)
	s.Equal(5, s.env.stock(s.T(), p.ID))
}

// lockTakeover lets the checkout lock expire during the saga and hands it
// to another submission, as a slow checkout past its TTL would see.
type lockTakeover struct {
	cache.Cache
	lockKey string
	holder  string
}

func (c *lockTakeover) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := c.Cache.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	if err := c.Cache.Delete(ctx, c.lockKey); err != nil {
		return err
	}
	_, err := c.Cache.SetNX(ctx, c.lockKey, c.holder, checkoutLockTTL)
	return err
}

func (s *CheckoutSuite) TestLockReleaseKeepsAnotherHoldersLock() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)
	key := uuid.NewString()
	lockKey := s.env.cache.GenerateKey("checkout-lock", key)
	s.env.checkout.Cache = &lockTakeover{Cache: s.env.cache, lockKey: lockKey, holder: "session:other:attempt"}

	_, err := s.place(actor, key, entity.PaymentCard)
	s.Require().NoError(err)

	held, err := s.env.cache.Get(s.ctx, lockKey)
	s.Require().NoError(err)
	s.Equal("session:other:attempt", held)
}

func (s *CheckoutSuite) TestLockIsReleasedAfterCheckout() {
	p := s.env.product(s.T(), "LAP-1", "100.00", 5)
	actor := s.env.guestWithCart(s.T(), p, 1)
	key := uuid.NewString()

	_, err := s.place(actor, key, entity.PaymentCard)
	s.Require().NoError(err)

	held, err := s.env.cache.Get(s.ctx, s.env.cache.GenerateKey("checkout-lock", key))
	s.Require().NoError(err)
	s.Empty(held)
}
