package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-storefront/internal/coordinator"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/cache"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/metrics"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

const checkoutLockTTL = 2 * time.Minute

// CheckoutDeps wires the checkout service.
type CheckoutDeps struct {
	Carts          ports.CartRepository
	Products       ports.ProductRepository
	Sessions       ports.SessionRepository
	Customers      ports.CustomerRepository
	Orders         ports.OrderRepository
	Addresses      *AddressService
	Inventory      ports.Inventory
	Payments       ports.PaymentGateway
	Saga           *coordinator.Orchestrator
	Cache          cache.Cache
	Pricer         *Pricer
	IdempotencyTTL time.Duration
}

type CheckoutService struct {
	CheckoutDeps
	now func() time.Time
}

func NewCheckoutService(deps CheckoutDeps) *CheckoutService {
	return &CheckoutService{CheckoutDeps: deps, now: time.Now}
}

type PlaceOrderInput struct {
	IdempotencyKey       string
	ShippingAddressID    string
	BillingAddressID     string
	UseShippingAsBilling bool
	PaymentMethod        entity.PaymentMethod
	Notes                string
}

type CheckoutResult struct {
	Order *entity.Order
	// Replayed is set when the key had already produced this order.
	Replayed bool
}

// PlaceOrder turns the actor's cart into an order. Submitting the same
// idempotency key again returns the original order instead of a new one;
// a concurrent submission with the key fails with ErrCheckoutInProgress.
func (s *CheckoutService) PlaceOrder(ctx context.Context, actor entity.Actor, in PlaceOrderInput) (*CheckoutResult, error) {
	start := s.now()
	logger := slog.With("idempotency_key", in.IdempotencyKey)

	if order, err := s.replay(ctx, actor, in.IdempotencyKey); order != nil || err != nil {
		if err == nil {
			metrics.RecordCheckout(metrics.OutcomeReplayed, 0)
			logger.InfoContext(ctx, "checkout replayed", "order_number", order.Number)
			return &CheckoutResult{Order: order, Replayed: true}, nil
		}
		return nil, err
	}

	lockKey := s.Cache.GenerateKey("checkout-lock", in.IdempotencyKey)
	// The token ties the lock to this attempt: once it expires and another
	// submission takes it, this attempt must not release it.
	token := actorKey(actor) + ":" + uuid.NewString()
	acquired, err := s.Cache.SetNX(ctx, lockKey, token, checkoutLockTTL)
	if err != nil {
		logger.WarnContext(ctx, "idempotency lock unavailable, relying on the database", "error", err)
		acquired = true
	}
	if !acquired {
		metrics.RecordCheckout(metrics.OutcomeRejected, 0)
		return nil, entity.ErrCheckoutInProgress
	}
	defer func() {
		released, err := s.Cache.CompareAndDelete(context.WithoutCancel(ctx), lockKey, token)
		if err != nil {
			logger.WarnContext(ctx, "idempotency lock release failed", "error", err)
		} else if !released {
			logger.WarnContext(ctx, "idempotency lock expired before the checkout finished")
		}
	}()

	// A submission holding the lock may have finished between the first check
	// and acquiring the lock.
	if order, err := s.replay(ctx, actor, in.IdempotencyKey); order != nil || err != nil {
		if err == nil {
			metrics.RecordCheckout(metrics.OutcomeReplayed, 0)
			return &CheckoutResult{Order: order, Replayed: true}, nil
		}
		return nil, err
	}

	order, cartID, err := s.prepare(ctx, actor, in)
	if err != nil {
		metrics.RecordCheckout(metrics.OutcomeRejected, 0)
		return nil, err
	}

	steps := []coordinator.Step{
		coordinator.NewCreateOrderStep(s.Orders, order),
		coordinator.NewInventoryStep(s.Inventory, order),
		coordinator.NewPaymentStep(s.Payments, s.Orders, order),
		coordinator.NewConfirmOrderStep(s.Orders, s.Carts, order, cartID),
	}
	if err := s.Saga.Run(ctx, order.Number, sagaPayload(order), steps...); err != nil {
		// Another process may have won the race on the idempotency index.
		if errors.Is(err, entity.ErrConflict) {
			if existing, rerr := s.replay(ctx, actor, in.IdempotencyKey); rerr == nil && existing != nil {
				metrics.RecordCheckout(metrics.OutcomeReplayed, 0)
				return &CheckoutResult{Order: existing, Replayed: true}, nil
			}
		}
		metrics.RecordCheckout(metrics.OutcomeFailed, s.now().Sub(start))
		logger.WarnContext(ctx, "checkout failed", "order_number", order.Number, "error", err)
		return nil, err
	}

	replayKey := s.Cache.GenerateKey("checkout", in.IdempotencyKey)
	if err := s.Cache.Set(ctx, replayKey, order.Number, s.IdempotencyTTL); err != nil {
		logger.WarnContext(ctx, "idempotency cache write failed", "error", err)
	}

	metrics.RecordCheckout(metrics.OutcomePlaced, s.now().Sub(start))
	logger.InfoContext(ctx, "order placed",
		"order_number", order.Number,
		"total", order.Totals.TotalInclTax.StringFixed(2),
		"payment_status", order.PaymentStatus,
	)
	return &CheckoutResult{Order: order}, nil
}

// replay finds the order an idempotency key already produced, first through
// the cache and then through the orders table. A key used by another
// shopper is a conflict.
func (s *CheckoutService) replay(ctx context.Context, actor entity.Actor, key string) (*entity.Order, error) {
	var order *entity.Order

	number, err := s.Cache.Get(ctx, s.Cache.GenerateKey("checkout", key))
	if err != nil {
		slog.WarnContext(ctx, "idempotency cache read failed", "error", err)
	}
	if number != "" {
		order, err = s.Orders.GetOrderByNumber(ctx, number)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		if order != nil && order.Status == entity.StatusCancelled {
			order = nil
		}
	}
	if order == nil {
		order, err = s.Orders.GetOrderByIdempotencyKey(ctx, key)
		if errors.Is(err, entity.ErrNotFound) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
	}

	if !ownedBy(order, actor) {
		return nil, fmt.Errorf("idempotency key already used: %w", entity.ErrConflict)
	}
	return order, nil
}

// prepare builds the pending order from the cart and the chosen addresses.
func (s *CheckoutService) prepare(ctx context.Context, actor entity.Actor, in PlaceOrderInput) (*entity.Order, string, error) {
	if !actor.Authenticated() {
		if err := s.Sessions.TouchSession(ctx, actor.SessionID, s.now().UTC()); err != nil {
			return nil, "", err
		}
	}
	cart, err := s.Carts.GetCart(ctx, actor)
	if err != nil {
		return nil, "", err
	}
	if cart.Empty() {
		return nil, "", entity.ErrEmptyCart
	}
	if err := s.revalidate(ctx, cart); err != nil {
		return nil, "", err
	}
	if cart.ShippingMethod == entity.ShippingPickup && cart.PickupPointID == "" {
		return nil, "", entity.NewValidationError("pickup_point_id", "Choose a pickup point.")
	}

	shipping, billing, err := s.resolveAddresses(ctx, actor, in)
	if err != nil {
		return nil, "", err
	}
	shipSnap, err := s.Addresses.Snapshot(ctx, shipping)
	if err != nil {
		return nil, "", prefixFields(err, "shipping.")
	}
	billSnap := shipSnap
	if billing != nil {
		if billSnap, err = s.Addresses.Snapshot(ctx, billing); err != nil {
			return nil, "", prefixFields(err, "billing.")
		}
	}

	email := shipSnap.Email
	if actor.Authenticated() {
		customer, err := s.Customers.GetCustomer(ctx, actor.CustomerID)
		if err != nil {
			return nil, "", err
		}
		if !customer.Active {
			return nil, "", fmt.Errorf("customer %s is inactive: %w", customer.ID, entity.ErrForbidden)
		}
		email = customer.Email
	}
	if email == "" {
		return nil, "", entity.NewValidationError("shipping.email", "An email address is required for guest checkout.")
	}

	now := s.now().UTC()
	order := &entity.Order{
		ID:              uuid.NewString(),
		Number:          orderNumber(now),
		CustomerID:      actor.CustomerID,
		Email:           email,
		Status:          entity.StatusPending,
		PaymentStatus:   entity.PaymentPending,
		ShippingMethod:  cart.ShippingMethod,
		PickupPointID:   cart.PickupPointID,
		PaymentMethod:   in.PaymentMethod,
		ShippingAddress: shipSnap,
		BillingAddress:  billSnap,
		// VAT follows the country the goods are shipped to.
		Totals:         s.Pricer.Totals(cart.Items, cart.ShippingMethod, shipSnap.CountryCode),
		IdempotencyKey: in.IdempotencyKey,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if !actor.Authenticated() {
		order.SessionID = actor.SessionID
	}
	for _, it := range cart.Items {
		order.Items = append(order.Items, entity.OrderItem{
			ProductID: it.ProductID,
			SKU:       it.SKU,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		})
	}
	return order, cart.ID, nil
}

// revalidate checks the cart lines against the catalog as it is now. A
// withdrawn product fails the checkout. Changed prices are written back to
// the cart and reported, so the shopper sees the new total before ordering.
func (s *CheckoutService) revalidate(ctx context.Context, cart *entity.Cart) error {
	repriced := false
	for i, it := range cart.Items {
		p, err := s.Products.GetProduct(ctx, it.ProductID)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return err
		}
		if p == nil || !p.Active || !p.Type.Purchasable() {
			return entity.NewValidationError("items", fmt.Sprintf("%s is no longer available. Remove it from the cart.", it.Name))
		}
		if !p.Price.Equal(it.UnitPrice) {
			cart.Items[i].UnitPrice = p.Price
			repriced = true
		}
	}
	if !repriced {
		return nil
	}
	cart.UpdatedAt = s.now().UTC()
	if err := s.Carts.SaveCart(ctx, cart); err != nil {
		return err
	}
	return entity.NewValidationError("items", "Prices in the cart have changed. Review the new total and place the order again.")
}

// resolveAddresses returns the shipping address and, unless it doubles as
// billing, the billing address. Customers pick from their address book;
// guests use the addresses last saved on their session.
func (s *CheckoutService) resolveAddresses(ctx context.Context, actor entity.Actor, in PlaceOrderInput) (*entity.Address, *entity.Address, error) {
	if actor.Authenticated() {
		shipping, err := s.ownedAddress(ctx, actor.CustomerID, in.ShippingAddressID, "shipping_address_id")
		if err != nil {
			return nil, nil, err
		}
		if in.UseShippingAsBilling {
			return shipping, nil, nil
		}
		billing, err := s.ownedAddress(ctx, actor.CustomerID, in.BillingAddressID, "billing_address_id")
		if err != nil {
			return nil, nil, err
		}
		return shipping, billing, nil
	}

	shipping, err := s.Addresses.LatestSessionAddress(ctx, actor.SessionID, entity.AddressShipping)
	if err != nil {
		return nil, nil, notFoundAsInvalid(err, "shipping_address", "Save a shipping address before placing the order.")
	}
	if in.UseShippingAsBilling {
		return shipping, nil, nil
	}
	billing, err := s.Addresses.LatestSessionAddress(ctx, actor.SessionID, entity.AddressBilling)
	if err != nil {
		return nil, nil, notFoundAsInvalid(err, "billing_address", "Save a billing address or use the shipping address for billing.")
	}
	return shipping, billing, nil
}

func (s *CheckoutService) ownedAddress(ctx context.Context, customerID, id, field string) (*entity.Address, error) {
	if id == "" {
		return nil, entity.NewValidationError(field, "The address is required.")
	}
	a, err := s.Addresses.Get(ctx, customerID, id)
	if err != nil {
		return nil, notFoundAsInvalid(err, field, "The selected address is invalid.")
	}
	return a, nil
}

func ownedBy(o *entity.Order, actor entity.Actor) bool {
	if actor.Authenticated() {
		return o.CustomerID == actor.CustomerID
	}
	return o.CustomerID == "" && o.SessionID == actor.SessionID
}

func actorKey(actor entity.Actor) string {
	if actor.Authenticated() {
		return "customer:" + actor.CustomerID
	}
	return "session:" + actor.SessionID
}

// orderNumber formats ORD-YYYYMMDD-XXXXXX.
func orderNumber(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:6]
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix)
}

func sagaPayload(o *entity.Order) string {
	b, err := json.Marshal(map[string]any{
		"order_id":       o.ID,
		"order_number":   o.Number,
		"customer_id":    o.CustomerID,
		"payment_method": o.PaymentMethod,
		"items":          len(o.Items),
		"total":          o.Totals.TotalInclTax.StringFixed(2),
		"currency":       o.Totals.Currency,
	})
	if err != nil {
		return ""
	}
	return string(b)
}
