package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/metrics"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/ports"
)

type CartService struct {
	carts    ports.CartRepository
	products ports.ProductRepository
	geo      ports.GeoRepository
	sessions ports.SessionRepository
	settings *config.Settings
	pricer   *Pricer
	now      func() time.Time
}

func NewCartService(
	carts ports.CartRepository,
	products ports.ProductRepository,
	geo ports.GeoRepository,
	sessions ports.SessionRepository,
	settings *config.Settings,
) *CartService {
	return &CartService{
		carts:    carts,
		products: products,
		geo:      geo,
		sessions: sessions,
		settings: settings,
		pricer:   NewPricer(settings),
		now:      time.Now,
	}
}

// load resolves the actor's cart, registering guest sessions on the way.
func (s *CartService) load(ctx context.Context, actor entity.Actor) (*entity.Cart, error) {
	if actor.Empty() {
		return nil, fmt.Errorf("cart without customer or session: %w", entity.ErrForbidden)
	}
	if !actor.Authenticated() {
		if err := s.sessions.TouchSession(ctx, actor.SessionID, s.now().UTC()); err != nil {
			return nil, err
		}
	}
	return s.carts.GetCart(ctx, actor)
}

func (s *CartService) save(ctx context.Context, cart *entity.Cart) (*entity.PricedCart, error) {
	cart.UpdatedAt = s.now().UTC()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return nil, err
	}
	return s.price(ctx, cart)
}

func (s *CartService) price(ctx context.Context, cart *entity.Cart) (*entity.PricedCart, error) {
	code := ""
	if cart.ShippingCountryID != 0 {
		country, err := s.geo.GetCountry(ctx, cart.ShippingCountryID)
		if err != nil && !errors.Is(err, entity.ErrNotFound) {
			return nil, err
		}
		if country != nil {
			code = country.Code
		}
	}
	return &entity.PricedCart{Cart: cart, Totals: s.pricer.Totals(cart.Items, cart.ShippingMethod, code)}, nil
}

func (s *CartService) Get(ctx context.Context, actor entity.Actor) (*entity.PricedCart, error) {
	cart, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	return s.price(ctx, cart)
}

// AddItem adds quantity units of a product, merging with an existing line.
func (s *CartService) AddItem(ctx context.Context, actor entity.Actor, productID string, quantity int) (*entity.PricedCart, error) {
	cart, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	product, err := s.purchasable(ctx, productID)
	if err != nil {
		return nil, err
	}

	idx := lineIndex(cart, productID)
	total := quantity
	if idx >= 0 {
		total += cart.Items[idx].Quantity
	}
	if err := checkStock(product, total); err != nil {
		return nil, err
	}

	if idx >= 0 {
		cart.Items[idx].Quantity = total
		cart.Items[idx].UnitPrice = product.Price
	} else {
		cart.Items = append(cart.Items, entity.CartItem{
			ProductID: product.ID,
			SKU:       product.SKU,
			Name:      product.Name,
			Quantity:  quantity,
			UnitPrice: product.Price,
		})
	}
	return s.save(ctx, cart)
}

func (s *CartService) UpdateItem(ctx context.Context, actor entity.Actor, productID string, quantity int) (*entity.PricedCart, error) {
	cart, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	idx := lineIndex(cart, productID)
	if idx < 0 {
		return nil, fmt.Errorf("cart line %s: %w", productID, entity.ErrNotFound)
	}
	product, err := s.purchasable(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := checkStock(product, quantity); err != nil {
		return nil, err
	}
	cart.Items[idx].Quantity = quantity
	cart.Items[idx].UnitPrice = product.Price
	return s.save(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, actor entity.Actor, productID string) (*entity.PricedCart, error) {
	cart, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	idx := lineIndex(cart, productID)
	if idx < 0 {
		return nil, fmt.Errorf("cart line %s: %w", productID, entity.ErrNotFound)
	}
	cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)
	return s.save(ctx, cart)
}

// SetShippingCountry stores the destination country and reprices the cart
// with that country's VAT rate.
func (s *CartService) SetShippingCountry(ctx context.Context, actor entity.Actor, countryID int64) (*entity.PricedCart, error) {
	country, err := s.geo.GetCountry(ctx, countryID)
	if err != nil {
		return nil, notFoundAsInvalid(err, "country_id", "The selected country is invalid.")
	}
	cart, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	cart.ShippingCountryID = country.ID
	priced, err := s.save(ctx, cart)
	if err != nil {
		return nil, err
	}
	metrics.RecordVATRecalculation(country.Code)
	slog.DebugContext(ctx, "vat recalculated", "cart_id", cart.ID, "country", country.Code, "rate", priced.Totals.VATRate.String())
	return priced, nil
}

// SetShipping selects courier delivery or a pickup point.
func (s *CartService) SetShipping(ctx context.Context, actor entity.Actor, method entity.ShippingMethod, pickupPointID string) (*entity.PricedCart, error) {
	switch method {
	case entity.ShippingCourier:
		pickupPointID = ""
	case entity.ShippingPickup:
		if _, ok := s.settings.PickupPoint(pickupPointID); !ok {
			return nil, entity.NewValidationError("pickup_point_id", "The selected pickup point is invalid.")
		}
	default:
		return nil, entity.NewValidationError("shipping_method", "The selected shipping method is invalid.")
	}

	cart, err := s.load(ctx, actor)
	if err != nil {
		return nil, err
	}
	cart.ShippingMethod = method
	cart.PickupPointID = pickupPointID
	return s.save(ctx, cart)
}

// Merge moves a guest session's cart lines into the customer's cart, capping
// merged quantities at the available stock. The guest cart is removed.
func (s *CartService) Merge(ctx context.Context, sessionID, customerID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.TouchSession(ctx, sessionID, s.now().UTC()); err != nil {
		return err
	}
	guest, err := s.carts.GetCart(ctx, entity.Actor{SessionID: sessionID})
	if err != nil {
		return err
	}
	if guest.Empty() {
		return nil
	}
	cart, err := s.carts.GetCart(ctx, entity.Actor{CustomerID: customerID})
	if err != nil {
		return err
	}

	for _, line := range guest.Items {
		product, err := s.products.GetProduct(ctx, line.ProductID)
		if errors.Is(err, entity.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if !product.Active || !product.Type.Purchasable() {
			continue
		}
		idx := lineIndex(cart, line.ProductID)
		qty := line.Quantity
		if idx >= 0 {
			qty += cart.Items[idx].Quantity
		}
		qty = min(qty, product.StockQuantity)
		if qty <= 0 {
			continue
		}
		if idx >= 0 {
			cart.Items[idx].Quantity = qty
			cart.Items[idx].UnitPrice = product.Price
		} else {
			cart.Items = append(cart.Items, entity.CartItem{
				ProductID: product.ID, SKU: product.SKU, Name: product.Name,
				Quantity: qty, UnitPrice: product.Price,
			})
		}
	}
	if cart.ShippingCountryID == 0 {
		cart.ShippingCountryID = guest.ShippingCountryID
	}

	cart.UpdatedAt = s.now().UTC()
	if err := s.carts.SaveCart(ctx, cart); err != nil {
		return err
	}
	slog.InfoContext(ctx, "guest cart merged", "customer_id", customerID, "lines", len(guest.Items))
	return s.carts.DeleteCart(ctx, guest.ID)
}

func (s *CartService) purchasable(ctx context.Context, productID string) (*entity.Product, error) {
	product, err := s.products.GetProduct(ctx, productID)
	if err != nil {
		return nil, notFoundAsInvalid(err, "product_id", "The selected product is invalid.")
	}
	if !product.Active {
		return nil, entity.NewValidationError("product_id", "The selected product is not available.")
	}
	if !product.Type.Purchasable() {
		return nil, entity.NewValidationError("product_id", "Choose a variant of this product.")
	}
	return product, nil
}

func checkStock(p *entity.Product, quantity int) error {
	if quantity > p.StockQuantity {
		return entity.NewValidationError("quantity", fmt.Sprintf("Only %d units of %s are in stock.", p.StockQuantity, p.SKU))
	}
	return nil
}

func lineIndex(cart *entity.Cart, productID string) int {
	for i, it := range cart.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
