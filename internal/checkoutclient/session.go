package checkoutclient

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
)

// Session is one checkout attempt. Its idempotency key is generated once and
// sent with every submission, so resubmitting after a timeout or a failure
// can never create a second order.
type Session struct {
	client *Client
	key    string

	mu                   sync.Mutex
	countryID            int64
	totals               Totals
	shipping             Address
	billing              Address
	useShippingAsBilling bool
	paymentMethod        string
	notes                string

	// ids of address book entries saved by an earlier Submit; cleared when
	// the form they came from changes.
	shippingID string
	billingID  string
}

// NewSession starts a checkout from the current cart.
func (c *Client) NewSession(ctx context.Context) (*Session, error) {
	cart, err := c.Cart(ctx)
	if err != nil {
		return nil, err
	}
	return &Session{
		client:        c,
		key:           uuid.NewString(),
		countryID:     cart.ShippingCountryID,
		totals:        cart.Totals,
		paymentMethod: "card",
	}, nil
}

func (s *Session) IdempotencyKey() string { return s.key }

// Totals are the last totals the server confirmed.
func (s *Session) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totals
}

// ChangeShippingCountry asks the server to reprice the cart for a new
// shipping country. Picking the current country sends nothing. A failed
// recalculation is not an error for the shopper: the previous totals stay
// in place and the submission is priced by the server anyway.
func (s *Session) ChangeShippingCountry(ctx context.Context, countryID int64) Totals {
	s.mu.Lock()
	s.shipping.CountryID = countryID
	if countryID == s.countryID {
		t := s.totals
		s.mu.Unlock()
		return t
	}
	s.shippingID = ""
	s.mu.Unlock()

	var cart Cart
	if err := s.client.do(ctx, http.MethodPost, "/api/cart/vat", map[string]int64{"country_id": countryID}, &cart); err != nil {
		slog.DebugContext(ctx, "vat recalculation failed, keeping totals", "country_id", countryID, "error", err)
		return s.Totals()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.countryID = countryID
	s.totals = cart.Totals
	return s.totals
}

// States lists the states of a country for the address form.
func (s *Session) States(ctx context.Context, countryID int64) ([]Place, error) {
	var out []Place
	return out, s.client.do(ctx, http.MethodGet, "/api/geo/countries/"+strconv.FormatInt(countryID, 10)+"/states", nil, &out)
}

// Cities lists the cities of a state for the address form.
func (s *Session) Cities(ctx context.Context, stateID int64) ([]Place, error) {
	var out []Place
	return out, s.client.do(ctx, http.MethodGet, "/api/geo/states/"+strconv.FormatInt(stateID, 10)+"/cities", nil, &out)
}

func (s *Session) SetShippingAddress(a Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Type = "shipping"
	s.shipping = a
	s.shippingID = ""
}

func (s *Session) SetBillingAddress(a Address) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.Type = "billing"
	s.billing = a
	s.billingID = ""
}

// SetUseShippingAsBilling hides the billing form; its contents are neither
// sent nor validated while the flag is on.
func (s *Session) SetUseShippingAsBilling(on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.useShippingAsBilling = on
}

func (s *Session) SetPaymentMethod(method string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paymentMethod = method
}

func (s *Session) SetNotes(notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = notes
}

// SelectPickup switches delivery to a pickup point. The choice is a
// convenience save: a failure is logged and the checkout carries on with the
// previous delivery option.
func (s *Session) SelectPickup(ctx context.Context, pointID string) {
	var cart Cart
	body := map[string]string{"shipping_method": "pickup", "pickup_point_id": pointID}
	if err := s.client.do(ctx, http.MethodPost, "/api/cart/shipping", body, &cart); err != nil {
		slog.DebugContext(ctx, "pickup selection not saved", "pickup_point_id", pointID, "error", err)
		return
	}
	s.mu.Lock()
	s.totals = cart.Totals
	s.mu.Unlock()
}

// Submit places the order. A signed-in customer's addresses are saved to the
// address book first, shipping and billing in parallel; a guest's go on the
// session. A failed address save is not undone: the saved one is reused by
// the next Submit. On any error the session stays usable and a later Submit
// reuses the same idempotency key.
func (s *Session) Submit(ctx context.Context) (*Order, error) {
	body := map[string]any{}
	s.mu.Lock()
	useShipping := s.useShippingAsBilling
	body["use_shipping_as_billing"] = useShipping
	body["payment_method"] = s.paymentMethod
	if s.notes != "" {
		body["notes"] = s.notes
	}
	s.mu.Unlock()

	if s.client.Authenticated() {
		shippingID, billingID, err := s.saveBookAddresses(ctx, useShipping)
		if err != nil {
			return nil, err
		}
		body["shipping_address_id"] = shippingID
		if !useShipping {
			body["billing_address_id"] = billingID
		}
	} else if err := s.saveSessionAddresses(ctx, useShipping); err != nil {
		return nil, err
	}

	var order Order
	header, err := s.client.send(ctx, call{
		method: http.MethodPost,
		path:   "/api/checkout/orders",
		body:   body,
		out:    &order,
		header: map[string]string{constants.HeaderXIdempotencyKey: s.key},
	})
	if err != nil {
		return nil, err
	}
	order.Replayed = header.Get(constants.HeaderReplayed) == "true"

	s.mu.Lock()
	s.totals = order.Totals
	s.mu.Unlock()
	return &order, nil
}

func (s *Session) saveSessionAddresses(ctx context.Context, useShipping bool) error {
	s.mu.Lock()
	body := map[string]any{"shipping": s.shipping, "use_shipping_as_billing": useShipping}
	if !useShipping {
		body["billing"] = s.billing
	}
	s.mu.Unlock()
	return s.client.do(ctx, http.MethodPost, "/api/checkout/session-addresses", body, nil)
}

// saveBookAddresses saves the addresses not yet saved and waits for every
// save to finish before reporting the first failure.
func (s *Session) saveBookAddresses(ctx context.Context, useShipping bool) (shippingID, billingID string, err error) {
	s.mu.Lock()
	shipping, billing := s.shipping, s.billing
	shippingID, billingID = s.shippingID, s.billingID
	s.mu.Unlock()

	var g errgroup.Group
	if shippingID == "" {
		g.Go(func() error {
			saved, err := s.saveAddress(ctx, shipping)
			if err != nil {
				return err
			}
			shippingID = saved.ID
			s.mu.Lock()
			s.shippingID = saved.ID
			s.mu.Unlock()
			return nil
		})
	}
	if !useShipping && billingID == "" {
		g.Go(func() error {
			saved, err := s.saveAddress(ctx, billing)
			if err != nil {
				return err
			}
			billingID = saved.ID
			s.mu.Lock()
			s.billingID = saved.ID
			s.mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", "", err
	}
	return shippingID, billingID, nil
}

func (s *Session) saveAddress(ctx context.Context, a Address) (*Address, error) {
	var saved Address
	if err := s.client.do(ctx, http.MethodPost, "/api/account/addresses", a, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}
