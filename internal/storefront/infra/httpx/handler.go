package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/auth"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/config"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/validation"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx/middlewares"
)

// Services groups the application services the HTTP layer exposes.
type Services struct {
	Catalog   *services.CatalogService
	Geo       *services.GeoService
	Carts     *services.CartService
	Addresses *services.AddressService
	Checkout  *services.CheckoutService
	Orders    *services.OrderService
	Returns   *services.ReturnService
	Auth      *services.AuthService
	Customers *services.CustomerService
	Users     *services.UserService
	Dashboard *services.DashboardService
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the storefront and back-office JSON API.
type Handler struct {
	Services
	settings *config.Settings
	health   []Pinger
	validate *validation.Validator
}

func NewHandler(svc Services, settings *config.Settings, health ...Pinger) (*Handler, error) {
	v, err := validation.New(requestRules()...)
	if err != nil {
		return nil, err
	}
	return &Handler{Services: svc, settings: settings, health: health, validate: v}, nil
}

// Healthz pings every backing store.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	for _, p := range h.health {
		if err := p.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into dst, answering 400 on malformed input.
func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_json", err.Error())
		return false
	}
	return true
}

// valid runs the form-request rules on req, answering 422 on failure.
func (h *Handler) valid(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := h.validate.Struct(req); err != nil {
		writeServiceError(w, r, err)
		return false
	}
	return true
}

// bind decodes and validates in one go for requests that need no adjustment
// between the two.
func (h *Handler) bind(w http.ResponseWriter, r *http.Request, req any) bool {
	return decode(w, r, req) && h.valid(w, r, req)
}

// actor identifies the shopper: the signed-in customer, else the guest session.
func actor(r *http.Request) entity.Actor {
	a := entity.Actor{SessionID: middlewares.SessionID(r.Context())}
	if c := middlewares.Claims(r.Context()); c != nil && c.Kind == auth.KindCustomer {
		a.CustomerID = c.Subject
	}
	return a
}

// subject is the id of the authenticated principal.
func subject(r *http.Request) string {
	if c := middlewares.Claims(r.Context()); c != nil {
		return c.Subject
	}
	return ""
}
