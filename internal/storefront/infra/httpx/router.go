package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/auth"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/metrics"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/infra/httpx/middlewares"
)

// NewRouter mounts the storefront API under /api and the back-office under
// /api/admin. limiter throttles checkout submission and the login endpoints;
// nil disables throttling.
func NewRouter(handler *Handler, authn *middlewares.Authenticator, limiter *middlewares.RateLimiter) http.Handler {
	throttle := func(next http.Handler) http.Handler { return next }
	if limiter != nil {
		throttle = limiter.Handler
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middlewares.AttachTracingMetadata)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.InstrumentHandler)

	r.Get("/healthz", handler.Healthz)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(middlewares.GuestSession)
		r.Use(authn.Identify)

		r.Get("/products", handler.ListProducts)
		r.Get("/products/{slug}", handler.GetProduct)
		r.Get("/categories", handler.ListCategories)

		r.Get("/geo/countries", handler.ListCountries)
		r.Get("/geo/countries/{id}/states", handler.ListStates)
		r.Get("/geo/states/{id}/cities", handler.ListCities)
		r.Get("/pickup-points", handler.ListPickupPoints)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", handler.GetCart)
			r.Post("/items", handler.AddCartItem)
			r.Patch("/items/{productID}", handler.UpdateCartItem)
			r.Delete("/items/{productID}", handler.RemoveCartItem)
			r.Post("/vat", handler.RecalculateVAT)
			r.Post("/shipping", handler.SetCartShipping)
		})

		r.Post("/checkout/session-addresses", handler.SaveSessionAddresses)
		r.With(throttle).Post("/checkout/orders", handler.PlaceOrder)

		r.With(throttle).Post("/auth/register", handler.Register)
		r.With(throttle).Post("/auth/login", handler.Login)

		r.Route("/account", func(r chi.Router) {
			r.Use(middlewares.RequireKind(auth.KindCustomer))
			r.Get("/", handler.Profile)
			r.Get("/addresses", handler.ListAddresses)
			r.Post("/addresses", handler.CreateAddress)
			r.Put("/addresses/{id}", handler.UpdateAddress)
			r.Delete("/addresses/{id}", handler.DeleteAddress)
			r.Get("/orders", handler.ListMyOrders)
			r.Get("/orders/{number}", handler.GetMyOrder)
			r.Post("/orders/{number}/returns", handler.RequestReturn)
		})

		r.Route("/admin", func(r chi.Router) {
			r.With(throttle).Post("/auth/login", handler.AdminLogin)
			r.Group(func(r chi.Router) {
				r.Use(middlewares.RequireKind(auth.KindAdmin))

				r.Get("/dashboard", handler.AdminDashboard)

				r.Get("/products", handler.AdminListProducts)
				r.Post("/products", handler.AdminCreateProduct)
				r.Get("/products/{id}", handler.AdminGetProduct)
				r.Put("/products/{id}", handler.AdminUpdateProduct)
				r.Delete("/products/{id}", handler.AdminDeleteProduct)

				r.Get("/categories", handler.AdminListCategories)
				r.Post("/categories", handler.AdminCreateCategory)
				r.Get("/categories/{id}", handler.AdminGetCategory)
				r.Put("/categories/{id}", handler.AdminUpdateCategory)
				r.Delete("/categories/{id}", handler.AdminDeleteCategory)

				r.Get("/orders", handler.AdminListOrders)
				r.Post("/orders/batch", handler.AdminBatchUpdateOrders)
				r.Get("/orders/{id}", handler.AdminGetOrder)
				r.Patch("/orders/{id}/status", handler.AdminUpdateOrderStatus)
				r.Patch("/orders/{id}/payment-status", handler.AdminUpdatePaymentStatus)

				r.Get("/returns", handler.AdminListReturns)
				r.Post("/returns", handler.AdminCreateReturn)
				r.Get("/returns/{id}", handler.AdminGetReturn)
				r.Patch("/returns/{id}", handler.AdminUpdateReturn)

				r.Get("/customers", handler.AdminListCustomers)
				r.Get("/customers/{id}", handler.AdminGetCustomer)
				r.Put("/customers/{id}", handler.AdminUpdateCustomer)
				r.Delete("/customers/{id}", handler.AdminDeleteCustomer)

				r.Route("/users", func(r chi.Router) {
					r.Use(middlewares.RequireRole(string(entity.RoleAdmin)))
					r.Get("/", handler.AdminListUsers)
					r.Post("/", handler.AdminCreateUser)
					r.Get("/{id}", handler.AdminGetUser)
					r.Put("/{id}", handler.AdminUpdateUser)
					r.Delete("/{id}", handler.AdminDeleteUser)
				})
			})
		})
	})
	return r
}
