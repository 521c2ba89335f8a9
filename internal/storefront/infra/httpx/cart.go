package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.Get(r.Context(), actor(r))
	h.respondCart(w, r, cart, err)
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartItemRequest
	if !h.bind(w, r, &req) {
		return
	}
	cart, err := h.Carts.AddItem(r.Context(), actor(r), req.ProductID, req.Quantity)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req CartQuantityRequest
	if !h.bind(w, r, &req) {
		return
	}
	cart, err := h.Carts.UpdateItem(r.Context(), actor(r), chi.URLParam(r, "productID"), req.Quantity)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	cart, err := h.Carts.RemoveItem(r.Context(), actor(r), chi.URLParam(r, "productID"))
	h.respondCart(w, r, cart, err)
}

// RecalculateVAT stores the shipping country and returns the repriced cart.
// The checkout page calls it whenever the shipping country changes.
func (h *Handler) RecalculateVAT(w http.ResponseWriter, r *http.Request) {
	var req CartVATRequest
	if !h.bind(w, r, &req) {
		return
	}
	cart, err := h.Carts.SetShippingCountry(r.Context(), actor(r), req.CountryID)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) SetCartShipping(w http.ResponseWriter, r *http.Request) {
	var req CartShippingRequest
	if !h.bind(w, r, &req) {
		return
	}
	cart, err := h.Carts.SetShipping(r.Context(), actor(r), entity.ShippingMethod(req.ShippingMethod), req.PickupPointID)
	h.respondCart(w, r, cart, err)
}

func (h *Handler) respondCart(w http.ResponseWriter, r *http.Request, cart *entity.PricedCart, err error) {
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCart(cart))
}
