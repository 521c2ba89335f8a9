package httpx

import (
	"log/slog"
	"net/http"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
)

// SaveSessionAddresses stores a guest's shipping and billing addresses on the
// session. The saves are independent, so a billing failure keeps the
// shipping address and is reported with the saved part.
func (h *Handler) SaveSessionAddresses(w http.ResponseWriter, r *http.Request) {
	var req SessionAddressesRequest
	if !decode(w, r, &req) {
		return
	}
	if req.UseShippingAsBilling {
		req.Billing = nil
	}
	if !h.valid(w, r, &req) {
		return
	}
	// guests are contacted through the shipping address
	if req.Shipping.Email == "" {
		writeValidation(w, map[string]string{"shipping.email": "The shipping.email field is required."})
		return
	}

	in := req.Shipping.input()
	var billing *services.AddressInput
	if req.Billing != nil {
		b := req.Billing.input()
		billing = &b
	}

	sessionID := actor(r).SessionID
	ship, bill, err := h.Addresses.SaveSessionAddresses(r.Context(), sessionID, in, billing)
	if err != nil {
		if ship != nil {
			slog.WarnContext(r.Context(), "billing address not saved", "session_id", sessionID, "error", err)
		}
		writeServiceError(w, r, err)
		return
	}

	resp := SessionAddressesResponse{}
	shipResp := mapAddress(*ship)
	resp.Shipping = &shipResp
	if bill != nil {
		billResp := mapAddress(*bill)
		resp.Billing = &billResp
	}
	writeJSON(w, http.StatusCreated, resp)
}

// PlaceOrder submits the checkout. A resubmission with the same
// X-Idempotency-Key answers 200 with the original order and the
// Idempotent-Replayed header instead of creating a second order.
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	var req PlaceOrderRequest
	if !decode(w, r, &req) {
		return
	}
	req.IdempotencyKey = r.Header.Get(constants.HeaderXIdempotencyKey)
	if req.UseShippingAsBilling {
		req.BillingAddressID = ""
	}
	if !h.valid(w, r, &req) {
		return
	}

	res, err := h.Checkout.PlaceOrder(r.Context(), actor(r), services.PlaceOrderInput{
		IdempotencyKey:       req.IdempotencyKey,
		ShippingAddressID:    req.ShippingAddressID,
		BillingAddressID:     req.BillingAddressID,
		UseShippingAsBilling: req.UseShippingAsBilling,
		PaymentMethod:        entity.PaymentMethod(req.PaymentMethod),
		Notes:                req.Notes,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if res.Replayed {
		w.Header().Set(constants.HeaderReplayed, "true")
		writeJSON(w, http.StatusOK, mapOrder(*res.Order))
		return
	}
	writeJSON(w, http.StatusCreated, mapOrder(*res.Order))
}
