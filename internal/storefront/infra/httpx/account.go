package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
)

// Register creates a customer and signs them in; the guest cart of the
// current session moves to the new account.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !h.bind(w, r, &req) {
		return
	}
	c, session, err := h.Auth.Register(r.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}, actor(r).SessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := tokenResponse(session)
	customer := mapCustomer(*c)
	resp.Customer = &customer
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.bind(w, r, &req) {
		return
	}
	c, session, err := h.Auth.Login(r.Context(), req.Email, req.Password, actor(r).SessionID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := tokenResponse(session)
	customer := mapCustomer(*c)
	resp.Customer = &customer
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Get(r.Context(), subject(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCustomer(*c))
}

// --- address book ---

func (h *Handler) ListAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := h.Addresses.List(r.Context(), subject(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(list, mapAddress))
}

func (h *Handler) CreateAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if !h.bind(w, r, &req) {
		return
	}
	a, err := h.Addresses.Create(r.Context(), subject(r), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapAddress(*a))
}

func (h *Handler) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	var req AddressRequest
	if !h.bind(w, r, &req) {
		return
	}
	a, err := h.Addresses.Update(r.Context(), subject(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapAddress(*a))
}

func (h *Handler) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	if err := h.Addresses.Delete(r.Context(), subject(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- order history ---

func (h *Handler) ListMyOrders(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r.URL)
	page := q.page()
	if err := q.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	orders, err := h.Orders.ListForCustomer(r.Context(), subject(r), page)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(orders, mapOrder))
}

func (h *Handler) GetMyOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.GetForCustomer(r.Context(), subject(r), chi.URLParam(r, "number"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(*o))
}

// RequestReturn files a return on one of the customer's orders. Refund
// terms are set by the back office.
func (h *Handler) RequestReturn(w http.ResponseWriter, r *http.Request) {
	var req CustomerReturnRequest
	if !h.bind(w, r, &req) {
		return
	}
	ret, err := h.Returns.RequestForCustomer(r.Context(), subject(r), chi.URLParam(r, "number"), services.ReturnInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapReturn(*ret))
}
