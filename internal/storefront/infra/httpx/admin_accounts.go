package httpx

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
)

func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !h.bind(w, r, &req) {
		return
	}
	u, session, err := h.Auth.AdminLogin(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	resp := tokenResponse(session)
	user := mapUser(*u)
	resp.User = &user
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r.URL)
	from, to := q.date("from"), q.date("to")
	if err := q.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	d, err := h.Dashboard.Summary(r.Context(), deref(from), deref(to))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapDashboard(d))
}

func deref(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// --- customers ---

func (h *Handler) AdminListCustomers(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r.URL)
	filter := entity.CustomerFilter{Query: q.text("q"), Active: q.flag("active"), Page: q.page()}
	if err := q.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.Customers.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page, mapCustomer))
}

func (h *Handler) AdminGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.Customers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCustomer(*c))
}

func (h *Handler) AdminUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req CustomerUpdateRequest
	if !h.bind(w, r, &req) {
		return
	}
	c, err := h.Customers.Update(r.Context(), chi.URLParam(r, "id"), services.CustomerUpdate{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Active:    req.Active,
		Password:  req.Password,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCustomer(*c))
}

func (h *Handler) AdminDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.Customers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- back-office users ---

func (h *Handler) AdminListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(users, mapUser))
}

func (h *Handler) AdminGetUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Users.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(*u))
}

func (h *Handler) AdminCreateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !h.bind(w, r, &req) {
		return
	}
	u, err := h.Users.Create(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapUser(*u))
}

func (h *Handler) AdminUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req UserRequest
	if !h.bind(w, r, &req) {
		return
	}
	u, err := h.Users.Update(r.Context(), subject(r), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapUser(*u))
}

func (h *Handler) AdminDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.Users.Delete(r.Context(), subject(r), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
