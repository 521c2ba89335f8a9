package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
)

var productSorts = []string{"newest", "price_asc", "price_desc", "name"}

// ListProducts serves the storefront product listing.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r.URL)
	query := services.StorefrontQuery{
		CategorySlug: q.text("category"),
		Brand:        q.text("brand"),
		Query:        q.text("q"),
		MinPrice:     q.amount("min_price"),
		MaxPrice:     q.amount("max_price"),
		Sort:         q.oneOf("sort", productSorts...),
		Page:         q.page(),
	}
	if err := q.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	page, err := h.Catalog.ListProducts(r.Context(), query)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page, mapProduct))
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.ProductDetail(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(*p))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Catalog.ListCategories(r.Context(), true)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cats, mapCategory))
}

func (h *Handler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.Geo.Countries(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(countries, mapCountry))
}

func (h *Handler) ListStates(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	states, err := h.Geo.States(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(states, mapState))
}

func (h *Handler) ListCities(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	cities, err := h.Geo.Cities(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cities, mapCity))
}

func (h *Handler) ListPickupPoints(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, mapSlice(h.settings.PickupPoints, mapPickupPoint))
}

// pathID parses a numeric route parameter; anything else is a 404.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusNotFound, "not_found", entity.ErrNotFound.Error())
		return 0, false
	}
	return id, true
}
