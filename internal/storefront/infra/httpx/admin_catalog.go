package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func (h *Handler) AdminListProducts(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r.URL)
	filter := entity.ProductFilter{
		CategoryID: q.text("category_id"),
		Brand:      q.text("brand"),
		Query:      q.text("q"),
		MinPrice:   q.amount("min_price"),
		MaxPrice:   q.amount("max_price"),
		Type: entity.ProductType(q.oneOf("type",
			string(entity.ProductSimple), string(entity.ProductConfigurable), string(entity.ProductVariant))),
		Active: q.flag("active"),
		Sort:   q.oneOf("sort", productSorts...),
		Page:   q.page(),
	}
	if low := q.flag("low_stock"); low != nil && *low {
		threshold := h.settings.LowStockThreshold
		filter.LowStock = &threshold
	}
	if err := q.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}

	page, err := h.Catalog.AdminListProducts(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page, mapProduct))
}

func (h *Handler) AdminGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.Catalog.AdminGetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(*p))
}

func (h *Handler) AdminCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.bind(w, r, &req) {
		return
	}
	p, err := h.Catalog.CreateProduct(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapProduct(*p))
}

func (h *Handler) AdminUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if !h.bind(w, r, &req) {
		return
	}
	p, err := h.Catalog.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapProduct(*p))
}

func (h *Handler) AdminDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdminListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.Catalog.ListCategories(r.Context(), false)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cats, mapCategory))
}

func (h *Handler) AdminGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.Catalog.GetCategory(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCategory(*c))
}

func (h *Handler) AdminCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.bind(w, r, &req) {
		return
	}
	c, err := h.Catalog.CreateCategory(r.Context(), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapCategory(*c))
}

func (h *Handler) AdminUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if !h.bind(w, r, &req) {
		return
	}
	c, err := h.Catalog.UpdateCategory(r.Context(), chi.URLParam(r, "id"), req.input())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapCategory(*c))
}

func (h *Handler) AdminDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.Catalog.DeleteCategory(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
