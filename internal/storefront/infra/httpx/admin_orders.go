package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/services"
)

func orderStatusValues() []string {
	out := make([]string, len(entity.OrderStatuses))
	for i, s := range entity.OrderStatuses {
		out[i] = string(s)
	}
	return out
}

func paymentStatusValues() []string {
	out := make([]string, len(entity.PaymentStatuses))
	for i, s := range entity.PaymentStatuses {
		out[i] = string(s)
	}
	return out
}

func (h *Handler) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r.URL)
	filter := entity.OrderFilter{
		CustomerID:    q.text("customer_id"),
		Status:        entity.OrderStatus(q.oneOf("status", orderStatusValues()...)),
		PaymentStatus: entity.PaymentStatus(q.oneOf("payment_status", paymentStatusValues()...)),
		Query:         q.text("q"),
		From:          q.date("from"),
		To:            q.date("to"),
		Page:          q.page(),
	}
	if err := q.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.Orders.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page, mapOrder))
}

func (h *Handler) AdminGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.Orders.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	trail, err := h.Orders.SagaTrail(r.Context(), o)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, AdminOrderResponse{
		OrderResponse: mapOrder(*o),
		Saga:          mapSlice(trail, mapSagaStep),
	})
}

func (h *Handler) AdminUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req OrderStatusRequest
	if !h.bind(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdateStatus(r.Context(), chi.URLParam(r, "id"), entity.OrderStatus(req.Status))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(*o))
}

func (h *Handler) AdminUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req PaymentStatusRequest
	if !h.bind(w, r, &req) {
		return
	}
	o, err := h.Orders.UpdatePaymentStatus(r.Context(), chi.URLParam(r, "id"), entity.PaymentStatus(req.PaymentStatus))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapOrder(*o))
}

// AdminBatchUpdateOrders applies one status or payment status to many orders
// and reports per-order failures.
func (h *Handler) AdminBatchUpdateOrders(w http.ResponseWriter, r *http.Request) {
	var req OrderBatchUpdateRequest
	if !h.bind(w, r, &req) {
		return
	}
	res, err := h.Orders.BatchUpdate(r.Context(), req.IDs, entity.BatchField(req.Type), req.Value)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapBatch(res))
}

// --- returns ---

func (h *Handler) AdminListReturns(w http.ResponseWriter, r *http.Request) {
	q := newQueryReader(r.URL)
	filter := entity.ReturnFilter{
		OrderID: q.text("order_id"),
		Status: entity.ReturnStatus(q.oneOf("status",
			string(entity.ReturnRequested), string(entity.ReturnApproved), string(entity.ReturnRejected), string(entity.ReturnRefunded))),
		Page: q.page(),
	}
	if err := q.err(); err != nil {
		writeServiceError(w, r, err)
		return
	}
	page, err := h.Returns.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapPage(page, mapReturn))
}

func (h *Handler) AdminGetReturn(w http.ResponseWriter, r *http.Request) {
	ret, err := h.Returns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReturn(*ret))
}

func (h *Handler) AdminCreateReturn(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequest
	if !h.bind(w, r, &req) {
		return
	}
	ret, err := h.Returns.Create(r.Context(), services.ReturnInput{
		OrderID:      req.OrderID,
		ProductID:    req.ProductID,
		Quantity:     req.Quantity,
		Reason:       req.Reason,
		RefundAmount: req.RefundAmount,
		Restock:      req.Restock,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, mapReturn(*ret))
}

func (h *Handler) AdminUpdateReturn(w http.ResponseWriter, r *http.Request) {
	var req ReturnUpdateRequest
	if !h.bind(w, r, &req) {
		return
	}
	ret, err := h.Returns.Update(r.Context(), chi.URLParam(r, "id"), services.ReturnUpdate{
		Status:       entity.ReturnStatus(req.Status),
		RefundAmount: req.RefundAmount,
		Restock:      req.Restock,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, mapReturn(*ret))
}
