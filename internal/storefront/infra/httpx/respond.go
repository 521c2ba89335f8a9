package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/validation"
	"github.com/jcmexdev/ecommerce-storefront/internal/storefront/core/domain/entity"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, ErrorResponse{
		Error:   code,
		Message: msg,
	})
}

func writeValidation(w http.ResponseWriter, fields map[string]string) {
	writeJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation_failed",
		Message: "The given data was invalid.",
		Errors:  fields,
	})
}

// writeServiceError maps domain errors to HTTP responses. Anything unknown is
// logged and reported as a 500 without details.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr   *entity.ValidationError
		fields validation.FieldErrors
	)
	switch {
	case errors.As(err, &verr):
		writeValidation(w, verr.Fields)
	case errors.As(err, &fields):
		writeValidation(w, fields)
	case errors.Is(err, entity.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, entity.ErrEmptyCart):
		writeError(w, http.StatusUnprocessableEntity, "empty_cart", "The cart is empty.")
	case errors.Is(err, entity.ErrInsufficientStock):
		writeError(w, http.StatusConflict, "insufficient_stock", err.Error())
	case errors.Is(err, entity.ErrCheckoutInProgress):
		writeError(w, http.StatusConflict, "checkout_in_progress", "An order with this idempotency key is being placed.")
	case errors.Is(err, entity.ErrInvalidTransition):
		writeError(w, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, entity.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, entity.ErrPaymentDeclined):
		writeError(w, http.StatusPaymentRequired, "payment_declined", err.Error())
	case errors.Is(err, entity.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid_credentials", "These credentials do not match our records.")
	case errors.Is(err, entity.ErrForbidden):
		writeError(w, http.StatusForbidden, "forbidden", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Something went wrong.")
	}
}
