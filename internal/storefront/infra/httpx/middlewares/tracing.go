package middlewares

import (
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors"
	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
)

// AttachTracingMetadata copies the chi request id and the idempotency key
// header into the request context, where services, the saga log and outgoing
// gRPC calls pick them up. The request id is echoed back to the caller.
func AttachTracingMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		idempotencyKey := r.Header.Get(constants.HeaderXIdempotencyKey)

		ctx := interceptors.WithRequestMetadata(r.Context(), requestID, idempotencyKey)
		if requestID != "" {
			w.Header().Set(constants.HeaderXRequestId, requestID)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
