package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/interceptors/constants"
)

// GuestSession resolves the shopper's X-Session-ID. A missing or malformed id
// is replaced by a fresh one; the id in use is always echoed in the response
// so the client can keep sending it.
func GuestSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(constants.HeaderXSessionID)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(constants.HeaderXSessionID, id)

		ctx := context.WithValue(r.Context(), constants.ContextKeySessionID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionID returns the guest session id stored by GuestSession.
func SessionID(ctx context.Context) string {
	id, _ := ctx.Value(constants.ContextKeySessionID).(string)
	return id
}
