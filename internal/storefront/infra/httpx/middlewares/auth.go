package middlewares

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/jcmexdev/ecommerce-storefront/internal/pkg/auth"
)

type claimsKey struct{}

// Authenticator verifies bearer tokens and guards routes by token kind and
// back-office role.
type Authenticator struct {
	tokens *auth.TokenIssuer
}

func NewAuthenticator(tokens *auth.TokenIssuer) *Authenticator {
	return &Authenticator{tokens: tokens}
}

// Identify attaches the claims of a valid bearer token to the context.
// Requests without a token pass through anonymously; a bad token is rejected.
func (a *Authenticator) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			reject(w, http.StatusUnauthorized, "unauthenticated", "Authorization header must be 'Bearer <token>'.")
			return
		}
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := a.tokens.Parse(raw)
		if err != nil {
			slog.DebugContext(r.Context(), "bearer token rejected", "error", err)
			reject(w, http.StatusUnauthorized, "unauthenticated", "Invalid or expired token.")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// RequireKind only lets through requests identified with a token of kind.
func RequireKind(kind auth.Kind) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r.Context())
			switch {
			case claims == nil:
				reject(w, http.StatusUnauthorized, "unauthenticated", "Authentication required.")
			case claims.Kind != kind:
				reject(w, http.StatusForbidden, "forbidden", "This token cannot access the resource.")
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// RequireRole restricts back-office routes to the given roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := Claims(r.Context())
			if claims == nil || claims.Kind != auth.KindAdmin || !slices.Contains(roles, claims.Role) {
				reject(w, http.StatusForbidden, "forbidden", "Your role cannot access the resource.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Claims returns the verified token claims, or nil for anonymous requests.
func Claims(ctx context.Context) *auth.Claims {
	c, _ := ctx.Value(claimsKey{}).(*auth.Claims)
	return c
}

// WithClaims stores claims in ctx the same way Identify does.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}

// bearerToken extracts the token; ok is false for a malformed header.
func bearerToken(r *http.Request) (token string, ok bool) {
	h := r.Header.Get("Authorization")
	if h == "" {
		return "", true
	}
	scheme, token, found := strings.Cut(h, " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
