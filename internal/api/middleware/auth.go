package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/cloo-solutions/hirelens/internal/api"
)

type contextKey string

const (
	OwnerIDKey  contextKey = "owner_id"
	ownerRefKey contextKey = "owner_ref"
)

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

// APIKeyAuth resolves the bearer token to an owner ID and stores it on the
// request context.
func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			ownerID, err := validator.ValidateAPIKey(r.Context(), strings.TrimSpace(token))
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			if ref, ok := r.Context().Value(ownerRefKey).(*string); ok {
				*ref = ownerID
			}
			ctx := context.WithValue(r.Context(), OwnerIDKey, ownerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetOwnerID(ctx context.Context) string {
	ownerID, _ := ctx.Value(OwnerIDKey).(string)
	return ownerID
}

// ensureOwnerRef lets middleware running outside APIKeyAuth read the owner
// once the handler chain returns.
func ensureOwnerRef(r *http.Request) (*http.Request, *string) {
	if ref, ok := r.Context().Value(ownerRefKey).(*string); ok {
		return r, ref
	}
	ref := new(string)
	return r.WithContext(context.WithValue(r.Context(), ownerRefKey, ref)), ref
}
