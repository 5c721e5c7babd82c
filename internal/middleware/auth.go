package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go-todo-api/internal/model"
)

type authenticator interface {
	Authenticate(ctx context.Context, raw string) (model.Identity, error)
}

type contextKey string

const identityContextKey contextKey = "auth_identity"

// AuthMiddleware is the single authentication enforcement point. It reads
// the raw bearer token from the configured header, resolves it through the
// authenticator, and attaches the identity to the request context. No
// downstream handler performs its own auth check.
type AuthMiddleware struct {
	auth   authenticator
	header string
}

func NewAuthMiddleware(auth authenticator, header string) *AuthMiddleware {
	return &AuthMiddleware{auth: auth, header: header}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get(m.header))
		if raw == "" {
			// Missing header and invalid token are deliberately the same
			// outcome: 401 with an empty body.
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		identity, err := m.auth.Authenticate(r.Context(), raw)
		if errors.Is(err, model.ErrStoreUnavailable) {
			writeServerError(w)
			return
		}
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), identityContextKey, identity)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	return identity, ok
}

func writeServerError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error: &model.APIError{
			Code:    "INTERNAL_ERROR",
			Message: "Unexpected server error",
		},
	})
}
