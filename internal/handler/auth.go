package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/pong-stats-service/internal/domain"
)

type contextKey string

const principalKey contextKey = "principal"

// TokenVerifier authenticates bearer tokens, implemented by identity.Client.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*domain.Principal, error)
}

// PrincipalFromContext returns the authenticated caller placed by requireAuth.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

// requireAuth rejects requests without a valid bearer token. It runs before
// any body decoding so a missing token is always a 401, never a 400.
func (h *Handler) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}

		principal, err := h.verifier.VerifyToken(r.Context(), token)
		if err != nil {
			h.writeError(w, http.StatusUnauthorized, domain.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, *principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
