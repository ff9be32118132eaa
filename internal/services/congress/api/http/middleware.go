package http

import (
	"context"
	"net/http"
	"strings"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
	"github.com/statecraft/congress/internal/platform/httpx"
)

type contextKey string

const principalKey contextKey = "principal"

// requireCredential authenticates the bearer token and stores the caller's
// principal in the request context.
func (h *Handler) requireCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			httpx.WriteDomainError(w, apperrors.New(apperrors.CodeCredentialInvalid, "a bearer credential is required"))
			return
		}

		claims, err := h.verify(token)
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), principalKey, claims.Principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// callerPrincipal returns the authenticated principal from the context.
func callerPrincipal(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey).(string)
	return principal
}
