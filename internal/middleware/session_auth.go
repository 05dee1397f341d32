package middleware

import (
	"net/http"
	"strings"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/auth"
	"github.com/vpikus/vdm-ai-dubbing/internal/handler/api"
)

// WithSessionAuth validates the Control API's bearer session token and
// populates the request context with the authenticated user's id and role
// (spec.md §3 Session, §6.1). Mutating routes require this; GET routes may
// or may not, per route wiring in cmd/api.
func WithSessionAuth(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.WriteError(w, http.StatusUnauthorized, "missing bearer token", nil)
				return
			}
			raw := strings.TrimPrefix(authHeader, "Bearer ")

			session, user, err := svc.Authenticate(r.Context(), raw)
			if err != nil {
				api.WriteError(w, http.StatusUnauthorized, "unauthorized", err)
				return
			}

			ctx := api_context.WithAuthUserID(r.Context(), user.ID)
			ctx = api_context.WithAuthRole(ctx, string(user.Role))
			ctx = api_context.WithSessionID(ctx, session.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
