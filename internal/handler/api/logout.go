package api

import (
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/auth"
)

// LogoutHandler revokes the session named by the bearer token that
// WithSessionAuth already validated (spec.md §6.1 POST /auth/logout).
func LogoutHandler(svc *auth.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID, ok := api_context.SessionIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "no active session", nil)
			return
		}

		if err := svc.Logout(r.Context(), sessionID); err != nil {
			WriteJobError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		log.Printf("✅  Session #%s revoked", sessionID)
	}
}
