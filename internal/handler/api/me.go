package api

import (
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

type meResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// MeHandler returns the currently authenticated user (spec.md §6.1
// GET /auth/me); WithSessionAuth has already resolved the caller.
func MeHandler(users port.UserRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := api_context.AuthUserIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "not authenticated", nil)
			return
		}

		user, err := users.GetByID(r.Context(), userID)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, meResponse{
			ID:       user.ID.String(),
			Username: user.Username,
			Role:     string(user.Role),
		})
	}
}
