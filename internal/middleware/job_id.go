package middleware

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/handler/api"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// WithJobID extracts and validates the {id} URL param for /jobs/{id}/...
// routes, stashing it in context for the handler.
func WithJobID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := chi.URLParam(r, "id")
			if id == "" {
				api.WriteError(w, http.StatusBadRequest, "job ID is required", nil)
				return
			}
			jobID, err := uuid.Parse(id)
			if err != nil {
				api.WriteError(w, http.StatusBadRequest, fmt.Sprintf("job ID %q is not a valid UUID", id), nil)
				return
			}

			ctx := api_context.WithJobID(r.Context(), jobID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
