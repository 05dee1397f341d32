package api

import (
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
)

// CancelJobHandler serves POST /jobs/{id}/cancel (spec.md §6.1).
func CancelJobHandler(svc job.Canceler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.JobIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "job ID is required", nil)
			return
		}

		updated, err := svc.Cancel(r.Context(), id)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, updated)
		log.Printf("✅  Canceled job #%s", id)
	}
}
