package api

import (
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
)

// RetryJobHandler serves POST /jobs/{id}/retry (spec.md §6.1).
func RetryJobHandler(svc job.Retrier) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.JobIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "job ID is required", nil)
			return
		}

		updated, err := svc.Retry(r.Context(), id)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, updated)
		log.Printf("✅  Retried job #%s", id)
	}
}
