package api

import (
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
)

// DeleteJobHandler serves DELETE /jobs/{id} (spec.md §6.1).
func DeleteJobHandler(svc job.Deleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.JobIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "job ID is required", nil)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			WriteJobError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
		log.Printf("✅  Deleted job #%s", id)
	}
}
