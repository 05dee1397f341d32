package api

import (
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
)

type resumeJobResponse struct {
	*model.Job
	ResumedFrom string `json:"resumedFrom"`
}

// ResumeJobHandler serves POST /jobs/{id}/resume. On success it reports
// which stage the Resume Planner restarted at; on failure WriteJobError
// renders joberr.KindCannotResume's diagnostic details as-is (spec.md §6.1).
func ResumeJobHandler(svc job.Resumer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.JobIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "job ID is required", nil)
			return
		}

		result, err := svc.Resume(r.Context(), id)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, resumeJobResponse{Job: result.Job, ResumedFrom: result.ResumedFrom})
		log.Printf("✅  Resumed job #%s from %s", id, result.ResumedFrom)
	}
}
