package api

import (
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

const recentEventsLimit = 20

type getJobResponse struct {
	*model.Job
	Media        *model.Media   `json:"media"`
	RecentEvents []*model.Event `json:"recentEvents"`
}

// GetJobHandler serves GET /jobs/{id}: the job row, its media row, and its
// most recent audit-log events (spec.md §6.1).
func GetJobHandler(jobs port.JobRepository, media port.MediaRepository, events port.EventRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.JobIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "job ID is required", nil)
			return
		}

		job, err := jobs.GetByID(r.Context(), id)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		m, err := media.GetByJobID(r.Context(), id)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		recent, err := events.ListRecentByJob(r.Context(), id, recentEventsLimit)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, getJobResponse{Job: job, Media: m, RecentEvents: recent})
		log.Printf("✅  Returned details for job #%s", id)
	}
}
