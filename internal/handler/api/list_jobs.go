package api

import (
	"net/http"
	"strconv"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

type listJobsResponse struct {
	Jobs   []*model.Job `json:"jobs"`
	Total  int          `json:"total"`
	Limit  int          `json:"limit"`
	Offset int          `json:"offset"`
}

// ListJobsHandler serves GET /jobs?status=&search=&limit=&offset= (spec.md
// §6.1). Defaults mirror the teacher's pagination convention.
func ListJobsHandler(jobs port.JobRepository) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		limit := parseIntDefault(q.Get("limit"), 50)
		offset := parseIntDefault(q.Get("offset"), 0)

		filter := port.ListJobsFilter{
			Status: model.Status(q.Get("status")),
			Search: q.Get("search"),
			Limit:  limit,
			Offset: offset,
		}

		list, total, err := jobs.List(r.Context(), filter)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, listJobsResponse{
			Jobs:   list,
			Total:  total,
			Limit:  limit,
			Offset: offset,
		})
	}
}

func parseIntDefault(raw string, def int) int {
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
