package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
	"github.com/vpikus/vdm-ai-dubbing/internal/validation"
)

// ControlJobRequest mirrors POST /jobs/{id}/control's body (spec.md §6.1).
type ControlJobRequest struct {
	Action   string `json:"action" validate:"required,oneof=cancel prioritize pause resume"`
	Priority *int   `json:"priority" validate:"omitempty,min=0,max=10"`
}

// ControlJobHandler serves POST /jobs/{id}/control, dispatching the
// requested action through job.Service.Control (spec.md §6.1).
func ControlJobHandler(svc job.Controller) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := api_context.JobIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "job ID is required", nil)
			return
		}

		var req ControlJobRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request payload", err)
			return
		}

		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "failed to encode validation errors", err)
				return
			}
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			log.Printf("❌  Validation failed: %s", errsJSON)
			return
		}

		updated, err := svc.Control(r.Context(), job.ControlInput{
			JobID:    id,
			Action:   job.Action(req.Action),
			Priority: req.Priority,
		})
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusOK, updated)
		log.Printf("✅  Applied control action %q to job #%s", req.Action, id)
	}
}
