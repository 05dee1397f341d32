package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
	"github.com/vpikus/vdm-ai-dubbing/internal/validation"
)

// CreateJobRequest mirrors POST /jobs' request body (spec.md §6.1).
type CreateJobRequest struct {
	URL               string               `json:"url" validate:"required,url"`
	RequestedDubbing  bool                 `json:"requestedDubbing"`
	TargetLang        string               `json:"targetLang" validate:"omitempty,len=2"`
	UseLivelyVoice    bool                 `json:"useLivelyVoice"`
	FormatPreset      model.FormatPreset   `json:"formatPreset" validate:"omitempty,oneof=bestvideo+bestaudio best bestaudio worst"`
	OutputContainer   model.OutputContainer `json:"outputContainer" validate:"omitempty,oneof=mkv mp4 webm"`
	DownloadSubtitles bool                 `json:"downloadSubtitles"`
	Priority          *int                 `json:"priority" validate:"omitempty,min=0,max=10"`
	Cookies           string               `json:"cookies"`
	Proxy             string               `json:"proxy"`
	RateLimit         string               `json:"rateLimit"`
}

// CreateJobHandler enqueues a new download/dub/mux pipeline job
// (spec.md §6.1 POST /jobs).
func CreateJobHandler(svc job.Creator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateJobRequest
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

		in := job.CreateJobInput{
			SourceURL:         req.URL,
			RequestedDubbing:  req.RequestedDubbing,
			TargetLang:        req.TargetLang,
			UseLivelyVoice:    req.UseLivelyVoice,
			FormatPreset:      req.FormatPreset,
			OutputContainer:   req.OutputContainer,
			DownloadSubtitles: req.DownloadSubtitles,
			Priority:          req.Priority,
			Cookies:           req.Cookies,
			Proxy:             req.Proxy,
			RateLimit:         req.RateLimit,
		}

		created, err := svc.CreateJob(r.Context(), in)
		if err != nil {
			WriteJobError(w, err)
			return
		}

		RespondJSON(w, http.StatusCreated, created)
		log.Printf("✅  Created job #%s for %s", created.ID, created.SourceURL)
	}
}
