package job

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Creator is the Control API's dependency for POST /jobs.
type Creator interface {
	CreateJob(ctx context.Context, in CreateJobInput) (*model.Job, error)
}

// CreateJobInput mirrors the POST /jobs request body (spec.md §6.1).
type CreateJobInput struct {
	SourceURL         string
	RequestedDubbing  bool
	TargetLang        string
	UseLivelyVoice    bool
	FormatPreset      model.FormatPreset
	OutputContainer   model.OutputContainer
	DownloadSubtitles bool
	Priority          *int
	Cookies           string
	Proxy             string
	RateLimit         string
}

// CreateJob validates the request, checks disk-space backpressure, atomically
// writes job+media+started event, and enqueues the initial download payload
// (spec.md §4.D createJob).
func (s *Service) CreateJob(ctx context.Context, in CreateJobInput) (*model.Job, error) {
	if err := validateSourceURL(in.SourceURL); err != nil {
		return nil, err
	}

	freeGb, err := s.fs.FreeSpaceGB()
	if err != nil {
		return nil, fmt.Errorf("check free disk space: %w", err)
	}
	if freeGb < s.defaults.MinFreeSpaceGb {
		return nil, joberr.New(joberr.KindInsufficientSpace, fmt.Sprintf("only %.1fGB free, need at least %.1fGB", freeGb, s.defaults.MinFreeSpaceGb)).
			WithDetails(map[string]any{"freeGb": freeGb, "minFreeSpaceGb": s.defaults.MinFreeSpaceGb})
	}

	priority := s.defaults.DownloadPriority
	if in.Priority != nil {
		priority = clampPriority(*in.Priority)
	}

	job := &model.Job{
		ID:                uuid.NewUUID(),
		SourceURL:         in.SourceURL,
		Status:            model.StatusQueued,
		Priority:          priority,
		RequestedDubbing:  in.RequestedDubbing,
		TargetLang:        orDefault(in.TargetLang, s.defaults.TargetLang),
		UseLivelyVoice:    in.UseLivelyVoice,
		FormatPreset:      orDefaultPreset(in.FormatPreset, s.defaults.FormatPreset),
		OutputContainer:   orDefaultContainer(in.OutputContainer, s.defaults.OutputContainer),
		DownloadSubtitles: in.DownloadSubtitles,
	}

	if err := s.jobs.CreateWithMedia(ctx, job); err != nil {
		return nil, err
	}

	var cookiesPath string
	if in.Cookies != "" {
		cookiesPath, err = s.fs.WriteCookiesFile(ctx, job.ID, in.Cookies)
		if err != nil {
			log.Printf("failed writing cookies file for job #%s: %v", job.ID, err)
		}
	}

	payload := port.DownloadPayload{
		JobID:             job.ID,
		SourceURL:         job.SourceURL,
		FormatPreset:      job.FormatPreset,
		OutputContainer:   job.OutputContainer,
		RequestedDubbing:  job.RequestedDubbing,
		TargetLang:        job.TargetLang,
		DownloadSubtitles: job.DownloadSubtitles,
		TempDir:           s.fs.TempDir(job.ID),
		FinalPath:         s.fs.FinalPath(job.ID, nil, job.OutputContainer),
		CookiesFile:       cookiesPath,
		Proxy:             in.Proxy,
		RateLimit:         in.RateLimit,
	}
	if err := s.queue.EnqueueDownload(ctx, payload, port.EnqueueOpts{Priority: job.Priority}); err != nil {
		return nil, fmt.Errorf("enqueue download for job #%s: %w", job.ID, err)
	}

	return job, nil
}

func validateSourceURL(raw string) error {
	if raw == "" {
		return joberr.New(joberr.KindValidation, "url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return joberr.New(joberr.KindValidation, fmt.Sprintf("%q is not a valid URL", raw))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return joberr.New(joberr.KindValidation, fmt.Sprintf("unsupported URL scheme %q", u.Scheme))
	}
	return nil
}

func clampPriority(p int) int {
	if p < 0 {
		return 0
	}
	if p > 10 {
		return 10
	}
	return p
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func orDefaultPreset(v, def model.FormatPreset) model.FormatPreset {
	if v == "" {
		return def
	}
	return v
}

func orDefaultContainer(v, def model.OutputContainer) model.OutputContainer {
	if v == "" {
		return def
	}
	return v
}
