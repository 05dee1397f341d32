package job

import (
	"context"
	"fmt"
	"os"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// ResumeResult carries the decision the Resume Planner made.
type ResumeResult struct {
	Job         *model.Job
	ResumedFrom string // "dubbing" | "muxing"
}

// Resumer is the Control API's dependency for POST /jobs/{id}/resume.
type Resumer interface {
	Resume(ctx context.Context, id uuid.UUID) (*ResumeResult, error)
}

// Resume implements the Resume Planner (spec.md §4.D): decide which stage a
// failed job can restart at, from its event history and the filesystem
// state of its recorded artifacts.
func (s *Service) Resume(ctx context.Context, id uuid.UUID) (*ResumeResult, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != model.StatusFailed {
		return nil, joberr.New(joberr.KindCannotResume, fmt.Sprintf("job #%s is in status %q, resume requires failed", id, job.Status))
	}

	media, err := s.media.GetByJobID(ctx, id)
	if err != nil {
		return nil, err
	}

	reachedDownloaded, reachedDubbed, err := s.scanReachedStates(ctx, id)
	if err != nil {
		return nil, err
	}
	videoExists := exists(media.VideoPath)
	dubbedAudioExists := exists(media.AudioDubbedPath)

	switch {
	case reachedDubbed && videoExists && dubbedAudioExists:
		if err := s.jobs.CompareAndTransition(ctx, id, model.StatusFailed, model.StatusDubbed); err != nil {
			return nil, err
		}
		if err := s.jobs.SetError(ctx, id, ""); err != nil {
			return nil, err
		}
		if err := s.appendResumeEvents(ctx, id, model.StatusFailed, model.StatusDubbed, "muxing"); err != nil {
			return nil, err
		}
		if err := s.queue.EnqueueMux(ctx, port.MuxPayload{
			JobID:             id,
			VideoPath:         *media.VideoPath,
			DubbedAudioPath:   *media.AudioDubbedPath,
			TargetLang:        job.TargetLang,
			OutputContainer:   job.OutputContainer,
			DuckingLevel:      s.defaults.DuckingLevel,
			NormalizationLUFS: s.defaults.NormalizationLUFS,
			TempDir:           s.fs.TempDir(id),
			FinalPath:         s.fs.FinalPath(id, media, job.OutputContainer),
		}, port.EnqueueOpts{Priority: job.Priority}); err != nil {
			return nil, fmt.Errorf("re-enqueue mux for job #%s: %w", id, err)
		}
		job.Status = model.StatusDubbed
		return &ResumeResult{Job: job, ResumedFrom: "muxing"}, nil

	case reachedDownloaded && videoExists && job.RequestedDubbing:
		if err := s.jobs.CompareAndTransition(ctx, id, model.StatusFailed, model.StatusDownloaded); err != nil {
			return nil, err
		}
		if err := s.jobs.SetError(ctx, id, ""); err != nil {
			return nil, err
		}
		if err := s.appendResumeEvents(ctx, id, model.StatusFailed, model.StatusDownloaded, "dubbing"); err != nil {
			return nil, err
		}
		if err := s.queue.EnqueueDub(ctx, port.DubPayload{
			JobID:           id,
			SourceURL:       job.SourceURL,
			VideoPath:       *media.VideoPath,
			TargetLang:      job.TargetLang,
			UseLivelyVoice:  job.UseLivelyVoice,
			TempDir:         s.fs.TempDir(id),
			OutputPath:      s.fs.TempDir(id) + "/dubbed_audio",
			FinalPath:       s.fs.FinalPath(id, media, job.OutputContainer),
			OutputContainer: job.OutputContainer,
		}, port.EnqueueOpts{Priority: job.Priority}); err != nil {
			return nil, fmt.Errorf("re-enqueue dub for job #%s: %w", id, err)
		}
		job.Status = model.StatusDownloaded
		return &ResumeResult{Job: job, ResumedFrom: "dubbing"}, nil

	default:
		return nil, joberr.New(joberr.KindCannotResume, "no recoverable stage found; use retry instead").WithDetails(map[string]any{
			"downloadCompleted": reachedDownloaded,
			"dubbingCompleted":  reachedDubbed,
			"hasVideo":          videoExists,
			"hasDubbedAudio":    dubbedAudioExists,
			"requestedDubbing":  job.RequestedDubbing,
		})
	}
}

func (s *Service) appendResumeEvents(ctx context.Context, id uuid.UUID, from, to model.Status, resumeFrom string) error {
	if err := s.events.Append(ctx, &model.Event{
		JobID:   id,
		Kind:    model.EventStateChange,
		Payload: model.Payload{"from": from, "to": to},
	}); err != nil {
		return err
	}
	return s.events.Append(ctx, &model.Event{
		JobID:   id,
		Kind:    model.EventRetry,
		Payload: model.Payload{"previousStatus": from, "resumeFrom": resumeFrom},
	})
}

// scanReachedStates scans the job's full event history for state_change
// events reaching downloaded/dubbed (spec.md §4.D Resume Planner inputs).
func (s *Service) scanReachedStates(ctx context.Context, id uuid.UUID) (reachedDownloaded, reachedDubbed bool, err error) {
	const pageSize = 200
	offset := 0
	for {
		events, total, err := s.events.ListByJob(ctx, id, pageSize, offset)
		if err != nil {
			return false, false, err
		}
		for _, e := range events {
			if e.Kind != model.EventStateChange {
				continue
			}
			to, _ := e.Payload["to"].(string)
			switch model.Status(to) {
			case model.StatusDownloaded:
				reachedDownloaded = true
			case model.StatusDubbed:
				reachedDubbed = true
			}
		}
		offset += len(events)
		if offset >= total || len(events) == 0 {
			break
		}
	}
	return reachedDownloaded, reachedDubbed, nil
}

func exists(path *string) bool {
	if path == nil || *path == "" {
		return false
	}
	_, err := os.Stat(*path)
	return err == nil
}
