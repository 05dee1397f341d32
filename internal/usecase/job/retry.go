package job

import (
	"context"
	"fmt"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Retrier is the Control API's dependency for POST /jobs/{id}/retry.
type Retrier interface {
	Retry(ctx context.Context, id uuid.UUID) (*model.Job, error)
}

// Retry resets a failed or canceled job to queued and re-enqueues a fresh
// download attempt from the beginning (spec.md §4.D retry(id)).
func (s *Service) Retry(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != model.StatusFailed && job.Status != model.StatusCanceled {
		return nil, joberr.New(joberr.KindInvalidState, fmt.Sprintf("job #%s is in status %q, retry requires failed or canceled", id, job.Status))
	}

	from := job.Status
	// queued is not a legal transition target from failed/canceled in
	// legalTransitions (those are terminal); retry explicitly bypasses the
	// table to start a new queued lineage on the same id (spec.md §4.D).
	if err := s.jobs.CompareAndTransition(ctx, id, from, model.StatusQueued); err != nil {
		return nil, err
	}
	if err := s.jobs.SetError(ctx, id, ""); err != nil {
		return nil, err
	}
	if err := s.jobs.IncrementRetryCount(ctx, id); err != nil {
		return nil, err
	}

	if err := s.events.Append(ctx, &model.Event{
		JobID:   id,
		Kind:    model.EventStateChange,
		Payload: model.Payload{"from": from, "to": model.StatusQueued},
	}); err != nil {
		return nil, err
	}

	if err := s.events.Append(ctx, &model.Event{
		JobID:   id,
		Kind:    model.EventRetry,
		Payload: model.Payload{"previousStatus": from},
	}); err != nil {
		return nil, err
	}

	payload := port.DownloadPayload{
		JobID:             id,
		SourceURL:         job.SourceURL,
		FormatPreset:      job.FormatPreset,
		OutputContainer:   job.OutputContainer,
		RequestedDubbing:  job.RequestedDubbing,
		TargetLang:        job.TargetLang,
		DownloadSubtitles: job.DownloadSubtitles,
		TempDir:           s.fs.TempDir(id),
		FinalPath:         s.fs.FinalPath(id, nil, job.OutputContainer),
	}
	if err := s.queue.EnqueueDownload(ctx, payload, port.EnqueueOpts{Priority: job.Priority}); err != nil {
		return nil, fmt.Errorf("re-enqueue download for job #%s: %w", id, err)
	}

	job.Status = model.StatusQueued
	job.Error = ""
	job.RetryCount++
	return job, nil
}
