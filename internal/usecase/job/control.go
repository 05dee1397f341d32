package job

import (
	"context"
	"fmt"
	"log"

	"github.com/vpikus/vdm-ai-dubbing/internal/fs"
	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Action is one of the control actions accepted by POST /jobs/{id}/control
// (spec.md §4.D control).
type Action string

const (
	ActionCancel     Action = "cancel"
	ActionPrioritize Action = "prioritize"
	ActionPause      Action = "pause"
	ActionResume     Action = "resume"
)

type ControlInput struct {
	JobID    uuid.UUID
	Action   Action
	Priority *int
}

// Controller is the Control API's dependency for POST /jobs/{id}/control.
type Controller interface {
	Control(ctx context.Context, in ControlInput) (*model.Job, error)
}

// Canceler is the Control API's dependency for POST /jobs/{id}/cancel.
type Canceler interface {
	Cancel(ctx context.Context, id uuid.UUID) (*model.Job, error)
}

// Control dispatches a control action. Pause/resume are reserved no-ops
// (spec.md §6 Open Question 4) — "resume" as a *control action* is distinct
// from the Resume Planner's Service.Resume (spec.md §4.D resume(id)).
func (s *Service) Control(ctx context.Context, in ControlInput) (*model.Job, error) {
	switch in.Action {
	case ActionCancel:
		return s.Cancel(ctx, in.JobID)
	case ActionPrioritize:
		if in.Priority == nil {
			return nil, joberr.New(joberr.KindValidation, "priority is required for the prioritize action")
		}
		return s.Prioritize(ctx, in.JobID, *in.Priority)
	case ActionPause, ActionResume:
		return nil, joberr.New(joberr.KindInvalidState, fmt.Sprintf("control action %q is not implemented", in.Action)).
			WithDetails(map[string]any{"action": in.Action})
	default:
		return nil, joberr.New(joberr.KindValidation, fmt.Sprintf("unknown control action %q", in.Action))
	}
}

// Cancel transitions a non-terminal job to canceled, cleans up its
// filesystem artifacts, and best-effort removes its queue entry
// (spec.md §4.D control.cancel).
func (s *Service) Cancel(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status.Terminal() {
		return nil, joberr.New(joberr.KindInvalidState, fmt.Sprintf("job #%s is already in terminal state %q", id, job.Status))
	}

	from := job.Status
	if err := s.transition(ctx, id, from, model.StatusCanceled, "canceled by user"); err != nil {
		return nil, err
	}

	if err := s.queue.Cancel(ctx, id); err != nil {
		log.Printf("best-effort queue cancel failed for job #%s: %v", id, err)
	}

	media, err := s.media.GetByJobID(ctx, id)
	if err != nil {
		log.Printf("failed loading media for cleanup of job #%s: %v", id, err)
	} else {
		finalPath := s.fs.FinalPath(id, media, job.OutputContainer)
		if err := fs.CascadeDelete(ctx, s.fs, id, finalPath); err != nil {
			log.Printf("cleanup failed for canceled job #%s: %v", id, err)
		}
	}

	job.Status = model.StatusCanceled
	return job, nil
}

// Prioritize updates the persisted priority only. A task already waiting in
// the queue keeps the priority sub-queue it was enqueued into, retries
// included, as asynq has no in-place priority update; the new priority
// applies to later enqueues that read it from the job (Retry, Resume).
func (s *Service) Prioritize(ctx context.Context, id uuid.UUID, priority int) (*model.Job, error) {
	priority = clampPriority(priority)
	if err := s.jobs.SetPriority(ctx, id, priority); err != nil {
		return nil, err
	}
	return s.jobs.GetByID(ctx, id)
}
