// Package job implements the Job Service (spec.md §4.D): the state machine
// core, its control operations, the Resume Planner, and disk-space
// backpressure on job creation.
package job

import (
	"context"
	"fmt"
	"log"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Defaults carries the job-creation and mux-tuning config options a job may
// omit (spec.md §6.5).
type Defaults struct {
	TargetLang        string
	FormatPreset      model.FormatPreset
	OutputContainer   model.OutputContainer
	DuckingLevel      float64
	NormalizationLUFS float64
	MinFreeSpaceGb    float64

	DownloadPriority int // default priority when the request omits one
}

// Service is the Job Service: state machine transitions, control actions,
// retry/resume, and deletion, backed by the Persistence Store, Queue
// Coordinator and Atomic File Lifecycle ports.
type Service struct {
	jobs     port.JobRepository
	media    port.MediaRepository
	events   port.EventRepository
	queue    port.Queue
	fs       port.FileLifecycle
	archiver port.Archiver
	defaults Defaults
}

func New(jobs port.JobRepository, media port.MediaRepository, events port.EventRepository, queue port.Queue, fs port.FileLifecycle, archiver port.Archiver, defaults Defaults) *Service {
	return &Service{
		jobs:     jobs,
		media:    media,
		events:   events,
		queue:    queue,
		fs:       fs,
		archiver: archiver,
		defaults: defaults,
	}
}

// transition moves a job from `from` to `to`, appending both the
// state_change event and a companion log event (spec.md §5 "structured log
// event on every stage transition"), and clears the persisted error unless
// the destination is failed.
func (s *Service) transition(ctx context.Context, id uuid.UUID, from, to model.Status, reason string) error {
	if !model.CanTransition(from, to) {
		return joberr.New(joberr.KindInvalidState, fmt.Sprintf("cannot transition job from %q to %q", from, to))
	}

	if err := s.jobs.CompareAndTransition(ctx, id, from, to); err != nil {
		return err
	}
	if to != model.StatusFailed {
		if err := s.jobs.SetError(ctx, id, ""); err != nil {
			log.Printf("failed clearing error on job #%s: %v", id, err)
		}
	}

	if err := s.events.Append(ctx, &model.Event{
		JobID:   id,
		Kind:    model.EventStateChange,
		Payload: model.Payload{"from": from, "to": to},
	}); err != nil {
		log.Printf("failed appending state_change event for job #%s: %v", id, err)
	}

	logPayload := model.Payload{"level": "info", "message": fmt.Sprintf("%s -> %s", from, to)}
	if reason != "" {
		logPayload["reason"] = reason
	}
	if err := s.events.Append(ctx, &model.Event{JobID: id, Kind: model.EventLog, Payload: logPayload}); err != nil {
		log.Printf("failed appending log event for job #%s: %v", id, err)
	}

	return nil
}
