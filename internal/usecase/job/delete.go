package job

import (
	"context"
	"log"

	"github.com/vpikus/vdm-ai-dubbing/internal/fs"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Deleter is the Control API's dependency for DELETE /jobs/{id}.
type Deleter interface {
	Delete(ctx context.Context, id uuid.UUID) error
}

// Delete is always permitted: it cleans up filesystem artifacts first, then
// cascade-deletes the job row (media/events cascade via FK), best-effort
// clearing any queue entry (spec.md §4.D delete(id), §4.A "the core invokes
// filesystem cleanup before calling delete").
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if media, err := s.media.GetByJobID(ctx, id); err != nil {
		log.Printf("failed loading media for cleanup of job #%s: %v", id, err)
	} else {
		finalPath := s.fs.FinalPath(id, media, job.OutputContainer)
		if err := fs.CascadeDelete(ctx, s.fs, id, finalPath); err != nil {
			log.Printf("cleanup failed for deleted job #%s: %v", id, err)
		}
	}

	if err := s.queue.Cancel(ctx, id); err != nil {
		log.Printf("best-effort queue cancel failed for job #%s: %v", id, err)
	}

	return s.jobs.Delete(ctx, id)
}
