package port

import (
	"context"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// ListJobsFilter narrows JobRepository.List (Control API GET /jobs).
type ListJobsFilter struct {
	Status model.Status
	Search string
	Limit  int
	Offset int
}

// JobRepository defines persistence operations for jobs.
type JobRepository interface {
	// CreateWithMedia inserts the job row and its all-null media row in a
	// single transaction, satisfying the creation invariant in spec.md §4.A.
	CreateWithMedia(ctx context.Context, job *model.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error)
	List(ctx context.Context, filter ListJobsFilter) ([]*model.Job, int, error)

	// CompareAndTransition moves the job from `from` to `to` only if its
	// current status still equals `from`, guarding against races between
	// the Job Service and the Event Aggregator (spec.md §4.D). It also
	// stamps/clears completed_at to match whether `to` is terminal.
	CompareAndTransition(ctx context.Context, id uuid.UUID, from, to model.Status) error
	SetPriority(ctx context.Context, id uuid.UUID, priority int) error
	SetError(ctx context.Context, id uuid.UUID, message string) error
	IncrementRetryCount(ctx context.Context, id uuid.UUID) error

	Delete(ctx context.Context, id uuid.UUID) error

	// ListForReaping returns job IDs in a terminal status older than cutoff,
	// for cmd/reaper's retention sweep (spec.md §4.B).
	ListForReaping(ctx context.Context, statuses []model.Status, cutoff time.Time) ([]uuid.UUID, error)
}

// MediaRepository defines persistence operations for a job's media row.
type MediaRepository interface {
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*model.Media, error)
	ApplyPatch(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error
}

// EventRepository defines persistence for the append-only job audit log.
type EventRepository interface {
	Append(ctx context.Context, event *model.Event) error
	ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.Event, int, error)
	ListRecentByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]*model.Event, error)
}

// UserRepository defines persistence for Control API accounts.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	CountAll(ctx context.Context) (int, error)
}

// SessionRepository defines persistence for login sessions.
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	Revoke(ctx context.Context, id uuid.UUID) error
	DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error)
}
