package port

import (
	"context"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// FileLifecycle is the Atomic File Lifecycle contract (spec.md §6.4):
// work-in-progress files live under incomplete/{jobId}/, final outputs are
// moved atomically into complete/ on success.
type FileLifecycle interface {
	IncompleteDir(jobID uuid.UUID) string
	TempDir(jobID uuid.UUID) string

	// FinalPath computes the destination path for a job's output, using the
	// "{title} [{sourceId}].{ext}" convention when source metadata is known
	// and falling back to "{jobId}.{container}" otherwise.
	FinalPath(jobID uuid.UUID, media *model.Media, container model.OutputContainer) string

	// PromoteToFinal atomically moves tempPath into finalPath, creating
	// parent directories as needed.
	PromoteToFinal(ctx context.Context, tempPath, finalPath string) error

	// CleanupIncomplete removes incomplete/{jobId}/ entirely (cancel, delete,
	// failed-terminal retention sweep).
	CleanupIncomplete(ctx context.Context, jobID uuid.UUID) error

	// CleanupFinal removes a promoted final output (job delete).
	CleanupFinal(ctx context.Context, finalPath string) error

	// WriteCookiesFile persists the creation request's cookies payload at
	// incomplete/{jobId}/cookies.txt, returning its path.
	WriteCookiesFile(ctx context.Context, jobID uuid.UUID, contents string) (string, error)

	// FreeSpaceGB reports free space on the filesystem backing mediaRoot,
	// for the Job Service's creation backpressure check (spec.md §4.A).
	FreeSpaceGB() (float64, error)
}
