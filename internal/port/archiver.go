package port

import (
	"context"

	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Archiver mirrors completed outputs to off-box object storage. It is a
// supplemental feature (DESIGN.md): disabled when no endpoint is configured,
// in which case Archive is a no-op.
type Archiver interface {
	Enabled() bool
	Archive(ctx context.Context, jobID uuid.UUID, localPath string) error
}
