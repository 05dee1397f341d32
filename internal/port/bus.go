package port

import (
	"context"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// BusMessage is one decoded message off any of the five channels in
// spec.md §4.C, tagged with the channel it came from.
type BusMessage struct {
	Kind    model.EventKind
	JobID   uuid.UUID
	Payload model.Payload
}

// Publisher is the writer half of the Event Bus. Workers and the Job
// Service both publish through it.
type Publisher interface {
	PublishProgress(ctx context.Context, jobID uuid.UUID, p model.ProgressPayload) error
	PublishStateChange(ctx context.Context, jobID uuid.UUID, p model.StateChangePayload) error
	PublishLog(ctx context.Context, jobID uuid.UUID, p model.LogPayload) error
	PublishError(ctx context.Context, jobID uuid.UUID, p model.ErrorPayload) error
	PublishMetadata(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error
}

// Subscriber is the reader half of the Event Bus, used by the Event
// Aggregator. Subscribe blocks until ctx is canceled or the underlying
// connection fails; messages arrive on the returned channel.
type Subscriber interface {
	Subscribe(ctx context.Context) (<-chan BusMessage, error)
}
