// Package bus implements the Event Bus (spec.md §4.C) as Redis pub/sub
// fan-out across five typed channels. Delivery is at-most-once and
// best-effort; durability comes from the Event Aggregator persisting what
// it receives, not from the bus itself.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

const (
	channelProgress = "events:progress"
	channelState    = "events:state"
	channelLog      = "events:log"
	channelError    = "events:error"
	channelMetadata = "events:metadata"
)

var allChannels = []string{channelProgress, channelState, channelLog, channelError, channelMetadata}

// envelope is what actually crosses the wire on every channel: {jobId,
// kind, timestamp, payload}.
type envelope struct {
	JobID     uuid.UUID       `json:"jobId"`
	Kind      model.EventKind `json:"kind"`
	Timestamp int64           `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// Bus is a Redis-backed Publisher and Subscriber.
type Bus struct {
	client *redis.Client
}

var _ port.Publisher = (*Bus)(nil)
var _ port.Subscriber = (*Bus)(nil)

func New(addr, password string, db int) *Bus {
	return &Bus{client: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

func (b *Bus) PublishProgress(ctx context.Context, jobID uuid.UUID, p model.ProgressPayload) error {
	return b.publish(ctx, channelProgress, jobID, model.EventProgress, p)
}

func (b *Bus) PublishStateChange(ctx context.Context, jobID uuid.UUID, p model.StateChangePayload) error {
	return b.publish(ctx, channelState, jobID, model.EventStateChange, p)
}

func (b *Bus) PublishLog(ctx context.Context, jobID uuid.UUID, p model.LogPayload) error {
	return b.publish(ctx, channelLog, jobID, model.EventLog, p)
}

func (b *Bus) PublishError(ctx context.Context, jobID uuid.UUID, p model.ErrorPayload) error {
	return b.publish(ctx, channelError, jobID, model.EventError, p)
}

func (b *Bus) PublishMetadata(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error {
	return b.publish(ctx, channelMetadata, jobID, model.EventKind("metadata"), patch)
}

func (b *Bus) publish(ctx context.Context, channel string, jobID uuid.UUID, kind model.EventKind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", kind, err)
	}
	env := envelope{JobID: jobID, Kind: kind, Timestamp: time.Now().UnixMilli(), Payload: raw}
	data, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	return b.client.Publish(ctx, channel, data).Err()
}

// Subscribe fans in all five channels onto one buffered channel of decoded
// messages. The returned channel closes when ctx is canceled.
func (b *Bus) Subscribe(ctx context.Context) (<-chan port.BusMessage, error) {
	sub := b.client.Subscribe(ctx, allChannels...)
	if _, err := sub.Receive(ctx); err != nil {
		return nil, fmt.Errorf("subscribe: %w", err)
	}

	out := make(chan port.BusMessage, 256)
	go func() {
		defer close(out)
		defer sub.Close()
		redisCh := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-redisCh:
				if !ok {
					return
				}
				var env envelope
				if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
					continue
				}
				var payload model.Payload
				if err := json.Unmarshal(env.Payload, &payload); err != nil {
					payload = model.Payload{}
				}
				select {
				case out <- port.BusMessage{Kind: env.Kind, JobID: env.JobID, Payload: payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (b *Bus) Close() error {
	return b.client.Close()
}
