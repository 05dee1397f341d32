// Package aggregator implements the Event Aggregator (spec.md §4.E): a
// single long-lived subscriber to every Event Bus channel that persists
// what it receives and fans it out to the Subscription Gateway, mirroring
// the dispatch-by-kind shape of original_source/downloader/src/events.py's
// tagged EventMessage union and the teacher's asynq.ServeMux
// dispatch-by-type worker pattern.
package aggregator

import (
	"context"
	"log"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

// Aggregator consumes port.BusMessage values in arrival order and applies
// them to persistence and the Subscription Gateway, one at a time.
type Aggregator struct {
	sub         port.Subscriber
	jobs        port.JobRepository
	events      port.EventRepository
	media       port.MediaRepository
	broadcaster port.Broadcaster
}

func New(sub port.Subscriber, jobs port.JobRepository, events port.EventRepository, media port.MediaRepository, broadcaster port.Broadcaster) *Aggregator {
	return &Aggregator{sub: sub, jobs: jobs, events: events, media: media, broadcaster: broadcaster}
}

// Run subscribes to the bus and processes messages one at a time until ctx
// is canceled or the subscription fails. It is single-threaded by design
// (spec.md §5 "The Event Aggregator is single-threaded"): persistence
// writes for job A never race writes for job B, nor itself.
func (a *Aggregator) Run(ctx context.Context) error {
	msgs, err := a.sub.Subscribe(ctx)
	if err != nil {
		return err
	}
	for msg := range msgs {
		a.handle(ctx, msg)
	}
	return ctx.Err()
}

func (a *Aggregator) handle(ctx context.Context, msg port.BusMessage) {
	switch msg.Kind {
	case model.EventProgress:
		a.forward(msg)

	case model.EventStateChange:
		a.appendEvent(ctx, msg)
		to, _ := msg.Payload["to"].(string)
		from, _ := msg.Payload["from"].(string)
		if to == "" {
			log.Printf("aggregator: state_change for job #%s missing 'to', dropping transition", msg.JobID)
			a.forward(msg)
			return
		}
		if err := a.jobs.CompareAndTransition(ctx, msg.JobID, model.Status(from), model.Status(to)); err != nil {
			log.Printf("aggregator: transition job #%s %s->%s failed: %v", msg.JobID, from, to, err)
		}
		if model.Status(to) != model.StatusFailed {
			if err := a.jobs.SetError(ctx, msg.JobID, ""); err != nil {
				log.Printf("aggregator: clearing error for job #%s failed: %v", msg.JobID, err)
			}
		}
		a.forward(msg)

	case model.EventLog:
		a.appendEvent(ctx, msg)
		a.forward(msg)

	case model.EventError:
		a.appendEvent(ctx, msg)
		if retryable, _ := msg.Payload["retryable"].(bool); !retryable {
			message, _ := msg.Payload["message"].(string)
			if err := a.jobs.SetError(ctx, msg.JobID, message); err != nil {
				log.Printf("aggregator: setting error for job #%s failed: %v", msg.JobID, err)
			}
			job, err := a.jobs.GetByID(ctx, msg.JobID)
			if err != nil {
				log.Printf("aggregator: loading job #%s for failure transition failed: %v", msg.JobID, err)
			} else if err := a.jobs.CompareAndTransition(ctx, msg.JobID, job.Status, model.StatusFailed); err != nil {
				log.Printf("aggregator: transitioning job #%s to failed failed: %v", msg.JobID, err)
			}
		}
		a.forward(msg)

	case model.EventKind("metadata"):
		patch := patchFromPayload(msg.Payload)
		if err := a.media.ApplyPatch(ctx, msg.JobID, patch); err != nil {
			log.Printf("aggregator: applying metadata patch for job #%s failed: %v", msg.JobID, err)
		}
		// No event row, no forward (spec.md §4.E).

	default:
		log.Printf("aggregator: unrecognized bus message kind %q for job #%s, dropping", msg.Kind, msg.JobID)
	}
}

func (a *Aggregator) appendEvent(ctx context.Context, msg port.BusMessage) {
	if err := a.events.Append(ctx, &model.Event{JobID: msg.JobID, Kind: msg.Kind, Payload: msg.Payload}); err != nil {
		log.Printf("aggregator: appending %s event for job #%s failed: %v", msg.Kind, msg.JobID, err)
	}
}

func (a *Aggregator) forward(msg port.BusMessage) {
	a.broadcaster.Forward(msg.JobID, port.WireMessage{
		JobID:     msg.JobID,
		Type:      string(msg.Kind),
		Timestamp: time.Now().UnixMilli(),
		Payload:   msg.Payload,
	})
}

func patchFromPayload(p model.Payload) model.MetadataPatch {
	var patch model.MetadataPatch
	if v, ok := stringField(p, "videoPath"); ok {
		patch.VideoPath = v
	}
	if v, ok := stringField(p, "audioOriginalPath"); ok {
		patch.AudioOriginal = v
	}
	if v, ok := stringField(p, "audioDubbedPath"); ok {
		patch.AudioDubbedPath = v
	}
	if v, ok := stringField(p, "audioMixedPath"); ok {
		patch.AudioMixedPath = v
	}
	if v, ok := stringField(p, "tempDir"); ok {
		patch.TempDir = v
	}
	if v, ok := float64Field(p, "durationSec"); ok {
		patch.DurationSec = v
	}
	if v, ok := intField(p, "width"); ok {
		patch.Width = v
	}
	if v, ok := intField(p, "height"); ok {
		patch.Height = v
	}
	if v, ok := float64Field(p, "fps"); ok {
		patch.FPS = v
	}
	if v, ok := stringField(p, "videoCodec"); ok {
		patch.VideoCodec = v
	}
	if v, ok := stringField(p, "audioCodec"); ok {
		patch.AudioCodec = v
	}
	if v, ok := int64Field(p, "sizeBytes"); ok {
		patch.SizeBytes = v
	}
	if v, ok := stringField(p, "sourceId"); ok {
		patch.SourceID = v
	}
	if v, ok := stringField(p, "sourceTitle"); ok {
		patch.SourceTitle = v
	}
	if v, ok := stringField(p, "sourceUploader"); ok {
		patch.SourceUploader = v
	}
	if v, ok := stringField(p, "sourceUploadDate"); ok {
		patch.SourceUploadDate = v
	}
	if v, ok := stringField(p, "sourceDescription"); ok {
		patch.SourceDescription = v
	}
	if v, ok := stringField(p, "sourceThumbnailUrl"); ok {
		patch.SourceThumbURL = v
	}
	return patch
}

func stringField(p model.Payload, key string) (*string, bool) {
	v, ok := p[key].(string)
	if !ok {
		return nil, false
	}
	return &v, true
}

func float64Field(p model.Payload, key string) (*float64, bool) {
	v, ok := p[key].(float64)
	if !ok {
		return nil, false
	}
	return &v, true
}

func intField(p model.Payload, key string) (*int, bool) {
	v, ok := p[key].(float64)
	if !ok {
		return nil, false
	}
	i := int(v)
	return &i, true
}

func int64Field(p model.Payload, key string) (*int64, bool) {
	v, ok := p[key].(float64)
	if !ok {
		return nil, false
	}
	i := int64(v)
	return &i, true
}
