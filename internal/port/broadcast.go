package port

import "github.com/vpikus/vdm-ai-dubbing/internal/uuid"

// WireMessage is what actually crosses the wire to a subscribed client
// (spec.md §6.2): {jobId, type, timestamp, payload}.
type WireMessage struct {
	JobID     uuid.UUID `json:"jobId,omitempty"`
	Type      string    `json:"type"`
	Timestamp int64     `json:"timestamp"`
	Payload   any       `json:"payload,omitempty"`
}

// Broadcaster is the Subscription Gateway's inbound face: the Event
// Aggregator forwards scoped job messages through Forward, the Job Service
// pushes job_added/job_removed/notification through Broadcast.
type Broadcaster interface {
	Forward(jobID uuid.UUID, msg WireMessage)
	Broadcast(msg WireMessage)
}
