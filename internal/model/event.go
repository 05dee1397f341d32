package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// EventKind enumerates the append-only audit log entries (spec.md §3).
type EventKind string

const (
	EventProgress    EventKind = "progress"
	EventStateChange EventKind = "state_change"
	EventLog         EventKind = "log"
	EventError       EventKind = "error"
	EventStarted     EventKind = "started"
	EventFinished    EventKind = "finished"
	EventRetry       EventKind = "retry"
)

// Payload is an opaque, JSON-serialisable structured payload. It round-trips
// through the database as a JSON column, mirroring the teacher's
// model.Metadata Value()/Scan() pattern.
type Payload map[string]any

func (p Payload) Value() (driver.Value, error) {
	if p == nil {
		return []byte("{}"), nil
	}
	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal Payload: %w", err)
	}
	return b, nil
}

func (p *Payload) Scan(src interface{}) error {
	if src == nil {
		*p = Payload{}
		return nil
	}
	data, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("Payload.Scan: expected []byte, got %T", src)
	}
	return json.Unmarshal(data, p)
}

// Event is one append-only row in the job audit log (spec.md §3).
type Event struct {
	ID        int64     `json:"id"`
	JobID     uuid.UUID `json:"job_id"`
	Kind      EventKind `json:"kind"`
	Payload   Payload   `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// ProgressPayload mirrors original_source/downloader/src/types.py:ProgressPayload.
type ProgressPayload struct {
	Stage           string   `json:"stage"`
	Percent         float64  `json:"percent"`
	DownloadedBytes *int64   `json:"downloadedBytes,omitempty"`
	TotalBytes      *int64   `json:"totalBytes,omitempty"`
	Speed           *float64 `json:"speed,omitempty"`
	ETA             *int     `json:"eta,omitempty"`
}

// StateChangePayload mirrors original_source/downloader/src/types.py:StateChangePayload.
type StateChangePayload struct {
	From Status `json:"from"`
	To   Status `json:"to"`
}

// LogPayload mirrors original_source/downloader/src/types.py:LogPayload.
type LogPayload struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ErrorPayload mirrors original_source/downloader/src/types.py:ErrorPayload.
type ErrorPayload struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Retryable bool   `json:"retryable"`
	Stack     string `json:"stack,omitempty"`
}

// RetryPayload records a retry() or resume() decision (spec.md §4.D).
type RetryPayload struct {
	PreviousStatus Status `json:"previousStatus"`
	ResumeFrom     string `json:"resumeFrom,omitempty"`
}
