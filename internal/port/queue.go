package port

import (
	"context"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// DownloadPayload is the typed payload for the download queue (spec.md §6.3).
type DownloadPayload struct {
	JobID             uuid.UUID              `json:"jobId"`
	SourceURL         string                 `json:"sourceUrl"`
	FormatPreset      model.FormatPreset     `json:"formatPreset"`
	OutputContainer   model.OutputContainer  `json:"outputContainer"`
	RequestedDubbing  bool                   `json:"requestedDubbing"`
	TargetLang        string                 `json:"targetLang"`
	DownloadSubtitles bool                   `json:"downloadSubtitles"`
	TempDir           string                 `json:"tempDir"`
	FinalPath         string                 `json:"finalPath"`
	CookiesFile       string                 `json:"cookiesFile,omitempty"`
	Proxy             string                 `json:"proxy,omitempty"`
	RateLimit         string                 `json:"rateLimit,omitempty"`
}

// DubPayload is the typed payload for the dub queue (spec.md §6.3).
type DubPayload struct {
	JobID          uuid.UUID             `json:"jobId"`
	SourceURL      string                `json:"sourceUrl"`
	VideoPath      string                `json:"videoPath"`
	TargetLang     string                `json:"targetLang"`
	UseLivelyVoice bool                  `json:"useLivelyVoice"`
	TempDir        string                `json:"tempDir"`
	OutputPath     string                `json:"outputPath"`
	FinalPath      string                `json:"finalPath"`
	OutputContainer model.OutputContainer `json:"outputContainer"`
}

// MuxPayload is the typed payload for the mux queue (spec.md §6.3).
type MuxPayload struct {
	JobID             uuid.UUID             `json:"jobId"`
	VideoPath         string                `json:"videoPath"`
	DubbedAudioPath   string                `json:"dubbedAudioPath"`
	TargetLang        string                `json:"targetLang"`
	OutputContainer   model.OutputContainer `json:"outputContainer"`
	DuckingLevel      float64               `json:"duckingLevel"`
	NormalizationLUFS float64               `json:"normalizationLufs"`
	TempDir           string                `json:"tempDir"`
	FinalPath         string                `json:"finalPath"`
}

// EnqueueOpts controls how a payload is scheduled, per the queue table in
// spec.md §4.B.
type EnqueueOpts struct {
	Priority    int // 0-10, higher runs first within the queue
	MaxRetry    int
	Timeout     time.Duration
	UniqueTTL   time.Duration // idempotent re-enqueue window, keyed by job ID
}

// QueueStats is a per-queue snapshot for GET /healthz and operator tooling.
type QueueStats struct {
	Queue     string
	Pending   int
	Active    int
	Scheduled int
	Retry     int
	Dead      int
}

// Queue is the Queue Coordinator contract (spec.md §4.B): three named
// queues (download, dub, mux), each with idempotent enqueue, inspection and
// cancellation.
type Queue interface {
	EnqueueDownload(ctx context.Context, payload DownloadPayload, opts EnqueueOpts) error
	EnqueueDub(ctx context.Context, payload DubPayload, opts EnqueueOpts) error
	EnqueueMux(ctx context.Context, payload MuxPayload, opts EnqueueOpts) error

	// Cancel best-effort removes a pending/scheduled task for jobID from
	// whichever queue currently holds it. A task already Active cannot be
	// removed and runs to the end of its current attempt; no worker checks
	// for cancellation while it runs.
	Cancel(ctx context.Context, jobID uuid.UUID) error

	Stats(ctx context.Context) ([]QueueStats, error)

	// ReapDeadLetter purges dead-lettered tasks older than olderThan,
	// returning the count removed. Driven by cmd/reaper (spec.md §4.B).
	ReapDeadLetter(ctx context.Context, olderThan time.Duration) (int, error)

	Close() error
}
