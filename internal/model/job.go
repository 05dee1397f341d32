package model

import (
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Status is one of the nine legal job states.
type Status string

const (
	StatusQueued      Status = "queued"
	StatusDownloading Status = "downloading"
	StatusDownloaded  Status = "downloaded"
	StatusDubbing     Status = "dubbing"
	StatusDubbed      Status = "dubbed"
	StatusMuxing      Status = "muxing"
	StatusComplete    Status = "complete"
	StatusFailed      Status = "failed"
	StatusCanceled    Status = "canceled"
)

// Terminal reports whether s cannot be exited except by retry/resume
// creating a new queue lineage.
func (s Status) Terminal() bool {
	switch s {
	case StatusComplete, StatusFailed, StatusCanceled:
		return true
	default:
		return false
	}
}

// legalTransitions enumerates every (from, to) pair allowed by the state
// machine in spec.md §4.D. Pause/resume are not state transitions.
var legalTransitions = map[Status]map[Status]bool{
	StatusQueued: {
		StatusDownloading: true,
		StatusCanceled:    true,
		StatusFailed:      true,
	},
	StatusDownloading: {
		StatusDownloaded: true,
		StatusFailed:     true,
		StatusCanceled:   true,
	},
	StatusDownloaded: {
		StatusDubbing:  true,
		StatusMuxing:   true,
		StatusFailed:   true,
		StatusCanceled: true,
	},
	StatusDubbing: {
		StatusDubbed:   true,
		StatusFailed:   true,
		StatusCanceled: true,
	},
	StatusDubbed: {
		StatusMuxing:   true,
		StatusFailed:   true,
		StatusCanceled: true,
	},
	StatusMuxing: {
		StatusComplete: true,
		StatusFailed:   true,
		StatusCanceled: true,
	},
}

// CanTransition reports whether (from, to) is in the legal transition table.
// Terminal states may only be exited via retry/resume, which create a new
// queued lineage rather than calling this function.
func CanTransition(from, to Status) bool {
	next, ok := legalTransitions[from]
	if !ok {
		return false
	}
	return next[to]
}

// FormatPreset mirrors original_source/downloader/src/types.py:FormatPreset.
type FormatPreset string

const (
	FormatBestVideoBestAudio FormatPreset = "bestvideo+bestaudio"
	FormatBest               FormatPreset = "best"
	FormatBestAudio          FormatPreset = "bestaudio"
	FormatWorst              FormatPreset = "worst"
)

// OutputContainer mirrors original_source/downloader/src/types.py:OutputContainer.
type OutputContainer string

const (
	ContainerMKV  OutputContainer = "mkv"
	ContainerMP4  OutputContainer = "mp4"
	ContainerWebM OutputContainer = "webm"
)

// Job is the primary orchestration entity (spec.md §3).
type Job struct {
	ID         uuid.UUID `json:"id"`
	SourceURL  string    `json:"source_url"`
	Status     Status    `json:"status"`
	Priority   int       `json:"priority"`
	RetryCount int       `json:"retry_count"`
	Error      string    `json:"error,omitempty"`

	RequestedDubbing  bool            `json:"requested_dubbing"`
	TargetLang        string          `json:"target_lang"`
	UseLivelyVoice    bool            `json:"use_lively_voice"`
	FormatPreset      FormatPreset    `json:"format_preset"`
	OutputContainer   OutputContainer `json:"output_container"`
	DownloadSubtitles bool            `json:"download_subtitles"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}
