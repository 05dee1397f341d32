package model

import "github.com/vpikus/vdm-ai-dubbing/internal/uuid"

// Media holds filesystem and source-side metadata for a job's artifacts
// (spec.md §3). It exists with all-null fields from job creation and is
// filled incrementally by metadata events.
type Media struct {
	JobID uuid.UUID `json:"job_id"`

	VideoPath       *string `json:"video_path,omitempty"`
	AudioOriginal   *string `json:"audio_original_path,omitempty"`
	AudioDubbedPath *string `json:"audio_dubbed_path,omitempty"`
	AudioMixedPath  *string `json:"audio_mixed_path,omitempty"`
	TempDir         *string `json:"temp_dir,omitempty"`

	DurationSec *float64 `json:"duration_sec,omitempty"`
	Width       *int     `json:"width,omitempty"`
	Height      *int     `json:"height,omitempty"`
	FPS         *float64 `json:"fps,omitempty"`
	VideoCodec  *string  `json:"video_codec,omitempty"`
	AudioCodec  *string  `json:"audio_codec,omitempty"`
	SizeBytes   *int64   `json:"size_bytes,omitempty"`

	SourceID          *string `json:"source_id,omitempty"`
	SourceTitle       *string `json:"source_title,omitempty"`
	SourceUploader    *string `json:"source_uploader,omitempty"`
	SourceUploadDate  *string `json:"source_upload_date,omitempty"`
	SourceDescription *string `json:"source_description,omitempty"`
	SourceThumbURL    *string `json:"source_thumbnail_url,omitempty"`
}

// MetadataPatch carries a partial update to a Media row, as emitted by a
// worker's metadata event (spec.md §4.C, §4.E). Only non-nil fields are
// applied.
type MetadataPatch struct {
	VideoPath       *string
	AudioOriginal   *string
	AudioDubbedPath *string
	AudioMixedPath  *string
	TempDir         *string

	DurationSec *float64
	Width       *int
	Height      *int
	FPS         *float64
	VideoCodec  *string
	AudioCodec  *string
	SizeBytes   *int64

	SourceID          *string
	SourceTitle       *string
	SourceUploader    *string
	SourceUploadDate  *string
	SourceDescription *string
	SourceThumbURL    *string
}
