package port

import (
	"context"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
)

// Downloader, Translator and Mixer are the three external collaborators
// spec.md §1 names as out of scope: yt-dlp subprocess management, the VOT
// translation HTTP client, and the FFmpeg mixing command. The Worker
// contract (§6.3) only requires that something satisfying these interfaces
// be invoked, publish progress as it runs, and return a *joberr.Error
// classified worker_transient or worker_permanent on failure.

// DownloadResult is what a Downloader reports back on success, feeding the
// metadata event published alongside the download->downloaded transition.
type DownloadResult struct {
	VideoPath string
	Metadata  model.MetadataPatch
	SizeBytes int64
}

type Downloader interface {
	Download(ctx context.Context, payload DownloadPayload, onProgress func(model.ProgressPayload)) (DownloadResult, error)
}

// DubResult is what a Translator reports back on success.
type DubResult struct {
	AudioPath string
}

type Translator interface {
	Dub(ctx context.Context, payload DubPayload, onProgress func(model.ProgressPayload)) (DubResult, error)
}

// MuxResult is what a Mixer reports back on success.
type MuxResult struct {
	FinalPath string
	SizeBytes int64
}

type Mixer interface {
	Mux(ctx context.Context, payload MuxPayload, onProgress func(model.ProgressPayload)) (MuxResult, error)
}
