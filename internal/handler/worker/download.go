// Package worker dispatches asynq tasks to the orchestration core's three
// external collaborators (yt-dlp, the VOT translation service, FFmpeg),
// publishing progress/state/log/error events to the bus as it goes and
// chaining the next stage on success — mirroring
// original_source/downloader/src/main.py:process_job's
// publish_state_change / publish_metadata / publish_log / enqueue_dub_job
// sequence, adapted to asynq.ServeMux's per-task-type dispatch the way the
// teacher's internal/handler/worker registers OptimiseMediaHandler.
package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hibiken/asynq"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// DownloadHandler runs the download stage: publishes queued->downloading,
// invokes dl, publishes the resulting metadata, then transitions to either
// downloaded (dubbing requested) or complete, enqueuing the dub stage in
// the former case.
func DownloadHandler(pub port.Publisher, q port.Queue, dl port.Downloader, defaults StageDefaults) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload port.DownloadPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal download payload: %w", err)
		}

		pub.PublishStateChange(ctx, payload.JobID, model.StateChangePayload{From: model.StatusQueued, To: model.StatusDownloading})
		pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: "starting download: " + payload.SourceURL})

		result, err := dl.Download(ctx, payload, func(p model.ProgressPayload) {
			pub.PublishProgress(ctx, payload.JobID, p)
		})
		if err != nil {
			return publishFailure(ctx, pub, payload.JobID, model.StatusDownloading, err)
		}

		pub.PublishMetadata(ctx, payload.JobID, result.Metadata)
		pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: "downloaded " + humanize.Bytes(uint64(result.SizeBytes))})

		if payload.RequestedDubbing {
			pub.PublishStateChange(ctx, payload.JobID, model.StateChangePayload{From: model.StatusDownloading, To: model.StatusDownloaded})
			pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: "download complete, enqueuing dub stage"})

			dubPayload := port.DubPayload{
				JobID:           payload.JobID,
				SourceURL:       payload.SourceURL,
				VideoPath:       result.VideoPath,
				TargetLang:      payload.TargetLang,
				TempDir:         payload.TempDir,
				OutputPath:      payload.TempDir + "/dubbed.wav",
				FinalPath:       payload.FinalPath,
				OutputContainer: payload.OutputContainer,
			}
			if err := q.EnqueueDub(ctx, dubPayload, port.EnqueueOpts{Priority: defaults.Priority}); err != nil {
				return fmt.Errorf("enqueue dub stage: %w", err)
			}
			return nil
		}

		pub.PublishStateChange(ctx, payload.JobID, model.StateChangePayload{From: model.StatusDownloading, To: model.StatusComplete})
		pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: "download complete"})
		return nil
	}
}

// StageDefaults carries per-stage config the handlers need when chaining to
// the next queue (spec.md §6.5 downloadConcurrency et al. feed the
// asynq.Server side). Priority is the fixed priority every chained dub/mux
// enqueue uses; the stage payloads do not carry the job's own priority.
type StageDefaults struct {
	Priority          int
	DuckingLevel      float64
	NormalizationLUFS float64
}

// publishFailure always publishes an error event (spec.md §4.C "error: write
// an event row"), then gates the failed transition on retryability alone:
// worker_transient errors leave the job's state untouched and are returned
// unchanged so asynq retries the task; worker_permanent (or unclassified)
// errors also publish a failed transition, then swallow the error so asynq
// does not retry a job the aggregator has already marked failed.
func publishFailure(ctx context.Context, pub port.Publisher, jobID uuid.UUID, from model.Status, err error) error {
	jerr, ok := joberr.As(err)
	retryable := ok && jerr.Kind == joberr.KindWorkerTransient

	message := err.Error()
	if ok {
		message = jerr.Message
	}
	pub.PublishError(ctx, jobID, model.ErrorPayload{Code: "WORKER_ERROR", Message: message, Retryable: retryable})

	if retryable {
		return err
	}

	pub.PublishStateChange(ctx, jobID, model.StateChangePayload{From: from, To: model.StatusFailed})
	return nil
}
