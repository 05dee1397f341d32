package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/hibiken/asynq"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

// MuxHandler runs the final stage: mixes and muxes audio tracks, publishes
// the resulting file metadata, mirrors the output off-box, and transitions
// the job to complete.
func MuxHandler(pub port.Publisher, mx port.Mixer, ar port.Archiver) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload port.MuxPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal mux payload: %w", err)
		}

		pub.PublishStateChange(ctx, payload.JobID, model.StateChangePayload{From: model.StatusDubbed, To: model.StatusMuxing})
		pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: "starting mux"})

		result, err := mx.Mux(ctx, payload, func(p model.ProgressPayload) {
			pub.PublishProgress(ctx, payload.JobID, p)
		})
		if err != nil {
			return publishFailure(ctx, pub, payload.JobID, model.StatusMuxing, err)
		}

		finalPath, sizeBytes := result.FinalPath, result.SizeBytes
		pub.PublishMetadata(ctx, payload.JobID, model.MetadataPatch{
			AudioMixedPath: &finalPath,
			SizeBytes:      &sizeBytes,
		})

		if ar.Enabled() {
			if err := ar.Archive(ctx, payload.JobID, result.FinalPath); err != nil {
				pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "warn", Message: "archival mirror failed: " + err.Error()})
			}
		}

		pub.PublishStateChange(ctx, payload.JobID, model.StateChangePayload{From: model.StatusMuxing, To: model.StatusComplete})
		pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: fmt.Sprintf("mux complete: %s (%s)", result.FinalPath, humanize.Bytes(uint64(result.SizeBytes)))})
		return nil
	}
}
