package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

// DubHandler runs the dub stage: publishes downloaded->dubbing when the task
// starts (the download handler has already published downloaded), invokes
// tr, then on success publishes dubbing->dubbed and enqueues mux.
func DubHandler(pub port.Publisher, q port.Queue, tr port.Translator, defaults StageDefaults) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload port.DubPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal dub payload: %w", err)
		}

		pub.PublishStateChange(ctx, payload.JobID, model.StateChangePayload{From: model.StatusDownloaded, To: model.StatusDubbing})
		pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: "starting dub: " + payload.TargetLang})

		result, err := tr.Dub(ctx, payload, func(p model.ProgressPayload) {
			pub.PublishProgress(ctx, payload.JobID, p)
		})
		if err != nil {
			return publishFailure(ctx, pub, payload.JobID, model.StatusDubbing, err)
		}

		pub.PublishStateChange(ctx, payload.JobID, model.StateChangePayload{From: model.StatusDubbing, To: model.StatusDubbed})
		pub.PublishLog(ctx, payload.JobID, model.LogPayload{Level: "info", Message: "dub complete, enqueuing mux stage"})

		muxPayload := port.MuxPayload{
			JobID:           payload.JobID,
			VideoPath:       payload.VideoPath,
			DubbedAudioPath: result.AudioPath,
			TargetLang:      payload.TargetLang,
			OutputContainer: payload.OutputContainer,
			DuckingLevel:    defaults.DuckingLevel,
			NormalizationLUFS: defaults.NormalizationLUFS,
			TempDir:         payload.TempDir,
			FinalPath:       payload.FinalPath,
		}
		if err := q.EnqueueMux(ctx, muxPayload, port.EnqueueOpts{Priority: defaults.Priority}); err != nil {
			return fmt.Errorf("enqueue mux stage: %w", err)
		}
		return nil
	}
}
