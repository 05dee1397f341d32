package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vpikus/vdm-ai-dubbing/internal/archiver"
	"github.com/vpikus/vdm-ai-dubbing/internal/bus"
	"github.com/vpikus/vdm-ai-dubbing/internal/capability"
	"github.com/vpikus/vdm-ai-dubbing/internal/config"
	"github.com/vpikus/vdm-ai-dubbing/internal/handler/worker"
	"github.com/vpikus/vdm-ai-dubbing/internal/logger"
	"github.com/vpikus/vdm-ai-dubbing/internal/queue"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	redisOpt := asynq.RedisClientOpt{Addr: cfg.QueueURL, DB: cfg.RedisDB}
	redisBus := bus.New(cfg.QueueURL, "", cfg.RedisDB)
	coordinator := queue.NewCoordinator(cfg.QueueURL, "", cfg.RedisDB)
	defer coordinator.Close()

	mirror, err := archiver.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.ArchiveBucket)
	if err != nil {
		logger.Errorf(ctx, "❌  Archival mirror error: %v", err)
		os.Exit(1)
	}

	defaults := worker.StageDefaults{
		Priority:          5,
		DuckingLevel:      cfg.DuckingLevel,
		NormalizationLUFS: cfg.NormalizationLUFS,
	}

	downloadMux := asynq.NewServeMux()
	downloadMux.Handle(queue.TaskTypeDownload, worker.DownloadHandler(redisBus, coordinator, &capability.YtDlp{}, defaults))

	dubMux := asynq.NewServeMux()
	dubMux.Handle(queue.TaskTypeDub, worker.DubHandler(redisBus, coordinator, &capability.VOT{Endpoint: cfg.VotEndpoint}, defaults))

	muxMux := asynq.NewServeMux()
	muxMux.Handle(queue.TaskTypeMux, worker.MuxHandler(redisBus, &capability.FFmpeg{}, mirror))

	servers := []*asynq.Server{
		runStage(ctx, "download", redisOpt, cfg.DownloadConcurrency, downloadMux),
		runStage(ctx, "dub", redisOpt, cfg.DubbingConcurrency, dubMux),
		runStage(ctx, "mux", redisOpt, cfg.MuxingConcurrency, muxMux),
	}

	logger.Info(ctx, "🚀 Workers started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	for _, srv := range servers {
		srv.Shutdown()
	}
	<-shutdownCtx.Done()
	logger.Info(ctx, "✅  Workers gracefully stopped")
}

func runStage(ctx context.Context, stage string, opt asynq.RedisClientOpt, concurrency int, mux *asynq.ServeMux) *asynq.Server {
	srv := asynq.NewServer(opt, asynq.Config{
		Concurrency:    concurrency,
		Queues:         queue.WeightedQueues(stage),
		RetryDelayFunc: queue.RetryDelayFunc(stage),
	})
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Errorf(ctx, "❌  %s worker failed: %v", stage, err)
			os.Exit(1)
		}
	}()
	return srv
}
