package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	cronlib "github.com/robfig/cron/v3"

	"github.com/vpikus/vdm-ai-dubbing/internal/config"
	"github.com/vpikus/vdm-ai-dubbing/internal/db"
	"github.com/vpikus/vdm-ai-dubbing/internal/logger"
	"github.com/vpikus/vdm-ai-dubbing/internal/queue"
	"github.com/vpikus/vdm-ai-dubbing/internal/repository/mariadb"
)

// cmd/reaper runs the two housekeeping sweeps spec.md §9 leaves as an Open
// Question for who performs them: dead-lettered queue tasks older than 7
// days and expired sessions older than 24h are both cheap to sweep on a
// schedule rather than inline on the request path.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Database connection error: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	sessionsRepo := mariadb.NewSessionRepository(database.DB)
	coordinator := queue.NewCoordinator(cfg.QueueURL, "", cfg.RedisDB)
	defer coordinator.Close()

	c := cronlib.New()

	if _, err := c.AddFunc("@every 1h", func() {
		reapDeadLetters(ctx, coordinator)
	}); err != nil {
		logger.Errorf(ctx, "❌  Could not schedule dead-letter sweep: %v", err)
		os.Exit(1)
	}

	if _, err := c.AddFunc("@daily", func() {
		reapExpiredSessions(ctx, sessionsRepo)
	}); err != nil {
		logger.Errorf(ctx, "❌  Could not schedule session sweep: %v", err)
		os.Exit(1)
	}

	c.Start()
	logger.Info(ctx, "🚀 Reaper started")

	<-ctx.Done()
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	stopCtx := c.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(10 * time.Second):
	}
	logger.Info(ctx, "✅  Reaper gracefully stopped")
}

func reapDeadLetters(ctx context.Context, coordinator *queue.Coordinator) {
	n, err := coordinator.ReapDeadLetter(ctx, 7*24*time.Hour)
	if err != nil {
		logger.Errorf(ctx, "❌  Dead-letter sweep failed: %v", err)
		return
	}
	logger.Infof(ctx, "✅  Dead-letter sweep purged %d task(s)", n)
}

func reapExpiredSessions(ctx context.Context, sessionsRepo *mariadb.SessionRepository) {
	n, err := sessionsRepo.DeleteExpiredBefore(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		logger.Errorf(ctx, "❌  Session sweep failed: %v", err)
		return
	}
	logger.Infof(ctx, "✅  Session sweep purged %d expired session(s)", n)
}
