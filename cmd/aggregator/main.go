package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vpikus/vdm-ai-dubbing/internal/aggregator"
	"github.com/vpikus/vdm-ai-dubbing/internal/bus"
	"github.com/vpikus/vdm-ai-dubbing/internal/config"
	"github.com/vpikus/vdm-ai-dubbing/internal/db"
	"github.com/vpikus/vdm-ai-dubbing/internal/handler/ws"
	"github.com/vpikus/vdm-ai-dubbing/internal/logger"
	"github.com/vpikus/vdm-ai-dubbing/internal/repository/mariadb"
	"github.com/vpikus/vdm-ai-dubbing/internal/subscription"
)

// The Subscription Gateway lives only in memory, so the websocket listener
// is served from this same process as the Aggregator that forwards into it
// — splitting them across cmd/api and cmd/aggregator would leave the
// gateway with no way to receive what the aggregator publishes.
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
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	jobsRepo := mariadb.NewJobRepository(database.DB)
	mediaRepo := mariadb.NewMediaRepository(database.DB)
	eventsRepo := mariadb.NewEventRepository(database.DB)

	redisBus := bus.New(cfg.QueueURL, "", cfg.RedisDB)
	gateway := subscription.New()
	agg := aggregator.New(redisBus, jobsRepo, eventsRepo, mediaRepo, gateway)

	go func() {
		logger.Info(ctx, "🚀 Event Aggregator running")
		if err := agg.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Errorf(ctx, "❌  Aggregator stopped: %v", err)
		}
	}()

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Get("/ws", ws.Handler(gateway))

	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.WebsocketPort), Handler: r}
	go func() {
		logger.Infof(ctx, "🚀 Websocket fan-out listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
	}

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
	}
}
