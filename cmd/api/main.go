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

	"github.com/vpikus/vdm-ai-dubbing/internal/archiver"
	"github.com/vpikus/vdm-ai-dubbing/internal/auth"
	"github.com/vpikus/vdm-ai-dubbing/internal/config"
	"github.com/vpikus/vdm-ai-dubbing/internal/db"
	"github.com/vpikus/vdm-ai-dubbing/internal/fs"
	"github.com/vpikus/vdm-ai-dubbing/internal/handler/api"
	"github.com/vpikus/vdm-ai-dubbing/internal/logger"
	cMiddleware "github.com/vpikus/vdm-ai-dubbing/internal/middleware"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/queue"
	"github.com/vpikus/vdm-ai-dubbing/internal/repository/mariadb"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		logger.Errorf(ctx, "❌  Configuration error: %v", err)
		os.Exit(1)
	}

	logger.Init()

	startedAt := time.Now()

	database := initDb(ctx, cfg)

	jobsRepo := mariadb.NewJobRepository(database.DB)
	mediaRepo := mariadb.NewMediaRepository(database.DB)
	eventsRepo := mariadb.NewEventRepository(database.DB)
	usersRepo := mariadb.NewUserRepository(database.DB)
	sessionsRepo := mariadb.NewSessionRepository(database.DB)

	if err := auth.BootstrapAdmin(ctx, usersRepo, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		logger.Errorf(ctx, "❌  Admin bootstrap failed: %v", err)
		os.Exit(1)
	}

	fileLifecycle := fs.New(cfg.MediaRoot)
	coordinator := queue.NewCoordinator(cfg.QueueURL, "", cfg.RedisDB)
	defer coordinator.Close()

	mirror, err := archiver.New(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioUseSSL, cfg.ArchiveBucket)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to initialise archival mirror: %v", err)
		os.Exit(1)
	}

	jobDefaults := job.Defaults{
		TargetLang:        cfg.DefaultTargetLang,
		FormatPreset:      model.FormatPreset(cfg.DefaultFormatPreset),
		OutputContainer:   model.OutputContainer(cfg.DefaultContainer),
		DuckingLevel:      cfg.DuckingLevel,
		NormalizationLUFS: cfg.NormalizationLUFS,
		MinFreeSpaceGb:    cfg.MinFreeSpaceGb,
		DownloadPriority:  5,
	}
	jobSvc := job.New(jobsRepo, mediaRepo, eventsRepo, coordinator, fileLifecycle, mirror, jobDefaults)

	authSvc := auth.New(usersRepo, sessionsRepo, cfg.JWTSecret, cfg.JWTExpiresIn)

	r := initRouter(ctx)
	registerRoutes(r, authSvc, usersRepo, jobSvc, jobsRepo, mediaRepo, eventsRepo, database, coordinator, fileLifecycle, startedAt)

	listenRouter(ctx, r, cfg, database)
}

func initDb(ctx context.Context, cfg *config.Settings) *db.Database {
	logger.Info(ctx, "initialising database...")

	database, err := db.New(cfg.MariaDBDSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime)
	if err != nil {
		logger.Errorf(ctx, "❌  Failed to connect to db: %v", err)
		os.Exit(1)
	}

	return database
}

func initRouter(ctx context.Context) *chi.Mux {
	logger.Info(ctx, "initialising router...")

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.NotFound(api.NotFoundHandler())
	r.MethodNotAllowed(api.MethodNotAllowedHandler())

	return r
}

func registerRoutes(
	r *chi.Mux,
	authSvc *auth.Service,
	usersRepo *mariadb.UserRepository,
	jobSvc *job.Service,
	jobsRepo *mariadb.JobRepository,
	mediaRepo *mariadb.MediaRepository,
	eventsRepo *mariadb.EventRepository,
	database *db.Database,
	coordinator *queue.Coordinator,
	fileLifecycle *fs.Lifecycle,
	startedAt time.Time,
) {
	r.Get("/healthz", api.HealthzHandler(database.DB, coordinator, fileLifecycle, startedAt))

	r.Post("/auth/login", api.LoginHandler(authSvc))

	r.Group(func(r chi.Router) {
		r.Use(cMiddleware.WithSessionAuth(authSvc))

		r.Post("/auth/logout", api.LogoutHandler(authSvc))
		r.Get("/auth/me", api.MeHandler(usersRepo))

		r.Post("/jobs", api.CreateJobHandler(jobSvc))
		r.Get("/jobs", api.ListJobsHandler(jobsRepo))

		r.Route("/jobs/{id}", func(r chi.Router) {
			r.Use(cMiddleware.WithJobID())

			r.Get("/", api.GetJobHandler(jobsRepo, mediaRepo, eventsRepo))
			r.Get("/logs", api.JobLogsHandler(eventsRepo))
			r.Post("/control", api.ControlJobHandler(jobSvc))
			r.Post("/cancel", api.CancelJobHandler(jobSvc))
			r.Post("/retry", api.RetryJobHandler(jobSvc))
			r.Post("/resume", api.ResumeJobHandler(jobSvc))
			r.Delete("/", api.DeleteJobHandler(jobSvc))
		})
	})
}

func listenRouter(ctx context.Context, r *chi.Mux, cfg *config.Settings, database *db.Database) {
	srv := &http.Server{Addr: ":" + strconv.Itoa(cfg.ServerPort), Handler: r}

	// start serving
	go func() {
		logger.Infof(ctx, "🚀 Control API listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf(ctx, "❌  Listen error: %v", err)
			os.Exit(1)
		}
	}()

	// block until we get SIGINT/SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info(ctx, "🛑 Shutdown signal received, exiting…")

	// graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf(ctx, "❌  Server shutdown failed: %v", err)
		os.Exit(1)
	}
	logger.Info(ctx, "✅  Server gracefully stopped")

	if err := database.Close(); err != nil {
		logger.Errorf(ctx, "DB close error: %v", err)
		os.Exit(1)
	}
}
