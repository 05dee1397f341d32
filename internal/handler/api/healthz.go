package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

type healthzResponse struct {
	Status       string            `json:"status"`
	Uptime       string            `json:"uptime"`
	Timestamp    time.Time         `json:"timestamp"`
	Dependencies map[string]string `json:"dependencies"`
}

// HealthzHandler serves GET /healthz (spec.md §6.1): pings the database,
// the queue broker, and the filesystem's free-space check, and rolls the
// three up into a single status.
func HealthzHandler(db *sql.DB, queue port.Queue, fs port.FileLifecycle, startedAt time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deps := map[string]string{"db": "ok", "queue": "ok", "filesystem": "ok"}
		failures := 0

		if err := db.PingContext(r.Context()); err != nil {
			deps["db"] = "unhealthy"
			failures++
		}
		if _, err := queue.Stats(r.Context()); err != nil {
			deps["queue"] = "unhealthy"
			failures++
		}
		if _, err := fs.FreeSpaceGB(); err != nil {
			deps["filesystem"] = "unhealthy"
			failures++
		}

		status := "ok"
		switch failures {
		case 0:
			status = "ok"
		case 1, 2:
			status = "degraded"
		default:
			status = "unhealthy"
		}

		RespondJSON(w, http.StatusOK, healthzResponse{
			Status:       status,
			Uptime:       time.Since(startedAt).String(),
			Timestamp:    time.Now(),
			Dependencies: deps,
		})
	}
}
