package queue

import (
	"time"

	"github.com/hibiken/asynq"
)

// ServerConfig builds an asynq.Config for one stage's worker pool: its
// weighted sub-queues plus the concurrency and retention settings from
// spec.md §4.B.
func ServerConfig(stage string, concurrency int) asynq.Config {
	return asynq.Config{
		Concurrency: concurrency,
		Queues:      WeightedQueues(stage),
	}
}

// DefaultRetention is how long a completed task's result is kept before
// asynq's own housekeeping removes it; the dead-letter sweep in
// ReapDeadLetter operates on a longer horizon driven by cmd/reaper.
const DefaultRetention = 24 * time.Hour
