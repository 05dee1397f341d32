// Package queue implements the Queue Coordinator (spec.md §4.B) on top of
// asynq: three named queues (download, dub, mux), each fanned out into
// eleven priority sub-queues because asynq has no notion of per-task
// priority within a single queue.
package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

const (
	stageDownload = "download"
	stageDub      = "dub"
	stageMux      = "mux"

	TaskTypeDownload = "job:download"
	TaskTypeDub      = "job:dub"
	TaskTypeMux      = "job:mux"

	// maxPriority bounds the fan-out: priorities run 0 (lowest) to 10 (highest).
	maxPriority = 10
)

// stageRetry is the fixed per-stage retry/timeout/backoff table of
// spec.md §4.B: download allows 3 attempts with a 1h per-attempt timeout;
// dub and mux allow 3 attempts with a 30min timeout. BaseDelay seeds each
// stage's exponential backoff curve (spec.md §4.B "exponential backoff").
type stageRetry struct {
	MaxRetry  int
	Timeout   time.Duration
	BaseDelay time.Duration
}

var stageRetryTable = map[string]stageRetry{
	stageDownload: {MaxRetry: 3, Timeout: time.Hour, BaseDelay: time.Second},
	stageDub:      {MaxRetry: 3, Timeout: 30 * time.Minute, BaseDelay: 2 * time.Second},
	stageMux:      {MaxRetry: 3, Timeout: 30 * time.Minute, BaseDelay: 2 * time.Second},
}

// RetryDelayFunc returns the exponential backoff function for one stage's
// asynq.Server, seeded from that stage's BaseDelay: delay doubles with each
// retry attempt (spec.md §4.B).
func RetryDelayFunc(stage string) func(n int, err error, task *asynq.Task) time.Duration {
	base := stageRetryTable[stage].BaseDelay
	if base <= 0 {
		base = time.Second
	}
	return func(n int, err error, task *asynq.Task) time.Duration {
		if n < 1 {
			n = 1
		}
		return base << uint(n-1)
	}
}

// queueName derives the concrete asynq queue name for a (stage, priority)
// pair, e.g. "download:7".
func queueName(stage string, priority int) string {
	if priority < 0 {
		priority = 0
	}
	if priority > maxPriority {
		priority = maxPriority
	}
	return fmt.Sprintf("%s:%d", stage, priority)
}

// WeightedQueues returns the asynq.Config.Queues map for one stage: weight
// increases with priority, so asynq's weighted random queue pop favors
// higher-priority jobs without starving the lower ones (spec.md §9, Open
// Question on priority).
func WeightedQueues(stage string) map[string]int {
	qs := make(map[string]int, maxPriority+1)
	for p := 0; p <= maxPriority; p++ {
		qs[queueName(stage, p)] = p + 1
	}
	return qs
}

// AllQueueNames lists every concrete sub-queue for one stage, used by
// Stats and ReapDeadLetter to sweep the full fan-out.
func AllQueueNames(stage string) []string {
	names := make([]string, 0, maxPriority+1)
	for p := 0; p <= maxPriority; p++ {
		names = append(names, queueName(stage, p))
	}
	return names
}

var allStages = []string{stageDownload, stageDub, stageMux}

// Coordinator is the asynq-backed implementation of port.Queue.
type Coordinator struct {
	client    *asynq.Client
	inspector *asynq.Inspector
}

var _ port.Queue = (*Coordinator)(nil)

func NewCoordinator(addr, password string, db int) *Coordinator {
	opt := asynq.RedisClientOpt{Addr: addr, Password: password, DB: db}
	return &Coordinator{
		client:    asynq.NewClient(opt),
		inspector: asynq.NewInspector(opt),
	}
}

func (c *Coordinator) EnqueueDownload(ctx context.Context, payload port.DownloadPayload, opts port.EnqueueOpts) error {
	return c.enqueue(ctx, stageDownload, TaskTypeDownload, payload.JobID.String(), payload, opts)
}

func (c *Coordinator) EnqueueDub(ctx context.Context, payload port.DubPayload, opts port.EnqueueOpts) error {
	return c.enqueue(ctx, stageDub, TaskTypeDub, payload.JobID.String(), payload, opts)
}

func (c *Coordinator) EnqueueMux(ctx context.Context, payload port.MuxPayload, opts port.EnqueueOpts) error {
	return c.enqueue(ctx, stageMux, TaskTypeMux, payload.JobID.String(), payload, opts)
}

func (c *Coordinator) enqueue(ctx context.Context, stage, taskType, jobID string, payload any, opts port.EnqueueOpts) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", stage, err)
	}

	task := asynq.NewTask(taskType, data)

	retry := stageRetryTable[stage]
	maxRetry, timeout := retry.MaxRetry, retry.Timeout
	if opts.MaxRetry > 0 {
		maxRetry = opts.MaxRetry
	}
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	taskOpts := []asynq.Option{
		asynq.Queue(queueName(stage, opts.Priority)),
		// TaskID pins this task to jobID, so re-enqueuing the same job
		// (e.g. a retry racing a worker's own re-enqueue) is a no-op.
		asynq.TaskID(jobID),
	}
	if maxRetry > 0 {
		taskOpts = append(taskOpts, asynq.MaxRetry(maxRetry))
	}
	if timeout > 0 {
		taskOpts = append(taskOpts, asynq.Timeout(timeout))
	}
	if opts.UniqueTTL > 0 {
		taskOpts = append(taskOpts, asynq.Unique(opts.UniqueTTL))
	}

	_, err = c.client.EnqueueContext(ctx, task, taskOpts...)
	if err != nil && err != asynq.ErrTaskIDConflict && err != asynq.ErrDuplicateTask {
		return fmt.Errorf("enqueue %s: %w", stage, err)
	}
	return nil
}

// Cancel best-effort removes jobID's pending/scheduled task from whichever
// stage and priority sub-queue currently holds it. It does not know in
// advance which one that is, so it probes all of them; duplicates and
// misses are both expected and silent.
func (c *Coordinator) Cancel(ctx context.Context, jobID uuid.UUID) error {
	id := jobID.String()
	for _, stage := range allStages {
		for _, q := range AllQueueNames(stage) {
			if err := c.inspector.DeleteTask(q, id); err != nil &&
				err != asynq.ErrQueueNotFound && err != asynq.ErrTaskNotFound {
				return fmt.Errorf("cancel task %s in %s: %w", id, q, err)
			}
		}
	}
	return nil
}

func (c *Coordinator) Stats(ctx context.Context) ([]port.QueueStats, error) {
	stats := make([]port.QueueStats, 0, len(allStages))
	for _, stage := range allStages {
		agg := port.QueueStats{Queue: stage}
		for _, q := range AllQueueNames(stage) {
			info, err := c.inspector.GetQueueInfo(q)
			if err != nil {
				if err == asynq.ErrQueueNotFound {
					continue
				}
				return nil, fmt.Errorf("queue info %s: %w", q, err)
			}
			agg.Pending += info.Pending
			agg.Active += info.Active
			agg.Scheduled += info.Scheduled
			agg.Retry += info.Retry
			agg.Dead += info.Archived
		}
		stats = append(stats, agg)
	}
	return stats, nil
}

// ReapDeadLetter purges archived (dead-lettered) tasks older than olderThan
// across every sub-queue, driven by cmd/reaper's retention sweep.
func (c *Coordinator) ReapDeadLetter(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	removed := 0
	for _, stage := range allStages {
		for _, q := range AllQueueNames(stage) {
			tasks, err := c.inspector.ListArchivedTasks(q)
			if err != nil {
				if err == asynq.ErrQueueNotFound {
					continue
				}
				return removed, fmt.Errorf("list archived %s: %w", q, err)
			}
			for _, t := range tasks {
				if t.LastFailedAt.Before(cutoff) {
					if err := c.inspector.DeleteTask(q, t.ID); err != nil && err != asynq.ErrTaskNotFound {
						return removed, fmt.Errorf("delete archived task %s: %w", t.ID, err)
					}
					removed++
				}
			}
		}
	}
	return removed, nil
}

func (c *Coordinator) Close() error {
	if err := c.client.Close(); err != nil {
		return err
	}
	return c.inspector.Close()
}
