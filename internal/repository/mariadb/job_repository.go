package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type JobRepository struct {
	db *sql.DB
}

var _ port.JobRepository = (*JobRepository)(nil)

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

// CreateWithMedia inserts the job row and its all-null media row in a single
// transaction, the atomicity invariant in spec.md §4.A.
func (r *JobRepository) CreateWithMedia(ctx context.Context, job *model.Job) error {
	log.Printf("creating job #%s for %q...", job.ID, job.SourceURL)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const jobQuery = `
      INSERT INTO jobs
        (id, source_url, status, priority, retry_count, error,
         requested_dubbing, target_lang, use_lively_voice, format_preset,
         output_container, download_subtitles)
      VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err = tx.ExecContext(ctx, jobQuery,
		job.ID, job.SourceURL, job.Status, job.Priority, job.RetryCount, nullIfEmpty(job.Error),
		job.RequestedDubbing, job.TargetLang, job.UseLivelyVoice, job.FormatPreset,
		job.OutputContainer, job.DownloadSubtitles,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}

	const mediaQuery = `INSERT INTO media (job_id) VALUES (?)`
	if _, err := tx.ExecContext(ctx, mediaQuery, job.ID); err != nil {
		return fmt.Errorf("insert media: %w", err)
	}

	const eventQuery = `INSERT INTO job_events (job_id, kind, payload) VALUES (?, ?, ?)`
	if _, err := tx.ExecContext(ctx, eventQuery, job.ID, model.EventStarted, model.Payload{}); err != nil {
		return fmt.Errorf("insert started event: %w", err)
	}

	return tx.Commit()
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	const query = `
      SELECT id, source_url, status, priority, retry_count, error,
             requested_dubbing, target_lang, use_lively_voice, format_preset,
             output_container, download_subtitles, created_at, updated_at, completed_at
      FROM jobs
      WHERE id = ?
    `
	row := r.db.QueryRowContext(ctx, query, id)
	job, err := scanJob(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, joberr.New(joberr.KindNotFound, "job not found")
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepository) List(ctx context.Context, filter port.ListJobsFilter) ([]*model.Job, int, error) {
	where := make([]string, 0, 2)
	args := make([]any, 0, 4)

	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		where = append(where, "(source_url LIKE ? OR HEX(id) LIKE ?)")
		like := "%" + filter.Search + "%"
		args = append(args, like, like)
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = "WHERE " + strings.Join(where, " AND ")
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM jobs " + whereClause
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count jobs: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
      SELECT id, source_url, status, priority, retry_count, error,
             requested_dubbing, target_lang, use_lively_voice, format_preset,
             output_container, download_subtitles, created_at, updated_at, completed_at
      FROM jobs
      %s
      ORDER BY priority DESC, created_at ASC
      LIMIT ? OFFSET ?
    `, whereClause)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*model.Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, 0, err
		}
		jobs = append(jobs, job)
	}
	return jobs, total, rows.Err()
}

// CompareAndTransition is a single UPDATE ... WHERE status = ? guard, so a
// concurrent state change loses the race instead of corrupting the row.
// completed_at is kept in lockstep with the destination status here rather
// than at each call site (spec.md invariant "completed_at is set iff
// state ∈ {complete, failed, canceled}"): it is stamped on entry into a
// terminal state and cleared on the Resume Planner's way back out of one.
func (r *JobRepository) CompareAndTransition(ctx context.Context, id uuid.UUID, from, to model.Status) error {
	log.Printf("transitioning job #%s: %s -> %s", id, from, to)

	query := `UPDATE jobs SET status = ?, completed_at = NULL WHERE id = ? AND status = ?`
	if to.Terminal() {
		query = `UPDATE jobs SET status = ?, completed_at = NOW() WHERE id = ? AND status = ?`
	}
	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("transition job: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return joberr.New(joberr.KindInvalidState, fmt.Sprintf("job is not in status %q", from))
	}
	return nil
}

func (r *JobRepository) SetPriority(ctx context.Context, id uuid.UUID, priority int) error {
	const query = `UPDATE jobs SET priority = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, priority, id)
	return err
}

func (r *JobRepository) SetError(ctx context.Context, id uuid.UUID, message string) error {
	const query = `UPDATE jobs SET error = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, message, id)
	return err
}

func (r *JobRepository) IncrementRetryCount(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE jobs SET retry_count = retry_count + 1 WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *JobRepository) Delete(ctx context.Context, id uuid.UUID) error {
	log.Printf("deleting job #%s...", id)
	const query = `DELETE FROM jobs WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *JobRepository) ListForReaping(ctx context.Context, statuses []model.Status, cutoff time.Time) ([]uuid.UUID, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(statuses)), ",")
	query := fmt.Sprintf(`SELECT id FROM jobs WHERE status IN (%s) AND updated_at < ?`, placeholders)

	args := make([]any, 0, len(statuses)+1)
	for _, s := range statuses {
		args = append(args, s)
	}
	args = append(args, cutoff)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*model.Job, error) {
	var job model.Job
	var errMsg sql.NullString
	var completedAt sql.NullTime

	if err := row.Scan(
		&job.ID, &job.SourceURL, &job.Status, &job.Priority, &job.RetryCount, &errMsg,
		&job.RequestedDubbing, &job.TargetLang, &job.UseLivelyVoice, &job.FormatPreset,
		&job.OutputContainer, &job.DownloadSubtitles, &job.CreatedAt, &job.UpdatedAt, &completedAt,
	); err != nil {
		return nil, err
	}
	job.Error = errMsg.String
	if completedAt.Valid {
		job.CompletedAt = &completedAt.Time
	}
	return &job, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
