package mariadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type EventRepository struct {
	db *sql.DB
}

var _ port.EventRepository = (*EventRepository)(nil)

func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Append(ctx context.Context, event *model.Event) error {
	const query = `INSERT INTO job_events (job_id, kind, payload) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, event.JobID, event.Kind, event.Payload)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (r *EventRepository) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.Event, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM job_events WHERE job_id = ?`, jobID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count events: %w", err)
	}

	if limit <= 0 {
		limit = 100
	}
	const query = `
      SELECT id, job_id, kind, payload, created_at
      FROM job_events
      WHERE job_id = ?
      ORDER BY id DESC
      LIMIT ? OFFSET ?
    `
	rows, err := r.db.QueryContext(ctx, query, jobID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (r *EventRepository) ListRecentByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]*model.Event, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `
      SELECT id, job_id, kind, payload, created_at
      FROM job_events
      WHERE job_id = ?
      ORDER BY id DESC
      LIMIT ?
    `
	rows, err := r.db.QueryContext(ctx, query, jobID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func scanEvents(rows *sql.Rows) ([]*model.Event, error) {
	var events []*model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.JobID, &e.Kind, &e.Payload, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, &e)
	}
	return events, rows.Err()
}
