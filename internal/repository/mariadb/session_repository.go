package mariadb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type SessionRepository struct {
	db *sql.DB
}

var _ port.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session *model.Session) error {
	const query = `INSERT INTO sessions (id, user_id, expires_at, revoked) VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, session.ID, session.UserID, session.ExpiresAt, session.Revoked)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	const query = `SELECT id, user_id, expires_at, revoked, created_at FROM sessions WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)
	var s model.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.ExpiresAt, &s.Revoked, &s.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, joberr.New(joberr.KindSessionExpired, "session not found")
		}
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE sessions SET revoked = TRUE WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

func (r *SessionRepository) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	const query = `DELETE FROM sessions WHERE expires_at < ? OR revoked = TRUE`
	res, err := r.db.ExecContext(ctx, query, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
