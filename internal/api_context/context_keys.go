package api_context

import (
	"context"

	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type ctxKey string

const (
	JobIDKey      ctxKey = "jobID"
	AuthUserIDKey ctxKey = "authUserID"
	AuthRoleKey   ctxKey = "authRole"
	SessionIDKey  ctxKey = "sessionID"
)

func JobIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(JobIDKey).(uuid.UUID)
	return id, ok
}

func WithJobID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, JobIDKey, id)
}

func AuthUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(AuthUserIDKey).(uuid.UUID)
	return id, ok
}

func WithAuthUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, AuthUserIDKey, id)
}

func AuthRoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(AuthRoleKey).(string)
	return role, ok
}

func WithAuthRole(ctx context.Context, role string) context.Context {
	return context.WithValue(ctx, AuthRoleKey, role)
}

func SessionIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(SessionIDKey).(uuid.UUID)
	return id, ok
}

func WithSessionID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, SessionIDKey, id)
}
