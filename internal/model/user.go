package model

import (
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Role is the authorization level of a User (spec.md §6.1, external contract).
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// Session is an authentication handle (spec.md §3). The Control API requires
// a valid, unexpired, unrevoked session for mutating calls.
type Session struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Revoked   bool      `json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

func (s Session) Valid(now time.Time) bool {
	return !s.Revoked && now.Before(s.ExpiresAt)
}
