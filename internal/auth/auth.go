// Package auth implements the Control API's login/session contract
// (spec.md §3 Session, §6.1 POST /auth/login): password verification,
// session issuance, and JWT-wrapped session tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// Service issues and validates session tokens for the Control API.
type Service struct {
	users        port.UserRepository
	sessions     port.SessionRepository
	jwtSecret    []byte
	jwtExpiresIn time.Duration
}

func New(users port.UserRepository, sessions port.SessionRepository, jwtSecret string, jwtExpiresIn time.Duration) *Service {
	return &Service{
		users:        users,
		sessions:     sessions,
		jwtSecret:    []byte(jwtSecret),
		jwtExpiresIn: jwtExpiresIn,
	}
}

// sessionClaims carries the session id as sub; the session row itself is the
// source of truth for expiry and revocation, so the JWT only needs to name it.
type sessionClaims struct {
	jwt.RegisteredClaims
	UserID uuid.UUID  `json:"uid"`
	Role   model.Role `json:"role"`
}

// Login verifies credentials, opens a session row, and returns a signed JWT
// naming it. 401s (joberr.KindUnauthorized) on any mismatch — the taxonomy
// does not distinguish unknown username from wrong password.
func (s *Service) Login(ctx context.Context, username, password string) (string, *model.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if e, ok := joberr.As(err); ok && e.Kind == joberr.KindNotFound {
			return "", nil, joberr.New(joberr.KindUnauthorized, "invalid username or password")
		}
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, joberr.New(joberr.KindUnauthorized, "invalid username or password")
	}

	now := time.Now()
	session := &model.Session{
		ID:        uuid.NewUUID(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.jwtExpiresIn),
		CreatedAt: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return "", nil, err
	}

	token, err := s.sign(session, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout revokes the session the bearer token names; the token itself stays
// parseable but Authenticate rejects it once the row is revoked.
func (s *Service) Logout(ctx context.Context, sessionID uuid.UUID) error {
	return s.sessions.Revoke(ctx, sessionID)
}

// Authenticate parses and verifies a bearer token, then checks the session
// row it names is still valid (spec.md §3: "valid, unexpired, unrevoked").
func (s *Service) Authenticate(ctx context.Context, tokenString string) (*model.Session, *model.User, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method %s", t.Method.Alg())
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, nil, joberr.New(joberr.KindUnauthorized, "invalid session token")
	}

	sessionID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, nil, joberr.New(joberr.KindUnauthorized, "invalid session token")
	}

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		if e, ok := joberr.As(err); ok && e.Kind == joberr.KindNotFound {
			return nil, nil, joberr.New(joberr.KindSessionExpired, "session not found")
		}
		return nil, nil, err
	}
	if !session.Valid(time.Now()) {
		return nil, nil, joberr.New(joberr.KindSessionExpired, "session expired or revoked")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, err
	}
	return session, user, nil
}

func (s *Service) sign(session *model.Session, role model.Role) (string, error) {
	claims := sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.ID.String(),
			IssuedAt:  jwt.NewNumericDate(session.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
		UserID: session.UserID,
		Role:   role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", errors.New("sign session token: " + err.Error())
	}
	return signed, nil
}
