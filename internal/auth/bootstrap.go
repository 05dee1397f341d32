package auth

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/crypto/bcrypt"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

// BootstrapAdmin creates the initial admin user from env-supplied credentials
// if no users exist yet (spec.md §9 Open Question: env vars, not silently
// skipped — config.Load already refuses to start in production mode without
// both set). username/password are empty in non-production modes that chose
// to omit them, in which case this is a no-op.
func BootstrapAdmin(ctx context.Context, users port.UserRepository, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	count, err := users.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	log.Printf("bootstrapping initial admin user %q...", username)
	admin := &model.User{
		ID:           uuid.NewUUID(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
	}
	if err := users.Create(ctx, admin); err != nil {
		if e, ok := joberr.As(err); ok && e.Kind == joberr.KindValidation {
			log.Printf("admin user %q already exists, skipping bootstrap", username)
			return nil
		}
		return fmt.Errorf("create admin user: %w", err)
	}
	return nil
}
