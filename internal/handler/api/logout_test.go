package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/auth"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

func TestLogoutHandler(t *testing.T) {
	t.Run("no session in context", func(t *testing.T) {
		svc := auth.New(&mockUserRepo{}, &mockSessionRepo{}, "secret", time.Hour)
		h := LogoutHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d; want 401", rec.Code)
		}
	})

	t.Run("revokes named session", func(t *testing.T) {
		sessionID := uuid.NewUUID()
		sessions := &mockSessionRepo{session: &model.Session{ID: sessionID, UserID: uuid.NewUUID(), ExpiresAt: time.Now().Add(time.Hour)}}
		svc := auth.New(&mockUserRepo{}, sessions, "secret", time.Hour)
		h := LogoutHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
		req = req.WithContext(api_context.WithSessionID(context.Background(), sessionID))
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Fatalf("status = %d; want 204", rec.Code)
		}
		if !sessions.revoked {
			t.Error("expected session to be revoked")
		}
	})
}
