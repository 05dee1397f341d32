package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

func TestCreateJobHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockJobCreator{out: &model.Job{ID: uuid.NewUUID(), Status: model.StatusQueued}}
		h := CreateJobHandler(svc)

		body, _ := json.Marshal(CreateJobRequest{URL: "https://example.test/v1"})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d; want 201, body=%s", rec.Code, rec.Body.String())
		}
		if svc.in.SourceURL != "https://example.test/v1" {
			t.Errorf("service got SourceURL = %q", svc.in.SourceURL)
		}
	})

	t.Run("missing url rejected", func(t *testing.T) {
		svc := &mockJobCreator{}
		h := CreateJobHandler(svc)

		body, _ := json.Marshal(CreateJobRequest{})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want 400", rec.Code)
		}
	})

	t.Run("insufficient space surfaces 503", func(t *testing.T) {
		svc := &mockJobCreator{err: joberr.New(joberr.KindInsufficientSpace, "only 1.0GB free")}
		h := CreateJobHandler(svc)

		body, _ := json.Marshal(CreateJobRequest{URL: "https://example.test/v1"})
		req := httptest.NewRequest(http.MethodPost, "/jobs", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d; want 503, body=%s", rec.Code, rec.Body.String())
		}
	})
}
