package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vpikus/vdm-ai-dubbing/internal/api_context"
	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

func TestResumeJobHandler(t *testing.T) {
	id := uuid.NewUUID()

	t.Run("success reports resumedFrom", func(t *testing.T) {
		svc := &mockResumer{out: &job.ResumeResult{Job: &model.Job{ID: id, Status: model.StatusDownloaded}, ResumedFrom: "dubbing"}}
		h := ResumeJobHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/jobs/"+id.String()+"/resume", nil)
		req = req.WithContext(api_context.WithJobID(context.Background(), id))
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want 200, body=%s", rec.Code, rec.Body.String())
		}
		var resp resumeJobResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.ResumedFrom != "dubbing" {
			t.Errorf("resumedFrom = %q; want dubbing", resp.ResumedFrom)
		}
	})

	t.Run("cannot resume surfaces diagnostic details", func(t *testing.T) {
		svc := &mockResumer{err: joberr.New(joberr.KindCannotResume, "no recoverable stage found").WithDetails(map[string]any{
			"downloadCompleted": false,
			"hasVideo":          false,
		})}
		h := ResumeJobHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/jobs/"+id.String()+"/resume", nil)
		req = req.WithContext(api_context.WithJobID(context.Background(), id))
		rec := httptest.NewRecorder()
		h(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d; want 400, body=%s", rec.Code, rec.Body.String())
		}
		var resp ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.Code != string(joberr.KindCannotResume) {
			t.Errorf("code = %q; want cannot_resume", resp.Code)
		}
		if _, ok := resp.Details["downloadCompleted"]; !ok {
			t.Errorf("details missing downloadCompleted: %+v", resp.Details)
		}
	})
}
