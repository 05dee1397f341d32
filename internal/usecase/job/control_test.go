package job

import (
	"context"
	"testing"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

func TestCancel_Success(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &mockJobs{job: &model.Job{ID: id, Status: model.StatusDownloading}}
	media := &mockMedia{}
	queue := &mockQueue{}
	svc := New(jobs, media, &mockEvents{}, queue, &mockFS{}, &mockArchiver{}, defaults())

	got, err := svc.Cancel(context.Background(), id)
	if err != nil {
		t.Fatalf("Cancel() error = %v", err)
	}
	if got.Status != model.StatusCanceled {
		t.Errorf("Status = %q, want canceled", got.Status)
	}
	if len(queue.cancelCalls) != 1 {
		t.Errorf("queue.Cancel calls = %d, want 1", len(queue.cancelCalls))
	}
}

func TestCancel_AlreadyTerminal(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &mockJobs{job: &model.Job{ID: id, Status: model.StatusComplete}}
	svc := New(jobs, &mockMedia{}, &mockEvents{}, &mockQueue{}, &mockFS{}, &mockArchiver{}, defaults())

	_, err := svc.Cancel(context.Background(), id)
	if err == nil {
		t.Fatal("expected error canceling a terminal job")
	}
	jerr, ok := joberr.As(err)
	if !ok || jerr.Kind != joberr.KindInvalidState {
		t.Errorf("error = %v, want KindInvalidState", err)
	}
}

func TestPrioritize_ClampsAndPersists(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &mockJobs{job: &model.Job{ID: id, Status: model.StatusQueued, Priority: 5}}
	svc := New(jobs, &mockMedia{}, &mockEvents{}, &mockQueue{}, &mockFS{}, &mockArchiver{}, defaults())

	got, err := svc.Prioritize(context.Background(), id, 99)
	if err != nil {
		t.Fatalf("Prioritize() error = %v", err)
	}
	if got.Priority != 10 {
		t.Errorf("Priority = %d, want clamped to 10", got.Priority)
	}
}

func TestControl_PauseResumeNotImplemented(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &mockJobs{job: &model.Job{ID: id, Status: model.StatusQueued}}
	svc := New(jobs, &mockMedia{}, &mockEvents{}, &mockQueue{}, &mockFS{}, &mockArchiver{}, defaults())

	for _, action := range []Action{ActionPause, ActionResume} {
		_, err := svc.Control(context.Background(), ControlInput{JobID: id, Action: action})
		if err == nil {
			t.Fatalf("action %q: expected not-implemented error", action)
		}
		jerr, ok := joberr.As(err)
		if !ok || jerr.Kind != joberr.KindInvalidState {
			t.Errorf("action %q: error = %v, want KindInvalidState", action, err)
		}
	}
}

func TestControl_PrioritizeRequiresPriority(t *testing.T) {
	svc := New(&mockJobs{}, &mockMedia{}, &mockEvents{}, &mockQueue{}, &mockFS{}, &mockArchiver{}, defaults())

	_, err := svc.Control(context.Background(), ControlInput{JobID: uuid.NewUUID(), Action: ActionPrioritize})
	if err == nil {
		t.Fatal("expected validation error when priority is omitted")
	}
	jerr, ok := joberr.As(err)
	if !ok || jerr.Kind != joberr.KindValidation {
		t.Errorf("error = %v, want KindValidation", err)
	}
}

func TestControl_UnknownAction(t *testing.T) {
	svc := New(&mockJobs{}, &mockMedia{}, &mockEvents{}, &mockQueue{}, &mockFS{}, &mockArchiver{}, defaults())

	_, err := svc.Control(context.Background(), ControlInput{JobID: uuid.NewUUID(), Action: "bogus"})
	if err == nil {
		t.Fatal("expected validation error for unknown action")
	}
	jerr, ok := joberr.As(err)
	if !ok || jerr.Kind != joberr.KindValidation {
		t.Errorf("error = %v, want KindValidation", err)
	}
}
