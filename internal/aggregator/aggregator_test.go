package aggregator

import (
	"context"
	"testing"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type fakeSub struct {
	ch chan port.BusMessage
}

func (s *fakeSub) Subscribe(ctx context.Context) (<-chan port.BusMessage, error) {
	return s.ch, nil
}

type fakeJobs struct {
	job             *model.Job
	transitionFrom  model.Status
	transitionTo    model.Status
	transitionCalls int
	errorMessages   []string
	getErr          error
}

func (f *fakeJobs) CreateWithMedia(ctx context.Context, job *model.Job) error { return nil }
func (f *fakeJobs) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.job, nil
}
func (f *fakeJobs) List(ctx context.Context, filter port.ListJobsFilter) ([]*model.Job, int, error) {
	return nil, 0, nil
}
func (f *fakeJobs) CompareAndTransition(ctx context.Context, id uuid.UUID, from, to model.Status) error {
	f.transitionCalls++
	f.transitionFrom, f.transitionTo = from, to
	if f.job != nil {
		f.job.Status = to
	}
	return nil
}
func (f *fakeJobs) SetPriority(ctx context.Context, id uuid.UUID, priority int) error { return nil }
func (f *fakeJobs) SetError(ctx context.Context, id uuid.UUID, message string) error {
	f.errorMessages = append(f.errorMessages, message)
	return nil
}
func (f *fakeJobs) IncrementRetryCount(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeJobs) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (f *fakeJobs) ListForReaping(ctx context.Context, statuses []model.Status, cutoff time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

type fakeEvents struct {
	appended []*model.Event
}

func (f *fakeEvents) Append(ctx context.Context, event *model.Event) error {
	f.appended = append(f.appended, event)
	return nil
}
func (f *fakeEvents) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.Event, int, error) {
	return nil, 0, nil
}
func (f *fakeEvents) ListRecentByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]*model.Event, error) {
	return nil, nil
}

type fakeMedia struct {
	patches []model.MetadataPatch
}

func (f *fakeMedia) GetByJobID(ctx context.Context, jobID uuid.UUID) (*model.Media, error) {
	return &model.Media{JobID: jobID}, nil
}
func (f *fakeMedia) ApplyPatch(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error {
	f.patches = append(f.patches, patch)
	return nil
}

type fakeBroadcaster struct {
	forwarded  []port.WireMessage
	broadcasts []port.WireMessage
}

func (f *fakeBroadcaster) Forward(jobID uuid.UUID, msg port.WireMessage) {
	f.forwarded = append(f.forwarded, msg)
}
func (f *fakeBroadcaster) Broadcast(msg port.WireMessage) {
	f.broadcasts = append(f.broadcasts, msg)
}

func runOne(t *testing.T, a *Aggregator, msg port.BusMessage) {
	t.Helper()
	ch := make(chan port.BusMessage, 1)
	ch <- msg
	close(ch)
	sub := &fakeSub{ch: ch}
	a.sub = sub
	if err := a.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestAggregator_Progress_ForwardsWithoutPersisting(t *testing.T) {
	jobs, events, media, bc := &fakeJobs{}, &fakeEvents{}, &fakeMedia{}, &fakeBroadcaster{}
	a := New(nil, jobs, events, media, bc)
	id := uuid.NewUUID()

	runOne(t, a, port.BusMessage{Kind: model.EventProgress, JobID: id, Payload: model.Payload{"stage": "downloading", "percent": 50.0}})

	if len(events.appended) != 0 {
		t.Errorf("appended = %d, want 0 for progress events", len(events.appended))
	}
	if len(bc.forwarded) != 1 {
		t.Fatalf("forwarded = %d, want 1", len(bc.forwarded))
	}
	if bc.forwarded[0].Type != string(model.EventProgress) {
		t.Errorf("forwarded Type = %q, want progress", bc.forwarded[0].Type)
	}
}

func TestAggregator_StateChange_WritesAndTransitions(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &fakeJobs{job: &model.Job{ID: id, Status: model.StatusDownloading}}
	events, media, bc := &fakeEvents{}, &fakeMedia{}, &fakeBroadcaster{}
	a := New(nil, jobs, events, media, bc)

	runOne(t, a, port.BusMessage{Kind: model.EventStateChange, JobID: id, Payload: model.Payload{"from": "downloading", "to": "downloaded"}})

	if len(events.appended) != 1 {
		t.Fatalf("appended = %d, want 1", len(events.appended))
	}
	if jobs.transitionCalls != 1 || jobs.transitionTo != model.StatusDownloaded {
		t.Errorf("transition = %d calls, to=%q; want 1 call to downloaded", jobs.transitionCalls, jobs.transitionTo)
	}
	if len(jobs.errorMessages) != 1 || jobs.errorMessages[0] != "" {
		t.Errorf("errorMessages = %v, want error cleared once", jobs.errorMessages)
	}
	if len(bc.forwarded) != 1 {
		t.Errorf("forwarded = %d, want 1", len(bc.forwarded))
	}
}

func TestAggregator_StateChangeToFailed_DoesNotClearError(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &fakeJobs{job: &model.Job{ID: id, Status: model.StatusDownloading}}
	events, media, bc := &fakeEvents{}, &fakeMedia{}, &fakeBroadcaster{}
	a := New(nil, jobs, events, media, bc)

	runOne(t, a, port.BusMessage{Kind: model.EventStateChange, JobID: id, Payload: model.Payload{"from": "downloading", "to": "failed"}})

	if len(jobs.errorMessages) != 0 {
		t.Errorf("errorMessages = %v, want untouched on transition to failed", jobs.errorMessages)
	}
}

func TestAggregator_NonRetryableError_TransitionsToFailed(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &fakeJobs{job: &model.Job{ID: id, Status: model.StatusDubbing}}
	events, media, bc := &fakeEvents{}, &fakeMedia{}, &fakeBroadcaster{}
	a := New(nil, jobs, events, media, bc)

	runOne(t, a, port.BusMessage{Kind: model.EventError, JobID: id, Payload: model.Payload{
		"code": "dub_failed", "message": "VOT timeout", "retryable": false,
	}})

	if len(events.appended) != 1 {
		t.Fatalf("appended = %d, want 1", len(events.appended))
	}
	if jobs.transitionCalls != 1 || jobs.transitionTo != model.StatusFailed {
		t.Errorf("transition calls = %d, to=%q; want 1 call to failed", jobs.transitionCalls, jobs.transitionTo)
	}
	if len(jobs.errorMessages) != 1 || jobs.errorMessages[0] != "VOT timeout" {
		t.Errorf("errorMessages = %v, want [VOT timeout]", jobs.errorMessages)
	}
	if len(bc.forwarded) != 1 {
		t.Errorf("forwarded = %d, want 1", len(bc.forwarded))
	}
}

func TestAggregator_RetryableError_DoesNotTransition(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &fakeJobs{job: &model.Job{ID: id, Status: model.StatusDownloading}}
	events, media, bc := &fakeEvents{}, &fakeMedia{}, &fakeBroadcaster{}
	a := New(nil, jobs, events, media, bc)

	runOne(t, a, port.BusMessage{Kind: model.EventError, JobID: id, Payload: model.Payload{
		"code": "network_blip", "message": "connection reset", "retryable": true,
	}})

	if jobs.transitionCalls != 0 {
		t.Errorf("transitionCalls = %d, want 0 for a retryable error", jobs.transitionCalls)
	}
	if len(events.appended) != 1 {
		t.Errorf("appended = %d, want 1 (error event still recorded)", len(events.appended))
	}
}

func TestAggregator_Metadata_PatchesMediaWithoutEventOrForward(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &fakeJobs{job: &model.Job{ID: id}}
	events, media, bc := &fakeEvents{}, &fakeMedia{}, &fakeBroadcaster{}
	a := New(nil, jobs, events, media, bc)

	runOne(t, a, port.BusMessage{Kind: model.EventKind("metadata"), JobID: id, Payload: model.Payload{
		"videoPath": "/media/incomplete/x/video.mp4", "width": 1920.0, "height": 1080.0,
	}})

	if len(media.patches) != 1 {
		t.Fatalf("patches = %d, want 1", len(media.patches))
	}
	p := media.patches[0]
	if p.VideoPath == nil || *p.VideoPath != "/media/incomplete/x/video.mp4" {
		t.Errorf("VideoPath = %v, want set", p.VideoPath)
	}
	if p.Width == nil || *p.Width != 1920 {
		t.Errorf("Width = %v, want 1920", p.Width)
	}
	if len(events.appended) != 0 {
		t.Errorf("appended = %d, want 0 for metadata events", len(events.appended))
	}
	if len(bc.forwarded) != 0 {
		t.Errorf("forwarded = %d, want 0 for metadata events", len(bc.forwarded))
	}
}

func TestAggregator_Log_WritesAndForwards(t *testing.T) {
	id := uuid.NewUUID()
	jobs := &fakeJobs{job: &model.Job{ID: id}}
	events, media, bc := &fakeEvents{}, &fakeMedia{}, &fakeBroadcaster{}
	a := New(nil, jobs, events, media, bc)

	runOne(t, a, port.BusMessage{Kind: model.EventLog, JobID: id, Payload: model.Payload{"level": "info", "message": "starting download"}})

	if len(events.appended) != 1 {
		t.Errorf("appended = %d, want 1", len(events.appended))
	}
	if len(bc.forwarded) != 1 {
		t.Errorf("forwarded = %d, want 1", len(bc.forwarded))
	}
}
