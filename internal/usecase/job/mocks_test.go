package job

import (
	"context"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type mockJobs struct {
	job *model.Job

	getErr             error
	createErr          error
	transitionErr      error
	setPriorityErr     error

	created         *model.Job
	transitionFrom  model.Status
	transitionTo    model.Status
	transitionCalls int
	priorities      []int
	errorMessages   []string
	retryIncrements int
	deleted         uuid.UUID
	deleteCalled    bool
}

func (m *mockJobs) CreateWithMedia(ctx context.Context, job *model.Job) error {
	m.created = job
	if m.createErr != nil {
		return m.createErr
	}
	m.job = job
	return nil
}
func (m *mockJobs) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.job, nil
}
func (m *mockJobs) List(ctx context.Context, filter port.ListJobsFilter) ([]*model.Job, int, error) {
	return nil, 0, nil
}
func (m *mockJobs) CompareAndTransition(ctx context.Context, id uuid.UUID, from, to model.Status) error {
	m.transitionCalls++
	m.transitionFrom, m.transitionTo = from, to
	if m.transitionErr != nil {
		return m.transitionErr
	}
	if m.job != nil {
		m.job.Status = to
	}
	return nil
}
func (m *mockJobs) SetPriority(ctx context.Context, id uuid.UUID, priority int) error {
	m.priorities = append(m.priorities, priority)
	if m.job != nil {
		m.job.Priority = priority
	}
	return m.setPriorityErr
}
func (m *mockJobs) SetError(ctx context.Context, id uuid.UUID, message string) error {
	m.errorMessages = append(m.errorMessages, message)
	return nil
}
func (m *mockJobs) IncrementRetryCount(ctx context.Context, id uuid.UUID) error {
	m.retryIncrements++
	return nil
}
func (m *mockJobs) Delete(ctx context.Context, id uuid.UUID) error {
	m.deleteCalled = true
	m.deleted = id
	return nil
}
func (m *mockJobs) ListForReaping(ctx context.Context, statuses []model.Status, cutoff time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

type mockMedia struct {
	media      *model.Media
	getErr     error
	patchCalls []model.MetadataPatch
}

func (m *mockMedia) GetByJobID(ctx context.Context, jobID uuid.UUID) (*model.Media, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	if m.media == nil {
		return &model.Media{JobID: jobID}, nil
	}
	return m.media, nil
}
func (m *mockMedia) ApplyPatch(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error {
	m.patchCalls = append(m.patchCalls, patch)
	return nil
}

type mockEvents struct {
	appended []*model.Event
	byJob    []*model.Event
}

func (m *mockEvents) Append(ctx context.Context, event *model.Event) error {
	m.appended = append(m.appended, event)
	return nil
}
func (m *mockEvents) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.Event, int, error) {
	if offset >= len(m.byJob) {
		return nil, len(m.byJob), nil
	}
	end := offset + limit
	if end > len(m.byJob) {
		end = len(m.byJob)
	}
	return m.byJob[offset:end], len(m.byJob), nil
}
func (m *mockEvents) ListRecentByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]*model.Event, error) {
	return m.byJob, nil
}

type mockQueue struct {
	downloadCalls []port.DownloadPayload
	dubCalls      []port.DubPayload
	muxCalls      []port.MuxPayload
	cancelCalls   []uuid.UUID
	enqueueErr    error
}

func (m *mockQueue) EnqueueDownload(ctx context.Context, payload port.DownloadPayload, opts port.EnqueueOpts) error {
	m.downloadCalls = append(m.downloadCalls, payload)
	return m.enqueueErr
}
func (m *mockQueue) EnqueueDub(ctx context.Context, payload port.DubPayload, opts port.EnqueueOpts) error {
	m.dubCalls = append(m.dubCalls, payload)
	return m.enqueueErr
}
func (m *mockQueue) EnqueueMux(ctx context.Context, payload port.MuxPayload, opts port.EnqueueOpts) error {
	m.muxCalls = append(m.muxCalls, payload)
	return m.enqueueErr
}
func (m *mockQueue) Cancel(ctx context.Context, jobID uuid.UUID) error {
	m.cancelCalls = append(m.cancelCalls, jobID)
	return nil
}
func (m *mockQueue) Stats(ctx context.Context) ([]port.QueueStats, error) { return nil, nil }
func (m *mockQueue) ReapDeadLetter(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}
func (m *mockQueue) Close() error { return nil }

type mockFS struct {
	freeSpaceGb    float64
	freeSpaceErr   error
	cleanupErr     error
	writeCookiesFn func(ctx context.Context, jobID uuid.UUID, contents string) (string, error)
}

func (m *mockFS) IncompleteDir(jobID uuid.UUID) string { return "/media/incomplete/" + jobID.String() }
func (m *mockFS) TempDir(jobID uuid.UUID) string       { return m.IncompleteDir(jobID) }
func (m *mockFS) FinalPath(jobID uuid.UUID, media *model.Media, container model.OutputContainer) string {
	return "/media/complete/" + jobID.String() + "." + string(container)
}
func (m *mockFS) PromoteToFinal(ctx context.Context, tempPath, finalPath string) error { return nil }
func (m *mockFS) CleanupIncomplete(ctx context.Context, jobID uuid.UUID) error         { return m.cleanupErr }
func (m *mockFS) CleanupFinal(ctx context.Context, finalPath string) error             { return m.cleanupErr }
func (m *mockFS) WriteCookiesFile(ctx context.Context, jobID uuid.UUID, contents string) (string, error) {
	if m.writeCookiesFn != nil {
		return m.writeCookiesFn(ctx, jobID, contents)
	}
	return m.IncompleteDir(jobID) + "/cookies.txt", nil
}
func (m *mockFS) FreeSpaceGB() (float64, error) { return m.freeSpaceGb, m.freeSpaceErr }

type mockArchiver struct {
	enabled     bool
	archiveErr  error
	archived    []uuid.UUID
}

func (m *mockArchiver) Enabled() bool { return m.enabled }
func (m *mockArchiver) Archive(ctx context.Context, jobID uuid.UUID, localPath string) error {
	m.archived = append(m.archived, jobID)
	return m.archiveErr
}

func defaults() Defaults {
	return Defaults{
		TargetLang:        "ru",
		FormatPreset:      model.FormatBestVideoBestAudio,
		OutputContainer:   model.ContainerMKV,
		DuckingLevel:      0.2,
		NormalizationLUFS: -14,
		MinFreeSpaceGb:    5,
		DownloadPriority:  5,
	}
}
