package api

import (
	"context"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/usecase/job"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type mockJobCreator struct {
	in  job.CreateJobInput
	out *model.Job
	err error
}

func (m *mockJobCreator) CreateJob(ctx context.Context, in job.CreateJobInput) (*model.Job, error) {
	m.in = in
	return m.out, m.err
}

type mockCanceler struct {
	id  uuid.UUID
	out *model.Job
	err error
}

func (m *mockCanceler) Cancel(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	m.id = id
	return m.out, m.err
}

type mockRetrier struct {
	id  uuid.UUID
	out *model.Job
	err error
}

func (m *mockRetrier) Retry(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	m.id = id
	return m.out, m.err
}

type mockResumer struct {
	id  uuid.UUID
	out *job.ResumeResult
	err error
}

func (m *mockResumer) Resume(ctx context.Context, id uuid.UUID) (*job.ResumeResult, error) {
	m.id = id
	return m.out, m.err
}

type mockController struct {
	in  job.ControlInput
	out *model.Job
	err error
}

func (m *mockController) Control(ctx context.Context, in job.ControlInput) (*model.Job, error) {
	m.in = in
	return m.out, m.err
}

type mockDeleter struct {
	id  uuid.UUID
	err error
}

func (m *mockDeleter) Delete(ctx context.Context, id uuid.UUID) error {
	m.id = id
	return m.err
}

type mockJobRepo struct {
	job        *model.Job
	list       []*model.Job
	total      int
	gotFilter  port.ListJobsFilter
	getErr     error
	listErr    error
}

func (m *mockJobRepo) CreateWithMedia(ctx context.Context, job *model.Job) error { return nil }
func (m *mockJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Job, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.job, nil
}
func (m *mockJobRepo) List(ctx context.Context, filter port.ListJobsFilter) ([]*model.Job, int, error) {
	m.gotFilter = filter
	return m.list, m.total, m.listErr
}
func (m *mockJobRepo) CompareAndTransition(ctx context.Context, id uuid.UUID, from, to model.Status) error {
	return nil
}
func (m *mockJobRepo) SetPriority(ctx context.Context, id uuid.UUID, priority int) error { return nil }
func (m *mockJobRepo) SetError(ctx context.Context, id uuid.UUID, message string) error  { return nil }
func (m *mockJobRepo) IncrementRetryCount(ctx context.Context, id uuid.UUID) error        { return nil }
func (m *mockJobRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }
func (m *mockJobRepo) ListForReaping(ctx context.Context, statuses []model.Status, cutoff time.Time) ([]uuid.UUID, error) {
	return nil, nil
}

type mockMediaRepo struct {
	media *model.Media
	err   error
}

func (m *mockMediaRepo) GetByJobID(ctx context.Context, jobID uuid.UUID) (*model.Media, error) {
	return m.media, m.err
}
func (m *mockMediaRepo) ApplyPatch(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error {
	return nil
}

type mockEventRepo struct {
	recent    []*model.Event
	list      []*model.Event
	total     int
	recentErr error
	listErr   error
}

func (m *mockEventRepo) Append(ctx context.Context, event *model.Event) error { return nil }
func (m *mockEventRepo) ListByJob(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.Event, int, error) {
	return m.list, m.total, m.listErr
}
func (m *mockEventRepo) ListRecentByJob(ctx context.Context, jobID uuid.UUID, limit int) ([]*model.Event, error) {
	return m.recent, m.recentErr
}

type mockUserRepo struct {
	user   *model.User
	getErr error
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error { return nil }
func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	return m.user, m.getErr
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return m.user, m.getErr
}
func (m *mockUserRepo) CountAll(ctx context.Context) (int, error) { return 1, nil }

type mockSessionRepo struct {
	session *model.Session
	getErr  error
	revoked bool
}

func (m *mockSessionRepo) Create(ctx context.Context, s *model.Session) error {
	m.session = s
	return nil
}
func (m *mockSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	return m.session, m.getErr
}
func (m *mockSessionRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	m.revoked = true
	return nil
}
func (m *mockSessionRepo) DeleteExpiredBefore(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

type mockQueue struct {
	statsErr error
}

func (m *mockQueue) EnqueueDownload(ctx context.Context, payload port.DownloadPayload, opts port.EnqueueOpts) error {
	return nil
}
func (m *mockQueue) EnqueueDub(ctx context.Context, payload port.DubPayload, opts port.EnqueueOpts) error {
	return nil
}
func (m *mockQueue) EnqueueMux(ctx context.Context, payload port.MuxPayload, opts port.EnqueueOpts) error {
	return nil
}
func (m *mockQueue) Cancel(ctx context.Context, jobID uuid.UUID) error { return nil }
func (m *mockQueue) Stats(ctx context.Context) ([]port.QueueStats, error) {
	return nil, m.statsErr
}
func (m *mockQueue) ReapDeadLetter(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}
func (m *mockQueue) Close() error { return nil }

type mockFS struct {
	freeGb    float64
	freeErr   error
}

func (m *mockFS) IncompleteDir(jobID uuid.UUID) string { return "" }
func (m *mockFS) TempDir(jobID uuid.UUID) string       { return "" }
func (m *mockFS) FinalPath(jobID uuid.UUID, media *model.Media, container model.OutputContainer) string {
	return ""
}
func (m *mockFS) PromoteToFinal(ctx context.Context, tempPath, finalPath string) error { return nil }
func (m *mockFS) CleanupIncomplete(ctx context.Context, jobID uuid.UUID) error         { return nil }
func (m *mockFS) CleanupFinal(ctx context.Context, finalPath string) error             { return nil }
func (m *mockFS) WriteCookiesFile(ctx context.Context, jobID uuid.UUID, contents string) (string, error) {
	return "", nil
}
func (m *mockFS) FreeSpaceGB() (float64, error) { return m.freeGb, m.freeErr }
