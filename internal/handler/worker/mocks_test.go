package worker

import (
	"context"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

type mockPublisher struct {
	progress     []model.ProgressPayload
	stateChanges []model.StateChangePayload
	logs         []model.LogPayload
	errors       []model.ErrorPayload
	metadata     []model.MetadataPatch
}

func (m *mockPublisher) PublishProgress(ctx context.Context, jobID uuid.UUID, p model.ProgressPayload) error {
	m.progress = append(m.progress, p)
	return nil
}

func (m *mockPublisher) PublishStateChange(ctx context.Context, jobID uuid.UUID, p model.StateChangePayload) error {
	m.stateChanges = append(m.stateChanges, p)
	return nil
}

func (m *mockPublisher) PublishLog(ctx context.Context, jobID uuid.UUID, p model.LogPayload) error {
	m.logs = append(m.logs, p)
	return nil
}

func (m *mockPublisher) PublishError(ctx context.Context, jobID uuid.UUID, p model.ErrorPayload) error {
	m.errors = append(m.errors, p)
	return nil
}

func (m *mockPublisher) PublishMetadata(ctx context.Context, jobID uuid.UUID, patch model.MetadataPatch) error {
	m.metadata = append(m.metadata, patch)
	return nil
}

var _ port.Publisher = (*mockPublisher)(nil)

type mockQueue struct {
	downloadCalls []port.DownloadPayload
	dubCalls      []port.DubPayload
	muxCalls      []port.MuxPayload
	err           error
}

func (m *mockQueue) EnqueueDownload(ctx context.Context, payload port.DownloadPayload, opts port.EnqueueOpts) error {
	m.downloadCalls = append(m.downloadCalls, payload)
	return m.err
}

func (m *mockQueue) EnqueueDub(ctx context.Context, payload port.DubPayload, opts port.EnqueueOpts) error {
	m.dubCalls = append(m.dubCalls, payload)
	return m.err
}

func (m *mockQueue) EnqueueMux(ctx context.Context, payload port.MuxPayload, opts port.EnqueueOpts) error {
	m.muxCalls = append(m.muxCalls, payload)
	return m.err
}

func (m *mockQueue) Cancel(ctx context.Context, jobID uuid.UUID) error {
	return nil
}

func (m *mockQueue) Stats(ctx context.Context) ([]port.QueueStats, error) {
	return nil, nil
}

func (m *mockQueue) ReapDeadLetter(ctx context.Context, olderThan time.Duration) (int, error) {
	return 0, nil
}

func (m *mockQueue) Close() error {
	return nil
}

var _ port.Queue = (*mockQueue)(nil)

type mockDownloader struct {
	result port.DownloadResult
	err    error
}

func (m *mockDownloader) Download(ctx context.Context, payload port.DownloadPayload, onProgress func(model.ProgressPayload)) (port.DownloadResult, error) {
	if onProgress != nil {
		onProgress(model.ProgressPayload{Stage: "download", Percent: 50})
	}
	return m.result, m.err
}

var _ port.Downloader = (*mockDownloader)(nil)

type mockTranslator struct {
	result port.DubResult
	err    error
}

func (m *mockTranslator) Dub(ctx context.Context, payload port.DubPayload, onProgress func(model.ProgressPayload)) (port.DubResult, error) {
	if onProgress != nil {
		onProgress(model.ProgressPayload{Stage: "dub", Percent: 50})
	}
	return m.result, m.err
}

var _ port.Translator = (*mockTranslator)(nil)

type mockMixer struct {
	result port.MuxResult
	err    error
}

func (m *mockMixer) Mux(ctx context.Context, payload port.MuxPayload, onProgress func(model.ProgressPayload)) (port.MuxResult, error) {
	if onProgress != nil {
		onProgress(model.ProgressPayload{Stage: "mux", Percent: 50})
	}
	return m.result, m.err
}

var _ port.Mixer = (*mockMixer)(nil)

type mockArchiver struct {
	enabled  bool
	archived []string
	err      error
}

func (m *mockArchiver) Enabled() bool { return m.enabled }

func (m *mockArchiver) Archive(ctx context.Context, jobID uuid.UUID, localPath string) error {
	m.archived = append(m.archived, localPath)
	return m.err
}

var _ port.Archiver = (*mockArchiver)(nil)
