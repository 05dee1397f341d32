package capability

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

// VOT calls a VOT.js-compatible translation service by source URL
// (original_source/downloader/src/main.py:enqueue_dub_job passes the
// original URL through, "Pass original URL for VOT.js API"): submit the
// job, poll until the translated audio is ready, then download it to
// payload.OutputPath.
type VOT struct {
	Endpoint   string // base URL of the translation service
	HTTPClient *http.Client
	PollEvery  time.Duration
}

var _ port.Translator = (*VOT)(nil)

type votTranslateRequest struct {
	URL            string `json:"url"`
	TargetLang     string `json:"targetLanguage"`
	UseLivelyVoice bool   `json:"useLivelyVoice"`
}

type votTranslateResponse struct {
	Status   string  `json:"status"` // "pending" | "done" | "failed"
	AudioURL string  `json:"audioUrl,omitempty"`
	Error    string  `json:"error,omitempty"`
	Progress float64 `json:"progress,omitempty"`
}

func (v *VOT) client() *http.Client {
	if v.HTTPClient != nil {
		return v.HTTPClient
	}
	return http.DefaultClient
}

func (v *VOT) pollInterval() time.Duration {
	if v.PollEvery > 0 {
		return v.PollEvery
	}
	return 3 * time.Second
}

// Dub submits the translation request and polls the service's status
// endpoint until it reports done/failed, then downloads the dubbed track.
func (v *VOT) Dub(ctx context.Context, payload port.DubPayload, onProgress func(model.ProgressPayload)) (port.DubResult, error) {
	body, err := json.Marshal(votTranslateRequest{
		URL:            payload.SourceURL,
		TargetLang:     payload.TargetLang,
		UseLivelyVoice: payload.UseLivelyVoice,
	})
	if err != nil {
		return port.DubResult{}, joberr.New(joberr.KindInternal, fmt.Sprintf("encode VOT request: %v", err))
	}

	resp, err := v.post(ctx, "/translate", body)
	if err != nil {
		return port.DubResult{}, err
	}

	for resp.Status == "pending" {
		onProgress(model.ProgressPayload{Stage: "dub", Percent: resp.Progress})
		select {
		case <-ctx.Done():
			return port.DubResult{}, joberr.New(joberr.KindWorkerTransient, "dub polling canceled")
		case <-time.After(v.pollInterval()):
		}
		resp, err = v.post(ctx, "/status", body)
		if err != nil {
			return port.DubResult{}, err
		}
	}

	if resp.Status == "failed" {
		return port.DubResult{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("translation service reported failure: %s", resp.Error))
	}
	if resp.AudioURL == "" {
		return port.DubResult{}, joberr.New(joberr.KindWorkerPermanent, "translation service returned no audio URL")
	}

	onProgress(model.ProgressPayload{Stage: "dub", Percent: 100})
	if err := v.download(ctx, resp.AudioURL, payload.OutputPath); err != nil {
		return port.DubResult{}, err
	}
	return port.DubResult{AudioPath: payload.OutputPath}, nil
}

func (v *VOT) post(ctx context.Context, path string, body []byte) (votTranslateResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return votTranslateResponse{}, joberr.New(joberr.KindWorkerPermanent, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client().Do(req)
	if err != nil {
		return votTranslateResponse{}, joberr.New(joberr.KindWorkerTransient, fmt.Sprintf("call translation service: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return votTranslateResponse{}, joberr.New(joberr.KindWorkerTransient, fmt.Sprintf("translation service returned %d", resp.StatusCode))
	}
	if resp.StatusCode >= 400 {
		return votTranslateResponse{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("translation service returned %d", resp.StatusCode))
	}

	var out votTranslateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return votTranslateResponse{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("decode translation response: %v", err))
	}
	return out, nil
}

func (v *VOT) download(ctx context.Context, url, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return joberr.New(joberr.KindWorkerPermanent, err.Error())
	}
	resp, err := v.client().Do(req)
	if err != nil {
		return joberr.New(joberr.KindWorkerTransient, fmt.Sprintf("download dubbed audio: %v", err))
	}
	defer resp.Body.Close()

	f, err := os.Create(dest)
	if err != nil {
		return joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("create %s: %v", dest, err))
	}
	defer f.Close()

	if _, err := io.Copy(f, resp.Body); err != nil {
		return joberr.New(joberr.KindWorkerTransient, fmt.Sprintf("write dubbed audio: %v", err))
	}
	return nil
}
