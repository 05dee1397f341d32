package capability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

func TestVOTDub_Success(t *testing.T) {
	var polls int
	audioSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("fake-audio-bytes"))
	}))
	defer audioSrv.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/translate":
			json.NewEncoder(w).Encode(votTranslateResponse{Status: "pending", Progress: 10})
		case "/status":
			polls++
			if polls < 2 {
				json.NewEncoder(w).Encode(votTranslateResponse{Status: "pending", Progress: 50})
				return
			}
			json.NewEncoder(w).Encode(votTranslateResponse{Status: "done", AudioURL: audioSrv.URL})
		}
	}))
	defer srv.Close()

	dest := t.TempDir() + "/dubbed.wav"
	v := &VOT{Endpoint: srv.URL, PollEvery: time.Millisecond}

	var progressSeen []float64
	result, err := v.Dub(context.Background(), port.DubPayload{SourceURL: "https://example.com/v", TargetLang: "ru", OutputPath: dest}, func(p model.ProgressPayload) {
		progressSeen = append(progressSeen, p.Percent)
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AudioPath != dest {
		t.Errorf("audio path = %s; want %s", result.AudioPath, dest)
	}
	if _, err := os.Stat(dest); err != nil {
		t.Errorf("downloaded file missing: %v", err)
	}
	if len(progressSeen) == 0 {
		t.Error("expected progress callbacks during polling")
	}
}

func TestVOTDub_ServiceFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(votTranslateResponse{Status: "failed", Error: "no audio track"})
	}))
	defer srv.Close()

	v := &VOT{Endpoint: srv.URL, PollEvery: time.Millisecond}
	_, err := v.Dub(context.Background(), port.DubPayload{SourceURL: "https://example.com/v"}, func(model.ProgressPayload) {})

	jerr, ok := joberr.As(err)
	if !ok || jerr.Kind != joberr.KindWorkerPermanent {
		t.Fatalf("expected worker_permanent error, got %v", err)
	}
}

func TestVOTDub_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	v := &VOT{Endpoint: srv.URL}
	_, err := v.Dub(context.Background(), port.DubPayload{SourceURL: "https://example.com/v"}, func(model.ProgressPayload) {})

	jerr, ok := joberr.As(err)
	if !ok || jerr.Kind != joberr.KindWorkerTransient {
		t.Fatalf("expected worker_transient error, got %v", err)
	}
}
