package capability

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

// FFmpeg mixes the original and dubbed audio tracks with ducking, then muxes
// both alongside the copied video stream, mirroring
// original_source/muxer/src/muxer.py:AudioMuxer.process exactly: extract
// original audio, mix with ducking, mux video + both tracks with the dubbed
// one marked default.
type FFmpeg struct {
	Bin string // defaults to "ffmpeg"
}

var _ port.Mixer = (*FFmpeg)(nil)

var langCodes = map[string]string{
	"ru": "rus", "en": "eng", "es": "spa", "de": "deu", "fr": "fra",
	"it": "ita", "pt": "por", "ja": "jpn", "ko": "kor", "zh": "zho",
}

func (f *FFmpeg) bin() string {
	if f.Bin != "" {
		return f.Bin
	}
	return "ffmpeg"
}

func (f *FFmpeg) Mux(ctx context.Context, payload port.MuxPayload, onProgress func(model.ProgressPayload)) (port.MuxResult, error) {
	if _, err := os.Stat(payload.VideoPath); err != nil {
		return port.MuxResult{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("video file not found: %s", payload.VideoPath))
	}
	if _, err := os.Stat(payload.DubbedAudioPath); err != nil {
		return port.MuxResult{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("dubbed audio file not found: %s", payload.DubbedAudioPath))
	}
	if err := os.MkdirAll(payload.TempDir, 0o755); err != nil {
		return port.MuxResult{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("create temp dir: %v", err))
	}

	originalAudio := filepath.Join(payload.TempDir, "original.wav")
	mixedAudio := filepath.Join(payload.TempDir, "mixed.wav")

	if err := f.run(ctx, "extract original audio",
		"-y", "-i", payload.VideoPath, "-vn", "-ac", "2", "-ar", "48000", "-c:a", "pcm_s16le", originalAudio); err != nil {
		return port.MuxResult{}, err
	}
	onProgress(model.ProgressPayload{Stage: "mux", Percent: 33})

	filterComplex := fmt.Sprintf(
		"[0:a]volume=%g[orig];[1:a]volume=1.0[dub];[orig][dub]amix=inputs=2:duration=longest:normalize=0[out]",
		payload.DuckingLevel,
	)
	if err := f.run(ctx, "mix audio with ducking",
		"-y", "-i", originalAudio, "-i", payload.DubbedAudioPath,
		"-filter_complex", filterComplex, "-map", "[out]", "-c:a", "pcm_s16le", mixedAudio); err != nil {
		return port.MuxResult{}, err
	}
	onProgress(model.ProgressPayload{Stage: "mux", Percent: 66})

	langCode := payload.TargetLang
	if mapped, ok := langCodes[payload.TargetLang]; ok {
		langCode = mapped
	}
	if err := os.MkdirAll(filepath.Dir(payload.FinalPath), 0o755); err != nil {
		return port.MuxResult{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("create output dir: %v", err))
	}
	if err := f.run(ctx, "mux video and audio tracks",
		"-y",
		"-i", payload.VideoPath,
		"-i", originalAudio,
		"-i", mixedAudio,
		"-map", "0:v", "-map", "1:a", "-map", "2:a",
		"-c:v", "copy",
		"-c:a:0", "aac", "-c:a:1", "aac",
		"-b:a:0", "192k", "-b:a:1", "192k",
		"-metadata:s:a:0", "language=und",
		"-metadata:s:a:0", "title=Original",
		"-metadata:s:a:1", "language="+langCode,
		"-metadata:s:a:1", "title=Dubbed",
		"-disposition:a:0", "0",
		"-disposition:a:1", "default",
		payload.FinalPath,
	); err != nil {
		return port.MuxResult{}, err
	}
	onProgress(model.ProgressPayload{Stage: "mux", Percent: 100})

	size, _ := fileSize(payload.FinalPath)
	return port.MuxResult{FinalPath: payload.FinalPath, SizeBytes: size}, nil
}

func (f *FFmpeg) run(ctx context.Context, action string, args ...string) error {
	cmd := exec.CommandContext(ctx, f.bin(), args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("%s: %v: %s", action, err, string(out)))
	}
	return nil
}
