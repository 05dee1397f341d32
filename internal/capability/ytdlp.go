// Package capability implements the three external collaborators
// spec.md §1 names as out of scope for the orchestration core itself: the
// yt-dlp subprocess, the VOT translation HTTP client, and the FFmpeg mixing
// command. The Worker contract (§6.3) only requires something satisfying
// port.Downloader/Translator/Mixer be invoked; these are thin, real
// subprocess/HTTP wrappers rather than stubs, grounded on
// original_source/downloader/src/downloader.py's yt-dlp option set.
package capability

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/vpikus/vdm-ai-dubbing/internal/joberr"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
)

// YtDlp shells out to the yt-dlp binary found on PATH (or at Bin, if set).
type YtDlp struct {
	Bin string // defaults to "yt-dlp"
}

var _ port.Downloader = (*YtDlp)(nil)

var progressLineRe = regexp.MustCompile(`\[download\]\s+([\d.]+)% of ~?\s*([\d.]+\w+)(?:\s+at\s+([\d.]+\w+/s))?`)

func (y *YtDlp) bin() string {
	if y.Bin != "" {
		return y.Bin
	}
	return "yt-dlp"
}

// Download extracts video info, then downloads into payload.TempDir under
// "{id}.{ext}", matching the original's output template and metadata
// extraction. Transient network/rate-limit failures are classified
// worker_transient so the queue retries them; everything else is permanent.
func (y *YtDlp) Download(ctx context.Context, payload port.DownloadPayload, onProgress func(model.ProgressPayload)) (port.DownloadResult, error) {
	if err := os.MkdirAll(payload.TempDir, 0o755); err != nil {
		return port.DownloadResult{}, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("create temp dir: %v", err))
	}

	info, err := y.extractInfo(ctx, payload.SourceURL)
	if err != nil {
		return port.DownloadResult{}, err
	}

	outTmpl := filepath.Join(payload.TempDir, "%(id)s.%(ext)s")
	args := []string{
		"--newline",
		"--merge-output-format", string(payload.OutputContainer),
		"-o", outTmpl,
	}
	if payload.FormatPreset != "" && payload.FormatPreset != model.FormatBestVideoBestAudio {
		args = append(args, "-f", string(payload.FormatPreset))
	}
	if payload.Proxy != "" {
		args = append(args, "--proxy", payload.Proxy)
	}
	if payload.CookiesFile != "" {
		args = append(args, "--cookies", payload.CookiesFile)
	}
	if payload.RateLimit != "" {
		args = append(args, "--limit-rate", payload.RateLimit)
	}
	args = append(args, payload.SourceURL)

	if err := y.runWithProgress(ctx, args, onProgress); err != nil {
		return port.DownloadResult{}, err
	}

	videoPath, err := findDownloadedFile(payload.TempDir, infoID(info))
	if err != nil {
		return port.DownloadResult{}, joberr.New(joberr.KindWorkerPermanent, err.Error())
	}

	size, _ := fileSize(videoPath)
	return port.DownloadResult{
		VideoPath: videoPath,
		SizeBytes: size,
		Metadata:  metadataFromInfo(info, videoPath, size),
	}, nil
}

func (y *YtDlp) extractInfo(ctx context.Context, url string) (map[string]any, error) {
	cmd := exec.CommandContext(ctx, y.bin(), "-j", "--no-download", url)
	out, err := cmd.Output()
	if err != nil {
		return nil, classifyExecError(err, "extract video info")
	}
	var info map[string]any
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("parse yt-dlp info: %v", err))
	}
	return info, nil
}

func (y *YtDlp) runWithProgress(ctx context.Context, args []string, onProgress func(model.ProgressPayload)) error {
	cmd := exec.CommandContext(ctx, y.bin(), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return joberr.New(joberr.KindWorkerPermanent, err.Error())
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		return joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("start yt-dlp: %v", err))
	}

	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if p, ok := parseProgressLine(scanner.Text()); ok {
			onProgress(p)
		}
	}

	if err := cmd.Wait(); err != nil {
		return classifyExecError(err, "download")
	}
	return nil
}

func parseProgressLine(line string) (model.ProgressPayload, bool) {
	m := progressLineRe.FindStringSubmatch(line)
	if m == nil {
		return model.ProgressPayload{}, false
	}
	pct, _ := strconv.ParseFloat(m[1], 64)
	return model.ProgressPayload{Stage: "download", Percent: pct}, true
}

func infoID(info map[string]any) string {
	id, _ := info["id"].(string)
	return id
}

func findDownloadedFile(tempDir, id string) (string, error) {
	entries, err := os.ReadDir(tempDir)
	if err != nil {
		return "", fmt.Errorf("read temp dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && id != "" && strings.HasPrefix(e.Name(), id+".") {
			return filepath.Join(tempDir, e.Name()), nil
		}
	}
	for _, e := range entries {
		if !e.IsDir() {
			return filepath.Join(tempDir, e.Name()), nil
		}
	}
	return "", fmt.Errorf("no downloaded file found in %s", tempDir)
}

func fileSize(path string) (int64, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return fi.Size(), nil
}

func metadataFromInfo(info map[string]any, videoPath string, size int64) model.MetadataPatch {
	patch := model.MetadataPatch{VideoPath: &videoPath, SizeBytes: &size}
	if v, ok := info["id"].(string); ok {
		patch.SourceID = &v
	}
	if v, ok := info["title"].(string); ok {
		patch.SourceTitle = &v
	}
	if v, ok := info["uploader"].(string); ok {
		patch.SourceUploader = &v
	}
	if v, ok := info["upload_date"].(string); ok {
		patch.SourceUploadDate = &v
	}
	if v, ok := info["description"].(string); ok {
		patch.SourceDescription = &v
	}
	if v, ok := info["thumbnail"].(string); ok {
		patch.SourceThumbURL = &v
	}
	if v, ok := info["duration"].(float64); ok {
		patch.DurationSec = &v
	}
	if v, ok := info["width"].(float64); ok {
		w := int(v)
		patch.Width = &w
	}
	if v, ok := info["height"].(float64); ok {
		h := int(v)
		patch.Height = &h
	}
	if v, ok := info["fps"].(float64); ok {
		patch.FPS = &v
	}
	if v, ok := info["vcodec"].(string); ok {
		patch.VideoCodec = &v
	}
	if v, ok := info["acodec"].(string); ok {
		patch.AudioCodec = &v
	}
	return patch
}

// classifyExecError distinguishes network/rate-limit conditions (worth
// retrying) from everything else, mirroring
// downloader.py:_is_retryable_error's substring checks.
func classifyExecError(err error, action string) *joberr.Error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	for _, hint := range []string{"timeout", "timed out", "connection reset", "503", "rate-limit", "temporary failure"} {
		if strings.Contains(lower, hint) {
			return joberr.New(joberr.KindWorkerTransient, fmt.Sprintf("%s: %v", action, err))
		}
	}
	return joberr.New(joberr.KindWorkerPermanent, fmt.Sprintf("%s: %v", action, err))
}
