// Package fs implements the Atomic File Lifecycle (spec.md §6.4):
// work-in-progress files live under incomplete/{jobId}/, final outputs are
// moved atomically into complete/ on success.
package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"syscall"

	"github.com/hashicorp/go-multierror"
	"github.com/vpikus/vdm-ai-dubbing/internal/model"
	"github.com/vpikus/vdm-ai-dubbing/internal/port"
	"github.com/vpikus/vdm-ai-dubbing/internal/uuid"
)

const maxTitleLength = 200

var whitespaceRun = regexp.MustCompile(`\s+`)

// sanitize mirrors original_source/downloader/src/downloader.py:sanitize_filename:
// strip characters that are illegal or awkward in filenames, collapse
// whitespace, truncate, and fall back to "untitled".
func sanitize(name string) string {
	replacements := map[string]string{
		"/": "-", "\\": "-", ":": " -", "*": "", "?": "", `"`: "'",
		"<": "", ">": "", "|": "-", "\n": " ", "\r": "", "\t": " ",
	}
	for old, new := range replacements {
		name = strings.ReplaceAll(name, old, new)
	}
	name = strings.Trim(strings.TrimSpace(name), ".")
	name = whitespaceRun.ReplaceAllString(name, " ")
	if len(name) > maxTitleLength {
		name = strings.TrimSpace(name[:maxTitleLength])
	}
	if name == "" {
		return "untitled"
	}
	return name
}

// Lifecycle is the filesystem-backed implementation of port.FileLifecycle,
// rooted at mediaRoot.
type Lifecycle struct {
	mediaRoot string
}

var _ port.FileLifecycle = (*Lifecycle)(nil)

func New(mediaRoot string) *Lifecycle {
	return &Lifecycle{mediaRoot: mediaRoot}
}

func (l *Lifecycle) IncompleteDir(jobID uuid.UUID) string {
	return filepath.Join(l.mediaRoot, "incomplete", jobID.String())
}

func (l *Lifecycle) TempDir(jobID uuid.UUID) string {
	return l.IncompleteDir(jobID)
}

// FinalPath reproduces "{title} [{sourceId}].{ext}" when source metadata is
// known, falling back to "{jobId}.{container}" otherwise (spec.md §6.4,
// grounded on original_source/downloader/src/main.py:enqueue_dub_job).
func (l *Lifecycle) FinalPath(jobID uuid.UUID, media *model.Media, container model.OutputContainer) string {
	ext := string(container)

	if media != nil && media.SourceTitle != nil && media.SourceID != nil {
		title := sanitize(*media.SourceTitle)
		name := fmt.Sprintf("%s [%s].%s", title, *media.SourceID, ext)
		return filepath.Join(l.mediaRoot, "complete", name)
	}

	return filepath.Join(l.mediaRoot, "complete", fmt.Sprintf("%s.%s", jobID.String(), ext))
}

func (l *Lifecycle) PromoteToFinal(ctx context.Context, tempPath, finalPath string) error {
	if err := os.MkdirAll(filepath.Dir(finalPath), 0o755); err != nil {
		return fmt.Errorf("create final dir: %w", err)
	}
	if err := os.Rename(tempPath, finalPath); err != nil {
		if linkErr, ok := err.(*os.LinkError); ok && linkErr.Err == syscall.EXDEV {
			return crossDeviceMove(tempPath, finalPath)
		}
		return fmt.Errorf("promote %s to %s: %w", tempPath, finalPath, err)
	}
	return nil
}

func (l *Lifecycle) CleanupIncomplete(ctx context.Context, jobID uuid.UUID) error {
	if err := os.RemoveAll(l.IncompleteDir(jobID)); err != nil {
		return fmt.Errorf("cleanup incomplete dir for job %s: %w", jobID, err)
	}
	return nil
}

func (l *Lifecycle) CleanupFinal(ctx context.Context, finalPath string) error {
	if finalPath == "" {
		return nil
	}
	if err := os.Remove(finalPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("cleanup final output %s: %w", finalPath, err)
	}
	return nil
}

func (l *Lifecycle) WriteCookiesFile(ctx context.Context, jobID uuid.UUID, contents string) (string, error) {
	dir := l.IncompleteDir(jobID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create incomplete dir: %w", err)
	}
	path := filepath.Join(dir, "cookies.txt")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		return "", fmt.Errorf("write cookies file: %w", err)
	}
	return path, nil
}

func (l *Lifecycle) FreeSpaceGB() (float64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(l.mediaRoot, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", l.mediaRoot, err)
	}
	bytesFree := stat.Bavail * uint64(stat.Bsize)
	return float64(bytesFree) / (1024 * 1024 * 1024), nil
}

// CascadeDelete removes both the incomplete working directory and any
// promoted final output, aggregating non-fatal failures so one missing
// file doesn't abort cleanup of the rest (job delete use case).
func CascadeDelete(ctx context.Context, l port.FileLifecycle, jobID uuid.UUID, finalPath string) error {
	var errs *multierror.Error
	if err := l.CleanupIncomplete(ctx, jobID); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := l.CleanupFinal(ctx, finalPath); err != nil {
		errs = multierror.Append(errs, err)
	}
	return errs.ErrorOrNil()
}

func crossDeviceMove(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source for cross-device move: %w", err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open destination for cross-device move: %w", err)
	}

	if _, err := copyAndSync(in, out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close destination: %w", err)
	}
	return os.Remove(src)
}
