package fs

import (
	"fmt"
	"io"
	"os"
)

// copyAndSync copies src to dst and fsyncs before returning, used by the
// cross-device fallback when os.Rename can't be used atomically because
// incomplete/ and complete/ live on different filesystems.
func copyAndSync(src io.Reader, dst *os.File) (int64, error) {
	n, err := io.Copy(dst, src)
	if err != nil {
		return n, fmt.Errorf("copy: %w", err)
	}
	if err := dst.Sync(); err != nil {
		return n, fmt.Errorf("sync: %w", err)
	}
	return n, nil
}
