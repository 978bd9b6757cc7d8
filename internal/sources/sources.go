// Package sources holds helpers shared by the remote source adapters.
package sources

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"mediavault/internal/domain/consts"
	"mediavault/internal/logging"
)

// ListError wraps a scan-time listing failure for one source. A failure in
// one source never aborts the other's scan.
type ListError struct {
	Source consts.SourceKind
	Err    error
}

func (e *ListError) Error() string {
	return fmt.Sprintf("listing %s items: %v", e.Source, e.Err)
}

func (e *ListError) Unwrap() error { return e.Err }

// transfer stream chunk size.
const chunkSize = 256 * 1024

// WriteFile streams rc to destPath in chunks, reporting a monotonic 0-100
// percentage at each chunk boundary when totalSize is known. The destination
// is removed on any failure and when the stream turns out empty, so a failed
// transfer never leaves a truncated file behind.
func WriteFile(destPath string, rc io.Reader, totalSize int64, onProgress func(pct int)) (ok bool) {
	if err := os.MkdirAll(filepath.Dir(destPath), consts.PermsGenericDir); err != nil {
		logging.E("Failed to create directories for %q: %v", destPath, err)
		return false
	}

	f, err := os.Create(destPath)
	if err != nil {
		logging.E("Failed to create %q: %v", destPath, err)
		return false
	}

	var written int64
	lastPct := 0
	buf := make([]byte, chunkSize)

	cleanup := func() {
		_ = f.Close()
		if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
			logging.E("Failed to remove partial artifact %q: %v", destPath, err)
		}
	}

	for {
		n, rerr := rc.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				logging.E("Write failed for %q: %v", destPath, werr)
				cleanup()
				return false
			}
			written += int64(n)

			if onProgress != nil && totalSize > 0 {
				pct := int(written * 100 / totalSize)
				if pct > 100 {
					pct = 100
				}
				if pct > lastPct {
					lastPct = pct
					onProgress(pct)
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			logging.E("Stream failed for %q: %v", destPath, rerr)
			cleanup()
			return false
		}
	}

	if err := f.Close(); err != nil {
		logging.E("Close failed for %q: %v", destPath, err)
		cleanup()
		return false
	}

	if written == 0 {
		logging.W("Downloaded file is empty, removing: %s", destPath)
		if err := os.Remove(destPath); err != nil {
			logging.E("Failed to remove empty artifact %q: %v", destPath, err)
		}
		return false
	}

	if onProgress != nil && lastPct < 100 {
		onProgress(100)
	}
	return true
}
