package sources

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediavault/internal/domain/consts"
)

// TestWriteFile tests the happy path, including parent directory creation.
func TestWriteFile(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "nested", "dir", "file.bin")
	content := bytes.Repeat([]byte("x"), 1000)

	if ok := WriteFile(dest, bytes.NewReader(content), int64(len(content)), nil); !ok {
		t.Fatal("WriteFile() = false, want true")
	}

	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("failed to read back: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: got %d bytes, want %d", len(got), len(content))
	}
}

// TestWriteFileEmptyStream tests that a zero-byte download is treated as a
// failure and the artifact removed.
func TestWriteFileEmptyStream(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "empty.bin")

	if ok := WriteFile(dest, strings.NewReader(""), 0, nil); ok {
		t.Error("WriteFile() = true for empty stream, want false")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("empty artifact left on disk")
	}
}

// errReader fails after yielding its prefix.
type errReader struct {
	prefix []byte
	served bool
}

func (r *errReader) Read(p []byte) (int, error) {
	if !r.served {
		r.served = true
		return copy(p, r.prefix), nil
	}
	return 0, errors.New("connection reset")
}

// TestWriteFileStreamFailureCleansUp tests that a mid-stream failure removes
// the partial artifact.
func TestWriteFileStreamFailureCleansUp(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "partial.bin")

	ok := WriteFile(dest, &errReader{prefix: []byte("partial data")}, 100, nil)
	if ok {
		t.Error("WriteFile() = true for failed stream, want false")
	}
	if _, err := os.Stat(dest); !os.IsNotExist(err) {
		t.Error("partial artifact left on disk")
	}
}

// TestWriteFileProgressMonotonic tests that progress percentages only ever
// increase and end at 100.
func TestWriteFileProgressMonotonic(t *testing.T) {
	t.Parallel()

	dest := filepath.Join(t.TempDir(), "big.bin")
	content := bytes.Repeat([]byte("y"), 3*chunkSize)

	var pcts []int
	ok := WriteFile(dest, iotestReader(content), int64(len(content)), func(pct int) {
		pcts = append(pcts, pct)
	})
	if !ok {
		t.Fatal("WriteFile() = false, want true")
	}

	if len(pcts) == 0 {
		t.Fatal("no progress reported")
	}
	for i := 1; i < len(pcts); i++ {
		if pcts[i] <= pcts[i-1] {
			t.Errorf("progress regressed: %v", pcts)
			break
		}
	}
	if last := pcts[len(pcts)-1]; last != 100 {
		t.Errorf("final progress = %d, want 100", last)
	}
}

// iotestReader yields data in uneven slices to exercise chunk boundaries.
func iotestReader(data []byte) io.Reader {
	return io.MultiReader(
		bytes.NewReader(data[:len(data)/3]),
		bytes.NewReader(data[len(data)/3:]),
	)
}

// TestListError tests wrapping and unwrapping of per-source scan failures.
func TestListError(t *testing.T) {
	t.Parallel()

	inner := errors.New("status 503")
	le := &ListError{Source: consts.SourceDrive, Err: inner}

	if !errors.Is(le, inner) {
		t.Error("errors.Is failed to unwrap ListError")
	}
	if !strings.Contains(le.Error(), "drive") {
		t.Errorf("Error() = %q, want source kind mentioned", le.Error())
	}
}
