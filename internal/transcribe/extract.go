package transcribe

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"mediavault/internal/logging"
)

// DefaultExtractTimeout bounds one ffmpeg extraction.
const DefaultExtractTimeout = 600 * time.Second

// ErrExtraction marks audio-extraction failures.
var ErrExtraction = errors.New("audio extraction failed")

// extractAudio downmixes the video's audio track to 16 kHz mono 16-bit PCM at
// audioPath, overwriting any existing file. A nonzero exit or timeout fails
// the file, not the run.
func (e *Engine) extractAudio(ctx context.Context, videoPath, audioPath string) error {
	ffmpeg := e.FFmpegPath
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if _, err := exec.LookPath(ffmpeg); err != nil {
		return fmt.Errorf("%w: %q not found in PATH", ErrExtraction, ffmpeg)
	}

	timeout := e.ExtractTimeout
	if timeout <= 0 {
		timeout = DefaultExtractTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, ffmpeg,
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		"-y",
		audioPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.D(1, "Extracting audio: %s", cmd.String())

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: timed out after %s", ErrExtraction, timeout)
		}
		logging.E("ffmpeg stderr for %q:\n%s", videoPath, stderr.String())
		return fmt.Errorf("%w: %v", ErrExtraction, err)
	}

	if _, err := os.Stat(audioPath); err != nil {
		return fmt.Errorf("%w: no audio produced at %q", ErrExtraction, audioPath)
	}
	return nil
}
