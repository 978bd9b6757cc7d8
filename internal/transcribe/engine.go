package transcribe

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mediavault/internal/domain/consts"
	"mediavault/internal/logging"
)

// Engine runs the per-file transcription pipeline.
type Engine struct {
	FFmpegPath     string // Defaults to "ffmpeg".
	WhisperPath    string // Defaults to "whisper-cli".
	ModelDir       string // Directory holding ggml model files.
	ExtractTimeout time.Duration
}

// NewEngine returns an engine with the default tool names, resolving both
// binaries from PATH.
func NewEngine(modelDir string) *Engine {
	return &Engine{
		FFmpegPath:     "ffmpeg",
		WhisperPath:    "whisper-cli",
		ModelDir:       modelDir,
		ExtractTimeout: DefaultExtractTimeout,
	}
}

// Options selects model, language, and output formats for one file.
type Options struct {
	Model    string // tiny, base, small, medium, large
	Language string // ISO code or "auto"
	Format   string // txt, srt, vtt, both
}

// transcriptExts are the extensions checked for an already-done transcript.
var transcriptExts = [...]string{".txt", ".srt", ".vtt"}

// ExistingTranscript reports a transcript already on disk for the video, if
// any, checked by the standard extensions.
func ExistingTranscript(videoPath string) (string, bool) {
	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	for _, ext := range transcriptExts {
		p := base + ext
		if _, err := os.Stat(p); err == nil {
			return p, true
		}
	}
	return "", false
}

// TranscribeFile extracts audio from the video, runs inference, and writes
// transcripts in the configured format(s), returning the primary transcript
// path. The extracted audio file is removed on every exit path.
func (e *Engine) TranscribeFile(ctx context.Context, videoPath string, opts Options) (string, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return "", fmt.Errorf("video file not found: %w", err)
	}

	if p, ok := ExistingTranscript(videoPath); ok {
		logging.I("Transcript already exists: %s", p)
		return p, nil
	}

	base := strings.TrimSuffix(videoPath, filepath.Ext(videoPath))
	audioPath := base + ".wav"

	defer func() {
		if err := os.Remove(audioPath); err != nil && !os.IsNotExist(err) {
			logging.W("Could not remove extracted audio %q: %v", audioPath, err)
		}
	}()

	logging.I("Extracting audio from %q", filepath.Base(videoPath))
	if err := e.extractAudio(ctx, videoPath, audioPath); err != nil {
		return "", err
	}

	logging.I("Transcribing %q (model: %s)", filepath.Base(videoPath), opts.Model)
	segs, err := e.runInference(ctx, audioPath, opts.Model, opts.Language)
	if err != nil {
		return "", err
	}

	return writeTranscripts(base, opts.Format, segs)
}

// writeTranscripts renders and writes the transcript file(s), returning the
// primary path.
func writeTranscripts(base, format string, segs []Segment) (string, error) {
	write := func(ext, content string) (string, error) {
		p := base + ext
		if err := os.WriteFile(p, []byte(content), consts.PermsStateFile); err != nil {
			return "", fmt.Errorf("failed to write transcript %q: %w", p, err)
		}
		return p, nil
	}

	switch format {
	case consts.FormatSRT:
		return write(".srt", RenderSRT(segs))
	case consts.FormatVTT:
		return write(".vtt", RenderVTT(segs))
	case consts.FormatBoth:
		txtPath, err := write(".txt", RenderTXT(segs))
		if err != nil {
			return "", err
		}
		if _, err := write(".srt", RenderSRT(segs)); err != nil {
			return "", err
		}
		return txtPath, nil
	default:
		return write(".txt", RenderTXT(segs))
	}
}
