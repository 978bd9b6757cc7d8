package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mediavault/internal/domain/consts"
	"mediavault/internal/logging"
)

// ErrInference marks speech-to-text failures.
var ErrInference = errors.New("inference failed")

// whisperOutput mirrors the JSON document whisper.cpp writes with -oj.
type whisperOutput struct {
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"` // milliseconds
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

// modelPath resolves the user-facing model size to the cached model file.
func (e *Engine) modelPath(model string) (string, error) {
	name, ok := consts.WhisperModels[model]
	if !ok {
		name = model
	}
	p := filepath.Join(e.ModelDir, "ggml-"+name+".bin")
	if _, err := os.Stat(p); err != nil {
		return "", fmt.Errorf("%w: model %q not found at %q", ErrInference, model, p)
	}
	return p, nil
}

// runInference transcribes the extracted audio, returning timed segments.
//
// Language "auto" or empty enables automatic detection. Hardware-accelerated
// inference is attempted first; on failure the run is retried CPU-only, a
// best-effort optimization rather than a correctness requirement.
func (e *Engine) runInference(ctx context.Context, audioPath, model, language string) ([]Segment, error) {
	bin := e.WhisperPath
	if bin == "" {
		bin = "whisper-cli"
	}
	if _, err := exec.LookPath(bin); err != nil {
		return nil, fmt.Errorf("%w: %q not found in PATH", ErrInference, bin)
	}

	mp, err := e.modelPath(model)
	if err != nil {
		return nil, err
	}

	outBase := strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_whisper"
	jsonPath := outBase + ".json"
	defer func() {
		if err := os.Remove(jsonPath); err != nil && !os.IsNotExist(err) {
			logging.D(2, "Could not remove inference output %q: %v", jsonPath, err)
		}
	}()

	args := []string{
		"-m", mp,
		"-f", audioPath,
		"-oj",
		"-of", outBase,
		"-np",
	}
	if language != "" && language != "auto" {
		args = append(args, "-l", language)
	} else {
		args = append(args, "-l", "auto")
	}

	if err := e.runWhisper(ctx, bin, args); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", ErrInference, ctx.Err())
		}
		// GPU builds can fail on machines without usable acceleration.
		logging.W("Inference failed, retrying CPU-only: %v", err)
		if err := e.runWhisper(ctx, bin, append(args, "--no-gpu")); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInference, err)
		}
	}

	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("%w: no output document: %v", ErrInference, err)
	}
	return parseWhisperJSON(data)
}

func (e *Engine) runWhisper(ctx context.Context, bin string, args []string) error {
	cmd := exec.CommandContext(ctx, bin, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logging.D(1, "Running inference: %s", cmd.String())

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			logging.D(1, "whisper stderr:\n%s", msg)
		}
		return err
	}
	return nil
}

func parseWhisperJSON(data []byte) ([]Segment, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("%w: malformed output document: %v", ErrInference, err)
	}

	segs := make([]Segment, 0, len(out.Transcription))
	for _, t := range out.Transcription {
		segs = append(segs, Segment{
			Start: float64(t.Offsets.From) / 1000.0,
			End:   float64(t.Offsets.To) / 1000.0,
			Text:  t.Text,
		})
	}
	return segs, nil
}
