package transcribe

import (
	"testing"
)

func sampleSegments() []Segment {
	return []Segment{
		{Start: 0, End: 2.5, Text: " Hello there."},
		{Start: 2.5, End: 5.0, Text: " Welcome to the talk."},
	}
}

// TestRenderTXT tests plain text rendering.
func TestRenderTXT(t *testing.T) {
	t.Parallel()

	want := "Hello there.\nWelcome to the talk.\n"
	if got := RenderTXT(sampleSegments()); got != want {
		t.Errorf("RenderTXT() = %q, want %q", got, want)
	}
}

// TestRenderSRT tests SubRip rendering with comma millisecond separators.
func TestRenderSRT(t *testing.T) {
	t.Parallel()

	want := "1\n00:00:00,000 --> 00:00:02,500\nHello there.\n\n" +
		"2\n00:00:02,500 --> 00:00:05,000\nWelcome to the talk.\n\n"
	if got := RenderSRT(sampleSegments()); got != want {
		t.Errorf("RenderSRT() = %q, want %q", got, want)
	}
}

// TestRenderVTT tests WebVTT rendering with the header and dot separators.
func TestRenderVTT(t *testing.T) {
	t.Parallel()

	want := "WEBVTT\n\n00:00:00.000 --> 00:00:02.500\nHello there.\n\n" +
		"00:00:02.500 --> 00:00:05.000\nWelcome to the talk.\n\n"
	if got := RenderVTT(sampleSegments()); got != want {
		t.Errorf("RenderVTT() = %q, want %q", got, want)
	}
}

// TestTimestamp tests boundary formatting of the shared timestamp helper.
func TestTimestamp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		seconds float64
		sep     byte
		want    string
	}{
		{0, ',', "00:00:00,000"},
		{1.5, ',', "00:00:01,500"},
		{59.999, ',', "00:00:59,999"},
		{60, '.', "00:01:00.000"},
		{3661.25, '.', "01:01:01.250"},
		{-1, ',', "00:00:00,000"},
	}

	for _, tt := range tests {
		if got := timestamp(tt.seconds, tt.sep); got != tt.want {
			t.Errorf("timestamp(%v, %q) = %q, want %q", tt.seconds, tt.sep, got, tt.want)
		}
	}
}

// TestParseWhisperJSON tests decoding the inference output document.
func TestParseWhisperJSON(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"transcription": [
			{"offsets": {"from": 0, "to": 2500}, "text": " Hello there."},
			{"offsets": {"from": 2500, "to": 5000}, "text": " Welcome to the talk."}
		]
	}`)

	segs, err := parseWhisperJSON(data)
	if err != nil {
		t.Fatalf("parseWhisperJSON() error = %v", err)
	}
	if len(segs) != 2 {
		t.Fatalf("segment count = %d, want 2", len(segs))
	}
	if segs[0].Start != 0 || segs[0].End != 2.5 {
		t.Errorf("segs[0] times = %v..%v, want 0..2.5", segs[0].Start, segs[0].End)
	}
	if segs[1].Text != " Welcome to the talk." {
		t.Errorf("segs[1].Text = %q", segs[1].Text)
	}

	if _, err := parseWhisperJSON([]byte("{bad")); err == nil {
		t.Error("parseWhisperJSON() accepted malformed input")
	}
}
