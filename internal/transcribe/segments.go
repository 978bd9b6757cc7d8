// Package transcribe implements the per-file transcription pipeline: external
// audio extraction, speech-to-text inference, and transcript rendering.
package transcribe

import (
	"fmt"
	"math"
	"strings"
)

// Segment is one timed unit of transcribed speech.
type Segment struct {
	Start float64 // seconds
	End   float64 // seconds
	Text  string
}

// RenderTXT renders segments as plain text, one trimmed line per segment.
func RenderTXT(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(strings.TrimSpace(s.Text))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderSRT renders segments in SubRip format.
func RenderSRT(segs []Segment) string {
	var b strings.Builder
	for i, s := range segs {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", timestamp(s.Start, ','), timestamp(s.End, ','))
		b.WriteString(strings.TrimSpace(s.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// RenderVTT renders segments in WebVTT format.
func RenderVTT(segs []Segment) string {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, s := range segs {
		fmt.Fprintf(&b, "%s --> %s\n", timestamp(s.Start, '.'), timestamp(s.End, '.'))
		b.WriteString(strings.TrimSpace(s.Text))
		b.WriteString("\n\n")
	}
	return b.String()
}

// timestamp formats seconds as HH:MM:SS<sep>mmm.
func timestamp(seconds float64, msSep byte) string {
	ms := int64(math.Round(seconds * 1000))
	if ms < 0 {
		ms = 0
	}
	h := ms / 3_600_000
	m := (ms % 3_600_000) / 60_000
	s := (ms % 60_000) / 1000
	frac := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d%c%03d", h, m, s, msSep, frac)
}
