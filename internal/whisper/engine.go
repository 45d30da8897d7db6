package whisper

import (
	"context"
	"math"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

type TranscriptionRequest struct {
	AudioPath string
	ModelPath string
	// Language is a Whisper language code, or "auto" to let the engine detect it.
	Language string
	Prompt   string
}

type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

type Result struct {
	Language string
	Text     string
	Segments []Segment
}

type Engine interface {
	Name() string
	Transcribe(ctx context.Context, req TranscriptionRequest) (Result, error)
}

// Seconds converts a floating-point offset to a duration rounded to the
// microsecond, which is the precision timestamps are rendered from.
func Seconds(s float64) time.Duration {
	if s <= 0 || math.IsNaN(s) {
		return 0
	}
	return time.Duration(math.Round(s*1e6)) * time.Microsecond
}

var (
	promptSeparators = regexp.MustCompile(`[_-]+`)
	promptSymbols    = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)
)

// InitialPrompt derives a decoding hint from the audio file name: names of
// talks and episodes often contain vocabulary the model would otherwise miss.
func InitialPrompt(audioPath string) string {
	name := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	name = promptSeparators.ReplaceAllString(name, " ")
	name = promptSymbols.ReplaceAllString(name, " ")
	return strings.Join(strings.Fields(name), " ")
}

func joinSegmentText(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if text := strings.TrimSpace(seg.Text); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}
