// Package transcript turns an engine result into the text file written next
// to the input audio.
package transcript

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrAudioNotFound = errors.New("audio file not found")
	ErrNotMP3        = errors.New("only MP3 files are supported")
)

type ChineseMode string

const (
	ChineseNone        ChineseMode = ""
	ChineseSimplified  ChineseMode = "simplified"
	ChineseTraditional ChineseMode = "traditional"
)

func ParseChineseMode(value string) (ChineseMode, error) {
	switch mode := ChineseMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case ChineseSimplified, ChineseTraditional:
		return mode, nil
	default:
		return ChineseNone, fmt.Errorf("--chinese must be 'simplified' or 'traditional', got %q", value)
	}
}

// String and Set let ChineseMode back a command-line flag, so an invalid
// value fails at parse time before anything else runs.
func (m *ChineseMode) String() string {
	return string(*m)
}

func (m *ChineseMode) Set(value string) error {
	parsed, err := ParseChineseMode(value)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m *ChineseMode) Type() string {
	return "simplified|traditional"
}

type Request struct {
	AudioPath  string
	Language   string
	Timestamps bool
	Chinese    ChineseMode
}

// Validate checks the audio file before any engine is touched.
func (r Request) Validate() error {
	info, err := os.Stat(r.AudioPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrAudioNotFound, r.AudioPath)
		}
		return fmt.Errorf("stat audio file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrAudioNotFound, r.AudioPath)
	}
	if !IsMP3(r.AudioPath) {
		return fmt.Errorf("%w: %s", ErrNotMP3, r.AudioPath)
	}
	return nil
}

func IsMP3(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".mp3")
}

// OutputPath places the transcription next to the input:
// talk.mp3 becomes talk_transcription.txt.
func OutputPath(audioPath string) string {
	return strings.TrimSuffix(audioPath, filepath.Ext(audioPath)) + "_transcription.txt"
}

func IsOutputFile(path string) bool {
	return strings.HasSuffix(filepath.Base(path), "_transcription.txt")
}
