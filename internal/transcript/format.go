package transcript

import (
	"fmt"
	"strings"
	"time"

	"github.com/fmueller/speechtxt/internal/whisper"
)

// FormatTimestamp renders an offset as HH:MM:SS.mmm. Hours are not wrapped at
// a day; milliseconds are truncated, not rounded.
func FormatTimestamp(seconds float64) string {
	return FormatDuration(whisper.Seconds(seconds))
}

func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	micros := int64(d / time.Microsecond)
	whole := micros / 1_000_000

	hours := whole / 3600
	minutes := (whole % 3600) / 60
	secs := whole % 60
	millis := (micros % 1_000_000) / 1000

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, secs, millis)
}

type Document struct {
	Filename     string
	FileSize     int64
	SHA1         string
	Language     string
	SegmentCount int
	Body         string
}

// Render produces the full file contents: the metadata header followed by the
// body.
func (d Document) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "filename: %s\n", d.Filename)
	fmt.Fprintf(&b, "file_size: %d bytes\n", d.FileSize)
	fmt.Fprintf(&b, "sha1: %s\n\n", d.SHA1)
	fmt.Fprintf(&b, "language: %s\n", d.Language)
	fmt.Fprintf(&b, "segments: %d\n\n", d.SegmentCount)
	b.WriteString(d.Body)
	return b.String()
}

func RenderBody(segments []whisper.Segment, timestamps bool) string {
	var b strings.Builder
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if timestamps {
			fmt.Fprintf(&b, "[%s --> %s]\n%s\n\n", FormatDuration(seg.Start), FormatDuration(seg.End), text)
			continue
		}
		if text != "" {
			b.WriteString(text)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
