// Package format renders transcripts for output.
package format

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/timeline"
)

// Format names an output rendering.
type Format string

const (
	JSON Format = "json"
	Text Format = "txt"
	SRT  Format = "srt"
)

// Default is used when no format is requested.
const Default = JSON

// Supported lists the accepted format names.
func Supported() []string {
	return []string{string(JSON), string(Text), string(SRT)}
}

// Parse resolves a format name, case-insensitively. An empty name yields Default.
func Parse(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return Default, nil
	case JSON, Text, SRT:
		return f, nil
	default:
		return "", errors.UnsupportedFormat(name, Supported())
	}
}

// Render renders units in format f.
func Render(f Format, units []timeline.Unit) (string, error) {
	switch f {
	case JSON:
		if units == nil {
			units = []timeline.Unit{}
		}
		data, err := json.MarshalIndent(units, "", "  ")
		if err != nil {
			return "", errors.Internal(fmt.Errorf("encode transcript: %w", err))
		}
		return string(data), nil
	case Text:
		return renderText(units), nil
	case SRT:
		return renderSRT(units), nil
	default:
		return "", errors.UnsupportedFormat(string(f), Supported())
	}
}

// renderText writes one "[HH:MM:SS] SPEAKER: text" line per unit. Events
// carry no speaker.
func renderText(units []timeline.Unit) string {
	var b strings.Builder
	for _, u := range units {
		fmt.Fprintf(&b, "[%s] %s\n", clock(u.Start), label(u))
	}
	return b.String()
}

func renderSRT(units []timeline.Unit) string {
	var b strings.Builder
	for i, u := range units {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n", i+1, srtTime(u.Start), srtTime(u.End), label(u))
	}
	return b.String()
}

func label(u timeline.Unit) string {
	if u.Kind == timeline.KindSpeech && u.Speaker != "" {
		return u.Speaker + ": " + u.Text
	}
	return u.Text
}

// srtTime formats seconds as HH:MM:SS,mmm rounded to the millisecond.
func srtTime(seconds float64) string {
	ms := int64(math.Round(math.Abs(seconds) * 1000))
	return fmt.Sprintf("%02d:%02d:%02d,%03d", ms/3_600_000, ms/60_000%60, ms/1000%60, ms%1000)
}

func clock(seconds float64) string {
	s := int64(math.Abs(seconds))
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, s/60%60, s%60)
}
