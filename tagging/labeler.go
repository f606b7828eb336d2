package tagging

import (
	"context"

	"github.com/kbukum/podscribe/timeline"
)

// DefaultLabel is the event text used when none is configured.
const DefaultLabel = "*non-speech audio*"

// SpanLabeler reports every non-speech span as an event with fixed text.
type SpanLabeler struct {
	label       string
	minDuration float64
}

// NewSpanLabeler creates a labeler. Spans shorter than minDuration seconds
// are skipped.
func NewSpanLabeler(label string, minDuration float64) *SpanLabeler {
	if label == "" {
		label = DefaultLabel
	}
	return &SpanLabeler{label: label, minDuration: minDuration}
}

func (l *SpanLabeler) Name() string { return LabelName }

func (l *SpanLabeler) IsAvailable(context.Context) bool { return true }

func (l *SpanLabeler) Tag(_ context.Context, _ string, nonSpeech []timeline.Span) ([]timeline.Unit, error) {
	events := make([]timeline.Unit, 0, len(nonSpeech))
	for _, s := range nonSpeech {
		if s.Duration() < l.minDuration {
			continue
		}
		events = append(events, timeline.Event(s.Start, s.End, l.label))
	}
	return events, nil
}
