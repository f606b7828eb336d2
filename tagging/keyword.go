package tagging

import (
	"context"
	"strings"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/timeline"
)

// Cue maps a phrase spoken in a segment to the event it announces.
type Cue struct {
	Phrase string `yaml:"phrase" mapstructure:"phrase" validate:"required"`
	Event  string `yaml:"event" mapstructure:"event" validate:"required"`
}

// DefaultCues returns the built-in cue set.
func DefaultCues() []Cue {
	return []Cue{
		{Phrase: "check out this image", Event: "*an image is shown*"},
	}
}

// KeywordTagger emits an instantaneous event at the end of every segment
// whose text contains a cue phrase, ignoring case. At most one event is
// emitted per segment; the first matching cue wins.
type KeywordTagger struct {
	cues []Cue
}

// NewKeywordTagger creates a tagger for cues, or the defaults when none are given.
func NewKeywordTagger(cues ...Cue) (*KeywordTagger, error) {
	if len(cues) == 0 {
		cues = DefaultCues()
	}
	normalized := make([]Cue, len(cues))
	for i, c := range cues {
		phrase := strings.ToLower(strings.TrimSpace(c.Phrase))
		if phrase == "" {
			return nil, errors.InvalidInput("cues", "cue phrase must not be empty")
		}
		normalized[i] = Cue{Phrase: phrase, Event: c.Event}
	}
	return &KeywordTagger{cues: normalized}, nil
}

func (t *KeywordTagger) Name() string { return KeywordName }

func (t *KeywordTagger) IsAvailable(context.Context) bool { return true }

// Tag scans segments in order.
func (t *KeywordTagger) Tag(_ context.Context, segments []timeline.Segment) ([]timeline.Unit, error) {
	var events []timeline.Unit
	for _, seg := range segments {
		text := strings.ToLower(seg.Text)
		for _, c := range t.cues {
			if strings.Contains(text, c.Phrase) {
				events = append(events, timeline.Event(seg.End, seg.End, c.Event))
				break
			}
		}
	}
	return events, nil
}
