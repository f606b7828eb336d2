package timeline

import (
	"cmp"
	"slices"
	"strings"
)

// DefaultUnknownSpeaker labels speech no turn could be attributed to.
const DefaultUnknownSpeaker = "UNKNOWN"

// Merger combines speech, speaker turns and events into one ordered
// transcript. The zero value uses midpoint attribution, labels unattributed
// speech DefaultUnknownSpeaker and does not collapse.
type Merger struct {
	Attribution    Attribution
	UnknownSpeaker string
	// CollapseSpeakers joins consecutive speech units of the same speaker.
	CollapseSpeakers bool
}

// Merge attributes each segment to a speaker, appends events after the
// speech units and stable-sorts everything by start. At equal start times
// speech precedes events and each group keeps its input order. Inputs are
// not modified, and the result is deterministic for identical inputs.
func (m Merger) Merge(segments []Segment, turns []Turn, events []Unit) []Unit {
	unknown := m.UnknownSpeaker
	if unknown == "" {
		unknown = DefaultUnknownSpeaker
	}

	units := make([]Unit, 0, len(segments)+len(events))
	for _, seg := range segments {
		speaker := unknown
		if i := m.Attribution.speakerFor(seg, turns); i >= 0 {
			speaker = turns[i].SpeakerID
		}
		units = append(units, Unit{
			Start:   seg.Start,
			End:     seg.End,
			Speaker: speaker,
			Kind:    KindSpeech,
			Text:    seg.Text,
		})
	}
	units = append(units, events...)

	slices.SortStableFunc(units, func(a, b Unit) int {
		return cmp.Compare(a.Start, b.Start)
	})

	if m.CollapseSpeakers {
		return Collapse(units)
	}
	return units
}

// Collapse joins runs of adjacent speech units that share a speaker. A run
// takes the first unit's start, the last unit's end, and the texts joined by
// a single space. Events break runs and pass through unchanged.
func Collapse(units []Unit) []Unit {
	out := make([]Unit, 0, len(units))
	for _, u := range units {
		if n := len(out); n > 0 {
			prev := &out[n-1]
			if prev.Kind == KindSpeech && u.Kind == KindSpeech && prev.Speaker == u.Speaker {
				prev.End = u.End
				prev.Text = joinText(prev.Text, u.Text)
				continue
			}
		}
		out = append(out, u)
	}
	return out
}

func joinText(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return strings.TrimRight(a, " ") + " " + strings.TrimLeft(b, " ")
}
