package timeline

// Span is a closed interval [Start, End] in seconds. Start <= End.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Duration returns End - Start.
func (s Span) Duration() float64 { return s.End - s.Start }

// Overlap returns the length of the intersection of s and o, or 0.
func (s Span) Overlap(o Span) float64 {
	lo, hi := max(s.Start, o.Start), min(s.End, o.End)
	if hi <= lo {
		return 0
	}
	return hi - lo
}

// Segment is a piece of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Span returns the segment's interval.
func (s Segment) Span() Span { return Span{Start: s.Start, End: s.End} }

// Turn is a continuous interval attributed to one speaker.
type Turn struct {
	Start     float64 `json:"start"`
	End       float64 `json:"end"`
	SpeakerID string  `json:"speaker_id"`
}

// Span returns the turn's interval.
func (t Turn) Span() Span { return Span{Start: t.Start, End: t.End} }

// Kind distinguishes speech from non-speech units.
type Kind string

const (
	KindSpeech Kind = "speech"
	KindEvent  Kind = "event"
)

// Unit is one element of the final transcript. Speaker is empty for events.
type Unit struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker,omitempty"`
	Kind    Kind    `json:"type"`
	Text    string  `json:"text"`
}

// Event builds an event unit.
func Event(start, end float64, text string) Unit {
	return Unit{Start: start, End: end, Kind: KindEvent, Text: text}
}
