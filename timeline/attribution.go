package timeline

import "fmt"

// Attribution selects how a speech segment is matched to a speaker turn.
type Attribution string

const (
	// AttributeMidpoint picks the first turn containing the segment midpoint,
	// with turns inclusive at Start and exclusive at End.
	AttributeMidpoint Attribution = "midpoint"
	// AttributeMaxOverlap picks the turn with the largest intersection,
	// breaking ties by earliest turn start, then by input order.
	AttributeMaxOverlap Attribution = "max_overlap"
)

// ParseAttribution validates a configured strategy name. Empty means midpoint.
func ParseAttribution(s string) (Attribution, error) {
	switch Attribution(s) {
	case "", AttributeMidpoint:
		return AttributeMidpoint, nil
	case AttributeMaxOverlap:
		return AttributeMaxOverlap, nil
	default:
		return "", fmt.Errorf("unknown attribution strategy %q (want %s or %s)", s, AttributeMidpoint, AttributeMaxOverlap)
	}
}

// speakerFor returns the index of the chosen turn, or -1.
func (a Attribution) speakerFor(seg Segment, turns []Turn) int {
	if a == AttributeMaxOverlap {
		return maxOverlap(seg, turns)
	}
	return midpoint(seg, turns)
}

func midpoint(seg Segment, turns []Turn) int {
	mid := seg.Start + (seg.End-seg.Start)/2
	for i, t := range turns {
		if t.Start <= mid && mid < t.End {
			return i
		}
	}
	return -1
}

func maxOverlap(seg Segment, turns []Turn) int {
	best, bestLen := -1, 0.0
	span := seg.Span()
	for i, t := range turns {
		l := span.Overlap(t.Span())
		if l <= 0 {
			continue
		}
		if best < 0 || l > bestLen || (l == bestLen && t.Start < turns[best].Start) {
			best, bestLen = i, l
		}
	}
	return best
}
