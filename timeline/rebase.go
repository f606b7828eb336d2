package timeline

import "strings"

// Rebase shifts chunk-local segments onto the global timeline by adding
// offset to both ends and trims their text. The input is not modified.
func Rebase(offset float64, local []Segment) []Segment {
	out := make([]Segment, len(local))
	for i, s := range local {
		out[i] = Segment{
			Start: offset + s.Start,
			End:   offset + s.End,
			Text:  strings.TrimSpace(s.Text),
		}
	}
	return out
}
