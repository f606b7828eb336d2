// Package timeline holds the time model of a transcript and the two
// algorithms that keep it consistent: splitting a long recording into
// size-bounded spans (Plan) and merging independently produced speech
// segments, speaker turns and events into one ordered sequence (Merger).
//
// All times are seconds on the global timeline of the normalized file.
// Per-chunk results are brought onto that timeline with Rebase.
package timeline
