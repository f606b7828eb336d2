package transcription

import "github.com/kbukum/podscribe/timeline"

// Request holds parameters for a transcription call.
type Request struct {
	AudioPath string
	// Language is an ISO-639-1 hint. Empty lets the backend detect it.
	Language string
	// Prompt biases recognition toward expected vocabulary.
	Prompt string
}

// Response holds the result of a transcription call.
type Response struct {
	Text     string
	Segments []timeline.Segment
	Language string
	// Duration is the audio length in seconds as reported by the backend.
	Duration float64
}
