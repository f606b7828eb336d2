// Package transcription defines the speech-to-text provider contract and the
// Coordinator that runs it over every chunk of a recording.
//
// # Backends
//
//   - transcription/openai: hosted Whisper API (verbose_json segments)
//   - transcription/whisper: self-hosted faster-whisper HTTP sidecar
//
// Backends report timestamps relative to the chunk they were given; the
// Coordinator rebases them onto the recording's timeline.
package transcription
