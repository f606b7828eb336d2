// Package diarization defines the speaker diarization provider contract.
//
// # Backends
//
//   - diarization/pyannote: pyannote.audio HTTP sidecar
//   - "none": reports no speaker turns, so all speech is unattributed
package diarization
