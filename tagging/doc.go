// Package tagging produces non-speech event units for the transcript.
//
// Acoustic taggers inspect the recording's non-speech spans; visual taggers
// read the recognized speech for cues that something is being shown.
//
// # Acoustic backends
//
//   - "none": emits nothing
//   - "label": emits one fixed-text event per non-speech span
//   - tagging/classifier: audio event classifier HTTP sidecar
//
// # Visual backends
//
//   - "keyword": case-insensitive cue phrase matching
//   - "none": emits nothing
package tagging
