// Package media wraps the ffmpeg and ffprobe binaries: normalizing input to
// mono 16 kHz PCM, probing duration, cutting time ranges and detecting
// silence. Every invocation goes through a process.Runner.
package media
