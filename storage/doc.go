// Package storage stages submitted media files for transcription jobs.
//
// # Backends
//
//   - storage/local: local filesystem
//
// Backends register a factory under their provider name, typically from an
// init function, and are selected through Config:
//
//	storage:
//	  provider: "local"
//	  base_path: "/var/lib/podscribe/uploads"
//	  max_file_size: 2147483648
package storage
