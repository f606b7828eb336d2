// Command podscribe transcribes long-form audio and video into
// speaker-attributed, event-tagged transcripts, either as an HTTP job
// service or as a one-shot command.
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
