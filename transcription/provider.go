package transcription

import (
	"context"

	"github.com/kbukum/podscribe/provider"
)

// Provider is the interface that transcription backends must implement.
type Provider interface {
	provider.Provider

	// Transcribe returns segments with timestamps local to the audio file.
	Transcribe(ctx context.Context, req Request) (*Response, error)
}

// Registry selects a transcription backend by name.
type Registry = provider.Registry[Provider, Config]

// NewRegistry creates an empty backend registry.
func NewRegistry() *Registry {
	return provider.NewRegistry[Provider, Config]()
}
