package diarization

import (
	"context"

	"github.com/kbukum/podscribe/provider"
)

// Provider is the interface that diarization backends must implement.
type Provider interface {
	provider.Provider

	// Diarize returns the speaker turns of the whole recording.
	Diarize(ctx context.Context, req Request) (*Response, error)
}

// Registry selects a diarization backend by name.
type Registry = provider.Registry[Provider, Config]

// NewRegistry creates a registry with the "none" backend registered.
func NewRegistry() *Registry {
	reg := provider.NewRegistry[Provider, Config]()
	reg.RegisterFactory(NoneName, func(Config) (Provider, error) { return None{}, nil })
	return reg
}

// NoneName is the registered name of the backend that finds no speakers.
const NoneName = "none"

// None is a Provider that reports no turns.
type None struct{}

func (None) Name() string { return NoneName }
func (None) IsAvailable(context.Context) bool { return true }

func (None) Diarize(context.Context, Request) (*Response, error) {
	return &Response{}, nil
}
