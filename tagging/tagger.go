package tagging

import (
	"context"

	"github.com/kbukum/podscribe/provider"
	"github.com/kbukum/podscribe/timeline"
)

// AcousticTagger detects events in the non-speech spans of a recording.
type AcousticTagger interface {
	provider.Provider

	Tag(ctx context.Context, audioPath string, nonSpeech []timeline.Span) ([]timeline.Unit, error)
}

// VisualTagger derives events from cues in recognized speech.
type VisualTagger interface {
	provider.Provider

	Tag(ctx context.Context, segments []timeline.Segment) ([]timeline.Unit, error)
}

// AcousticRegistry selects an acoustic backend by name.
type AcousticRegistry = provider.Registry[AcousticTagger, Config]

// VisualRegistry selects a visual backend by name.
type VisualRegistry = provider.Registry[VisualTagger, Config]

// Built-in backend names.
const (
	NoneName    = "none"
	LabelName   = "label"
	KeywordName = "keyword"
)

// NewAcousticRegistry creates a registry with the built-in acoustic backends.
func NewAcousticRegistry() *AcousticRegistry {
	reg := provider.NewRegistry[AcousticTagger, Config]()
	reg.RegisterFactory(NoneName, func(Config) (AcousticTagger, error) { return NoAcoustic{}, nil })
	reg.RegisterFactory(LabelName, func(cfg Config) (AcousticTagger, error) {
		return NewSpanLabeler(cfg.Acoustic.Label, cfg.Acoustic.MinDuration), nil
	})
	return reg
}

// NewVisualRegistry creates a registry with the built-in visual backends.
func NewVisualRegistry() *VisualRegistry {
	reg := provider.NewRegistry[VisualTagger, Config]()
	reg.RegisterFactory(NoneName, func(Config) (VisualTagger, error) { return NoVisual{}, nil })
	reg.RegisterFactory(KeywordName, func(cfg Config) (VisualTagger, error) {
		t, err := NewKeywordTagger(cfg.Visual.Cues...)
		if err != nil {
			return nil, err
		}
		return t, nil
	})
	return reg
}

// NoAcoustic is an AcousticTagger that finds nothing.
type NoAcoustic struct{}

func (NoAcoustic) Name() string { return NoneName }

func (NoAcoustic) IsAvailable(context.Context) bool { return true }

func (NoAcoustic) Tag(context.Context, string, []timeline.Span) ([]timeline.Unit, error) {
	return nil, nil
}

// NoVisual is a VisualTagger that finds nothing.
type NoVisual struct{}

func (NoVisual) Name() string { return NoneName }

func (NoVisual) IsAvailable(context.Context) bool { return true }

func (NoVisual) Tag(context.Context, []timeline.Segment) ([]timeline.Unit, error) {
	return nil, nil
}
