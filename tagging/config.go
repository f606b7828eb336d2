package tagging

import (
	"time"

	"github.com/kbukum/podscribe/resilience"
)

// Config configures both tagger kinds.
type Config struct {
	Acoustic AcousticConfig `yaml:"acoustic" mapstructure:"acoustic"`
	Visual   VisualConfig   `yaml:"visual" mapstructure:"visual"`
}

// AcousticConfig selects and configures the acoustic backend.
type AcousticConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	// Label is the event text emitted by the "label" backend.
	Label string `yaml:"label" mapstructure:"label"`
	// MinDuration drops non-speech spans shorter than this many seconds.
	MinDuration float64 `yaml:"min_duration" mapstructure:"min_duration" validate:"gte=0"`

	Classifier ClassifierConfig `yaml:"classifier" mapstructure:"classifier"`
}

// ClassifierConfig configures the classifier sidecar backend.
type ClassifierConfig struct {
	URL           string            `yaml:"url" mapstructure:"url"`
	Timeout       time.Duration     `yaml:"timeout" mapstructure:"timeout"`
	MinConfidence float64           `yaml:"min_confidence" mapstructure:"min_confidence" validate:"gte=0,lte=1"`
	Retry         resilience.Policy `yaml:"retry" mapstructure:"retry"`
}

// VisualConfig selects and configures the visual backend.
type VisualConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"`
	Cues    []Cue  `yaml:"cues" mapstructure:"cues" validate:"dive"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Acoustic.Backend == "" {
		c.Acoustic.Backend = NoneName
	}
	if c.Acoustic.Label == "" {
		c.Acoustic.Label = DefaultLabel
	}
	if c.Visual.Backend == "" {
		c.Visual.Backend = KeywordName
	}
	if len(c.Visual.Cues) == 0 {
		c.Visual.Cues = DefaultCues()
	}
}
