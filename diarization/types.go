package diarization

import (
	"time"

	"github.com/kbukum/podscribe/resilience"
	"github.com/kbukum/podscribe/timeline"
)

// Request holds parameters for a diarization call.
type Request struct {
	AudioPath string
	// NumSpeakers is the exact number of speakers (0 = auto-detect).
	NumSpeakers int
	MinSpeakers int
	MaxSpeakers int
}

// Response holds the speaker turns of a recording in seconds.
type Response struct {
	Turns       []timeline.Turn
	NumSpeakers int
}

// Config selects and configures the diarization backend.
type Config struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	NumSpeakers int    `yaml:"num_speakers" mapstructure:"num_speakers" validate:"gte=0"`
	MinSpeakers int    `yaml:"min_speakers" mapstructure:"min_speakers" validate:"gte=0"`
	MaxSpeakers int    `yaml:"max_speakers" mapstructure:"max_speakers" validate:"gte=0"`

	Pyannote PyannoteConfig    `yaml:"pyannote" mapstructure:"pyannote"`
	Retry    resilience.Policy `yaml:"retry" mapstructure:"retry"`
}

// PyannoteConfig configures the pyannote sidecar backend.
type PyannoteConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = NoneName
	}
}

// Request builds a diarization request for path from the configured hints.
func (c Config) Request(path string) Request {
	return Request{
		AudioPath:   path,
		NumSpeakers: c.NumSpeakers,
		MinSpeakers: c.MinSpeakers,
		MaxSpeakers: c.MaxSpeakers,
	}
}
