package transcription

import (
	"time"

	"github.com/kbukum/podscribe/resilience"
)

// Config selects and configures the transcription backend.
type Config struct {
	Backend  string `yaml:"backend" mapstructure:"backend" validate:"required"`
	Language string `yaml:"language" mapstructure:"language"`
	Prompt   string `yaml:"prompt" mapstructure:"prompt"`

	OpenAI  OpenAIConfig  `yaml:"openai" mapstructure:"openai"`
	Whisper WhisperConfig `yaml:"whisper" mapstructure:"whisper"`

	// Retry applies to each backend call.
	Retry resilience.Policy `yaml:"retry" mapstructure:"retry"`
}

// OpenAIConfig configures the hosted Whisper API backend.
type OpenAIConfig struct {
	// APIKey falls back to the OPENAI_API_KEY environment variable.
	APIKey  string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// WhisperConfig configures the faster-whisper sidecar backend.
type WhisperConfig struct {
	URL     string        `yaml:"url" mapstructure:"url"`
	Model   string        `yaml:"model" mapstructure:"model"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.Backend == "" {
		c.Backend = "openai"
	}
}
