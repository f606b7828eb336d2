package pipeline

import (
	"time"

	"github.com/kbukum/podscribe/errors"
	"github.com/kbukum/podscribe/timeline"
)

// DefaultMaxChunkBytes matches the 25 MB upload limit of hosted Whisper.
const DefaultMaxChunkBytes = 25 * 1024 * 1024

// Config configures chunking, fan-out and merging.
type Config struct {
	// MaxChunkBytes is the largest payload sent to the transcription backend.
	MaxChunkBytes int64 `yaml:"max_chunk_bytes" mapstructure:"max_chunk_bytes" validate:"gt=0"`
	// MaxConcurrency bounds chunk transcriptions in flight per job.
	MaxConcurrency int `yaml:"max_concurrency" mapstructure:"max_concurrency" validate:"gt=0"`
	// RateLimitPerMin paces transcription calls across all jobs. Zero is unlimited.
	RateLimitPerMin int `yaml:"rate_limit_per_min" mapstructure:"rate_limit_per_min" validate:"gte=0"`
	// MaxJobs bounds jobs running at once.
	MaxJobs int `yaml:"max_jobs" mapstructure:"max_jobs" validate:"gt=0"`

	Attribution      string `yaml:"attribution" mapstructure:"attribution" validate:"oneof=midpoint max_overlap"`
	CollapseSpeakers bool   `yaml:"collapse_speakers" mapstructure:"collapse_speakers"`
	UnknownSpeaker   string `yaml:"unknown_speaker" mapstructure:"unknown_speaker"`

	// WorkDir holds per-job scratch directories (os.TempDir() when empty).
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`

	MinSilence     time.Duration `yaml:"min_silence" mapstructure:"min_silence"`
	SilenceNoiseDB float64       `yaml:"silence_noise_db" mapstructure:"silence_noise_db" validate:"lte=0"`

	// WebhookTimeout bounds delivery of terminal job notifications.
	WebhookTimeout time.Duration `yaml:"webhook_timeout" mapstructure:"webhook_timeout"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.MaxChunkBytes == 0 {
		c.MaxChunkBytes = DefaultMaxChunkBytes
	}
	if c.MaxConcurrency == 0 {
		c.MaxConcurrency = 4
	}
	if c.MaxJobs == 0 {
		c.MaxJobs = 2
	}
	if c.Attribution == "" {
		c.Attribution = string(timeline.AttributeMidpoint)
	}
	if c.UnknownSpeaker == "" {
		c.UnknownSpeaker = timeline.DefaultUnknownSpeaker
	}
	if c.MinSilence == 0 {
		c.MinSilence = 2 * time.Second
	}
	if c.SilenceNoiseDB == 0 {
		c.SilenceNoiseDB = -30
	}
	if c.WebhookTimeout == 0 {
		c.WebhookTimeout = 10 * time.Second
	}
}

// Validate checks values the struct tags cannot express.
func (c *Config) Validate() error {
	if _, err := timeline.ParseAttribution(c.Attribution); err != nil {
		return err
	}
	if c.MaxChunkBytes <= 0 {
		return errors.InvalidInput("pipeline.max_chunk_bytes", "must be positive")
	}
	return nil
}

func (c *Config) merger() timeline.Merger {
	attr, _ := timeline.ParseAttribution(c.Attribution)
	return timeline.Merger{
		Attribution:      attr,
		UnknownSpeaker:   c.UnknownSpeaker,
		CollapseSpeakers: c.CollapseSpeakers,
	}
}
