package media

import "time"

// Config configures the ffmpeg adapter.
type Config struct {
	FFmpegPath  string `yaml:"ffmpeg_path" mapstructure:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path" mapstructure:"ffprobe_path"`
	SampleRate  int    `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=8000"`
	Channels    int    `yaml:"channels" mapstructure:"channels" validate:"min=1"`
	// Codec must be a constant-bitrate PCM codec; chunk planning relies on it.
	Codec string `yaml:"codec" mapstructure:"codec" validate:"oneof=pcm_s16le pcm_s24le pcm_f32le"`

	// MinSilence is the shortest quiet stretch reported as non-speech.
	MinSilence time.Duration `yaml:"min_silence" mapstructure:"min_silence"`
	// SilenceNoiseDB is the level below which audio counts as silent.
	SilenceNoiseDB float64 `yaml:"silence_noise_db" mapstructure:"silence_noise_db" validate:"lt=0"`
}

// ApplyDefaults sets default values for unset fields.
func (c *Config) ApplyDefaults() {
	if c.FFmpegPath == "" {
		c.FFmpegPath = "ffmpeg"
	}
	if c.FFprobePath == "" {
		c.FFprobePath = "ffprobe"
	}
	if c.SampleRate == 0 {
		c.SampleRate = 16000
	}
	if c.Channels == 0 {
		c.Channels = 1
	}
	if c.Codec == "" {
		c.Codec = "pcm_s16le"
	}
	if c.MinSilence == 0 {
		c.MinSilence = 2 * time.Second
	}
	if c.SilenceNoiseDB == 0 {
		c.SilenceNoiseDB = -30
	}
}
