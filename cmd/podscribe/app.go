package main

import (
	"fmt"

	"github.com/kbukum/podscribe/config"
	"github.com/kbukum/podscribe/diarization"
	"github.com/kbukum/podscribe/diarization/pyannote"
	"github.com/kbukum/podscribe/logger"
	"github.com/kbukum/podscribe/media"
	"github.com/kbukum/podscribe/observability"
	"github.com/kbukum/podscribe/pipeline"
	"github.com/kbukum/podscribe/process"
	"github.com/kbukum/podscribe/server"
	"github.com/kbukum/podscribe/server/middleware"
	"github.com/kbukum/podscribe/storage"
	"github.com/kbukum/podscribe/tagging"
	"github.com/kbukum/podscribe/tagging/classifier"
	"github.com/kbukum/podscribe/transcription"
	"github.com/kbukum/podscribe/transcription/openai"
	"github.com/kbukum/podscribe/transcription/whisper"
	"github.com/kbukum/podscribe/util"
	"github.com/kbukum/podscribe/validation"

	_ "github.com/kbukum/podscribe/storage/local"
)

const serviceName = "podscribe"

// AppConfig is the full configuration of the podscribe binary.
type AppConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Auth          middleware.JWTConfig `yaml:"auth" mapstructure:"auth"`
	Storage       storage.Config       `yaml:"storage" mapstructure:"storage"`
	Pipeline      pipeline.Config      `yaml:"pipeline" mapstructure:"pipeline"`
	Media         media.Config         `yaml:"media" mapstructure:"media"`
	Process       process.Config       `yaml:"process" mapstructure:"process"`
	Transcription transcription.Config `yaml:"transcription" mapstructure:"transcription"`
	Diarization   diarization.Config   `yaml:"diarization" mapstructure:"diarization"`
	Tagging       tagging.Config       `yaml:"tagging" mapstructure:"tagging"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// ApplyDefaults fills every section. Silence detection settings given under
// pipeline take effect in the media adapter.
func (c *AppConfig) ApplyDefaults() {
	if c.Name == "" {
		c.Name = serviceName
	}
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Storage.ApplyDefaults()
	if c.Media.MinSilence == 0 {
		c.Media.MinSilence = c.Pipeline.MinSilence
	}
	if c.Media.SilenceNoiseDB == 0 {
		c.Media.SilenceNoiseDB = c.Pipeline.SilenceNoiseDB
	}
	c.Pipeline.ApplyDefaults()
	c.Media.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.Diarization.ApplyDefaults()
	c.Tagging.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate checks struct tags first, then the cross-field rules of each
// section.
func (c *AppConfig) Validate() error {
	if err := validation.Struct(c); err != nil {
		return err
	}
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Storage.Validate(); err != nil {
		return err
	}
	if err := c.Pipeline.Validate(); err != nil {
		return err
	}
	return nil
}

// loadAppConfig reads the config file and environment into an AppConfig.
func loadAppConfig(path, envFile string) (*AppConfig, error) {
	var opts []config.LoaderOption
	if path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if envFile != "" {
		opts = append(opts, config.WithEnvFile(envFile))
	}
	cfg := &AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// backends holds one registry per pluggable stage.
type backends struct {
	transcription *transcription.Registry
	diarization   *diarization.Registry
	acoustic      *tagging.AcousticRegistry
	visual        *tagging.VisualRegistry
}

func newBackends() backends {
	tr := transcription.NewRegistry()
	tr.RegisterFactory(openai.ProviderName, openai.Factory)
	tr.RegisterFactory(whisper.ProviderName, whisper.Factory)

	dr := diarization.NewRegistry()
	dr.RegisterFactory(pyannote.ProviderName, pyannote.Factory)

	ac := tagging.NewAcousticRegistry()
	ac.RegisterFactory(classifier.ProviderName, classifier.Factory)

	return backends{
		transcription: tr,
		diarization:   dr,
		acoustic:      ac,
		visual:        tagging.NewVisualRegistry(),
	}
}

// buildOrchestrator resolves the configured backends and wires the pipeline.
func buildOrchestrator(cfg *AppConfig, audio pipeline.AudioTools, metrics *observability.Metrics, log *logger.Logger) (*pipeline.Orchestrator, error) {
	b := newBackends()

	transcriber, err := b.transcription.Resolve(cfg.Transcription.Backend, cfg.Transcription)
	if err != nil {
		return nil, fmt.Errorf("transcription backend: %w", err)
	}
	diarizer, err := b.diarization.Resolve(cfg.Diarization.Backend, cfg.Diarization)
	if err != nil {
		return nil, fmt.Errorf("diarization backend: %w", err)
	}
	acoustic, err := b.acoustic.Resolve(cfg.Tagging.Acoustic.Backend, cfg.Tagging)
	if err != nil {
		return nil, fmt.Errorf("acoustic tagging backend: %w", err)
	}
	visual, err := b.visual.Resolve(cfg.Tagging.Visual.Backend, cfg.Tagging)
	if err != nil {
		return nil, fmt.Errorf("visual tagging backend: %w", err)
	}

	if audio == nil {
		audio = media.New(process.NewExecutor(cfg.Process), cfg.Media, log)
	}

	log.Info("pipeline backends resolved", logger.Fields(
		"transcription", transcriber.Name(),
		"diarization", diarizer.Name(),
		"acoustic", acoustic.Name(),
		"visual", visual.Name(),
		"openai_api_key", util.MaskSecret(cfg.Transcription.OpenAI.APIKey, 4),
	))

	return pipeline.NewOrchestrator(cfg.Pipeline, pipeline.Deps{
		Audio:         audio,
		Transcriber:   transcriber,
		Diarizer:      diarizer,
		Acoustic:      acoustic,
		Visual:        visual,
		Transcription: cfg.Transcription,
		Speakers:      cfg.Diarization,
		Metrics:       metrics,
		Log:           log,
	})
}
