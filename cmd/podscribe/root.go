package main

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/podscribe/logger"
)

var (
	configPath string
	envFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "podscribe",
	Short: "Speaker-attributed transcription for long recordings",
	Long: `Podscribe normalizes an audio or video file, splits it into upload-sized
chunks, transcribes them concurrently, attributes speakers, tags non-speech
events and renders one merged timeline as JSON, text or SRT.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./config.yml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", ".env file loaded before the environment is read")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads the configuration and installs the global logger. Commands
// that write results to stdout pass logOutput "stderr".
func setup(logOutput string) (*AppConfig, *logger.Logger, error) {
	cfg, err := loadAppConfig(configPath, envFile)
	if err != nil {
		return nil, nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if logOutput != "" {
		cfg.Logging.Output = logOutput
	}
	log := logger.New(&cfg.Logging, cfg.Name)
	logger.SetGlobalLogger(log)
	return cfg, log, nil
}
