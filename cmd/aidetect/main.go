package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"aidetect/internal/config"
	"aidetect/internal/logging"
	"aidetect/internal/prediction"
)

var (
	// Global flags
	configPath string
	endpoint   string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "aidetect",
	Short: "Client for the AI Health Check prediction service",
	Long: `aidetect wakes the hosted prediction service, waits for its model to load,
and submits questionnaire answers as a fixed 62-label feature vector.

It can also serve the questionnaire as a local JSON API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Load environment variables
		if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if endpoint != "" {
			cfg.Endpoint = endpoint
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}

		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.Development)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "aidetect.yaml", "Path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&endpoint, "endpoint", "", "Prediction service base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(statusCmd, predictCmd, questionsCmd, serveCmd, historyCmd)
}

func newClient(l *zap.Logger) *prediction.Client {
	return prediction.NewClient(cfg.Endpoint,
		prediction.WithTimeout(cfg.RequestTimeout),
		prediction.WithLogger(l),
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
