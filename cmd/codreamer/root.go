package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/config"
)

var (
	flagHomeDir    string
	flagConfigFile string
	flagLogLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "codreamer",
	Short: "codreamer - knowledge-graph grounded sales email agent",
	Long: `codreamer runs an LLM agent over a prospect knowledge graph to
compose grounded outreach emails, scores the results against judge,
human, and outcome feedback, and feeds the blended reward back into
the graph's node scores.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command with signal handling.
func Execute(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}

// loadConfig resolves the config file path from flags and environment
// and loads it, falling back to defaults when no file exists.
func loadConfig() (*config.Config, error) {
	homeDir := flagHomeDir
	if homeDir == "" {
		homeDir = os.Getenv("CODREAMER_HOME")
	}
	if homeDir == "" {
		homeDir = config.DefaultHomeDir()
	}

	configFile := flagConfigFile
	if configFile == "" {
		configFile = config.DefaultConfigPath(homeDir)
	}

	cfg, err := config.NewLoader(config.NewValidator()).LoadWithDefaults(configFile)
	if err != nil {
		return nil, err
	}
	if flagLogLevel != "" {
		cfg.Logging.Level = flagLogLevel
	}
	return cfg, nil
}

// buildLogger constructs the process logger from the logging section.
func buildLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch cfg.Logging.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Logging.Format == "text" {
		handler = slog.NewTextHandler(os.Stderr, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHomeDir, "home", "", "codreamer home directory (default ~/.codreamer)")
	rootCmd.PersistentFlags().StringVarP(&flagConfigFile, "config", "c", "", "config file path (default <home>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "override log level (debug|info|warn|error)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(feedbackCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(versionCmd)
}
