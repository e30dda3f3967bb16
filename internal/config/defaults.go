package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/retrieval"
)

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	homeDir := DefaultHomeDir()
	dataDir := filepath.Join(homeDir, "data")

	return &Config{
		Core: CoreConfig{
			HomeDir: homeDir,
			DataDir: dataDir,
			Timeout: 5 * time.Minute,
			Debug:   false,
		},
		Data: DataConfig{
			GraphPath:     filepath.Join(dataDir, "kg.json"),
			ScoresPath:    filepath.Join(dataDir, "node_scores.json"),
			FeedbackPath:  filepath.Join(dataDir, "feedback.jsonl"),
			CheckpointDir: filepath.Join(dataDir, "checkpoints"),
		},
		Rollout: RolloutConfig{
			Iterations:       1,
			MaxTurns:         5,
			Temperature:      0.7,
			RolloutsPerGroup: 4,
			ExceptionBudget:  1,
			Concurrency:      4,
		},
		Reward: RewardConfig{
			Alpha: 0.6,
			Beta:  0.2,
			Gamma: 0.2,
		},
		Retrieval: RetrievalConfig{
			K:            retrieval.DefaultK,
			Radius:       retrieval.DefaultRadius,
			MaxChars:     retrieval.DefaultMaxChars,
			TargetMarker: retrieval.DefaultTargetMarker,
		},
		LLM: LLMConfig{
			Provider: "openai",
			Model:    "gpt-4o-mini",
			APIKey:   "${OPENAI_API_KEY}",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled: false,
		},
	}
}

// DefaultHomeDir returns the default codreamer home directory, ~/.codreamer
// or a temporary fallback when the user home cannot be determined.
func DefaultHomeDir() string {
	userHome, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".codreamer")
	}
	return filepath.Join(userHome, ".codreamer")
}

// DefaultConfigPath returns the default config file path for a given home directory.
func DefaultConfigPath(homeDir string) string {
	return filepath.Join(homeDir, "config.yaml")
}
