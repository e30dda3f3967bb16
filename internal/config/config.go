// Package config holds the file-backed configuration for the codreamer
// pipeline: data file locations, rollout tuning, reward weights, and the
// LLM provider section. Configuration is YAML, loaded through viper,
// with ${VAR} environment interpolation on string values.
package config

import (
	"time"
)

// Config is the root configuration document.
type Config struct {
	Core      CoreConfig      `mapstructure:"core" yaml:"core"`
	Data      DataConfig      `mapstructure:"data" yaml:"data"`
	Rollout   RolloutConfig   `mapstructure:"rollout" yaml:"rollout"`
	Reward    RewardConfig    `mapstructure:"reward" yaml:"reward"`
	Retrieval RetrievalConfig `mapstructure:"retrieval" yaml:"retrieval"`
	LLM       LLMConfig       `mapstructure:"llm" yaml:"llm"`
	Logging   LoggingConfig   `mapstructure:"logging" yaml:"logging"`
	Tracing   TracingConfig   `mapstructure:"tracing" yaml:"tracing"`
}

// CoreConfig contains application-wide settings.
type CoreConfig struct {
	HomeDir string        `mapstructure:"home_dir" yaml:"home_dir"`
	DataDir string        `mapstructure:"data_dir" yaml:"data_dir"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout" validate:"min=1s"`
	Debug   bool          `mapstructure:"debug" yaml:"debug"`
}

// DataConfig locates the durable artifacts: the knowledge graph, the
// node score document, the feedback log, and stage checkpoints.
type DataConfig struct {
	GraphPath     string `mapstructure:"graph_path" yaml:"graph_path"`
	ScoresPath    string `mapstructure:"scores_path" yaml:"scores_path"`
	FeedbackPath  string `mapstructure:"feedback_path" yaml:"feedback_path"`
	ScenariosPath string `mapstructure:"scenarios_path" yaml:"scenarios_path,omitempty"`
	CheckpointDir string `mapstructure:"checkpoint_dir" yaml:"checkpoint_dir"`

	// ExtraFeedbackSources are additional read-only feedback files, for
	// example hand-curated human preference logs.
	ExtraFeedbackSources []string `mapstructure:"extra_feedback_sources" yaml:"extra_feedback_sources,omitempty"`
}

// RolloutConfig tunes the rollout engine and pipeline loop.
type RolloutConfig struct {
	Iterations       int     `mapstructure:"iterations" yaml:"iterations" validate:"min=1"`
	MaxTurns         int     `mapstructure:"max_turns" yaml:"max_turns" validate:"min=1,max=50"`
	Temperature      float64 `mapstructure:"temperature" yaml:"temperature" validate:"min=0,max=2"`
	RolloutsPerGroup int     `mapstructure:"rollouts_per_group" yaml:"rollouts_per_group" validate:"min=1,max=64"`
	ExceptionBudget  int     `mapstructure:"exception_budget" yaml:"exception_budget" validate:"min=0"`
	Concurrency      int     `mapstructure:"concurrency" yaml:"concurrency" validate:"min=1,max=100"`
}

// RewardConfig holds the blend weights for the three feedback channels.
type RewardConfig struct {
	Alpha float64 `mapstructure:"alpha" yaml:"alpha" validate:"min=0"`
	Beta  float64 `mapstructure:"beta" yaml:"beta" validate:"min=0"`
	Gamma float64 `mapstructure:"gamma" yaml:"gamma" validate:"min=0"`
}

// RetrievalConfig tunes evidence retrieval.
type RetrievalConfig struct {
	K            int    `mapstructure:"k" yaml:"k" validate:"min=1"`
	Radius       int    `mapstructure:"radius" yaml:"radius" validate:"min=0,max=10"`
	MaxChars     int    `mapstructure:"max_chars" yaml:"max_chars" validate:"min=1"`
	TargetMarker string `mapstructure:"target_marker" yaml:"target_marker"`
}

// LLMConfig contains the model provider section. APIKey supports ${VAR}
// interpolation so the key never lives in the file.
type LLMConfig struct {
	Provider string `mapstructure:"provider" yaml:"provider"`
	Model    string `mapstructure:"model" yaml:"model"`
	APIKey   string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL  string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" yaml:"format" validate:"oneof=text json"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`
}
