package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefaultConfig_IsValid(t *testing.T) {
	assert.NoError(t, NewValidator().Validate(DefaultConfig()))
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 5, cfg.Rollout.MaxTurns)
	assert.Equal(t, 0.7, cfg.Rollout.Temperature)
	assert.Equal(t, 0.6, cfg.Reward.Alpha)
	assert.Equal(t, 0.2, cfg.Reward.Beta)
	assert.Equal(t, 0.2, cfg.Reward.Gamma)
	assert.Equal(t, "Product Feature", cfg.Retrieval.TargetMarker)
	assert.Contains(t, cfg.Data.FeedbackPath, "feedback.jsonl")
}

func TestLoad_PartialFileLayersOverDefaults(t *testing.T) {
	path := writeConfig(t, `
rollout:
  max_turns: 8
  temperature: 0.3
reward:
  alpha: 1.0
  beta: 0.0
  gamma: 0.0
`)
	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Rollout.MaxTurns)
	assert.Equal(t, 0.3, cfg.Rollout.Temperature)
	assert.Equal(t, 1.0, cfg.Reward.Alpha)
	// Untouched sections keep their defaults.
	assert.Equal(t, 4, cfg.Rollout.RolloutsPerGroup)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := NewLoader(NewValidator()).Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.CONFIG_LOAD_FAILED))
}

func TestLoadWithDefaults_MissingFileFallsBack(t *testing.T) {
	cfg, err := NewLoader(NewValidator()).LoadWithDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Rollout.MaxTurns)
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "rollout: [not: a map\n")
	_, err := NewLoader(NewValidator()).Load(path)
	assert.Error(t, err)
}

func TestLoad_InterpolatesEnvVars(t *testing.T) {
	t.Setenv("TEST_CODREAMER_KEY", "sk-test-123")
	t.Setenv("TEST_CODREAMER_DATA", "/srv/codreamer")

	path := writeConfig(t, `
llm:
  api_key: ${TEST_CODREAMER_KEY}
data:
  graph_path: ${TEST_CODREAMER_DATA}/kg.json
`)
	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test-123", cfg.LLM.APIKey)
	assert.Equal(t, "/srv/codreamer/kg.json", cfg.Data.GraphPath)
}

func TestLoad_UnsetEnvVarResolvesEmpty(t *testing.T) {
	path := writeConfig(t, `
llm:
  api_key: ${DEFINITELY_NOT_SET_ANYWHERE_42}
`)
	cfg, err := NewLoader(NewValidator()).Load(path)
	require.NoError(t, err)
	assert.Empty(t, cfg.LLM.APIKey)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero iterations", func(c *Config) { c.Rollout.Iterations = 0 }},
		{"excessive turns", func(c *Config) { c.Rollout.MaxTurns = 200 }},
		{"negative temperature", func(c *Config) { c.Rollout.Temperature = -0.1 }},
		{"temperature above range", func(c *Config) { c.Rollout.Temperature = 2.5 }},
		{"negative exception budget", func(c *Config) { c.Rollout.ExceptionBudget = -1 }},
		{"negative reward weight", func(c *Config) { c.Reward.Alpha = -0.2 }},
		{"all reward weights zero", func(c *Config) { c.Reward = RewardConfig{} }},
		{"zero retrieval k", func(c *Config) { c.Retrieval.K = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }},
		{"empty graph path", func(c *Config) { c.Data.GraphPath = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := NewValidator().Validate(cfg)
			require.Error(t, err)
			assert.True(t, types.IsCode(err, types.CONFIG_VALIDATION_FAILED))
		})
	}
}

func TestValidate_NilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	assert.Error(t, err)
}
