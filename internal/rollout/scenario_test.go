package rollout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scenarioYAML = `
- step: 0
  prospect:
    prospect_id: p1
    name: Alex Rivera
    email: alex@example.com
    title: VP Engineering
    company: Acme FinTech
    industry: FinTech
    tech_stack: [Python, Kafka]
  goal: Secure a 20-minute discovery call
  seed_nodes: ["prospect:alex", "problem:integration"]
- step: 1
  prospect:
    prospect_id: p2
    name: Sam Lee
    email: sam@example.com
  goal: Get a reply
  seed_nodes: ["prospect:sam"]
`

func writeScenarioFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadScenarios(t *testing.T) {
	scenarios, err := LoadScenarios(writeScenarioFile(t, scenarioYAML))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	assert.Equal(t, "p1", scenarios[0].Prospect.ProspectID)
	assert.Equal(t, []string{"Python", "Kafka"}, scenarios[0].Prospect.TechStack)
	assert.Equal(t, 1, scenarios[1].Step)
	assert.Equal(t, []string{"prospect:sam"}, scenarios[1].SeedNodes)
}

func TestLoadScenarios_MissingFile(t *testing.T) {
	_, err := LoadScenarios(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadScenarios_RejectsInvalidScenario(t *testing.T) {
	_, err := LoadScenarios(writeScenarioFile(t, "- step: 0\n  goal: g\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prospect must have an id")
}

func TestValidate(t *testing.T) {
	sc := SyntheticScenarios()[0]
	assert.NoError(t, sc.Validate())

	sc.Goal = ""
	assert.Error(t, sc.Validate())
}

func TestSyntheticScenarios_AreValid(t *testing.T) {
	for _, sc := range SyntheticScenarios() {
		assert.NoError(t, sc.Validate())
	}
}
