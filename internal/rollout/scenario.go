// Package rollout drives the agent-model conversation loop: it dispatches
// tool calls, nudges the model toward completion, and produces sealed
// trajectories for the reward pipeline.
package rollout

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Prospect is the recipient a scenario targets.
type Prospect struct {
	ProspectID string   `json:"prospect_id" yaml:"prospect_id"`
	Name       string   `json:"name" yaml:"name"`
	Email      string   `json:"email" yaml:"email"`
	Title      string   `json:"title,omitempty" yaml:"title,omitempty"`
	Company    string   `json:"company,omitempty" yaml:"company,omitempty"`
	Industry   string   `json:"industry,omitempty" yaml:"industry,omitempty"`
	TechStack  []string `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty"`
}

// Scenario is one outreach task: a prospect, a goal, and the seed nodes
// the agent starts exploring from.
type Scenario struct {
	Step      int      `json:"step" yaml:"step"`
	Prospect  Prospect `json:"prospect" yaml:"prospect"`
	Goal      string   `json:"goal" yaml:"goal"`
	SeedNodes []string `json:"seed_nodes" yaml:"seed_nodes"`
}

// Validate checks the scenario has enough structure to roll out.
func (s Scenario) Validate() error {
	if s.Prospect.ProspectID == "" {
		return fmt.Errorf("scenario prospect must have an id")
	}
	if s.Goal == "" {
		return fmt.Errorf("scenario must have a goal")
	}
	return nil
}

// LoadScenarios reads a YAML scenario file: a list of scenario documents.
func LoadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file %s: %w", path, err)
	}

	var scenarios []Scenario
	if err := yaml.Unmarshal(data, &scenarios); err != nil {
		return nil, fmt.Errorf("decoding scenario file %s: %w", path, err)
	}

	for i, s := range scenarios {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %d: %w", i, err)
		}
	}
	return scenarios, nil
}

// SyntheticScenarios returns a tiny built-in dataset for end-to-end runs
// without a scenario file.
func SyntheticScenarios() []Scenario {
	return []Scenario{
		{
			Step: 0,
			Prospect: Prospect{
				ProspectID: "p1",
				Name:       "Alex Rivera",
				Email:      "alex@example.com",
				Title:      "VP Engineering",
				Company:    "Acme FinTech",
				Industry:   "FinTech",
				TechStack:  []string{"Python", "Kafka"},
			},
			Goal:      "Secure a 20-minute discovery call",
			SeedNodes: []string{"prospect:alex", "problem:integration"},
		},
	}
}
