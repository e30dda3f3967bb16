package pipeline

import (
	"context"
	"log/slog"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/rollout"
)

// Trainer consumes a scored batch and performs one optimization step.
// The pipeline treats it as an opaque collaborator so the training
// backend can be swapped without touching the loop.
type Trainer interface {
	Step(ctx context.Context, batch []*rollout.Trajectory, rewards map[string]float64) error
}

// NoopTrainer logs batch statistics instead of training. It is the
// default when no training backend is configured.
type NoopTrainer struct {
	logger *slog.Logger
}

// NewNoopTrainer creates a trainer that only logs.
func NewNoopTrainer(logger *slog.Logger) *NoopTrainer {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoopTrainer{logger: logger}
}

// Step logs a reward summary for the batch.
func (t *NoopTrainer) Step(ctx context.Context, batch []*rollout.Trajectory, rewards map[string]float64) error {
	var sum, max float64
	for _, r := range rewards {
		sum += r
		if r > max {
			max = r
		}
	}
	mean := 0.0
	if len(rewards) > 0 {
		mean = sum / float64(len(rewards))
	}
	t.logger.Info("trainer step (noop)",
		"batch_size", len(batch),
		"mean_reward", mean,
		"max_reward", max)
	return nil
}
