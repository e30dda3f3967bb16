package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/trace"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/config"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/feedback"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/graph"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm/providers"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/observability"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/pipeline"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/retrieval"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/rollout"
)

var (
	flagIterations int
	flagRollouts   int
	flagScenarios  string
	flagDryRun     bool
	flagModelJudge bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the generate/score/train/update/evaluate pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if flagIterations > 0 {
			cfg.Rollout.Iterations = flagIterations
		}
		if flagRollouts > 0 {
			cfg.Rollout.RolloutsPerGroup = flagRollouts
		}
		if flagScenarios != "" {
			cfg.Data.ScenariosPath = flagScenarios
		}
		logger := buildLogger(cfg)

		scenarios, err := loadScenarios(cfg)
		if err != nil {
			return err
		}

		tp, shutdown, err := observability.InitTracing(cmd.Context(), cfg.Tracing)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(ctx); err != nil {
				logger.Warn("trace shutdown failed", "error", err)
			}
		}()

		p, err := buildPipeline(cfg, logger, tp.Tracer("codreamer"))
		if err != nil {
			return err
		}
		return p.Run(cmd.Context(), scenarios)
	},
}

func loadScenarios(cfg *config.Config) ([]rollout.Scenario, error) {
	if cfg.Data.ScenariosPath == "" {
		return rollout.SyntheticScenarios(), nil
	}
	return rollout.LoadScenarios(cfg.Data.ScenariosPath)
}

// buildPipeline assembles the full dependency graph from configuration.
func buildPipeline(cfg *config.Config, logger *slog.Logger, tracer trace.Tracer) (*pipeline.Pipeline, error) {
	store, err := graph.LoadStore(cfg.Data.GraphPath, graph.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	scorer, err := graph.LoadScorer(cfg.Data.ScoresPath, graph.WithScorerLogger(logger))
	if err != nil {
		return nil, err
	}
	retriever := retrieval.New(store, scorer,
		retrieval.WithTargetMarker(cfg.Retrieval.TargetMarker),
		retrieval.WithLogger(logger))

	provider, err := buildProvider(cfg)
	if err != nil {
		return nil, err
	}

	engine := rollout.NewEngine(provider, retriever,
		rollout.WithMaxTurns(cfg.Rollout.MaxTurns),
		rollout.WithTemperature(cfg.Rollout.Temperature),
		rollout.WithModel(cfg.LLM.Model),
		rollout.WithEngineLogger(logger),
		rollout.WithTracer(tracer))

	log := feedback.NewLog(cfg.Data.FeedbackPath,
		feedback.WithExtraSources(cfg.Data.ExtraFeedbackSources...),
		feedback.WithLogLogger(logger))

	opts := []pipeline.Option{pipeline.WithLogger(logger), pipeline.WithTracer(tracer)}
	if flagModelJudge {
		opts = append(opts, pipeline.WithJudge(pipeline.NewModelJudge(provider, cfg.LLM.Model)))
	}

	return pipeline.New(pipeline.Config{
		Iterations:       cfg.Rollout.Iterations,
		RolloutsPerGroup: cfg.Rollout.RolloutsPerGroup,
		ExceptionBudget:  cfg.Rollout.ExceptionBudget,
		Concurrency:      cfg.Rollout.Concurrency,
		CheckpointDir:    cfg.Data.CheckpointDir,
		RewardMix: feedback.RewardMix{
			Alpha: cfg.Reward.Alpha,
			Beta:  cfg.Reward.Beta,
			Gamma: cfg.Reward.Gamma,
		},
	}, engine, scorer, log, opts...)
}

// buildProvider selects the model backend; --dry-run swaps in the
// scripted mock so the full loop can run without credentials.
func buildProvider(cfg *config.Config) (llm.Provider, error) {
	if flagDryRun {
		return providers.NewMockProvider(), nil
	}
	switch cfg.LLM.Provider {
	case "openai", "":
		return providers.NewOpenAIProvider(llm.ProviderConfig{
			Name:         "openai",
			APIKey:       cfg.LLM.APIKey,
			BaseURL:      cfg.LLM.BaseURL,
			DefaultModel: cfg.LLM.Model,
		})
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
}

func init() {
	runCmd.Flags().IntVar(&flagIterations, "iterations", 0, "override the number of pipeline iterations")
	runCmd.Flags().IntVar(&flagRollouts, "rollouts", 0, "override rollouts per scenario group")
	runCmd.Flags().StringVar(&flagScenarios, "scenarios", "", "scenario YAML file (default: built-in synthetic scenarios)")
	runCmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "use the scripted mock provider instead of a real model")
	runCmd.Flags().BoolVar(&flagModelJudge, "model-judge", false, "score trajectories with the model instead of the heuristic rubric")
}
