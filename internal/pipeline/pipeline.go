package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/errgroup"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/feedback"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/graph"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/rollout"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// Stage names, in execution order. Each completed stage writes a
// checkpoint named after it.
type Stage string

const (
	StageGenerate    Stage = "generate"
	StageScore       Stage = "score"
	StageTrain       Stage = "train"
	StageUpdateGraph Stage = "update_graph"
	StageEvaluate    Stage = "evaluate"
)

// Config controls one pipeline run.
type Config struct {
	Iterations       int
	RolloutsPerGroup int
	ExceptionBudget  int
	Concurrency      int
	CheckpointDir    string
	RewardMix        feedback.RewardMix
}

// Validate rejects configurations that cannot produce a run.
func (c Config) Validate() error {
	if c.Iterations < 1 {
		return types.NewError(types.PIPELINE_INVALID_CONFIG,
			fmt.Sprintf("iterations must be at least 1, got %d", c.Iterations))
	}
	if c.RolloutsPerGroup < 1 {
		return types.NewError(types.PIPELINE_INVALID_CONFIG,
			fmt.Sprintf("rollouts per group must be at least 1, got %d", c.RolloutsPerGroup))
	}
	if c.ExceptionBudget < 0 {
		return types.NewError(types.PIPELINE_INVALID_CONFIG,
			fmt.Sprintf("exception budget must not be negative, got %d", c.ExceptionBudget))
	}
	return nil
}

// Pipeline wires the rollout engine, judge, feedback log, graph scorer
// and trainer into the five stage loop.
type Pipeline struct {
	cfg        Config
	engine     *rollout.Engine
	scorer     *graph.Scorer
	log        *feedback.Log
	aggregator *feedback.Aggregator
	judge      Judge
	trainer    Trainer
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Option is a functional option for configuring the Pipeline.
type Option func(*Pipeline)

// WithJudge replaces the default heuristic judge.
func WithJudge(j Judge) Option {
	return func(p *Pipeline) {
		if j != nil {
			p.judge = j
		}
	}
}

// WithTrainer replaces the default no-op trainer.
func WithTrainer(t Trainer) Option {
	return func(p *Pipeline) {
		if t != nil {
			p.trainer = t
		}
	}
}

// WithLogger sets the pipeline logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithTracer sets the tracer used to span iterations and stages.
func WithTracer(tracer trace.Tracer) Option {
	return func(p *Pipeline) {
		if tracer != nil {
			p.tracer = tracer
		}
	}
}

// New validates the configuration and assembles a pipeline.
func New(cfg Config, engine *rollout.Engine, scorer *graph.Scorer, log *feedback.Log, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}
	if cfg.RewardMix == (feedback.RewardMix{}) {
		cfg.RewardMix = feedback.DefaultRewardMix()
	}

	p := &Pipeline{
		cfg:    cfg,
		engine: engine,
		scorer: scorer,
		log:    log,
		judge:  HeuristicJudge{},
		logger: slog.Default(),
		tracer: noop.NewTracerProvider().Tracer("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.trainer == nil {
		p.trainer = NewNoopTrainer(p.logger)
	}
	p.aggregator = feedback.NewAggregator(log, p.logger)
	return p, nil
}

// Run executes the configured number of iterations over the scenarios.
func (p *Pipeline) Run(ctx context.Context, scenarios []rollout.Scenario) error {
	if len(scenarios) == 0 {
		return types.NewError(types.PIPELINE_INVALID_CONFIG, "no scenarios to run")
	}

	for iter := 0; iter < p.cfg.Iterations; iter++ {
		if err := p.runIteration(ctx, iter, scenarios); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) runIteration(ctx context.Context, iter int, scenarios []rollout.Scenario) error {
	runID := types.NewID()
	ctx, span := p.tracer.Start(ctx, "pipeline.iteration",
		trace.WithAttributes(
			attribute.Int("iteration", iter),
			attribute.String("run.id", runID.String())))
	defer span.End()

	p.logger.Info("iteration start", "iteration", iter, "run_id", runID.String(), "scenarios", len(scenarios))

	groups, err := p.generate(ctx, runID, scenarios)
	if err != nil {
		return err
	}
	batch := flatten(groups)
	if err := p.checkpoint(iter, StageGenerate, batch); err != nil {
		return err
	}

	rewards, err := p.score(ctx, groups)
	if err != nil {
		return err
	}
	if err := p.checkpoint(iter, StageScore, batch); err != nil {
		return err
	}

	if err := p.trainer.Step(ctx, batch, rewards); err != nil {
		return types.WrapError(types.TRAINER_STEP_FAILED,
			fmt.Sprintf("trainer step failed on iteration %d", iter), err)
	}
	if err := p.checkpoint(iter, StageTrain, batch); err != nil {
		return err
	}

	if err := p.updateGraph(batch); err != nil {
		return err
	}
	if err := p.checkpoint(iter, StageUpdateGraph, batch); err != nil {
		return err
	}

	if err := p.evaluate(ctx, iter, runID, scenarios); err != nil {
		return err
	}
	p.logger.Info("iteration done", "iteration", iter, "trajectories", len(batch))
	return nil
}

// generate runs RolloutsPerGroup trajectories per scenario, bounded by
// the concurrency limit. Individual rollout failures are tolerated up to
// the exception budget; past it the whole batch fails.
func (p *Pipeline) generate(ctx context.Context, runID types.ID, scenarios []rollout.Scenario) ([][]*rollout.Trajectory, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.generate")
	defer span.End()

	groups := make([][]*rollout.Trajectory, len(scenarios))
	for i := range groups {
		groups[i] = make([]*rollout.Trajectory, p.cfg.RolloutsPerGroup)
	}

	var (
		mu       sync.Mutex
		failures []error
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for si := range scenarios {
		for ri := 0; ri < p.cfg.RolloutsPerGroup; ri++ {
			si, ri := si, ri
			g.Go(func() error {
				traj, err := p.engine.Run(ctx, scenarios[si])
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					failures = append(failures, err)
					p.logger.Warn("rollout failed",
						"prospect", scenarios[si].Prospect.ProspectID,
						"error", err)
					return nil
				}
				traj.Metadata["run_id"] = runID.String()
				groups[si][ri] = traj
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := len(scenarios) * p.cfg.RolloutsPerGroup
	if len(failures) > p.cfg.ExceptionBudget {
		return nil, types.NewError(types.PIPELINE_BUDGET_EXCEEDED,
			fmt.Sprintf("%d of %d rollouts failed, budget is %d",
				len(failures), total, p.cfg.ExceptionBudget))
	}

	for si := range groups {
		groups[si] = compact(groups[si])
	}
	span.SetAttributes(
		attribute.Int("rollouts.total", total),
		attribute.Int("rollouts.failed", len(failures)))
	return groups, nil
}

// score judges every trajectory, ranks trajectories within their
// scenario group, records the ranking as judge feedback, then blends all
// accumulated feedback into per-trajectory rewards.
func (p *Pipeline) score(ctx context.Context, groups [][]*rollout.Trajectory) (map[string]float64, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.score")
	defer span.End()

	var ids []string
	for _, group := range groups {
		scored := make([]float64, len(group))
		for i, traj := range group {
			r, err := p.judge.Score(ctx, traj)
			if err != nil {
				p.logger.Warn("judge failed, scoring zero", "trajectory", traj.ID(), "error", err)
				r = 0
			}
			scored[i] = r
		}

		order := make([]int, len(group))
		for i := range order {
			order[i] = i
		}
		sort.SliceStable(order, func(a, b int) bool {
			return scored[order[a]] > scored[order[b]]
		})

		for rank, idx := range order {
			traj := group[idx]
			id := traj.ID()
			event := feedback.NewRankEvent(id,
				prospectID(traj), metadataStep(traj),
				rank+1, len(group),
				map[string]float64{"offline_reward": scored[idx]})
			if err := p.log.Append(event); err != nil {
				return nil, err
			}
			ids = append(ids, id)
		}
	}

	rewards := p.aggregator.ComputeRewards(ids, p.cfg.RewardMix)
	for _, group := range groups {
		for _, traj := range group {
			traj.Reward = rewards[traj.ID()]
		}
	}
	return rewards, nil
}

// updateGraph assigns credit: trajectories in the top half of the batch
// by reward push their reward into the scores of the nodes they cited.
func (p *Pipeline) updateGraph(batch []*rollout.Trajectory) error {
	if len(batch) == 0 {
		return nil
	}

	ranked := make([]*rollout.Trajectory, len(batch))
	copy(ranked, batch)
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Reward > ranked[b].Reward
	})

	top := (len(ranked) + 1) / 2
	for _, traj := range ranked[:top] {
		if traj.FinalEmail == nil || len(traj.FinalEmail.Citations) == 0 {
			continue
		}
		if err := p.scorer.UpdateFromOutcome(traj.FinalEmail.Citations, traj.Reward); err != nil {
			return err
		}
	}
	p.logger.Debug("graph scores updated", "credited", top, "batch", len(batch))
	return nil
}

// evaluate re-rolls one held-out trajectory per scenario and records
// each judge reward as a synthetic outcome, so the online reward path
// is exercised every iteration even without real send data. The eval
// trajectories then get their rewards blended from the log, outcome
// included, and are checkpointed like any other stage.
func (p *Pipeline) evaluate(ctx context.Context, iter int, runID types.ID, scenarios []rollout.Scenario) error {
	ctx, span := p.tracer.Start(ctx, "pipeline.evaluate")
	defer span.End()

	batch := make([]*rollout.Trajectory, 0, len(scenarios))
	ids := make([]string, 0, len(scenarios))
	for _, sc := range scenarios {
		traj, err := p.engine.Run(ctx, sc)
		if err != nil {
			return err
		}
		traj.Metadata["run_id"] = runID.String()
		r, err := p.judge.Score(ctx, traj)
		if err != nil {
			p.logger.Warn("evaluation judge failed", "prospect", sc.Prospect.ProspectID, "error", err)
			r = 0
		}

		event := feedback.NewOutcomeEvent(traj.ID(), sc.Prospect.ProspectID, sc.Step, feedback.Outcome{
			Opened:      r >= 0.2,
			Replied:     r >= 0.4,
			CallBooked:  r >= 0.6,
			Opportunity: r >= 0.8,
			ClosedWon:   r >= 1.0,
		})
		if err := p.log.Append(event); err != nil {
			return err
		}

		batch = append(batch, traj)
		ids = append(ids, traj.ID())
		p.logger.Info("evaluation",
			"iteration", iter,
			"prospect", sc.Prospect.ProspectID,
			"judge_reward", r,
			"state", traj.State,
			"subject", traj.FinalEmail.Subject)
	}

	rewards := p.aggregator.ComputeRewards(ids, p.cfg.RewardMix)
	for _, traj := range batch {
		traj.Reward = rewards[traj.ID()]
	}
	return p.checkpoint(iter, StageEvaluate, batch)
}

// Rescore resumes from a persisted stage checkpoint: it re-blends
// rewards for the batch from the full feedback log, which may have
// gained human preference or outcome events since the batch was
// written, and re-applies graph credit with the updated rewards.
func (p *Pipeline) Rescore(ctx context.Context, batchPath string) error {
	_, span := p.tracer.Start(ctx, "pipeline.rescore",
		trace.WithAttributes(attribute.String("batch.path", batchPath)))
	defer span.End()

	batch, err := rollout.ReadBatch(batchPath)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return types.NewError(types.PIPELINE_CHECKPOINT_ERROR,
			fmt.Sprintf("checkpoint %s holds no readable trajectories", batchPath))
	}

	ids := make([]string, len(batch))
	for i, traj := range batch {
		ids[i] = traj.ID()
	}
	rewards := p.aggregator.ComputeRewards(ids, p.cfg.RewardMix)
	for _, traj := range batch {
		traj.Reward = rewards[traj.ID()]
	}

	if err := p.updateGraph(batch); err != nil {
		return err
	}
	p.logger.Info("batch rescored", "batch", batchPath, "trajectories", len(batch))
	return nil
}

// checkpoint persists the batch after a stage. A run without a
// checkpoint directory skips persistence.
func (p *Pipeline) checkpoint(iter int, stage Stage, batch []*rollout.Trajectory) error {
	if p.cfg.CheckpointDir == "" {
		return nil
	}
	path := filepath.Join(p.cfg.CheckpointDir, fmt.Sprintf("iter-%03d-%s.jsonl", iter, stage))
	if err := rollout.WriteBatch(path, batch); err != nil {
		return types.WrapError(types.PIPELINE_CHECKPOINT_ERROR,
			fmt.Sprintf("writing %s checkpoint for iteration %d", stage, iter), err)
	}
	return nil
}

func flatten(groups [][]*rollout.Trajectory) []*rollout.Trajectory {
	var out []*rollout.Trajectory
	for _, group := range groups {
		out = append(out, group...)
	}
	return out
}

func compact(group []*rollout.Trajectory) []*rollout.Trajectory {
	out := group[:0]
	for _, traj := range group {
		if traj != nil {
			out = append(out, traj)
		}
	}
	return out
}

func prospectID(traj *rollout.Trajectory) string {
	if v, ok := traj.Metadata["prospect_id"].(string); ok {
		return v
	}
	return ""
}

func metadataStep(traj *rollout.Trajectory) int {
	switch v := traj.Metadata["step"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}
