package rollout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/retrieval"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// Default engine tuning.
const (
	DefaultMaxTurns    = 5
	DefaultTemperature = 0.7
)

// Engine drives one trajectory at a time through the rollout state
// machine. Independent trajectories may run concurrently, each through
// its own Run call; the engine itself holds no per-run state.
type Engine struct {
	provider    llm.Provider
	retriever   *retrieval.Retriever
	maxTurns    int
	temperature float64
	model       string
	logger      *slog.Logger
	tracer      trace.Tracer
}

// EngineOption is a functional option for configuring the Engine.
type EngineOption func(*Engine)

// WithMaxTurns sets the per-trajectory turn budget.
func WithMaxTurns(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.maxTurns = n
		}
	}
}

// WithTemperature sets the sampling temperature for model calls.
func WithTemperature(t float64) EngineOption {
	return func(e *Engine) {
		if t >= 0 {
			e.temperature = t
		}
	}
}

// WithModel sets the model name passed to the provider.
func WithModel(model string) EngineOption {
	return func(e *Engine) {
		e.model = model
	}
}

// WithEngineLogger sets the logger for per-turn logging.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithTracer sets the tracer used to span rollouts and turns.
func WithTracer(tracer trace.Tracer) EngineOption {
	return func(e *Engine) {
		if tracer != nil {
			e.tracer = tracer
		}
	}
}

// NewEngine creates a rollout engine over the given model provider and
// evidence retriever.
func NewEngine(provider llm.Provider, retriever *retrieval.Retriever, opts ...EngineOption) *Engine {
	e := &Engine{
		provider:    provider,
		retriever:   retriever,
		maxTurns:    DefaultMaxTurns,
		temperature: DefaultTemperature,
		logger:      slog.Default(),
		tracer:      noop.NewTracerProvider().Tracer("rollout"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// runState is the engine's mutable per-rollout bookkeeping.
type runState struct {
	draftSubject string
	draftBody    string
	citationSeen map[string]bool
	citations    []string
}

func (rs *runState) addCitations(ids []string) {
	for _, id := range ids {
		if !rs.citationSeen[id] {
			rs.citationSeen[id] = true
			rs.citations = append(rs.citations, id)
		}
	}
}

func (rs *runState) sortedCitations() []string {
	out := make([]string, len(rs.citations))
	copy(out, rs.citations)
	sort.Strings(out)
	return out
}

// Run drives the scenario to a terminal state and returns the sealed
// trajectory. The only error surfaced is a model call failure; every
// tool-level problem degrades locally and the rollout continues.
func (e *Engine) Run(ctx context.Context, sc Scenario) (*Trajectory, error) {
	ctx, span := e.tracer.Start(ctx, "rollout.run", trace.WithAttributes(
		attribute.String("prospect.id", sc.Prospect.ProspectID),
		attribute.Int("scenario.step", sc.Step),
	))
	defer span.End()

	traj := NewTrajectory(sc)
	traj.Append(llm.NewSystemMessage(buildSystemPreamble(sc)))
	traj.Append(llm.NewUserMessage(initialUserPrompt))

	catalog := toolCatalog()
	rs := &runState{citationSeen: map[string]bool{}}

	e.logger.Info("rollout start",
		"prospect", sc.Prospect.ProspectID,
		"step", sc.Step,
		"goal", sc.Goal,
		"seeds", sc.SeedNodes)

	for turn := 1; turn <= e.maxTurns; turn++ {
		traj.State = StateAwaitingModel
		resp, err := e.provider.CompleteWithTools(ctx, llm.CompletionRequest{
			Model:       e.model,
			Messages:    traj.Turns,
			Temperature: e.temperature,
		}, catalog)
		if err != nil {
			span.RecordError(err)
			return nil, types.WrapError(types.ROLLOUT_MODEL_FAILED,
				fmt.Sprintf("model call failed on turn %d", turn), err)
		}

		traj.Append(resp.Message)
		e.logger.Debug("model turn",
			"turn", turn,
			"tool_calls", len(resp.Message.ToolCalls),
			"finish_reason", resp.FinishReason)

		if !resp.HasToolCalls() {
			traj.Append(llm.NewUserMessage(nudgeNoTools))
			continue
		}

		for _, call := range resp.Message.ToolCalls {
			if !knownTools[call.Name] {
				e.logger.Debug("ignoring unknown tool", "tool", call.Name, "turn", turn)
				continue
			}
			content := e.dispatch(call, sc, rs, traj)
			traj.Append(llm.NewToolResultMessage(call.ID, call.Name, content))
			if traj.IsSealed() {
				e.logger.Info("rollout finalized", "prospect", sc.Prospect.ProspectID, "turn", turn)
				span.SetAttributes(attribute.String("rollout.state", string(StateFinalized)))
				return traj, nil
			}
		}

		if rs.draftSubject != "" && rs.draftBody != "" && !traj.IsSealed() {
			traj.Append(llm.NewUserMessage(nudgeReadyToFinalize))
		}
	}

	e.autoFinalize(sc, rs, traj)
	e.logger.Info("rollout auto-finalized", "prospect", sc.Prospect.ProspectID, "turns", e.maxTurns)
	span.SetAttributes(attribute.String("rollout.state", string(StateAutoFinalized)))
	return traj, nil
}

// dispatch executes one tool call and returns the tool result content.
// Argument parse failures degrade to an empty-argument call; nothing a
// tool does can abort the turn.
func (e *Engine) dispatch(call llm.ToolCall, sc Scenario, rs *runState, traj *Trajectory) string {
	switch call.Name {
	case ToolBrowseNeighbors:
		var args browseArgs
		if err := call.ParseArguments(&args); err != nil {
			args = browseArgs{}
		}
		neighbors := e.retriever.BrowseNeighbors(args.NodeID)
		return encodeResult(neighbors)

	case ToolRelevantContext:
		var args contextArgs
		if err := call.ParseArguments(&args); err != nil {
			args = contextArgs{}
		}
		if args.K == 0 {
			args.K = retrieval.DefaultK
		}
		if args.Radius == 0 {
			args.Radius = retrieval.DefaultRadius
		}
		if args.MaxChars == 0 {
			args.MaxChars = retrieval.DefaultMaxChars
		}
		evidence := e.retriever.RelevantContext(args.NodeID, args.K, args.Radius, args.MaxChars)
		rs.addCitations(evidence.Citations)
		return encodeResult(evidence)

	case ToolProposeEmail:
		var args proposeArgs
		if err := call.ParseArguments(&args); err != nil {
			args = proposeArgs{}
		}
		if args.Subject != "" {
			rs.draftSubject = args.Subject
		}
		if args.Body != "" {
			rs.draftBody = args.Body
		}
		return encodeResult(map[string]any{
			"ok":          true,
			"subject_len": len(args.Subject),
			"body_len":    len(args.Body),
		})

	case ToolFinalizeEmail:
		var args finalizeArgs
		if err := call.ParseArguments(&args); err != nil {
			args = finalizeArgs{}
		}
		result := e.buildFinalEmail(args, sc, rs)
		traj.Seal(result, StateFinalized)
		return encodeResult(result)
	}
	return "null"
}

// buildFinalEmail makes finalize resilient to missing arguments: subject
// and body fall back to the last registered draft, then to a
// goal-derived placeholder; citations fall back to the accumulated set.
func (e *Engine) buildFinalEmail(args finalizeArgs, sc Scenario, rs *runState) FinalEmail {
	subject := rs.draftSubject
	if args.Subject != nil && *args.Subject != "" {
		subject = *args.Subject
	}
	if subject == "" {
		subject = directive(sc)
	}

	body := rs.draftBody
	if args.Body != nil && *args.Body != "" {
		body = *args.Body
	}
	if body == "" {
		body = directive(sc)
	}

	citations := args.Citations
	if citations == nil {
		citations = rs.sortedCitations()
	}
	if citations == nil {
		citations = []string{}
	}

	return FinalEmail{Subject: subject, Body: body, Citations: citations}
}

// autoFinalize seals the trajectory when the turn budget ran out: a
// best-effort subject and body from the scenario goal, enriched by one
// last evidence retrieval from the first seed node. Enrichment is
// optional; its failure is logged and discarded, never propagated.
func (e *Engine) autoFinalize(sc Scenario, rs *runState, traj *Trajectory) {
	subject := rs.draftSubject
	if subject == "" {
		subject = sc.Goal
	}
	body := rs.draftBody
	if body == "" {
		body = fmt.Sprintf("Hi %s,\n\n%s.", sc.Prospect.Name, sc.Goal)
	}

	if evidence, err := e.enrich(sc); err != nil {
		e.logger.Debug("auto-finalize enrichment skipped", "error", err)
	} else {
		if evidence.Text != "" {
			body += "\n\n" + evidence.Text
		}
		rs.addCitations(evidence.Citations)
	}

	traj.Seal(FinalEmail{
		Subject:   subject,
		Body:      body,
		Citations: rs.sortedCitations(),
	}, StateAutoFinalized)
}

// enrich attempts one evidence retrieval from the first seed node.
func (e *Engine) enrich(sc Scenario) (retrieval.Evidence, error) {
	if len(sc.SeedNodes) == 0 {
		return retrieval.Evidence{}, fmt.Errorf("scenario has no seed nodes")
	}
	evidence := e.retriever.RelevantContext(sc.SeedNodes[0],
		retrieval.DefaultK, retrieval.DefaultRadius, retrieval.DefaultMaxChars)
	if len(evidence.Citations) == 0 {
		return retrieval.Evidence{}, fmt.Errorf("no evidence near seed %s", sc.SeedNodes[0])
	}
	return evidence, nil
}

// encodeResult renders a tool result payload as JSON for the transcript.
func encodeResult(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(data)
}
