// Package pipeline runs the training loop end to end: generate rollout
// groups, score them, take a trainer step, push credit into the graph
// scorer, and evaluate. Every stage checkpoints its batch so a run can
// resume from the last completed stage.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/rollout"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// Judge scores a sealed trajectory in the unit interval. Implementations
// may be heuristic or model backed.
type Judge interface {
	Score(ctx context.Context, traj *rollout.Trajectory) (float64, error)
}

// HeuristicJudge is the offline proxy judge: a rubric of cheap checks on
// the final email, each worth a fixed increment, capped at 1.0. It keeps
// local runs and tests free of any model dependency.
type HeuristicJudge struct{}

const judgeIncrement = 0.2

// Score applies the rubric to the trajectory's final email. An unsealed
// trajectory scores zero.
func (HeuristicJudge) Score(ctx context.Context, traj *rollout.Trajectory) (float64, error) {
	if traj == nil || traj.FinalEmail == nil {
		return 0, nil
	}
	email := traj.FinalEmail
	body := strings.ToLower(email.Body)

	var reward float64
	if n := len(email.Subject); n >= 5 && n <= 90 {
		reward += judgeIncrement
	}
	if strings.Contains(body, "call") || strings.Contains(body, "chat") || strings.Contains(body, "meet") {
		reward += judgeIncrement
	}
	if len(email.Citations) > 0 {
		reward += judgeIncrement
	}
	if strings.Contains(body, "integration") {
		reward += judgeIncrement
	}
	if strings.Contains(body, "api") || strings.Contains(body, "sdk") {
		reward += judgeIncrement
	}
	if reward > 1.0 {
		reward = 1.0
	}
	return reward, nil
}

const modelJudgePrompt = `You grade cold outreach emails. Rate the email on how likely it is ` +
	`to earn a reply from the prospect: clear subject, specific evidence, a concrete ask. ` +
	`Reply with a single number between 0 and 1 and nothing else.`

// ModelJudge scores trajectories with a plain completion call instead of
// the heuristic rubric. The model is asked for a bare number; the first
// number in the reply is taken and clamped to the unit interval.
type ModelJudge struct {
	provider llm.Provider
	model    string
}

// NewModelJudge builds a judge backed by the given provider and model.
func NewModelJudge(provider llm.Provider, model string) *ModelJudge {
	return &ModelJudge{provider: provider, model: model}
}

var judgeScorePattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// Score asks the model to grade the trajectory's final email. An
// unsealed trajectory scores zero without a model call.
func (j *ModelJudge) Score(ctx context.Context, traj *rollout.Trajectory) (float64, error) {
	if traj == nil || traj.FinalEmail == nil {
		return 0, nil
	}
	email := traj.FinalEmail

	resp, err := j.provider.Complete(ctx, llm.CompletionRequest{
		Model: j.model,
		Messages: []llm.Message{
			llm.NewSystemMessage(modelJudgePrompt),
			llm.NewUserMessage(fmt.Sprintf("Subject: %s\n\n%s\n\nCited evidence: %s",
				email.Subject, email.Body, strings.Join(email.Citations, ", "))),
		},
		Temperature: 0,
	})
	if err != nil {
		return 0, types.WrapError(types.JUDGE_SCORE_FAILED,
			fmt.Sprintf("judging trajectory %s", traj.ID()), err)
	}

	match := judgeScorePattern.FindString(resp.Message.Content)
	if match == "" {
		return 0, types.NewError(types.JUDGE_SCORE_FAILED,
			fmt.Sprintf("judge reply %q holds no score", resp.Message.Content))
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, types.WrapError(types.JUDGE_SCORE_FAILED,
			fmt.Sprintf("judge reply %q holds no score", resp.Message.Content), err)
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score, nil
}
