package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm/providers"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/rollout"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

func sealed(email rollout.FinalEmail) *rollout.Trajectory {
	traj := &rollout.Trajectory{}
	traj.Seal(email, rollout.StateFinalized)
	return traj
}

func TestHeuristicJudge_Score(t *testing.T) {
	tests := []struct {
		name string
		traj *rollout.Trajectory
		want float64
	}{
		{
			name: "full rubric",
			traj: sealed(rollout.FinalEmail{
				Subject:   "Quick question about your integration roadmap",
				Body:      "Hi Alex, our API covers your integration gaps. Worth a quick call?",
				Citations: []string{"feat:catalog"},
			}),
			want: 1.0,
		},
		{
			name: "no call to action",
			traj: sealed(rollout.FinalEmail{
				Subject:   "Quick question about your integration roadmap",
				Body:      "Our API covers your integration gaps.",
				Citations: []string{"feat:catalog"},
			}),
			want: 0.8,
		},
		{
			name: "subject too short",
			traj: sealed(rollout.FinalEmail{
				Subject:   "Hi",
				Body:      "Worth a quick call about your integration? Our SDK helps.",
				Citations: []string{"feat:catalog"},
			}),
			want: 0.8,
		},
		{
			name: "no citations generic body",
			traj: sealed(rollout.FinalEmail{
				Subject: "Following up",
				Body:    "Just checking in.",
			}),
			want: 0.2,
		},
		{
			name: "unsealed trajectory",
			traj: &rollout.Trajectory{},
			want: 0.0,
		},
		{
			name: "nil trajectory",
			traj: nil,
			want: 0.0,
		},
	}

	judge := HeuristicJudge{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := judge.Score(context.Background(), tt.traj)
			assert.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestHeuristicJudge_CapsAtOne(t *testing.T) {
	traj := sealed(rollout.FinalEmail{
		Subject:   "Integration call: API and SDK chat to meet your team",
		Body:      "call chat meet integration api sdk",
		Citations: []string{"a", "b", "c"},
	})
	got, err := HeuristicJudge{}.Score(context.Background(), traj)
	assert.NoError(t, err)
	assert.Equal(t, 1.0, got)
}

func judgeEmail() rollout.FinalEmail {
	return rollout.FinalEmail{
		Subject:   "Quick question about integrations",
		Body:      "Our API covers your integration gaps. Worth a quick call?",
		Citations: []string{"feat:catalog"},
	}
}

func TestModelJudge_ParsesScore(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  float64
	}{
		{name: "bare number", reply: "0.8", want: 0.8},
		{name: "number in prose", reply: "Score: 0.35 out of 1.", want: 0.35},
		{name: "clamped high", reply: "7", want: 1.0},
		{name: "clamped low", reply: "-0.5", want: 0.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := providers.NewMockProvider(providers.AssistantText(tt.reply))
			judge := NewModelJudge(provider, "gpt-4o-mini")
			got, err := judge.Score(context.Background(), sealed(judgeEmail()))
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.Equal(t, 1, provider.CallCount())
		})
	}
}

func TestModelJudge_ReplyWithoutNumber(t *testing.T) {
	provider := providers.NewMockProvider(providers.AssistantText("looks great to me"))
	judge := NewModelJudge(provider, "gpt-4o-mini")
	_, err := judge.Score(context.Background(), sealed(judgeEmail()))
	require.Error(t, err)
	var derr *types.DreamerError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, types.JUDGE_SCORE_FAILED, derr.Code)
}

func TestModelJudge_ProviderErrorWrapped(t *testing.T) {
	provider := providers.NewMockProvider()
	provider.FailWith(errors.New("rate limited"))
	judge := NewModelJudge(provider, "gpt-4o-mini")
	_, err := judge.Score(context.Background(), sealed(judgeEmail()))
	require.Error(t, err)
	var derr *types.DreamerError
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, types.JUDGE_SCORE_FAILED, derr.Code)
}

func TestModelJudge_UnsealedScoresZero(t *testing.T) {
	provider := providers.NewMockProvider()
	judge := NewModelJudge(provider, "gpt-4o-mini")
	got, err := judge.Score(context.Background(), &rollout.Trajectory{})
	require.NoError(t, err)
	assert.Equal(t, 0.0, got)
	assert.Equal(t, 0, provider.CallCount())
}
