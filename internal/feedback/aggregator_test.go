package feedback

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
)

func newTestAggregator(t *testing.T) (*Aggregator, *Log) {
	t.Helper()
	log := NewLog(filepath.Join(t.TempDir(), "feedback.jsonl"))
	return NewAggregator(log, nil), log
}

func TestComputeRewards_EntryForEveryRequestedID(t *testing.T) {
	agg, _ := newTestAggregator(t)

	rewards := agg.ComputeRewards([]string{"t1", "t2"}, DefaultRewardMix())
	require.Len(t, rewards, 2)
	assert.Equal(t, 0.0, rewards["t1"])
	assert.Equal(t, 0.0, rewards["t2"])
}

func TestComputeRewards_RankComponent(t *testing.T) {
	agg, log := newTestAggregator(t)

	// Rank 1 of 4 normalizes to 1.0; rubric mean is (0.8+0.4)/2 = 0.6.
	require.NoError(t, log.Append(NewRankEvent("t1", "p1", 0, 1, 4, map[string]float64{"a": 0.8, "b": 0.4})))

	rewards := agg.ComputeRewards([]string{"t1"}, RewardMix{Alpha: 1})
	assert.InDelta(t, 0.5*1.0+0.5*0.6, rewards["t1"], 1e-9)
}

func TestComputeRewards_RankWorstOfGroup(t *testing.T) {
	agg, log := newTestAggregator(t)

	require.NoError(t, log.Append(NewRankEvent("t1", "p1", 0, 4, 4, nil)))

	rewards := agg.ComputeRewards([]string{"t1"}, RewardMix{Alpha: 1})
	assert.InDelta(t, 0.0, rewards["t1"], 1e-9)
}

func TestComputeRewards_GroupSizeOneContributesNoRank(t *testing.T) {
	agg, log := newTestAggregator(t)

	// groupSize 1 yields no normalized rank; rubric alone contributes.
	require.NoError(t, log.Append(NewRankEvent("t1", "p1", 0, 1, 1, map[string]float64{"quality": 1.0})))

	rewards := agg.ComputeRewards([]string{"t1"}, RewardMix{Alpha: 1})
	assert.InDelta(t, 0.5, rewards["t1"], 1e-9)
}

func TestComputeRewards_PreferenceWinRate(t *testing.T) {
	agg, log := newTestAggregator(t)

	require.NoError(t, log.Append(NewPreferenceEvent("t1", "t2", "p1", "rev1", 0, 0.9)))
	require.NoError(t, log.Append(NewPreferenceEvent("t2", "t1", "p1", "rev2", 0, 0.3)))

	mix := RewardMix{Beta: 1}
	rewards := agg.ComputeRewards([]string{"t1", "t2", "t3"}, mix)
	assert.InDelta(t, 0.9/1.2, rewards["t1"], 1e-9)
	assert.InDelta(t, 0.3/1.2, rewards["t2"], 1e-9)
	assert.Equal(t, 0.0, rewards["t3"])
}

func TestComputeRewards_OutcomeTakesStrongestSignal(t *testing.T) {
	agg, log := newTestAggregator(t)

	require.NoError(t, log.Append(NewOutcomeEvent("t1", "p1", 0, Outcome{Opened: true, Replied: true})))
	require.NoError(t, log.Append(NewOutcomeEvent("t1", "p1", 1, Outcome{Opportunity: true})))

	rewards := agg.ComputeRewards([]string{"t1"}, RewardMix{Gamma: 1})
	assert.InDelta(t, 0.8, rewards["t1"], 1e-9)
}

func TestComputeRewards_ClosedWonIsMaximal(t *testing.T) {
	agg, log := newTestAggregator(t)

	require.NoError(t, log.Append(NewOutcomeEvent("t1", "p1", 0, Outcome{ClosedWon: true})))

	rewards := agg.ComputeRewards([]string{"t1"}, RewardMix{Gamma: 1})
	assert.InDelta(t, 1.0, rewards["t1"], 1e-9)
}

func TestComputeRewards_LinearInWeights(t *testing.T) {
	agg, log := newTestAggregator(t)

	require.NoError(t, log.Append(NewRankEvent("t1", "p1", 0, 1, 3, map[string]float64{"a": 0.5})))
	require.NoError(t, log.Append(NewPreferenceEvent("t1", "t2", "p1", "rev1", 0, 0.7)))
	require.NoError(t, log.Append(NewOutcomeEvent("t1", "p1", 0, Outcome{Replied: true})))

	base := RewardMix{Alpha: 0.6, Beta: 0.2, Gamma: 0.2}
	scaled := RewardMix{Alpha: 1.8, Beta: 0.6, Gamma: 0.6}

	baseRewards := agg.ComputeRewards([]string{"t1", "t2"}, base)
	scaledRewards := agg.ComputeRewards([]string{"t1", "t2"}, scaled)

	for _, id := range []string{"t1", "t2"} {
		assert.InDelta(t, 3*baseRewards[id], scaledRewards[id], 1e-9, "trajectory %s", id)
	}
}

func TestComputeRewards_BlendsAllComponents(t *testing.T) {
	agg, log := newTestAggregator(t)

	require.NoError(t, log.Append(NewRankEvent("t1", "p1", 0, 1, 2, nil)))              // rank = 0.5*1.0
	require.NoError(t, log.Append(NewPreferenceEvent("t1", "t2", "p1", "r", 0, 1.0)))   // pref = 1.0
	require.NoError(t, log.Append(NewOutcomeEvent("t1", "p1", 0, Outcome{Opened: true}))) // outcome = 0.2

	mix := DefaultRewardMix()
	rewards := agg.ComputeRewards([]string{"t1"}, mix)
	expected := mix.Alpha*0.5 + mix.Beta*1.0 + mix.Gamma*0.2
	assert.InDelta(t, expected, rewards["t1"], 1e-9)
}

func TestHashTrajectory_DeterministicAndContentSensitive(t *testing.T) {
	turns := []llm.Message{
		llm.NewSystemMessage("system preamble"),
		llm.NewUserMessage("write the email"),
		llm.NewAssistantMessage("done"),
	}

	h1 := HashTrajectory(turns)
	h2 := HashTrajectory(turns)
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 40) // sha1 hex

	changed := []llm.Message{
		llm.NewSystemMessage("system preamble"),
		llm.NewUserMessage("write the email"),
		llm.NewAssistantMessage("done!"),
	}
	assert.NotEqual(t, h1, HashTrajectory(changed))

	reordered := []llm.Message{turns[1], turns[0], turns[2]}
	assert.NotEqual(t, h1, HashTrajectory(reordered))
}
