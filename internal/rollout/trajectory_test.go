package rollout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
)

func sampleTrajectory(reward float64) *Trajectory {
	traj := NewTrajectory(SyntheticScenarios()[0])
	traj.Append(llm.NewSystemMessage("system"))
	traj.Append(llm.NewUserMessage("write the email"))
	traj.Append(llm.NewAssistantMessage("working on it"))
	traj.Reward = reward
	traj.Seal(FinalEmail{
		Subject:   "Quick question",
		Body:      "Hi Alex,",
		Citations: []string{"prospect:alex"},
	}, StateFinalized)
	return traj
}

func TestSeal_FirstResultWins(t *testing.T) {
	traj := NewTrajectory(SyntheticScenarios()[0])
	traj.Seal(FinalEmail{Subject: "first"}, StateFinalized)
	traj.Seal(FinalEmail{Subject: "second"}, StateAutoFinalized)

	assert.Equal(t, "first", traj.FinalEmail.Subject)
	assert.Equal(t, StateFinalized, traj.State)
	assert.NotContains(t, traj.Metadata, MetaAutoFinalized)
}

func TestSeal_AutoFinalizedSetsMetadata(t *testing.T) {
	traj := NewTrajectory(SyntheticScenarios()[0])
	traj.Seal(FinalEmail{Subject: "s"}, StateAutoFinalized)

	assert.Equal(t, true, traj.Metadata[MetaAutoFinalized])
	assert.True(t, traj.State.IsTerminal())
}

func TestID_StableAcrossCalls(t *testing.T) {
	traj := sampleTrajectory(0.5)
	assert.Equal(t, traj.ID(), traj.ID())
	assert.Len(t, traj.ID(), 40)
}

func TestWriteBatch_ReadBatchRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkpoints", "batch.jsonl")
	batch := []*Trajectory{sampleTrajectory(0.25), sampleTrajectory(0.75)}

	require.NoError(t, WriteBatch(path, batch))

	loaded, err := ReadBatch(path)
	require.NoError(t, err)
	require.Len(t, loaded, 2)

	for i, traj := range loaded {
		assert.Equal(t, batch[i].Reward, traj.Reward)
		assert.Equal(t, batch[i].State, traj.State)
		require.NotNil(t, traj.FinalEmail)
		assert.Equal(t, batch[i].FinalEmail.Subject, traj.FinalEmail.Subject)
		assert.Equal(t, batch[i].FinalEmail.Citations, traj.FinalEmail.Citations)
		assert.Equal(t, batch[i].ID(), traj.ID())
		assert.Equal(t, "p1", traj.Metadata["prospect_id"])
	}
}

func TestWriteBatch_OverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	require.NoError(t, WriteBatch(path, []*Trajectory{sampleTrajectory(0.1)}))
	require.NoError(t, WriteBatch(path, []*Trajectory{sampleTrajectory(0.2), sampleTrajectory(0.3)}))

	loaded, err := ReadBatch(path)
	require.NoError(t, err)
	assert.Len(t, loaded, 2)

	// No stray temp files left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestReadBatch_SkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.jsonl")
	good := sampleTrajectory(0.9)
	require.NoError(t, WriteBatch(path, []*Trajectory{good}))

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("{ not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	loaded, err := ReadBatch(path)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 0.9, loaded[0].Reward)
}

func TestReadBatch_MissingFile(t *testing.T) {
	_, err := ReadBatch(filepath.Join(t.TempDir(), "nope.jsonl"))
	assert.Error(t, err)
}
