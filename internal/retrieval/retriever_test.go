package retrieval

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/graph"
)

func buildFixtures(t *testing.T, graphDoc string) (*graph.Store, *graph.Scorer) {
	t.Helper()
	store, err := graph.ParseStore([]byte(graphDoc))
	require.NoError(t, err)

	scorer, err := graph.LoadScorer(filepath.Join(t.TempDir(), "scores.json"))
	require.NoError(t, err)
	return store, scorer
}

// Chain A -> B -> C where C is a target node, plus unrelated decoy D
// reachable from A but with no path to any target.
const chainDoc = `[
	{"id": "A", "content": "prospect alex leads platform engineering", "edges": [
		{"target": "B", "label": "has_problem"},
		{"target": "D", "label": "mentions"}
	]},
	{"id": "B", "content": "slow onboarding of new integrations", "edges": [
		{"target": "C Product Feature", "label": "solved_by"}
	]},
	{"id": "C Product Feature", "content": "one-click integration catalog"},
	{"id": "D", "content": "unrelated trivia about the office dog"}
]`

func TestRelevantContext_PathFilterKeepsTargetChain(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	// D scores far higher than anything on the target path.
	require.NoError(t, scorer.UpdateFromOutcome([]string{"D"}, 1.0))

	r := New(store, scorer)
	ev := r.RelevantContext("A", 2, 2, 2000)

	assert.Contains(t, ev.Citations, "C Product Feature")
	assert.NotContains(t, ev.Citations, "D")
	assert.Contains(t, ev.Text, "one-click integration catalog")
}

func TestRelevantContext_TargetCitedAtUniformScores(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	// Every node scores 0, so stable rank keeps BFS order [A, B, ...].
	// The target node must still claim a citation slot at k=2.
	r := New(store, scorer)
	ev := r.RelevantContext("A", 2, 2, 2000)

	require.Len(t, ev.Citations, 2)
	assert.Equal(t, "A", ev.Citations[0])
	assert.Contains(t, ev.Citations, "C Product Feature")
	assert.Contains(t, ev.Text, "one-click integration catalog")
}

func TestRelevantContext_NaturallyRankedTargetNotDuplicated(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	// When the target already outranks everything it takes its slot
	// normally and no substitution happens.
	require.NoError(t, scorer.UpdateFromOutcome([]string{"C Product Feature"}, 1.0))

	r := New(store, scorer)
	ev := r.RelevantContext("A", 2, 2, 2000)

	require.Len(t, ev.Citations, 2)
	assert.Equal(t, "C Product Feature", ev.Citations[0])
}

func TestRelevantContext_FallsBackWhenFilterEmpty(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	// A marker matching nothing must not produce empty evidence.
	r := New(store, scorer, WithTargetMarker("No Such Marker"))
	ev := r.RelevantContext("A", 3, 2, 2000)

	assert.NotEmpty(t, ev.Citations)
	assert.NotEmpty(t, ev.Text)
}

func TestRelevantContext_CustomPredicate(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	r := New(store, scorer, WithTargetPredicate(func(id string) bool { return id == "D" }))
	ev := r.RelevantContext("A", 4, 2, 2000)

	assert.Contains(t, ev.Citations, "D")
	assert.NotContains(t, ev.Citations, "C Product Feature")
}

func TestRelevantContext_RespectsCitationBudget(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	r := New(store, scorer, WithTargetMarker("No Such Marker"))
	ev := r.RelevantContext("A", 2, 2, 2000)
	assert.Len(t, ev.Citations, 2)
}

func TestRelevantContext_TruncatesToMaxChars(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	r := New(store, scorer, WithTargetMarker("No Such Marker"))
	ev := r.RelevantContext("A", 4, 2, 20)

	assert.LessOrEqual(t, len(ev.Text), 20)
	assert.NotEmpty(t, ev.Citations)
}

func TestRelevantContext_UnknownCenter(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	r := New(store, scorer)
	ev := r.RelevantContext("missing", 3, 2, 800)
	assert.Empty(t, ev.Citations)
	assert.Empty(t, ev.Text)
}

func TestRelevantContext_TextJoinedWithNewlines(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	r := New(store, scorer, WithTargetMarker("No Such Marker"))
	ev := r.RelevantContext("A", 4, 2, 4000)
	require.Greater(t, len(ev.Citations), 1)
	assert.Equal(t, len(ev.Citations)-1, strings.Count(ev.Text, "\n"))
}

func TestBrowseNeighbors_RankedWithoutCenter(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)
	require.NoError(t, scorer.UpdateFromOutcome([]string{"D"}, 1.0))

	r := New(store, scorer)
	neighbors := r.BrowseNeighbors("A")

	require.Len(t, neighbors, 2)
	assert.NotContains(t, neighbors, "A")
	assert.Equal(t, "D", neighbors[0]) // highest score first
	assert.Equal(t, "B", neighbors[1])
}

func TestBrowseNeighbors_UnknownNode(t *testing.T) {
	store, scorer := buildFixtures(t, chainDoc)

	r := New(store, scorer)
	assert.Empty(t, r.BrowseNeighbors("missing"))
}
