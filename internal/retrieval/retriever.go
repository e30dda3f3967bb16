// Package retrieval composes the graph store and node scorer into the
// evidence queries backing the agent's tools.
package retrieval

import (
	"log/slog"
	"strings"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/graph"
)

// DefaultTargetMarker is the substring identifying target nodes for the
// path-constrained evidence filter. Scenario-specific; override with
// WithTargetMarker or WithTargetPredicate.
const DefaultTargetMarker = "Product Feature"

// Defaults for RelevantContext when the model omits optional arguments.
const (
	DefaultK        = 5
	DefaultRadius   = 2
	DefaultMaxChars = 800
)

// TargetPredicate decides whether a node counts as a retrieval target.
type TargetPredicate func(nodeID string) bool

// Evidence is a synthesized evidence block with its supporting citations.
type Evidence struct {
	Text      string   `json:"text"`
	Citations []string `json:"citations"`
}

// Retriever answers "best path-constrained evidence near node X" queries
// by combining subgraph expansion, target reachability filtering, and
// score-based ranking.
type Retriever struct {
	store  *graph.Store
	scorer *graph.Scorer
	target TargetPredicate
	logger *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithTargetMarker filters evidence toward nodes whose id contains marker.
func WithTargetMarker(marker string) Option {
	return func(r *Retriever) {
		r.target = func(nodeID string) bool {
			return strings.Contains(nodeID, marker)
		}
	}
}

// WithTargetPredicate installs a custom target predicate.
func WithTargetPredicate(pred TargetPredicate) Option {
	return func(r *Retriever) {
		r.target = pred
	}
}

// WithLogger sets the logger for retrieval debug logging.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		r.logger = logger
	}
}

// New creates a Retriever over the given store and scorer.
func New(store *graph.Store, scorer *graph.Scorer, opts ...Option) *Retriever {
	r := &Retriever{
		store:  store,
		scorer: scorer,
	}
	WithTargetMarker(DefaultTargetMarker)(r)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RelevantContext synthesizes a concise evidence block around nodeID.
//
// Candidates come from the radius-bounded subgraph and are narrowed to
// nodes lying on some directed path of length <= radius to a target node.
// If that filter empties the set, the unfiltered subgraph is used instead:
// an over-aggressive filter must never produce empty evidence. Candidates
// are then score-ranked and accumulated until k citations are collected or
// the character budget is spent.
func (r *Retriever) RelevantContext(nodeID string, k, radius, maxChars int) Evidence {
	if k < 1 {
		k = 1
	}
	if radius < 0 {
		radius = 0
	}
	if maxChars < 1 {
		maxChars = DefaultMaxChars
	}

	nodes, _ := r.store.Subgraph([]string{nodeID}, radius)
	if len(nodes) == 0 {
		return Evidence{Citations: []string{}}
	}

	// Adjacency restricted to the subgraph for the reachability probes.
	inSub := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		inSub[n.ID] = true
	}
	adj := make(map[string][]string, len(nodes))
	for _, n := range nodes {
		for _, e := range r.store.Neighbors(n.ID) {
			if inSub[e.Target] {
				adj[n.ID] = append(adj[n.ID], e.Target)
			}
		}
	}

	filtered := make([]string, 0, len(nodes))
	for _, n := range nodes {
		if r.canReachTarget(n.ID, radius, adj) {
			filtered = append(filtered, n.ID)
		}
	}
	if len(filtered) == 0 {
		for _, n := range nodes {
			filtered = append(filtered, n.ID)
		}
		if r.logger != nil {
			r.logger.Debug("target filter empty, using unfiltered subgraph", "center", nodeID)
		}
	}

	ranked := r.scorer.Rank(nodeID, filtered)

	// The best-ranked target node is guaranteed the final citation slot.
	// Without this, uniform scores let non-target chain nodes fill k and
	// the evidence never cites what the path filter selected for.
	reserved := ""
	for _, id := range ranked {
		if r.target(id) {
			reserved = id
			break
		}
	}

	var parts []string
	citations := make([]string, 0, k)
	picked := make(map[string]bool, k)
	total := 0
	for _, id := range ranked {
		if picked[id] {
			continue
		}
		if reserved != "" && !picked[reserved] && id != reserved && len(citations) == k-1 {
			id = reserved
		}
		picked[id] = true
		parts = append(parts, r.store.Content(id))
		citations = append(citations, id)
		total += len(r.store.Content(id))
		if len(citations) >= k || total >= maxChars {
			break
		}
	}

	text := strings.Join(parts, "\n")
	if len(text) > maxChars {
		text = text[:maxChars]
	}
	return Evidence{Text: text, Citations: citations}
}

// canReachTarget runs a bounded BFS from start, capped at maxSteps hops,
// returning early on the first target hit.
func (r *Retriever) canReachTarget(start string, maxSteps int, adj map[string][]string) bool {
	if r.target(start) {
		return true
	}

	type hop struct {
		id    string
		depth int
	}
	frontier := []hop{{start, 0}}
	seen := map[string]bool{start: true}

	for len(frontier) > 0 {
		cur := frontier[0]
		frontier = frontier[1:]
		if cur.depth >= maxSteps {
			continue
		}
		for _, next := range adj[cur.id] {
			if r.target(next) {
				return true
			}
			if !seen[next] {
				seen[next] = true
				frontier = append(frontier, hop{next, cur.depth + 1})
			}
		}
	}
	return false
}

// BrowseNeighbors returns the score-ranked radius-1 neighborhood of
// nodeID, with the center excluded.
func (r *Retriever) BrowseNeighbors(nodeID string) []string {
	nodes, _ := r.store.Subgraph([]string{nodeID}, 1)

	ids := make([]string, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}

	ranked := r.scorer.Rank(nodeID, ids)
	result := make([]string, 0, len(ranked))
	for _, id := range ranked {
		if id != nodeID {
			result = append(result, id)
		}
	}
	return result
}
