package graph

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// EMA parameters for score updates. Each update gives the observed reward
// 10% weight, so a single bad trajectory cannot zero out a historically
// good node, while repeated reinforcement converges toward the reward.
const (
	scoreDecay        = 0.9
	scoreUpdateWeight = 0.1
)

// Scorer maintains a mutable scalar quality score per node in [0,1],
// defaulting to 0 for unseen nodes. Scores are the single source of truth
// across rollouts: loaded at startup and durably flushed after every
// update batch, so a crash loses at most one update.
//
// Updates are serialized through a single writer lock; ranking takes a
// read lock so concurrent trajectory completions cannot observe a
// partially applied batch.
type Scorer struct {
	mu     sync.RWMutex
	path   string
	scores map[string]float64
	logger *slog.Logger
}

// ScorerOption configures a Scorer during construction.
type ScorerOption func(*Scorer)

// WithScorerLogger sets the logger used for update logging.
func WithScorerLogger(logger *slog.Logger) ScorerOption {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// LoadScorer reads the flat {nodeId: score} document at path. A missing
// file is not an error: the scorer starts empty and creates the file on
// the first flush.
func LoadScorer(path string, opts ...ScorerOption) (*Scorer, error) {
	s := &Scorer{
		path:   path,
		scores: make(map[string]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload re-reads scores from durable storage, replacing in-memory state.
// It exists so tests can isolate state without process-global singletons.
func (s *Scorer) Reload() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		s.scores = make(map[string]float64)
		return nil
	}
	if err != nil {
		return types.WrapError(types.SCORES_LOAD_FAILED, fmt.Sprintf("reading score file %s", s.path), err)
	}

	scores := make(map[string]float64)
	if err := json.Unmarshal(data, &scores); err != nil {
		return types.WrapError(types.SCORES_LOAD_FAILED, "decoding score document", err)
	}
	s.scores = scores
	return nil
}

// Score returns the current score for the given node, 0 if unseen.
func (s *Scorer) Score(nodeID string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scores[nodeID]
}

// Rank orders candidate node ids by descending current score. Ties keep
// input order (stable sort). The query is accepted for interface symmetry
// with future semantic ranking; the base policy ignores its content.
func (s *Scorer) Rank(query string, candidates []string) []string {
	_ = query

	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]string, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return s.scores[ranked[i]] > s.scores[ranked[j]]
	})
	return ranked
}

// UpdateFromOutcome applies the exponential moving average update
// score = clamp(0, 1, 0.9*score + 0.1*reward) to each node id, then
// synchronously flushes the full score document to durable storage.
func (s *Scorer) UpdateFromOutcome(nodeIDs []string, reward float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, id := range nodeIDs {
		updated := s.scores[id]*scoreDecay + reward*scoreUpdateWeight
		s.scores[id] = clamp01(updated)
	}

	if s.logger != nil {
		s.logger.Info("node scores updated", "nodes", len(nodeIDs), "reward", reward)
	}
	return s.flushLocked()
}

// flushLocked rewrites the full score document atomically (temp file then
// rename). Callers must hold the write lock.
func (s *Scorer) flushLocked() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.WrapError(types.SCORES_SAVE_FAILED, fmt.Sprintf("creating directory %s", dir), err)
	}

	data, err := json.MarshalIndent(s.scores, "", "  ")
	if err != nil {
		return types.WrapError(types.SCORES_SAVE_FAILED, "encoding score document", err)
	}

	tmp, err := os.CreateTemp(dir, ".scores-*.json.tmp")
	if err != nil {
		return types.WrapError(types.SCORES_SAVE_FAILED, "creating temporary file", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return types.WrapError(types.SCORES_SAVE_FAILED, "writing temporary file", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return types.WrapError(types.SCORES_SAVE_FAILED, "closing temporary file", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return types.WrapError(types.SCORES_SAVE_FAILED, fmt.Sprintf("renaming to %s", s.path), err)
	}
	return nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
