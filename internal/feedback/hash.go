package feedback

import (
	"crypto/sha1"
	"encoding/hex"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
)

// HashTrajectory computes a deterministic content hash over the ordered
// (role, content) pairs of a trajectory's turns. The hash is the join key
// between a trajectory and its feedback events: identical transcripts
// always yield the same id, so feedback recorded before a trajectory is
// known by any other identifier can be joined retroactively.
func HashTrajectory(turns []llm.Message) string {
	h := sha1.New()
	for _, turn := range turns {
		h.Write([]byte(turn.Role))
		h.Write([]byte(turn.Content))
	}
	return hex.EncodeToString(h.Sum(nil))
}
