package rollout

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/feedback"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/llm"
	"github.com/kirilligum/co-dreamer-hackathon-20251011/internal/types"
)

// State is the rollout state machine state recorded on a trajectory.
type State string

const (
	// StateAwaitingModel is the in-flight state while a model call is pending.
	StateAwaitingModel State = "awaiting_model"

	// StateFinalized means the model sealed the trajectory via finalize_email.
	StateFinalized State = "finalized"

	// StateAutoFinalized means the turn budget ran out and the engine
	// sealed the trajectory with a best-effort result.
	StateAutoFinalized State = "auto_finalized"
)

// IsTerminal reports whether the state ends a rollout.
func (s State) IsTerminal() bool {
	return s == StateFinalized || s == StateAutoFinalized
}

// MetaAutoFinalized is the metadata key marking forced completions so
// downstream reward and analytics can distinguish them from organic ones.
const MetaAutoFinalized = "auto_finalized"

// FinalEmail is the sealed output of a trajectory.
type FinalEmail struct {
	Subject   string   `json:"subject"`
	Body      string   `json:"body"`
	Citations []string `json:"citations"`
}

// Trajectory is one complete agent run: an ordered turn sequence, a
// reward, and an optional final result. It is created empty at rollout
// start, appended to turn by turn, sealed when FinalEmail is set, then
// handed to the reward pipeline read-only.
type Trajectory struct {
	Turns      []llm.Message  `json:"turns"`
	Reward     float64        `json:"reward"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	FinalEmail *FinalEmail    `json:"final_email,omitempty"`
	State      State          `json:"state,omitempty"`
}

// NewTrajectory creates an empty trajectory for the given scenario.
func NewTrajectory(scenario Scenario) *Trajectory {
	return &Trajectory{
		Metadata: map[string]any{
			"step":        scenario.Step,
			"prospect_id": scenario.Prospect.ProspectID,
		},
	}
}

// ID returns the stable content hash of the trajectory's turns, used as
// the join key with the feedback log.
func (t *Trajectory) ID() string {
	return feedback.HashTrajectory(t.Turns)
}

// Append adds a turn to the transcript.
func (t *Trajectory) Append(msg llm.Message) {
	t.Turns = append(t.Turns, msg)
}

// Seal sets the final result and terminal state. Sealing twice is a
// no-op; the first result wins.
func (t *Trajectory) Seal(result FinalEmail, state State) {
	if t.FinalEmail != nil {
		return
	}
	t.FinalEmail = &result
	t.State = state
	if state == StateAutoFinalized {
		if t.Metadata == nil {
			t.Metadata = map[string]any{}
		}
		t.Metadata[MetaAutoFinalized] = true
	}
}

// IsSealed reports whether a final result has been set.
func (t *Trajectory) IsSealed() bool {
	return t.FinalEmail != nil
}

// WriteBatch persists trajectories as one JSON record per line, using an
// atomic temp-file-then-rename write. Batches checkpoint each pipeline
// stage so a run can resume from any stage.
func WriteBatch(path string, trajectories []*Trajectory) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return types.WrapError(types.TRAJECTORY_ENCODE_FAILED, fmt.Sprintf("creating directory %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".batch-*.jsonl.tmp")
	if err != nil {
		return types.WrapError(types.TRAJECTORY_ENCODE_FAILED, "creating temporary file", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	encoder := json.NewEncoder(tmp)
	for _, traj := range trajectories {
		if err := encoder.Encode(traj); err != nil {
			return types.WrapError(types.TRAJECTORY_ENCODE_FAILED, "encoding trajectory record", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return types.WrapError(types.TRAJECTORY_ENCODE_FAILED, "closing temporary file", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return types.WrapError(types.TRAJECTORY_ENCODE_FAILED, fmt.Sprintf("renaming to %s", path), err)
	}
	tmp = nil
	return nil
}

// ReadBatch loads a persisted trajectory batch. Records that fail to
// parse are skipped, not fatal; the rest of the batch is still usable.
func ReadBatch(path string) ([]*Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, types.WrapError(types.TRAJECTORY_DECODE_FAILED, fmt.Sprintf("opening batch %s", path), err)
	}
	defer f.Close()

	var trajectories []*Trajectory
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var traj Trajectory
		if err := json.Unmarshal(line, &traj); err != nil {
			continue
		}
		trajectories = append(trajectories, &traj)
	}
	if err := scanner.Err(); err != nil {
		return nil, types.WrapError(types.TRAJECTORY_DECODE_FAILED, fmt.Sprintf("reading batch %s", path), err)
	}
	return trajectories, nil
}
