// Package feedback implements the append-only feedback event log and the
// reward aggregation pipeline that blends heterogeneous feedback signals
// into a single scalar reward per trajectory.
package feedback

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind discriminates the feedback event variants on the wire.
type Kind string

const (
	// KindRank is automatic judge feedback: a rank within a trajectory
	// group plus optional rubric sub-scores.
	KindRank Kind = "ruler"

	// KindPreference is a human pairwise preference between two trajectories.
	KindPreference Kind = "human"

	// KindOutcome is an observed online outcome for a sent email.
	KindOutcome Kind = "online"
)

// IsValid checks if the kind is a known variant.
func (k Kind) IsValid() bool {
	switch k {
	case KindRank, KindPreference, KindOutcome:
		return true
	default:
		return false
	}
}

// BaseEvent carries the fields shared by every feedback variant.
type BaseEvent struct {
	TrajectoryID string    `json:"trajectory_id"`
	ProspectID   string    `json:"prospect_id"`
	Step         int       `json:"step"`
	Timestamp    time.Time `json:"ts"`
}

// Event is one immutable feedback record. Exactly one of the variant
// pointers is set, matching the Kind discriminator.
type Event struct {
	Kind Kind `json:"kind"`
	BaseEvent

	// KindRank fields
	Rank      int                `json:"rank,omitempty"`
	GroupSize int                `json:"group_size,omitempty"`
	Rubric    map[string]float64 `json:"rubric,omitempty"`

	// KindPreference fields
	Winner     string  `json:"winner,omitempty"`
	Loser      string  `json:"loser,omitempty"`
	ReviewerID string  `json:"reviewer_id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`

	// KindOutcome fields
	Opened      bool `json:"opened,omitempty"`
	Replied     bool `json:"replied,omitempty"`
	CallBooked  bool `json:"call_booked,omitempty"`
	Opportunity bool `json:"opportunity,omitempty"`
	ClosedWon   bool `json:"closed_won,omitempty"`
}

// NewRankEvent creates a rank (judge) feedback event.
func NewRankEvent(trajectoryID, prospectID string, step int, rank, groupSize int, rubric map[string]float64) Event {
	return Event{
		Kind: KindRank,
		BaseEvent: BaseEvent{
			TrajectoryID: trajectoryID,
			ProspectID:   prospectID,
			Step:         step,
			Timestamp:    time.Now().UTC(),
		},
		Rank:      rank,
		GroupSize: groupSize,
		Rubric:    rubric,
	}
}

// NewPreferenceEvent creates a human pairwise preference event. The event
// is recorded once and matched against both the winner and loser
// trajectory ids at aggregation time.
func NewPreferenceEvent(winner, loser, prospectID, reviewerID string, step int, confidence float64) Event {
	return Event{
		Kind: KindPreference,
		BaseEvent: BaseEvent{
			TrajectoryID: winner,
			ProspectID:   prospectID,
			Step:         step,
			Timestamp:    time.Now().UTC(),
		},
		Winner:     winner,
		Loser:      loser,
		ReviewerID: reviewerID,
		Confidence: confidence,
	}
}

// Outcome flags observed for a sent email.
type Outcome struct {
	Opened      bool
	Replied     bool
	CallBooked  bool
	Opportunity bool
	ClosedWon   bool
}

// NewOutcomeEvent creates an online outcome event.
func NewOutcomeEvent(trajectoryID, prospectID string, step int, outcome Outcome) Event {
	return Event{
		Kind: KindOutcome,
		BaseEvent: BaseEvent{
			TrajectoryID: trajectoryID,
			ProspectID:   prospectID,
			Step:         step,
			Timestamp:    time.Now().UTC(),
		},
		Opened:      outcome.Opened,
		Replied:     outcome.Replied,
		CallBooked:  outcome.CallBooked,
		Opportunity: outcome.Opportunity,
		ClosedWon:   outcome.ClosedWon,
	}
}

// Matches reports whether the event belongs to the given trajectory. A
// preference event matches both sides of the comparison.
func (e Event) Matches(trajectoryID string) bool {
	if e.TrajectoryID == trajectoryID {
		return true
	}
	if e.Kind == KindPreference {
		return e.Winner == trajectoryID || e.Loser == trajectoryID
	}
	return false
}

// Encode serializes the event as a single flat JSON record.
func (e Event) Encode() ([]byte, error) {
	if !e.Kind.IsValid() {
		return nil, fmt.Errorf("cannot encode event with unknown kind %q", e.Kind)
	}
	return json.Marshal(e)
}

// DecodeEvent parses one feedback record. Records with an unknown or
// missing kind are rejected here, at decode time, so downstream
// aggregation only ever sees well-formed variants.
func DecodeEvent(line []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(line, &e); err != nil {
		return Event{}, fmt.Errorf("unparseable feedback record: %w", err)
	}
	if !e.Kind.IsValid() {
		return Event{}, fmt.Errorf("unknown feedback kind %q", e.Kind)
	}
	return e, nil
}
