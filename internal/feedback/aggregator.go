package feedback

import (
	"log/slog"
)

// RewardMix holds the blend weights for the three reward components.
// The weights need not sum to 1; scaling all three scales every reward.
type RewardMix struct {
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"` // rank component
	Beta  float64 `mapstructure:"beta" yaml:"beta"`   // preference component
	Gamma float64 `mapstructure:"gamma" yaml:"gamma"` // outcome component
}

// DefaultRewardMix returns the standard blend weights.
func DefaultRewardMix() RewardMix {
	return RewardMix{Alpha: 0.6, Beta: 0.2, Gamma: 0.2}
}

// outcomeWeights are the fixed ordinal weights for online outcomes. The
// strongest satisfied outcome wins.
var outcomeWeights = []struct {
	satisfied func(Event) bool
	weight    float64
}{
	{func(e Event) bool { return e.Opened }, 0.2},
	{func(e Event) bool { return e.Replied }, 0.4},
	{func(e Event) bool { return e.CallBooked }, 0.6},
	{func(e Event) bool { return e.Opportunity }, 0.8},
	{func(e Event) bool { return e.ClosedWon }, 1.0},
}

// Aggregator reads a trajectory's feedback events and blends them into
// one scalar reward.
type Aggregator struct {
	log    *Log
	logger *slog.Logger
}

// NewAggregator creates an aggregator over the given feedback log.
func NewAggregator(log *Log, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{log: log, logger: logger}
}

// ComputeRewards returns a blended reward for every requested trajectory
// id. Ids with no matching events get 0.
func (a *Aggregator) ComputeRewards(trajectoryIDs []string, mix RewardMix) map[string]float64 {
	events := a.log.EventsFor(trajectoryIDs)

	buckets := make(map[string][]Event, len(trajectoryIDs))
	for _, id := range trajectoryIDs {
		buckets[id] = nil
	}
	for _, e := range events {
		for id := range buckets {
			if e.Matches(id) {
				buckets[id] = append(buckets[id], e)
			}
		}
	}

	rewards := make(map[string]float64, len(trajectoryIDs))
	for id, bucket := range buckets {
		rank := rankComponent(bucket)
		pref := preferenceComponent(bucket, id)
		outcome := outcomeComponent(bucket)
		rewards[id] = mix.Alpha*rank + mix.Beta*pref + mix.Gamma*outcome
		a.logger.Debug("blended reward",
			"trajectory", id,
			"events", len(bucket),
			"rank", rank,
			"preference", pref,
			"outcome", outcome,
			"reward", rewards[id])
	}
	return rewards
}

// rankComponent normalizes each rank event with group size > 1 to
// (groupSize - rank)/(groupSize - 1), so rank 1 of N maps to 1.0 and rank
// N to 0.0, and averages across events. Rubric values are averaged
// separately. The component is the even blend of both means, each
// defaulting to 0 when absent.
func rankComponent(events []Event) float64 {
	var rankVals []float64
	var rubricMeans []float64

	for _, e := range events {
		if e.Kind != KindRank {
			continue
		}
		if e.GroupSize > 1 {
			rankVals = append(rankVals, float64(e.GroupSize-e.Rank)/float64(e.GroupSize-1))
		}
		if len(e.Rubric) > 0 {
			sum := 0.0
			for _, v := range e.Rubric {
				sum += v
			}
			rubricMeans = append(rubricMeans, sum/float64(len(e.Rubric)))
		}
	}

	return 0.5*mean(rankVals) + 0.5*mean(rubricMeans)
}

// preferenceComponent is a Bradley-Terry style win rate: confidence mass
// on wins divided by confidence mass over all comparisons involving the
// trajectory. 0 if it never appears in a preference event.
func preferenceComponent(events []Event, trajectoryID string) float64 {
	wins := 0.0
	total := 0.0
	for _, e := range events {
		if e.Kind != KindPreference {
			continue
		}
		conf := e.Confidence
		switch trajectoryID {
		case e.Winner:
			wins += conf
			total += conf
		case e.Loser:
			total += conf
		}
	}
	if total <= 0 {
		return 0
	}
	return wins / total
}

// outcomeComponent takes the maximum ordinal weight among satisfied
// outcomes across all outcome events; 0 if none exist.
func outcomeComponent(events []Event) float64 {
	max := 0.0
	for _, e := range events {
		if e.Kind != KindOutcome {
			continue
		}
		for _, ow := range outcomeWeights {
			if ow.satisfied(e) && ow.weight > max {
				max = ow.weight
			}
		}
	}
	return max
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
