package scoring

import (
	"fmt"
	"math"
)

// Normalizer converts raw activity-event histograms into a [0,100]
// subscore while resisting superficial gaming: bursts are capped per day,
// forks are dampened, single-person projects are ceilinged, and volume
// saturates instead of growing linearly.
type Normalizer struct {
	EventWeights map[EventType]float64 // per-event-type weight
	DailyCap     int                   // per-type cap on one day's events, applied before weighting
	ForkPenalty  float64               // multiplier (<1) applied to forks

	MinContributors int     // below this, the reduced ceiling applies
	ReducedCeiling  float64 // max subscore for low-diversity projects

	SaturationScale float64 // weighted-sum scale of the saturation curve
}

// Normalize maps a per-day event histogram to a subscore in [0,100].
//
// Policy order: per-day caps, event-type weighting, fork penalty,
// saturation into [0,100], contributor-diversity ceiling.
//
// Negative counts indicate a collector contract violation and panic;
// this function only ever receives parsed integers, never user input.
func (n *Normalizer) Normalize(days []ActivityDay, isFork bool, distinctContributors int) float64 {
	if distinctContributors < 0 {
		panic(fmt.Sprintf("scoring: negative contributor count %d", distinctContributors))
	}

	var weighted float64
	for _, day := range days {
		for typ, count := range day.Counts {
			if count < 0 {
				panic(fmt.Sprintf("scoring: negative %s count %d on %s", typ, count, day.Date.Format("2006-01-02")))
			}
			if count > n.DailyCap {
				count = n.DailyCap
			}
			weighted += float64(count) * n.EventWeights[typ]
		}
	}

	if isFork {
		weighted *= n.ForkPenalty
	}

	// Diminishing returns: unbounded event volume must not trivially
	// reach 100.
	score := 100 * (1 - math.Exp(-weighted/n.SaturationScale))

	if distinctContributors < n.MinContributors && score > n.ReducedCeiling {
		score = n.ReducedCeiling
	}

	return score
}
