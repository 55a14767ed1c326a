package scoring

import "time"

// Classifier maps a composite score plus activity recency to a liveness
// label. Labels are recomputed fresh every cycle; there is no transition
// state to preserve. The rules are ordered and mutually exclusive, first
// match wins, with DECAYING as the exhaustive default.
type Classifier struct {
	ActiveScoreMin    float64
	StaleScoreMin     float64
	ActiveMaxIdleDays float64
	StaleMaxIdleDays  float64
}

// Classify returns the liveness label for a score and last-activity
// timestamp. Recency matters independently of score: a stale project with
// an excellent historical score must not read as healthy. A zero
// lastActivity (never observed) is treated as infinitely idle.
func (c *Classifier) Classify(score float64, lastActivity, now time.Time) Liveness {
	idleDays := c.StaleMaxIdleDays + 1 // never active: beyond every window
	if !lastActivity.IsZero() {
		idleDays = now.Sub(lastActivity).Hours() / 24
		if idleDays < 0 {
			idleDays = 0
		}
	}

	switch {
	case score >= c.ActiveScoreMin && idleDays <= c.ActiveMaxIdleDays:
		return LivenessActive
	case score >= c.StaleScoreMin && idleDays <= c.StaleMaxIdleDays:
		return LivenessStale
	default:
		return LivenessDecaying
	}
}
