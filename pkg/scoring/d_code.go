package scoring

import "time"

// CodeScorer (D1) scores the code-activity dimension: normalized,
// gaming-resistant event volume combined multiplicatively with inactivity
// decay. A historically busy project that went quiet still decays.
type CodeScorer struct {
	Normalizer Normalizer
	DecayRate  float64
	DecayFloor float64
}

func (s *CodeScorer) Key() string { return "code_activity" }

// Score maps a code-activity bundle to a subscore, or nil when the bundle
// is absent (dimension not collected).
func (s *CodeScorer) Score(m *CodeMetrics, now time.Time) *float64 {
	if m == nil {
		return nil
	}

	base := s.Normalizer.Normalize(m.Days, m.IsFork, m.DistinctContributors)
	score := base * Decay(m.LastPush, now, s.DecayRate, s.DecayFloor)
	return Float(score)
}
