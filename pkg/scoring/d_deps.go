package scoring

import "fmt"

// DepsScorer (D2) scores dependency supply-chain health. It starts at 100
// and subtracts fixed penalties per outdated and per vulnerable dependency,
// plus a smaller continuous penalty for average staleness, floored at 0.
type DepsScorer struct {
	OutdatedPenalty     float64
	VulnerablePenalty   float64
	StalenessPerDay     float64
	MaxStalenessPenalty float64
}

func (s *DepsScorer) Key() string { return "dependency_health" }

// Score maps a dependency bundle to a subscore, or nil when absent.
// Negative counts are a collector contract violation and panic.
func (s *DepsScorer) Score(m *DependencyMetrics) *float64 {
	if m == nil {
		return nil
	}
	if m.Outdated < 0 || m.Vulnerable < 0 || m.AvgStalenessDays < 0 {
		panic(fmt.Sprintf("scoring: malformed dependency metrics %+v", *m))
	}

	staleness := s.StalenessPerDay * m.AvgStalenessDays
	if staleness > s.MaxStalenessPenalty {
		staleness = s.MaxStalenessPenalty
	}

	score := 100 -
		s.OutdatedPenalty*float64(m.Outdated) -
		s.VulnerablePenalty*float64(m.Vulnerable) -
		staleness
	if score < 0 {
		score = 0
	}
	return Float(score)
}
