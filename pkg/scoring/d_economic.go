package scoring

import "fmt"

// EconomicScorer (D4) scores locked economic value. The score steps up
// with TVL tiers, but a large pool held by a project with weak recent
// development is penalized: unmaintained value is a warning signal, not a
// reward signal.
type EconomicScorer struct {
	TierHighUSD   float64
	TierMidUSD    float64
	TierLowUSD    float64
	TierHighScore float64
	TierMidScore  float64
	TierLowScore  float64
	DustScore     float64
	EmptyScore    float64

	RiskTVLUSD      float64
	RiskActivityMin float64
	RiskMaxPenalty  float64
}

func (s *EconomicScorer) Key() string { return "economic" }

// Score maps a TVL bundle to a subscore, or nil when absent (non-DeFi
// projects have no economic dimension). codeActivity is the project's
// current code-activity subscore, used for the risk-ratio penalty; nil
// means no code signal is available and the penalty applies in full.
func (s *EconomicScorer) Score(m *EconomicMetrics, codeActivity *float64) *float64 {
	if m == nil {
		return nil
	}
	if m.TVLUSD < 0 {
		panic(fmt.Sprintf("scoring: negative TVL %f", m.TVLUSD))
	}

	var score float64
	switch {
	case m.TVLUSD >= s.TierHighUSD:
		score = s.TierHighScore
	case m.TVLUSD >= s.TierMidUSD:
		score = s.TierMidScore
	case m.TVLUSD >= s.TierLowUSD:
		score = s.TierLowScore
	case m.TVLUSD > 0:
		score = s.DustScore
	default:
		score = s.EmptyScore
	}

	if m.TVLUSD >= s.RiskTVLUSD {
		activity := 0.0
		if codeActivity != nil {
			activity = *codeActivity
		}
		if activity < s.RiskActivityMin {
			// Penalty scales with how far maintenance falls short.
			score -= s.RiskMaxPenalty * (1 - activity/s.RiskActivityMin)
		}
	}

	if score < 0 {
		score = 0
	}
	return Float(score)
}
