package scoring

import (
	"fmt"
	"time"
)

// GovernanceScorer (D3) scores on-chain governance activity: a stepped
// baseline on recent transaction count, decayed by time since the last
// governance action, plus bonuses for decentralization signals.
//
// A project with no governance address configured has no governance
// dimension at all; that is the caller's nil, never a 0 from this scorer.
// 0 means "governance present but dead", a different fact.
type GovernanceScorer struct {
	ActiveTxThreshold int
	HighBaseline      float64
	LowBaseline       float64
	IdleBaseline      float64
	DecayRate         float64
	DecayFloor        float64

	SignerBonus    float64
	SignerBonusCap float64
	LowQuorumBonus float64
	QuorumRatio    float64
}

func (s *GovernanceScorer) Key() string { return "governance" }

// Score maps a governance bundle to a subscore, or nil when absent.
func (s *GovernanceScorer) Score(m *GovernanceMetrics, now time.Time) *float64 {
	if m == nil {
		return nil
	}
	if m.RecentTxCount < 0 || m.SignerCount < 0 || m.ApprovalThreshold < 0 {
		panic(fmt.Sprintf("scoring: malformed governance metrics %+v", *m))
	}

	var base float64
	switch {
	case m.RecentTxCount >= s.ActiveTxThreshold:
		base = s.HighBaseline
	case m.RecentTxCount > 0:
		base = s.LowBaseline
	default:
		base = s.IdleBaseline
	}

	base *= Decay(m.LastAction, now, s.DecayRate, s.DecayFloor)

	// Decentralization: multiple independent signers, and a quorum that
	// does not require near-unanimity.
	var bonus float64
	if m.SignerCount > 1 {
		bonus = s.SignerBonus * float64(m.SignerCount-1)
		if bonus > s.SignerBonusCap {
			bonus = s.SignerBonusCap
		}
		if float64(m.ApprovalThreshold) <= s.QuorumRatio*float64(m.SignerCount) {
			bonus += s.LowQuorumBonus
		}
	}

	score := base + bonus
	if score > 100 {
		score = 100
	}
	return Float(score)
}
