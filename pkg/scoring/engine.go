package scoring

import "time"

// Engine wires the dimension scorers, aggregator, and classifier for a
// single policy. One Engine serves all projects; it carries no per-project
// state.
type Engine struct {
	code       CodeScorer
	deps       DepsScorer
	governance GovernanceScorer
	economic   EconomicScorer
	aggregator Aggregator
	classifier Classifier
}

// NewEngine builds an Engine from a policy.
func NewEngine(p Policy) *Engine {
	return &Engine{
		code: CodeScorer{
			Normalizer: Normalizer{
				EventWeights:    p.EventWeights,
				DailyCap:        p.DailyEventCap,
				ForkPenalty:     p.ForkPenalty,
				MinContributors: p.MinContributors,
				ReducedCeiling:  p.ReducedCeiling,
				SaturationScale: p.SaturationScale,
			},
			DecayRate:  p.DecayRatePerDay,
			DecayFloor: p.DecayFloor,
		},
		deps: DepsScorer{
			OutdatedPenalty:     p.OutdatedPenalty,
			VulnerablePenalty:   p.VulnerablePenalty,
			StalenessPerDay:     p.StalenessPerDay,
			MaxStalenessPenalty: p.MaxStalenessPenalty,
		},
		governance: GovernanceScorer{
			ActiveTxThreshold: p.GovActiveTxThreshold,
			HighBaseline:      p.GovHighBaseline,
			LowBaseline:       p.GovLowBaseline,
			IdleBaseline:      p.GovIdleBaseline,
			DecayRate:         p.GovDecayRatePerDay,
			DecayFloor:        p.DecayFloor,
			SignerBonus:       p.GovSignerBonus,
			SignerBonusCap:    p.GovSignerBonusCap,
			LowQuorumBonus:    p.GovLowQuorumBonus,
			QuorumRatio:       p.GovQuorumRatio,
		},
		economic: EconomicScorer{
			TierHighUSD:     p.TVLTierHighUSD,
			TierMidUSD:      p.TVLTierMidUSD,
			TierLowUSD:      p.TVLTierLowUSD,
			TierHighScore:   p.TVLTierHighScore,
			TierMidScore:    p.TVLTierMidScore,
			TierLowScore:    p.TVLTierLowScore,
			DustScore:       p.TVLDustScore,
			EmptyScore:      p.TVLEmptyScore,
			RiskTVLUSD:      p.RiskTVLUSD,
			RiskActivityMin: p.RiskActivityMin,
			RiskMaxPenalty:  p.RiskMaxPenalty,
		},
		aggregator: Aggregator{
			WeightCode:       p.WeightCode,
			WeightDeps:       p.WeightDeps,
			WeightGovernance: p.WeightGovernance,
			WeightEconomic:   p.WeightEconomic,
			ZeroProofFloor:   p.ZeroProofFloor,
		},
		classifier: Classifier{
			ActiveScoreMin:    p.ActiveScoreMin,
			StaleScoreMin:     p.StaleScoreMin,
			ActiveMaxIdleDays: p.ActiveMaxIdleDays,
			StaleMaxIdleDays:  p.StaleMaxIdleDays,
		},
	}
}

// Evaluate scores a project from freshly collected bundles, falling back
// to cached subscores for dimensions not collected this cycle. cached and
// priorActivity come from the persisted project record; both may be zero
// for a first scoring. Evaluate is deterministic in its inputs, so
// re-running a cycle with the same bundles produces the same Result.
func (e *Engine) Evaluate(m Metrics, cached Subscores, priorActivity, now time.Time) Result {
	sub := Subscores{
		Code:       e.code.Score(m.Code, now),
		Deps:       e.deps.Score(m.Deps),
		Governance: e.governance.Score(m.Governance, now),
	}
	if sub.Code == nil {
		sub.Code = cached.Code
	}
	if sub.Deps == nil {
		sub.Deps = cached.Deps
	}
	if sub.Governance == nil {
		sub.Governance = cached.Governance
	}

	sub.Economic = e.economic.Score(m.Economic, sub.Code)
	if sub.Economic == nil {
		sub.Economic = cached.Economic
	}

	lastActivity := priorActivity
	if m.Code != nil && m.Code.LastPush.After(lastActivity) {
		lastActivity = m.Code.LastPush
	}
	if m.Governance != nil && m.Governance.LastAction.After(lastActivity) {
		lastActivity = m.Governance.LastAction
	}

	composite, breakdown := e.aggregator.Aggregate(sub)

	return Result{
		Subscores:    sub,
		Composite:    composite,
		Breakdown:    breakdown,
		Liveness:     e.classifier.Classify(composite, lastActivity, now),
		LastActivity: lastActivity,
	}
}

// Classify exposes the engine's classifier for callers that already have
// a composite score, e.g. recalibration, which must reuse existing recency
// rather than fabricate fresh activity.
func (e *Engine) Classify(score float64, lastActivity, now time.Time) Liveness {
	return e.classifier.Classify(score, lastActivity, now)
}
