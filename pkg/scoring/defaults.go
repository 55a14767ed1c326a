package scoring

// Policy holds every tunable constant in the scoring engine. The values
// are policy decisions, not contracts: the engine's guarantees (monotonic
// decay, strict fork dampening, weight redistribution summing to one) hold
// for any sane Policy.
type Policy struct {
	// Decay
	DecayRatePerDay float64 // k in exp(-k * days)
	DecayFloor      float64 // multiplier for never-active projects

	// Anti-gaming normalizer
	EventWeights    map[EventType]float64
	DailyEventCap   int
	ForkPenalty     float64
	MinContributors int
	ReducedCeiling  float64
	SaturationScale float64

	// Dependency health
	OutdatedPenalty     float64 // per outdated dependency
	VulnerablePenalty   float64 // per known-vulnerable dependency
	StalenessPerDay     float64 // per day of average staleness
	MaxStalenessPenalty float64

	// Governance
	GovActiveTxThreshold int     // txs in trailing 30d for the high baseline
	GovHighBaseline      float64
	GovLowBaseline       float64 // some activity, below threshold
	GovIdleBaseline      float64 // configured but no recent activity
	GovDecayRatePerDay   float64
	GovSignerBonus       float64 // per independent signer beyond the first
	GovSignerBonusCap    float64
	GovLowQuorumBonus    float64 // approval threshold <= 60% of signers
	GovQuorumRatio       float64

	// Economic
	TVLTierHighUSD   float64
	TVLTierMidUSD    float64
	TVLTierLowUSD    float64
	TVLTierHighScore float64
	TVLTierMidScore  float64
	TVLTierLowScore  float64
	TVLDustScore     float64 // nonzero TVL below the low tier
	TVLEmptyScore    float64 // configured but zero TVL
	RiskTVLUSD       float64 // TVL above this with weak maintenance is a warning
	RiskActivityMin  float64 // code subscore below this counts as weak maintenance
	RiskMaxPenalty   float64

	// Aggregation
	WeightCode       float64
	WeightDeps       float64
	WeightGovernance float64
	WeightEconomic   float64
	ZeroProofFloor   float64 // documented range 15-30

	// Liveness
	ActiveScoreMin    float64
	StaleScoreMin     float64
	ActiveMaxIdleDays float64
	StaleMaxIdleDays  float64
}

// DefaultPolicy returns the production scoring policy.
func DefaultPolicy() Policy {
	return Policy{
		// exp(-0.0185 * 90) ~= 0.19: roughly 90 idle days drive the
		// multiplier below 0.2.
		DecayRatePerDay: 0.0185,
		DecayFloor:      0.05,

		EventWeights: map[EventType]float64{
			EventRelease:     8,
			EventPullRequest: 2,
			EventPush:        1,
			EventIssue:       0.25,
		},
		DailyEventCap:   30,
		ForkPenalty:     0.5,
		MinContributors: 3,
		ReducedCeiling:  60,
		SaturationScale: 40,

		OutdatedPenalty:     4,
		VulnerablePenalty:   15,
		StalenessPerDay:     0.05,
		MaxStalenessPenalty: 25,

		GovActiveTxThreshold: 5,
		GovHighBaseline:      70,
		GovLowBaseline:       45,
		GovIdleBaseline:      15,
		GovDecayRatePerDay:   0.0185,
		GovSignerBonus:       4,
		GovSignerBonusCap:    16,
		GovLowQuorumBonus:    10,
		GovQuorumRatio:       0.6,

		TVLTierHighUSD:   10_000_000,
		TVLTierMidUSD:    1_000_000,
		TVLTierLowUSD:    100_000,
		TVLTierHighScore: 85,
		TVLTierMidScore:  65,
		TVLTierLowScore:  45,
		TVLDustScore:     25,
		TVLEmptyScore:    5,
		RiskTVLUSD:       1_000_000,
		RiskActivityMin:  40,
		RiskMaxPenalty:   30,

		WeightCode:       0.40,
		WeightDeps:       0.25,
		WeightGovernance: 0.20,
		WeightEconomic:   0.15,
		ZeroProofFloor:   20,

		ActiveScoreMin:    70,
		StaleScoreMin:     40,
		ActiveMaxIdleDays: 14,
		StaleMaxIdleDays:  90,
	}
}
