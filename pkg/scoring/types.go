// Package scoring implements the Pulsecheck resilience scoring engine.
// It turns per-dimension metric bundles into normalized subscores, a
// weighted composite score, and a liveness classification. Everything in
// this package is pure: no I/O, no clocks other than the caller-supplied
// "now".
package scoring

import "time"

// Liveness classifies a project's recency-adjusted health.
type Liveness string

const (
	LivenessActive   Liveness = "ACTIVE"
	LivenessStale    Liveness = "STALE"
	LivenessDecaying Liveness = "DECAYING"
)

// EventType identifies a kind of code-hosting activity event.
type EventType string

const (
	EventPush        EventType = "push"
	EventPullRequest EventType = "pull_request"
	EventRelease     EventType = "release"
	EventIssue       EventType = "issue"
)

// ActivityDay is one day's worth of activity events, bucketed by type.
// The normalizer caps per-day counts, so input must arrive bucketed by
// day rather than as flat totals.
type ActivityDay struct {
	Date   time.Time         `json:"date"`
	Counts map[EventType]int `json:"counts"`
}

// CodeMetrics is the code-activity bundle produced by the code-hosting
// collector.
type CodeMetrics struct {
	Days                 []ActivityDay `json:"days"`
	IsFork               bool          `json:"is_fork"`
	DistinctContributors int           `json:"distinct_contributors"`
	LastPush             time.Time     `json:"last_push"` // zero = never observed
}

// DependencyMetrics is the supply-chain bundle produced by the registry
// collector.
type DependencyMetrics struct {
	Outdated         int     `json:"outdated"`
	Vulnerable       int     `json:"vulnerable"`
	AvgStalenessDays float64 `json:"avg_staleness_days"` // mean days behind latest
}

// GovernanceMetrics is the on-chain governance bundle produced by the
// chain reader.
type GovernanceMetrics struct {
	RecentTxCount     int       `json:"recent_tx_count"` // trailing 30 days
	LastAction        time.Time `json:"last_action"`     // zero = never observed
	SignerCount       int       `json:"signer_count"`
	ApprovalThreshold int       `json:"approval_threshold"` // required approvals
}

// EconomicMetrics is the locked-value bundle produced by the TVL feed.
type EconomicMetrics struct {
	TVLUSD float64 `json:"tvl_usd"`
}

// Metrics is the closed union of per-dimension bundles. A nil field means
// the dimension was not collected this cycle; the caller decides whether
// that means "inapplicable" or "use the cached subscore".
type Metrics struct {
	Code       *CodeMetrics
	Deps       *DependencyMetrics
	Governance *GovernanceMetrics
	Economic   *EconomicMetrics
}

// Subscores holds the four cached dimension subscores. A nil entry means
// the dimension is inapplicable for this project (e.g. a non-DeFi project
// has no economic dimension), which is a different fact than a score of 0.
type Subscores struct {
	Code       *float64 `json:"code"`
	Deps       *float64 `json:"deps"`
	Governance *float64 `json:"governance"`
	Economic   *float64 `json:"economic"`
}

// DimensionContribution records how one dimension entered the composite:
// its raw subscore, the weight it effectively carried after redistribution,
// and the resulting contribution. Retained so the composite is fully
// auditable after the fact.
type DimensionContribution struct {
	Key             string   `json:"key"`
	Subscore        *float64 `json:"subscore"`
	EffectiveWeight float64  `json:"effective_weight"`
	Contribution    float64  `json:"contribution"`
}

// Breakdown is the audit record for one composite computation.
// Manual breakdowns carry the operator and no dimension contributions:
// an override is not a weighted aggregate and must not pretend to be one.
type Breakdown struct {
	Manual       bool                    `json:"manual"`
	Operator     string                  `json:"operator,omitempty"`
	Note         string                  `json:"note,omitempty"`
	Dimensions   []DimensionContribution `json:"dimensions,omitempty"`
	FloorApplied bool                    `json:"floor_applied"`
	Composite    float64                 `json:"composite"`
}

// Result is the complete output of one scoring pass.
type Result struct {
	Subscores    Subscores
	Composite    float64
	Breakdown    Breakdown
	Liveness     Liveness
	LastActivity time.Time // zero if no activity was ever observed
}

// Float returns a pointer to v. Convenience for building Subscores.
func Float(v float64) *float64 { return &v }
