package scoring_test

import (
	"testing"
	"time"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

func TestEngine_FullEvaluation(t *testing.T) {
	e := scoring.NewEngine(scoring.DefaultPolicy())
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	m := scoring.Metrics{
		Code: &scoring.CodeMetrics{
			Days: []scoring.ActivityDay{
				day(1, map[scoring.EventType]int{scoring.EventPush: 20, scoring.EventRelease: 1}),
				day(2, map[scoring.EventType]int{scoring.EventPullRequest: 5}),
			},
			DistinctContributors: 4,
			LastPush:             now.AddDate(0, 0, -2),
		},
		Deps:       &scoring.DependencyMetrics{Outdated: 2},
		Governance: &scoring.GovernanceMetrics{RecentTxCount: 6, LastAction: now.AddDate(0, 0, -5), SignerCount: 4, ApprovalThreshold: 2},
		Economic:   &scoring.EconomicMetrics{TVLUSD: 5_000_000},
	}

	r := e.Evaluate(m, scoring.Subscores{}, time.Time{}, now)

	if r.Subscores.Code == nil || r.Subscores.Deps == nil || r.Subscores.Governance == nil || r.Subscores.Economic == nil {
		t.Fatal("all four dimensions were collected; none should be nil")
	}
	if r.Composite <= 0 || r.Composite > 100 {
		t.Errorf("composite out of range: %f", r.Composite)
	}
	if !r.LastActivity.Equal(m.Code.LastPush) {
		t.Errorf("LastActivity = %v, want last push %v", r.LastActivity, m.Code.LastPush)
	}
	if r.Breakdown.Manual {
		t.Error("engine evaluation must not produce a manual breakdown")
	}
}

func TestEngine_FallsBackToCachedSubscores(t *testing.T) {
	e := scoring.NewEngine(scoring.DefaultPolicy())
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	prior := now.AddDate(0, 0, -3)

	cached := scoring.Subscores{
		Code: scoring.Float(75),
		Deps: scoring.Float(88),
	}

	// Only the dependency collector ran this cycle.
	r := e.Evaluate(scoring.Metrics{
		Deps: &scoring.DependencyMetrics{Outdated: 5},
	}, cached, prior, now)

	if r.Subscores.Code == nil || *r.Subscores.Code != 75 {
		t.Errorf("code subscore should come from cache, got %v", r.Subscores.Code)
	}
	if *r.Subscores.Deps != 80 {
		t.Errorf("deps subscore = %f, want freshly computed 80", *r.Subscores.Deps)
	}
	if r.Subscores.Governance != nil || r.Subscores.Economic != nil {
		t.Error("uncollected, uncached dimensions must stay nil")
	}
	if !r.LastActivity.Equal(prior) {
		t.Errorf("LastActivity = %v, want prior %v", r.LastActivity, prior)
	}
}

func TestEngine_Idempotent(t *testing.T) {
	e := scoring.NewEngine(scoring.DefaultPolicy())
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	m := scoring.Metrics{
		Code: &scoring.CodeMetrics{
			Days:                 []scoring.ActivityDay{day(1, map[scoring.EventType]int{scoring.EventPush: 7})},
			DistinctContributors: 2,
			LastPush:             now.AddDate(0, 0, -1),
		},
		Deps: &scoring.DependencyMetrics{Outdated: 1, AvgStalenessDays: 20},
	}

	first := e.Evaluate(m, scoring.Subscores{}, time.Time{}, now)
	second := e.Evaluate(m, scoring.Subscores{}, time.Time{}, now)

	if first.Composite != second.Composite {
		t.Errorf("recomputation is not idempotent: %f vs %f", first.Composite, second.Composite)
	}
	if first.Liveness != second.Liveness {
		t.Errorf("liveness differs across identical runs: %s vs %s", first.Liveness, second.Liveness)
	}
}

func TestEngine_RiskPenaltySeesFreshCodeScore(t *testing.T) {
	e := scoring.NewEngine(scoring.DefaultPolicy())
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	// Heavy TVL, near-dead repository: the economic subscore must reflect
	// the maintenance gap.
	quiet := e.Evaluate(scoring.Metrics{
		Code: &scoring.CodeMetrics{
			Days:                 []scoring.ActivityDay{day(1, map[scoring.EventType]int{scoring.EventIssue: 1})},
			DistinctContributors: 1,
			LastPush:             now.AddDate(0, 0, -200),
		},
		Economic: &scoring.EconomicMetrics{TVLUSD: 50_000_000},
	}, scoring.Subscores{}, time.Time{}, now)

	busy := e.Evaluate(scoring.Metrics{
		Code: &scoring.CodeMetrics{
			Days: []scoring.ActivityDay{
				day(1, map[scoring.EventType]int{scoring.EventPush: 25, scoring.EventRelease: 2}),
				day(2, map[scoring.EventType]int{scoring.EventPush: 25, scoring.EventPullRequest: 6}),
				day(3, map[scoring.EventType]int{scoring.EventPush: 25}),
			},
			DistinctContributors: 5,
			LastPush:             now.AddDate(0, 0, -1),
		},
		Economic: &scoring.EconomicMetrics{TVLUSD: 50_000_000},
	}, scoring.Subscores{}, time.Time{}, now)

	if *quiet.Subscores.Economic >= *busy.Subscores.Economic {
		t.Errorf("unmaintained pool %f should score below maintained pool %f",
			*quiet.Subscores.Economic, *busy.Subscores.Economic)
	}
}
