package scoring_test

import (
	"math"
	"testing"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

func testAggregator() scoring.Aggregator {
	return scoring.Aggregator{
		WeightCode:       0.40,
		WeightDeps:       0.25,
		WeightGovernance: 0.20,
		WeightEconomic:   0.15,
		ZeroProofFloor:   20,
	}
}

func TestAggregate_AllDimensions(t *testing.T) {
	a := testAggregator()

	composite, bd := a.Aggregate(scoring.Subscores{
		Code:       scoring.Float(80),
		Deps:       scoring.Float(60),
		Governance: scoring.Float(50),
		Economic:   scoring.Float(40),
	})

	want := 0.40*80 + 0.25*60 + 0.20*50 + 0.15*40
	if math.Abs(composite-want) > 1e-9 {
		t.Errorf("composite = %f, want %f", composite, want)
	}
	if bd.Manual {
		t.Error("scheduled aggregate must not be marked manual")
	}
	if len(bd.Dimensions) != 4 {
		t.Fatalf("breakdown has %d dimensions, want 4", len(bd.Dimensions))
	}
}

func TestAggregate_WeightRedistribution(t *testing.T) {
	// Spec scenario: code 80, deps 60, governance and economic
	// inapplicable. Effective weights become 40/65 and 25/65 and the
	// composite lands near 72.3.
	a := testAggregator()

	composite, bd := a.Aggregate(scoring.Subscores{
		Code: scoring.Float(80),
		Deps: scoring.Float(60),
	})

	wantCode := 0.40 / 0.65
	wantDeps := 0.25 / 0.65
	want := wantCode*80 + wantDeps*60
	if math.Abs(composite-want) > 1e-9 {
		t.Errorf("composite = %f, want %f", composite, want)
	}
	if math.Abs(composite-72.3) > 0.05 {
		t.Errorf("composite = %f, want ~72.3", composite)
	}

	for _, d := range bd.Dimensions {
		switch d.Key {
		case "code_activity":
			if math.Abs(d.EffectiveWeight-wantCode) > 1e-9 {
				t.Errorf("code effective weight = %f, want %f", d.EffectiveWeight, wantCode)
			}
		case "governance", "economic":
			if d.Subscore != nil || d.EffectiveWeight != 0 {
				t.Errorf("inapplicable dimension %s should carry no weight", d.Key)
			}
		}
	}
}

func TestAggregate_EffectiveWeightsSumToOne(t *testing.T) {
	// Holds for every non-empty subset of applicable dimensions.
	a := testAggregator()
	vals := []*float64{scoring.Float(50), nil}

	for mask := 1; mask < 16; mask++ {
		sub := scoring.Subscores{
			Code:       vals[(mask>>0)&1],
			Deps:       vals[(mask>>1)&1],
			Governance: vals[(mask>>2)&1],
			Economic:   vals[(mask>>3)&1],
		}
		if sub.Code == nil && sub.Deps == nil && sub.Governance == nil && sub.Economic == nil {
			continue
		}

		_, bd := a.Aggregate(sub)
		var sum float64
		for _, d := range bd.Dimensions {
			sum += d.EffectiveWeight
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("mask %04b: effective weights sum to %f, want 1.0", mask, sum)
		}
	}
}

func TestAggregate_ZeroProofFloor(t *testing.T) {
	a := testAggregator()

	// Minimal evidence in one dimension lifts the composite to the floor.
	composite, bd := a.Aggregate(scoring.Subscores{Code: scoring.Float(3)})
	if composite != 20 {
		t.Errorf("composite = %f, want zero-proof floor 20", composite)
	}
	if !bd.FloorApplied {
		t.Error("breakdown should flag the applied floor")
	}

	// No applicable dimensions at all: no evidence, no floor.
	composite, bd = a.Aggregate(scoring.Subscores{})
	if composite != 0 {
		t.Errorf("composite with no dimensions = %f, want 0", composite)
	}
	if bd.FloorApplied {
		t.Error("floor must not apply without any evidence")
	}
}

func TestAggregate_FloorDoesNotLowerRealScores(t *testing.T) {
	a := testAggregator()

	composite, bd := a.Aggregate(scoring.Subscores{Code: scoring.Float(90)})
	if composite != 90 {
		t.Errorf("composite = %f, want 90", composite)
	}
	if bd.FloorApplied {
		t.Error("floor flag set on a score above the floor")
	}
}
