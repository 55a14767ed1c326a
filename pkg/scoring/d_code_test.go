package scoring_test

import (
	"testing"
	"time"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

func testCodeScorer() scoring.CodeScorer {
	return scoring.CodeScorer{
		Normalizer: testNormalizer(),
		DecayRate:  testRate,
		DecayFloor: testFloor,
	}
}

func TestCodeScorer_NilBundle(t *testing.T) {
	s := testCodeScorer()
	if got := s.Score(nil, time.Now()); got != nil {
		t.Errorf("Score(nil) = %v, want nil", *got)
	}
}

func TestCodeScorer_DecayDampensHistoricalVolume(t *testing.T) {
	s := testCodeScorer()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	days := []scoring.ActivityDay{
		day(1, map[scoring.EventType]int{scoring.EventPush: 25, scoring.EventRelease: 2}),
		day(2, map[scoring.EventType]int{scoring.EventPush: 25}),
	}

	fresh := s.Score(&scoring.CodeMetrics{
		Days:                 days,
		DistinctContributors: 4,
		LastPush:             now.AddDate(0, 0, -1),
	}, now)
	stale := s.Score(&scoring.CodeMetrics{
		Days:                 days,
		DistinctContributors: 4,
		LastPush:             now.AddDate(0, 0, -120),
	}, now)

	if *stale >= *fresh {
		t.Errorf("stale project %f should score below fresh project %f with identical volume", *stale, *fresh)
	}
	if *stale >= 0.2**fresh {
		t.Errorf("120 idle days should cut the score below 20%% of fresh: %f vs %f", *stale, *fresh)
	}
}

func TestCodeScorer_NeverPushedGetsFloorMultiplier(t *testing.T) {
	s := testCodeScorer()
	now := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	got := s.Score(&scoring.CodeMetrics{
		Days:                 []scoring.ActivityDay{day(1, map[scoring.EventType]int{scoring.EventIssue: 3})},
		DistinctContributors: 1,
	}, now)

	if *got < 0 || *got > 100 {
		t.Fatalf("score out of range: %f", *got)
	}
	// Floor multiplier, not an error, and not zero.
	if *got == 0 {
		t.Error("never-pushed project with some events should keep a small residual score")
	}
}
