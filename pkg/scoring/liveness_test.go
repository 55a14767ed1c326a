package scoring_test

import (
	"testing"
	"time"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

func testClassifier() scoring.Classifier {
	return scoring.Classifier{
		ActiveScoreMin:    70,
		StaleScoreMin:     40,
		ActiveMaxIdleDays: 14,
		StaleMaxIdleDays:  90,
	}
}

func TestClassify(t *testing.T) {
	c := testClassifier()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		score    float64
		idleDays int
		want     scoring.Liveness
	}{
		{"high score, recent", 85, 2, scoring.LivenessActive},
		{"boundary score, recent", 70, 14, scoring.LivenessActive},
		{"high score, aging activity", 85, 30, scoring.LivenessStale},
		{"mid score, recent", 55, 2, scoring.LivenessStale},
		{"mid score boundary", 40, 60, scoring.LivenessStale},
		{"low score regardless of recency", 30, 0, scoring.LivenessDecaying},
		{"high score, very stale", 90, 180, scoring.LivenessDecaying},
		{"just under stale threshold", 39.9, 1, scoring.LivenessDecaying},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			last := now.AddDate(0, 0, -tt.idleDays)
			if got := c.Classify(tt.score, last, now); got != tt.want {
				t.Errorf("Classify(%f, %dd idle) = %s, want %s", tt.score, tt.idleDays, got, tt.want)
			}
		})
	}
}

func TestClassify_NeverActiveIsDecaying(t *testing.T) {
	c := testClassifier()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	if got := c.Classify(95, time.Time{}, now); got != scoring.LivenessDecaying {
		t.Errorf("never-active project = %s, want DECAYING regardless of score", got)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	c := testClassifier()
	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	last := now.AddDate(0, 0, -20)

	first := c.Classify(72, last, now)
	for i := 0; i < 10; i++ {
		if got := c.Classify(72, last, now); got != first {
			t.Fatalf("classification not deterministic: %s then %s", first, got)
		}
	}
}
