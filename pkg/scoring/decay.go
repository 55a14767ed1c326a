package scoring

import (
	"math"
	"time"
)

// Decay returns the inactivity multiplier in (0, 1] for a project whose
// last observed activity was at lastActivity, evaluated at now. It uses
// continuous exponential decay, exp(-k * days), so the multiplier is
// monotonically non-increasing in elapsed time.
//
// A zero lastActivity means activity was never observed; that is not an
// error, it maps to the fully-decayed floor. Future timestamps (clock skew
// between collectors and the engine) count as zero elapsed days.
func Decay(lastActivity, now time.Time, ratePerDay, floor float64) float64 {
	if lastActivity.IsZero() {
		return floor
	}

	days := now.Sub(lastActivity).Hours() / 24
	if days < 0 {
		days = 0
	}

	m := math.Exp(-ratePerDay * days)
	if m < floor {
		return floor
	}
	return m
}
