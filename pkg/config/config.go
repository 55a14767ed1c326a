// Package config handles loading the Pulsecheck scoring policy.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

// Config is the scoring policy document shared by the CLI and the daemon.
type Config struct {
	Scoring  ScoringConfig  `yaml:"scoring"`
	Cadences CadenceConfig  `yaml:"cadences"`
	Liveness LivenessConfig `yaml:"liveness"`
}

// ScoringConfig overrides individual policy constants. Zero values mean
// "use the default"; the engine's guarantees do not depend on the exact
// numbers.
type ScoringConfig struct {
	DecayRatePerDay float64            `yaml:"decay_rate_per_day"`
	DecayFloor      float64            `yaml:"decay_floor"`
	EventWeights    map[string]float64 `yaml:"event_weights"`
	DailyEventCap   int                `yaml:"daily_event_cap"`
	ForkPenalty     float64            `yaml:"fork_penalty"`
	MinContributors int                `yaml:"min_contributors"`
	ReducedCeiling  float64            `yaml:"reduced_ceiling"`
	SaturationScale float64            `yaml:"saturation_scale"`

	WeightCode       float64 `yaml:"weight_code"`
	WeightDeps       float64 `yaml:"weight_deps"`
	WeightGovernance float64 `yaml:"weight_governance"`
	WeightEconomic   float64 `yaml:"weight_economic"`
	ZeroProofFloor   float64 `yaml:"zero_proof_floor"`
}

// CadenceConfig sets per-dimension refresh intervals for the recompute
// orchestrator, in minutes. Not every cycle re-fetches every dimension.
type CadenceConfig struct {
	Code       int `yaml:"code"`
	Deps       int `yaml:"deps"`
	Governance int `yaml:"governance"`
	Economic   int `yaml:"economic"`
}

// CodeInterval returns the code-activity refresh cadence.
func (c CadenceConfig) CodeInterval() time.Duration { return time.Duration(c.Code) * time.Minute }

// DepsInterval returns the dependency-health refresh cadence.
func (c CadenceConfig) DepsInterval() time.Duration { return time.Duration(c.Deps) * time.Minute }

// GovernanceInterval returns the governance refresh cadence.
func (c CadenceConfig) GovernanceInterval() time.Duration {
	return time.Duration(c.Governance) * time.Minute
}

// EconomicInterval returns the TVL refresh cadence.
func (c CadenceConfig) EconomicInterval() time.Duration {
	return time.Duration(c.Economic) * time.Minute
}

// LivenessConfig sets the classification thresholds.
type LivenessConfig struct {
	ActiveScoreMin    float64 `yaml:"active_score_min"`
	StaleScoreMin     float64 `yaml:"stale_score_min"`
	ActiveMaxIdleDays float64 `yaml:"active_max_idle_days"`
	StaleMaxIdleDays  float64 `yaml:"stale_max_idle_days"`
}

// DefaultConfig returns a Config mirroring scoring.DefaultPolicy.
func DefaultConfig() *Config {
	return &Config{
		Cadences: CadenceConfig{
			Code:       6 * 60,
			Deps:       24 * 60,
			Governance: 12 * 60,
			Economic:   60,
		},
	}
}

// Load reads a policy file from the given path. If the file does not
// exist, it returns the default config.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing policy file: %w", err)
	}

	return cfg, nil
}

// Policy merges the file's overrides onto the default scoring policy.
func (c *Config) Policy() scoring.Policy {
	p := scoring.DefaultPolicy()
	s := c.Scoring

	if s.DecayRatePerDay > 0 {
		p.DecayRatePerDay = s.DecayRatePerDay
	}
	if s.DecayFloor > 0 {
		p.DecayFloor = s.DecayFloor
	}
	if len(s.EventWeights) > 0 {
		w := make(map[scoring.EventType]float64, len(s.EventWeights))
		for k, v := range s.EventWeights {
			w[scoring.EventType(k)] = v
		}
		p.EventWeights = w
	}
	if s.DailyEventCap > 0 {
		p.DailyEventCap = s.DailyEventCap
	}
	if s.ForkPenalty > 0 {
		p.ForkPenalty = s.ForkPenalty
	}
	if s.MinContributors > 0 {
		p.MinContributors = s.MinContributors
	}
	if s.ReducedCeiling > 0 {
		p.ReducedCeiling = s.ReducedCeiling
	}
	if s.SaturationScale > 0 {
		p.SaturationScale = s.SaturationScale
	}
	if s.WeightCode > 0 && s.WeightDeps > 0 && s.WeightGovernance > 0 && s.WeightEconomic > 0 {
		p.WeightCode = s.WeightCode
		p.WeightDeps = s.WeightDeps
		p.WeightGovernance = s.WeightGovernance
		p.WeightEconomic = s.WeightEconomic
	}
	if s.ZeroProofFloor > 0 {
		p.ZeroProofFloor = s.ZeroProofFloor
	}

	l := c.Liveness
	if l.ActiveScoreMin > 0 {
		p.ActiveScoreMin = l.ActiveScoreMin
	}
	if l.StaleScoreMin > 0 {
		p.StaleScoreMin = l.StaleScoreMin
	}
	if l.ActiveMaxIdleDays > 0 {
		p.ActiveMaxIdleDays = l.ActiveMaxIdleDays
	}
	if l.StaleMaxIdleDays > 0 {
		p.StaleMaxIdleDays = l.StaleMaxIdleDays
	}

	return p
}
