// Package recalibrate lets an operator pin a project's composite score
// to a hand-set value, recorded in the ledger like any other scoring.
package recalibrate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pulsecheck/pulsecheck/internal/history"
	"github.com/pulsecheck/pulsecheck/internal/project"
	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

// ErrNotFound is returned when the target project does not exist.
var ErrNotFound = project.ErrNotFound

// ErrMissingOperator rejects an override with no audit identity. Every
// manual ledger entry must name who made it.
var ErrMissingOperator = errors.New("operator is required")

// OutOfRangeError rejects a target score outside the scoring scale.
type OutOfRangeError struct {
	Score float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("score %g out of range [0, 100]", e.Score)
}

// Store is the slice of the project service recalibration needs.
type Store interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	ApplyScore(ctx context.Context, upd project.ScoreUpdate) (*history.Snapshot, error)
}

// Classifier reclassifies liveness for the overridden score.
type Classifier interface {
	Classify(score float64, lastActivity, now time.Time) scoring.Liveness
}

// Service applies manual score overrides.
type Service struct {
	store      Store
	classifier Classifier
	now        func() time.Time
}

// NewService creates a recalibration service.
func NewService(store Store, classifier Classifier) *Service {
	return &Service{store: store, classifier: classifier, now: time.Now}
}

// Result reports the before and after of an override.
type Result struct {
	Previous float64
	Score    float64
	Liveness scoring.Liveness
	Snapshot *history.Snapshot
}

// Recalibrate overrides a project's composite score. Cached dimension
// subscores are left untouched, so the next scheduled recompute starts
// from real evidence, not the override. Liveness is reclassified from
// the new score and the project's existing activity recency. Nothing is
// written when validation fails.
func (s *Service) Recalibrate(ctx context.Context, projectID string, score float64, operator, note string) (*Result, error) {
	if score < 0 || score > 100 {
		return nil, &OutOfRangeError{Score: score}
	}
	if operator == "" {
		return nil, ErrMissingOperator
	}

	p, err := s.store.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var lastActivity time.Time
	if p.LastActivityAt != nil {
		lastActivity = *p.LastActivityAt
	}
	liveness := s.classifier.Classify(score, lastActivity, now)

	var nt *string
	if note != "" {
		nt = &note
	}

	snap, err := s.store.ApplyScore(ctx, project.ScoreUpdate{
		ProjectID:       p.ID,
		ExpectedVersion: p.Version,
		Composite:       score,
		Liveness:        liveness,
		Subscores:       p.Subscores(),
		Breakdown: scoring.Breakdown{
			Manual:    true,
			Operator:  operator,
			Note:      note,
			Composite: score,
		},
		ManualOverride: true,
		ScoredAt:       now,
		Source:         history.SourceManual,
		Operator:       &operator,
		Note:           nt,
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Previous: p.CompositeScore,
		Score:    score,
		Liveness: liveness,
		Snapshot: snap,
	}, nil
}
