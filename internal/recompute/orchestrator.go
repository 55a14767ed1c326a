// Package recompute runs the periodic scoring loop: it leases due
// projects, refreshes whichever dimensions have reached their cadence,
// evaluates the scoring engine, and commits the result with its ledger
// entry. Collection trouble degrades a dimension to its cached subscore;
// it never blocks the cycle.
package recompute

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pulsecheck/pulsecheck/internal/collect"
	"github.com/pulsecheck/pulsecheck/internal/history"
	"github.com/pulsecheck/pulsecheck/internal/project"
	"github.com/pulsecheck/pulsecheck/pkg/config"
	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

// Store is the slice of the project service the orchestrator needs.
type Store interface {
	Get(ctx context.Context, id string) (*project.Project, error)
	ListDue(ctx context.Context, maxAge time.Duration, limit int) ([]project.Project, error)
	ApplyScore(ctx context.Context, upd project.ScoreUpdate) (*history.Snapshot, error)
}

// Locker serializes scoring per project across daemon replicas.
type Locker interface {
	Acquire(ctx context.Context, projectID, holder string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, projectID, holder string) error
}

// CodeCollector fetches code-activity metrics for a repository.
type CodeCollector interface {
	Collect(ctx context.Context, repoFullName string) (*scoring.CodeMetrics, error)
}

// DepsCollector fetches dependency-health metrics for a package.
type DepsCollector interface {
	Collect(ctx context.Context, registryName string) (*scoring.DependencyMetrics, error)
}

// GovernanceCollector fetches multisig activity for an address.
type GovernanceCollector interface {
	Collect(ctx context.Context, addr string) (*scoring.GovernanceMetrics, error)
}

// EconomicCollector fetches locked value for a protocol slug.
type EconomicCollector interface {
	Collect(ctx context.Context, slug string) (*scoring.EconomicMetrics, error)
}

// Orchestrator drives recompute cycles.
type Orchestrator struct {
	Store  Store
	Locker Locker

	Code       CodeCollector
	Deps       DepsCollector
	Governance GovernanceCollector
	Economic   EconomicCollector

	Engine   *scoring.Engine
	Cadences config.CadenceConfig
	Archive  history.ArchiveClient
	Metrics  *Metrics

	Retry       collect.RetryPolicy
	CallTimeout time.Duration
	LeaseTTL    time.Duration
	BatchSize   int
	Concurrency int

	Holder string
	Logger *log.Logger
	Now    func() time.Time
}

// New applies defaults for the knobs callers usually leave unset.
func New(o Orchestrator) *Orchestrator {
	if o.Retry.Attempts == 0 {
		o.Retry = collect.DefaultRetryPolicy()
	}
	if o.CallTimeout == 0 {
		o.CallTimeout = 30 * time.Second
	}
	if o.LeaseTTL == 0 {
		o.LeaseTTL = 5 * time.Minute
	}
	if o.BatchSize == 0 {
		o.BatchSize = 100
	}
	if o.Concurrency == 0 {
		o.Concurrency = 4
	}
	if o.Holder == "" {
		o.Holder = uuid.NewString()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return &o
}

// minCadence is the shortest configured refresh interval; a project is
// "due" once any dimension could need refreshing.
func (o *Orchestrator) minCadence() time.Duration {
	min := o.Cadences.CodeInterval()
	for _, d := range []time.Duration{
		o.Cadences.DepsInterval(),
		o.Cadences.GovernanceInterval(),
		o.Cadences.EconomicInterval(),
	} {
		if d < min {
			min = d
		}
	}
	return min
}

// RunCycle scores every due project once. Individual project failures
// are logged and counted, never fatal to the cycle.
func (o *Orchestrator) RunCycle(ctx context.Context) error {
	start := o.Now()

	projects, err := o.Store.ListDue(ctx, o.minCadence(), o.BatchSize)
	if err != nil {
		return err
	}

	work := make(chan project.Project)
	var wg sync.WaitGroup
	for i := 0; i < o.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range work {
				o.scoreOne(ctx, p)
			}
		}()
	}
	for _, p := range projects {
		select {
		case work <- p:
		case <-ctx.Done():
		}
	}
	close(work)
	wg.Wait()

	if o.Metrics != nil {
		o.Metrics.CyclesTotal.Inc()
		o.Metrics.CycleDuration.Observe(o.Now().Sub(start).Seconds())
	}
	return ctx.Err()
}

// RunProject scores a single project immediately, regardless of cadence
// due-ness of the project itself (individual dimensions still honor
// their refresh cadences).
func (o *Orchestrator) RunProject(ctx context.Context, projectID string) error {
	p, err := o.Store.Get(ctx, projectID)
	if err != nil {
		return err
	}
	o.scoreOne(ctx, *p)
	return nil
}

func (o *Orchestrator) scoreOne(ctx context.Context, p project.Project) {
	ok, err := o.Locker.Acquire(ctx, p.ID, o.Holder, o.LeaseTTL)
	if err != nil {
		o.Logger.Printf("recompute %s: acquire lease: %v", p.ID, err)
		return
	}
	if !ok {
		return
	}
	defer func() {
		if err := o.Locker.Release(context.WithoutCancel(ctx), p.ID, o.Holder); err != nil {
			o.Logger.Printf("recompute %s: release lease: %v", p.ID, err)
		}
	}()

	if err := o.Recompute(ctx, p); err != nil {
		o.Logger.Printf("recompute %s: %v", p.ID, err)
	}
}

func dimensionDue(fetchedAt *time.Time, interval time.Duration, now time.Time) bool {
	return fetchedAt == nil || now.Sub(*fetchedAt) >= interval
}

// Recompute refreshes due dimensions for one project and commits the
// resulting score. The caller must hold the project's lease.
//
// Collection failures split by kind: a transient failure leaves the
// cached subscore standing for this cycle; a permanent one means the
// source says the dimension no longer exists for this project (delisted
// protocol, deleted package), so the cached subscore is cleared and the
// dimension persists as null with its weight redistributed.
func (o *Orchestrator) Recompute(ctx context.Context, p project.Project) error {
	now := o.Now()

	var m scoring.Metrics
	cached := p.Subscores()
	var codeFetched, depsFetched, govFetched, econFetched bool

	if p.RepoFullName != nil && dimensionDue(p.CodeFetchedAt, o.Cadences.CodeInterval(), now) {
		cm, err := collect.Invoke(ctx, o.Retry, o.CallTimeout, func(ctx context.Context) (*scoring.CodeMetrics, error) {
			return o.Code.Collect(ctx, *p.RepoFullName)
		})
		switch {
		case err == nil:
			m.Code = cm
			codeFetched = true
		case collect.IsPermanent(err):
			o.retire(p.ID, "code", err)
			cached.Code = nil
			codeFetched = true
		default:
			o.degrade(p.ID, "code", err)
		}
	}
	if p.RegistryName != nil && dimensionDue(p.DepsFetchedAt, o.Cadences.DepsInterval(), now) {
		dm, err := collect.Invoke(ctx, o.Retry, o.CallTimeout, func(ctx context.Context) (*scoring.DependencyMetrics, error) {
			return o.Deps.Collect(ctx, *p.RegistryName)
		})
		switch {
		case err == nil:
			m.Deps = dm
			depsFetched = true
		case collect.IsPermanent(err):
			o.retire(p.ID, "deps", err)
			cached.Deps = nil
			depsFetched = true
		default:
			o.degrade(p.ID, "deps", err)
		}
	}
	if p.GovernanceAddr != nil && dimensionDue(p.GovFetchedAt, o.Cadences.GovernanceInterval(), now) {
		gm, err := collect.Invoke(ctx, o.Retry, o.CallTimeout, func(ctx context.Context) (*scoring.GovernanceMetrics, error) {
			return o.Governance.Collect(ctx, *p.GovernanceAddr)
		})
		switch {
		case err == nil:
			m.Governance = gm
			govFetched = true
		case collect.IsPermanent(err):
			o.retire(p.ID, "governance", err)
			cached.Governance = nil
			govFetched = true
		default:
			o.degrade(p.ID, "governance", err)
		}
	}
	if p.TVLSlug != nil && dimensionDue(p.EconFetchedAt, o.Cadences.EconomicInterval(), now) {
		em, err := collect.Invoke(ctx, o.Retry, o.CallTimeout, func(ctx context.Context) (*scoring.EconomicMetrics, error) {
			return o.Economic.Collect(ctx, *p.TVLSlug)
		})
		switch {
		case err == nil:
			m.Economic = em
			econFetched = true
		case collect.IsPermanent(err):
			o.retire(p.ID, "economic", err)
			cached.Economic = nil
			econFetched = true
		default:
			o.degrade(p.ID, "economic", err)
		}
	}

	var priorActivity time.Time
	if p.LastActivityAt != nil {
		priorActivity = *p.LastActivityAt
	}
	res := o.Engine.Evaluate(m, cached, priorActivity, now)

	snapshotID := uuid.NewString()
	var storageRef *string
	if o.Archive != nil {
		if data, err := json.Marshal(res.Breakdown); err == nil {
			if err := o.Archive.PutBreakdown(ctx, p.ID, snapshotID, data); err != nil {
				o.Logger.Printf("recompute %s: archive breakdown: %v", p.ID, err)
			} else {
				ref := history.StorageRef(p.ID, snapshotID)
				storageRef = &ref
			}
		}
	}

	_, err := o.Store.ApplyScore(ctx, project.ScoreUpdate{
		ProjectID:       p.ID,
		ExpectedVersion: p.Version,
		Composite:       res.Composite,
		Liveness:        res.Liveness,
		Subscores:       res.Subscores,
		Breakdown:       res.Breakdown,
		ManualOverride:  false,
		ScoredAt:        now,
		LastActivityAt:  res.LastActivity,
		CodeFetched:     codeFetched,
		DepsFetched:     depsFetched,
		GovFetched:      govFetched,
		EconFetched:     econFetched,
		Source:          history.SourceScheduled,
		SnapshotID:      snapshotID,
		StorageRef:      storageRef,
	})
	if errors.Is(err, project.ErrConflict) {
		// Another writer moved the project on; this cycle's read is stale.
		// Drop the work rather than overwrite, the next cycle rereads.
		if o.Metrics != nil {
			o.Metrics.Conflicts.Inc()
		}
		o.Logger.Printf("recompute %s: concurrent update, aborting cycle", p.ID)
		return nil
	}
	if err != nil {
		return err
	}
	if o.Metrics != nil {
		o.Metrics.ProjectsScored.Inc()
	}
	return nil
}

func (o *Orchestrator) degrade(projectID, dimension string, err error) {
	if o.Metrics != nil {
		o.Metrics.CollectorFailures.WithLabelValues(dimension, "transient").Inc()
		o.Metrics.DegradedCycles.WithLabelValues(dimension).Inc()
	}
	o.Logger.Printf("recompute %s: %s collector failed, using cached subscore: %v",
		projectID, dimension, err)
}

func (o *Orchestrator) retire(projectID, dimension string, err error) {
	if o.Metrics != nil {
		o.Metrics.CollectorFailures.WithLabelValues(dimension, "permanent").Inc()
	}
	o.Logger.Printf("recompute %s: source reports %s inapplicable, clearing subscore: %v",
		projectID, dimension, err)
}
