package recompute

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/pulsecheck/pulsecheck/internal/collect"
	"github.com/pulsecheck/pulsecheck/internal/history"
	"github.com/pulsecheck/pulsecheck/internal/project"
	"github.com/pulsecheck/pulsecheck/pkg/config"
	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

type fakeStore struct {
	mu       sync.Mutex
	due      []project.Project
	applied  []project.ScoreUpdate
	applyErr error
}

func (s *fakeStore) Get(ctx context.Context, id string) (*project.Project, error) {
	for i := range s.due {
		if s.due[i].ID == id {
			return &s.due[i], nil
		}
	}
	return nil, project.ErrNotFound
}

func (s *fakeStore) ListDue(ctx context.Context, maxAge time.Duration, limit int) ([]project.Project, error) {
	return s.due, nil
}

func (s *fakeStore) ApplyScore(ctx context.Context, upd project.ScoreUpdate) (*history.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return nil, s.applyErr
	}
	s.applied = append(s.applied, upd)
	return &history.Snapshot{ID: upd.SnapshotID, ProjectID: upd.ProjectID}, nil
}

type fakeLocker struct {
	mu       sync.Mutex
	refuse   bool
	acquired []string
	released []string
}

func (l *fakeLocker) Acquire(ctx context.Context, projectID, holder string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.refuse {
		return false, nil
	}
	l.acquired = append(l.acquired, projectID)
	return true, nil
}

func (l *fakeLocker) Release(ctx context.Context, projectID, holder string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.released = append(l.released, projectID)
	return nil
}

type fakeCode struct {
	mu    sync.Mutex
	calls int
	m     *scoring.CodeMetrics
	errs  []error // consumed per call; nil entry means success
}

func (c *fakeCode) Collect(ctx context.Context, repo string) (*scoring.CodeMetrics, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if len(c.errs) > 0 {
		err := c.errs[0]
		c.errs = c.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return c.m, nil
}

type fakeDeps struct {
	m   *scoring.DependencyMetrics
	err error
}

func (c *fakeDeps) Collect(ctx context.Context, name string) (*scoring.DependencyMetrics, error) {
	return c.m, c.err
}

type fakeGov struct {
	m   *scoring.GovernanceMetrics
	err error
}

func (c *fakeGov) Collect(ctx context.Context, addr string) (*scoring.GovernanceMetrics, error) {
	return c.m, c.err
}

type fakeEcon struct {
	m   *scoring.EconomicMetrics
	err error
}

func (c *fakeEcon) Collect(ctx context.Context, slug string) (*scoring.EconomicMetrics, error) {
	return c.m, c.err
}

func strptr(s string) *string { return &s }

func testCadences() config.CadenceConfig {
	return config.CadenceConfig{Code: 6 * 60, Deps: 24 * 60, Governance: 12 * 60, Economic: 60}
}

func activeCode() *scoring.CodeMetrics {
	return &scoring.CodeMetrics{
		Days: []scoring.ActivityDay{
			{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Counts: map[scoring.EventType]int{scoring.EventPush: 10, scoring.EventPullRequest: 3}},
		},
		DistinctContributors: 5,
		LastPush:             time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func testOrchestrator(store *fakeStore, locker *fakeLocker) *Orchestrator {
	return New(Orchestrator{
		Store:       store,
		Locker:      locker,
		Code:        &fakeCode{m: activeCode()},
		Deps:        &fakeDeps{m: &scoring.DependencyMetrics{Outdated: 2}},
		Governance:  &fakeGov{m: &scoring.GovernanceMetrics{RecentTxCount: 6, LastAction: time.Date(2026, 2, 25, 0, 0, 0, 0, time.UTC), SignerCount: 4, ApprovalThreshold: 2}},
		Economic:    &fakeEcon{m: &scoring.EconomicMetrics{TVLUSD: 12_000_000}},
		Engine:      scoring.NewEngine(scoring.DefaultPolicy()),
		Cadences:    testCadences(),
		Retry:       collect.RetryPolicy{Attempts: 2, Backoff: time.Millisecond},
		Logger:      log.New(io.Discard, "", 0),
		Now:         func() time.Time { return time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) },
		Concurrency: 2,
	})
}

func fullProject() project.Project {
	return project.Project{
		ID:             "p1",
		Name:           "widgets",
		RepoFullName:   strptr("acme/widgets"),
		RegistryName:   strptr("widgets"),
		GovernanceAddr: strptr("0xabc"),
		TVLSlug:        strptr("acme-fi"),
		Version:        3,
	}
}

func TestRecomputeScoresAllDimensions(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})

	if err := o.Recompute(context.Background(), fullProject()); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if len(store.applied) != 1 {
		t.Fatalf("applied = %d updates, want 1", len(store.applied))
	}
	upd := store.applied[0]
	if !upd.CodeFetched || !upd.DepsFetched || !upd.GovFetched || !upd.EconFetched {
		t.Errorf("fetched flags = %v %v %v %v, want all true",
			upd.CodeFetched, upd.DepsFetched, upd.GovFetched, upd.EconFetched)
	}
	if upd.ExpectedVersion != 3 {
		t.Errorf("expected version = %d, want 3", upd.ExpectedVersion)
	}
	if upd.Source != history.SourceScheduled {
		t.Errorf("source = %q", upd.Source)
	}
	if upd.Composite <= 0 || upd.Composite > 100 {
		t.Errorf("composite = %f out of range", upd.Composite)
	}
	for name, s := range map[string]*float64{
		"code": upd.Subscores.Code, "deps": upd.Subscores.Deps,
		"governance": upd.Subscores.Governance, "economic": upd.Subscores.Economic,
	} {
		if s == nil {
			t.Errorf("%s subscore unexpectedly nil", name)
		}
	}
}

func TestRecomputeSkipsFreshDimensions(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})

	p := fullProject()
	recent := o.Now().Add(-time.Hour)
	p.CodeFetchedAt = &recent // inside the 6h code cadence
	p.CodeScore = scoring.Float(55)

	if err := o.Recompute(context.Background(), p); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	upd := store.applied[0]
	if upd.CodeFetched {
		t.Error("code was refetched inside its cadence")
	}
	if upd.Subscores.Code == nil || *upd.Subscores.Code != 55 {
		t.Errorf("code subscore = %v, want cached 55", upd.Subscores.Code)
	}
	if !upd.EconFetched {
		t.Error("economic cadence (1h) should have elapsed")
	}
}

func TestRecomputeSkipsInapplicableDimensions(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})

	p := fullProject()
	p.GovernanceAddr = nil
	p.TVLSlug = nil

	if err := o.Recompute(context.Background(), p); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	upd := store.applied[0]
	if upd.GovFetched || upd.EconFetched {
		t.Error("collected dimensions with no source identifier")
	}
	if upd.Subscores.Governance != nil || upd.Subscores.Economic != nil {
		t.Errorf("inapplicable subscores = %v %v, want nil", upd.Subscores.Governance, upd.Subscores.Economic)
	}
}

func TestRecomputeDegradesToCachedOnFailure(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})
	o.Deps = &fakeDeps{err: collect.Transient("deps", errors.New("upstream 503"))}

	p := fullProject()
	p.DepsScore = scoring.Float(80)

	if err := o.Recompute(context.Background(), p); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	upd := store.applied[0]
	if upd.DepsFetched {
		t.Error("failed dimension marked fetched")
	}
	if upd.Subscores.Deps == nil || *upd.Subscores.Deps != 80 {
		t.Errorf("deps subscore = %v, want cached 80", upd.Subscores.Deps)
	}
}

func TestRecomputePermanentFailureClearsSubscore(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})
	o.Economic = &fakeEcon{err: collect.Permanent("economic", errors.New("unknown protocol"))}

	p := fullProject()
	p.EconScore = scoring.Float(85)

	if err := o.Recompute(context.Background(), p); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	upd := store.applied[0]
	if upd.Subscores.Economic != nil {
		t.Errorf("economic subscore = %v, want nil after source reports inapplicable", *upd.Subscores.Economic)
	}
	// The fetched-at mark advances so the dead dimension is not re-probed
	// every cycle.
	if !upd.EconFetched {
		t.Error("economic fetched-at should advance for a permanent failure")
	}
	// The dead dimension's weight redistributes to the live ones.
	for _, d := range upd.Breakdown.Dimensions {
		if d.Key == "economic" && d.EffectiveWeight != 0 {
			t.Errorf("economic effective weight = %f, want 0", d.EffectiveWeight)
		}
	}
}

func TestRecomputeRetriesTransientThenSucceeds(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})
	code := &fakeCode{
		m:    activeCode(),
		errs: []error{collect.Transient("code", errors.New("rate limited")), nil},
	}
	o.Code = code

	if err := o.Recompute(context.Background(), fullProject()); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if code.calls != 2 {
		t.Errorf("collector calls = %d, want 2", code.calls)
	}
	if !store.applied[0].CodeFetched {
		t.Error("code should be marked fetched after retry succeeds")
	}
}

func TestRecomputeConflictAbortsCleanly(t *testing.T) {
	store := &fakeStore{applyErr: project.ErrConflict}
	o := testOrchestrator(store, &fakeLocker{})

	if err := o.Recompute(context.Background(), fullProject()); err != nil {
		t.Fatalf("conflict should abort without error, got %v", err)
	}
	if len(store.applied) != 0 {
		t.Errorf("applied = %d updates, want 0", len(store.applied))
	}
}

func TestRecomputeClearsManualOverride(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})

	p := fullProject()
	p.ManualOverride = true

	if err := o.Recompute(context.Background(), p); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if store.applied[0].ManualOverride {
		t.Error("scheduled recompute should supersede a manual override")
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	store := &fakeStore{}
	o := testOrchestrator(store, &fakeLocker{})

	p := fullProject()
	if err := o.Recompute(context.Background(), p); err != nil {
		t.Fatalf("first recompute: %v", err)
	}
	if err := o.Recompute(context.Background(), p); err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	a, b := store.applied[0], store.applied[1]
	if a.Composite != b.Composite || a.Liveness != b.Liveness {
		t.Errorf("repeat run diverged: %f/%s vs %f/%s", a.Composite, a.Liveness, b.Composite, b.Liveness)
	}
}

func TestRunCycleRespectsLeases(t *testing.T) {
	store := &fakeStore{due: []project.Project{fullProject()}}
	locker := &fakeLocker{refuse: true}
	o := testOrchestrator(store, locker)

	if err := o.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(store.applied) != 0 {
		t.Errorf("scored %d projects despite held lease", len(store.applied))
	}
}

func TestRunProject(t *testing.T) {
	store := &fakeStore{due: []project.Project{fullProject()}}
	locker := &fakeLocker{}
	o := testOrchestrator(store, locker)

	if err := o.RunProject(context.Background(), "p1"); err != nil {
		t.Fatalf("RunProject: %v", err)
	}
	if len(store.applied) != 1 {
		t.Fatalf("applied = %d updates, want 1", len(store.applied))
	}
	if err := o.RunProject(context.Background(), "ghost"); err == nil {
		t.Error("expected error for unknown project")
	}
}

func TestRunCycleScoresAndReleases(t *testing.T) {
	p2 := fullProject()
	p2.ID = "p2"
	store := &fakeStore{due: []project.Project{fullProject(), p2}}
	locker := &fakeLocker{}
	o := testOrchestrator(store, locker)

	if err := o.RunCycle(context.Background()); err != nil {
		t.Fatalf("RunCycle: %v", err)
	}
	if len(store.applied) != 2 {
		t.Errorf("applied = %d updates, want 2", len(store.applied))
	}
	if len(locker.released) != len(locker.acquired) {
		t.Errorf("acquired %d leases, released %d", len(locker.acquired), len(locker.released))
	}
}
