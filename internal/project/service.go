// Package project manages the scored-project registry: registration,
// lookup, and the single authoritative write path for a project's mutable
// scoring fields.
package project

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pulsecheck/pulsecheck/internal/history"
	"github.com/pulsecheck/pulsecheck/pkg/scoring"
)

var (
	// ErrNotFound is returned when a project id matches no row.
	ErrNotFound = errors.New("project not found")
	// ErrConflict is returned when an optimistic-concurrency check fails;
	// the caller must abort its cycle rather than overwrite.
	ErrConflict = errors.New("project modified concurrently")
)

// Project is the scored entity. Nil source identifiers mean the matching
// dimension is inapplicable for this project.
type Project struct {
	ID       string
	Name     string
	Category string

	RepoFullName   *string
	RegistryName   *string
	GovernanceAddr *string
	TVLSlug        *string

	CompositeScore float64
	Liveness       scoring.Liveness
	ManualOverride bool
	LastScoredAt   *time.Time
	LastActivityAt *time.Time

	CodeScore *float64
	DepsScore *float64
	GovScore  *float64
	EconScore *float64
	Breakdown json.RawMessage

	CodeFetchedAt *time.Time
	DepsFetchedAt *time.Time
	GovFetchedAt  *time.Time
	EconFetchedAt *time.Time

	Version   int64
	CreatedAt time.Time
}

// Subscores assembles the cached dimension subscores.
func (p *Project) Subscores() scoring.Subscores {
	return scoring.Subscores{
		Code:       p.CodeScore,
		Deps:       p.DepsScore,
		Governance: p.GovScore,
		Economic:   p.EconScore,
	}
}

// Service provides project management backed by Postgres.
type Service struct {
	db        *sql.DB
	snapshots *history.Store
}

// NewService creates a project Service writing ledger entries through the
// given history store.
func NewService(db *sql.DB, snapshots *history.Store) *Service {
	return &Service{db: db, snapshots: snapshots}
}

const projectColumns = `id, name, category,
	repo_full_name, registry_name, governance_addr, tvl_slug,
	composite_score, liveness, manual_override, last_scored_at, last_activity_at,
	code_score, deps_score, gov_score, econ_score, breakdown,
	code_fetched_at, deps_fetched_at, gov_fetched_at, econ_fetched_at,
	version, created_at`

func scanProject(row interface {
	Scan(dest ...any) error
}) (*Project, error) {
	p := &Project{}
	var liveness string
	err := row.Scan(
		&p.ID, &p.Name, &p.Category,
		&p.RepoFullName, &p.RegistryName, &p.GovernanceAddr, &p.TVLSlug,
		&p.CompositeScore, &liveness, &p.ManualOverride, &p.LastScoredAt, &p.LastActivityAt,
		&p.CodeScore, &p.DepsScore, &p.GovScore, &p.EconScore, &p.Breakdown,
		&p.CodeFetchedAt, &p.DepsFetchedAt, &p.GovFetchedAt, &p.EconFetchedAt,
		&p.Version, &p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Liveness = scoring.Liveness(liveness)
	return p, nil
}

// NewProject describes a registration request.
type NewProject struct {
	Name           string
	Category       string
	RepoFullName   *string
	RegistryName   *string
	GovernanceAddr *string
	TVLSlug        *string
}

// Create registers a project.
func (s *Service) Create(ctx context.Context, np NewProject) (*Project, error) {
	if np.Category == "" {
		np.Category = "library"
	}
	row := s.db.QueryRowContext(ctx,
		`INSERT INTO projects (name, category, repo_full_name, registry_name, governance_addr, tvl_slug)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+projectColumns,
		np.Name, np.Category, np.RepoFullName, np.RegistryName, np.GovernanceAddr, np.TVLSlug,
	)
	p, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("create project %s: %w", np.Name, err)
	}
	return p, nil
}

// Get retrieves a project by id.
func (s *Service) Get(ctx context.Context, id string) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get project %s: %w", id, err)
	}
	return p, nil
}

// List returns all projects ordered by name.
func (s *Service) List(ctx context.Context) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ListDue returns projects whose last scoring is older than maxAge (or
// that have never been scored), oldest first, capped at limit.
func (s *Service) ListDue(ctx context.Context, maxAge time.Duration, limit int) ([]Project, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+projectColumns+` FROM projects
		 WHERE last_scored_at IS NULL OR last_scored_at < now() - $1::interval
		 ORDER BY last_scored_at ASC NULLS FIRST
		 LIMIT $2`,
		fmt.Sprintf("%f seconds", maxAge.Seconds()), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list due projects: %w", err)
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan due project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

// ScoreUpdate is one authoritative write of a project's scoring fields
// plus its matching ledger entry. ExpectedVersion implements optimistic
// concurrency: if the row moved on since it was read, the write fails
// with ErrConflict and nothing is persisted.
type ScoreUpdate struct {
	ProjectID       string
	ExpectedVersion int64

	Composite      float64
	Liveness       scoring.Liveness
	Subscores      scoring.Subscores
	Breakdown      scoring.Breakdown
	ManualOverride bool
	ScoredAt       time.Time
	LastActivityAt time.Time // zero = no activity ever observed

	// Dimensions actually collected this cycle; their fetched-at marks
	// advance so the cadence planner skips them next time.
	CodeFetched bool
	DepsFetched bool
	GovFetched  bool
	EconFetched bool

	Source     string // history.SourceScheduled or history.SourceManual
	Operator   *string
	Note       *string
	StorageRef *string
	SnapshotID string // assigned by ApplyScore when empty
}

// ApplyScore commits a score update and its snapshot in one transaction,
// so a crash can never leave a ledger entry without the matching project
// state or vice versa.
func (s *Service) ApplyScore(ctx context.Context, upd ScoreUpdate) (*history.Snapshot, error) {
	if upd.SnapshotID == "" {
		upd.SnapshotID = uuid.NewString()
	}

	breakdownJSON, err := json.Marshal(upd.Breakdown)
	if err != nil {
		return nil, fmt.Errorf("marshal breakdown: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin score update: %w", err)
	}
	defer tx.Rollback()

	var lastActivity *time.Time
	if !upd.LastActivityAt.IsZero() {
		lastActivity = &upd.LastActivityAt
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE projects SET
		   composite_score = $1,
		   liveness = $2,
		   manual_override = $3,
		   last_scored_at = $4,
		   last_activity_at = COALESCE($5, last_activity_at),
		   code_score = $6, deps_score = $7, gov_score = $8, econ_score = $9,
		   breakdown = $10,
		   code_fetched_at = CASE WHEN $11 THEN $4 ELSE code_fetched_at END,
		   deps_fetched_at = CASE WHEN $12 THEN $4 ELSE deps_fetched_at END,
		   gov_fetched_at  = CASE WHEN $13 THEN $4 ELSE gov_fetched_at END,
		   econ_fetched_at = CASE WHEN $14 THEN $4 ELSE econ_fetched_at END,
		   version = version + 1
		 WHERE id = $15 AND version = $16`,
		upd.Composite, string(upd.Liveness), upd.ManualOverride, upd.ScoredAt, lastActivity,
		upd.Subscores.Code, upd.Subscores.Deps, upd.Subscores.Governance, upd.Subscores.Economic,
		breakdownJSON,
		upd.CodeFetched, upd.DepsFetched, upd.GovFetched, upd.EconFetched,
		upd.ProjectID, upd.ExpectedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("update project score %s: %w", upd.ProjectID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("score update rows affected: %w", err)
	}
	if n == 0 {
		return nil, ErrConflict
	}

	snap := history.Snapshot{
		ID:             upd.SnapshotID,
		ProjectID:      upd.ProjectID,
		SnapshotAt:     upd.ScoredAt,
		CompositeScore: upd.Composite,
		CodeScore:      upd.Subscores.Code,
		DepsScore:      upd.Subscores.Deps,
		GovScore:       upd.Subscores.Governance,
		EconScore:      upd.Subscores.Economic,
		Source:         upd.Source,
		Operator:       upd.Operator,
		Note:           upd.Note,
		StorageRef:     upd.StorageRef,
	}
	if err := s.snapshots.AppendTx(ctx, tx, snap); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit score update: %w", err)
	}
	return &snap, nil
}
