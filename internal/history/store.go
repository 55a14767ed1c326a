// Package history implements the append-only score snapshot ledger.
// Snapshots are immutable once written: the store exposes no update or
// delete operation, which is what makes trend charts and recalibration
// audits trustworthy.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Snapshot sources.
const (
	SourceScheduled = "scheduled"
	SourceManual    = "manual"
)

// Snapshot is one immutable composite-score record.
type Snapshot struct {
	ID             string
	ProjectID      string
	SnapshotAt     time.Time
	CompositeScore float64
	CodeScore      *float64
	DepsScore      *float64
	GovScore       *float64
	EconScore      *float64
	Source         string
	Operator       *string
	Note           *string
	StorageRef     *string
	CreatedAt      time.Time
}

// Store provides ledger access backed by Postgres.
type Store struct {
	db *sql.DB
}

// NewStore creates a history Store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// AppendTx inserts a snapshot inside the caller's transaction, so a
// project update and its ledger entry commit together.
func (s *Store) AppendTx(ctx context.Context, tx *sql.Tx, snap Snapshot) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO score_snapshots
		   (id, project_id, snapshot_at, composite_score,
		    code_score, deps_score, gov_score, econ_score,
		    source, operator, note, storage_ref)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		snap.ID, snap.ProjectID, snap.SnapshotAt, snap.CompositeScore,
		snap.CodeScore, snap.DepsScore, snap.GovScore, snap.EconScore,
		snap.Source, snap.Operator, snap.Note, snap.StorageRef,
	)
	if err != nil {
		return fmt.Errorf("append snapshot for project %s: %w", snap.ProjectID, err)
	}
	return nil
}

// Page is one page of ledger results. Cursor is empty when the page is
// the last one.
type Page struct {
	Snapshots []Snapshot
	Cursor    string
}

// List returns snapshots for a project ordered by time ascending, keyset
// paginated so long histories are never loaded whole. since narrows the
// window (zero = from the beginning); cursor resumes a previous page.
func (s *Store) List(ctx context.Context, projectID string, since time.Time, cursor string, limit int) (*Page, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	afterAt, afterID, err := decodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, snapshot_at, composite_score,
		        code_score, deps_score, gov_score, econ_score,
		        source, operator, note, storage_ref, created_at
		 FROM score_snapshots
		 WHERE project_id = $1
		   AND snapshot_at >= $2
		   AND (snapshot_at, id::text) > ($3, $4)
		 ORDER BY snapshot_at, id
		 LIMIT $5`,
		projectID, since, afterAt, afterID, limit+1,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots for project %s: %w", projectID, err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var sn Snapshot
		if err := rows.Scan(
			&sn.ID, &sn.ProjectID, &sn.SnapshotAt, &sn.CompositeScore,
			&sn.CodeScore, &sn.DepsScore, &sn.GovScore, &sn.EconScore,
			&sn.Source, &sn.Operator, &sn.Note, &sn.StorageRef, &sn.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, sn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshots: %w", err)
	}

	page := &Page{}
	if len(snaps) > limit {
		snaps = snaps[:limit]
		last := snaps[len(snaps)-1]
		page.Cursor = encodeCursor(last.SnapshotAt, last.ID)
	}
	page.Snapshots = snaps
	return page, nil
}

// Latest returns the most recent snapshot for a project, or nil if none
// exists yet.
func (s *Store) Latest(ctx context.Context, projectID string) (*Snapshot, error) {
	sn := &Snapshot{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, snapshot_at, composite_score,
		        code_score, deps_score, gov_score, econ_score,
		        source, operator, note, storage_ref, created_at
		 FROM score_snapshots
		 WHERE project_id = $1
		 ORDER BY snapshot_at DESC, id DESC
		 LIMIT 1`,
		projectID,
	).Scan(
		&sn.ID, &sn.ProjectID, &sn.SnapshotAt, &sn.CompositeScore,
		&sn.CodeScore, &sn.DepsScore, &sn.GovScore, &sn.EconScore,
		&sn.Source, &sn.Operator, &sn.Note, &sn.StorageRef, &sn.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot for project %s: %w", projectID, err)
	}
	return sn, nil
}
