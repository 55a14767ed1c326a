package recompute

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// PGLocker provides per-project leases over Postgres so two daemon
// replicas never score the same project concurrently. A lease expires
// after its TTL, so a crashed holder cannot block a project forever.
type PGLocker struct {
	db *sql.DB
}

// NewPGLocker creates a Postgres-backed locker.
func NewPGLocker(db *sql.DB) *PGLocker {
	return &PGLocker{db: db}
}

// Acquire takes the lease on a project for ttl. It returns false when a
// live lease is held by someone else. Re-acquiring one's own lease
// extends it.
func (l *PGLocker) Acquire(ctx context.Context, projectID, holder string, ttl time.Duration) (bool, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO project_leases (project_id, holder, expires_at)
		 VALUES ($1, $2, now() + $3::interval)
		 ON CONFLICT (project_id) DO UPDATE
		 SET holder = EXCLUDED.holder, expires_at = EXCLUDED.expires_at
		 WHERE project_leases.expires_at < now() OR project_leases.holder = EXCLUDED.holder`,
		projectID, holder, fmt.Sprintf("%f seconds", ttl.Seconds()),
	)
	if err != nil {
		return false, fmt.Errorf("acquire lease %s: %w", projectID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("acquire lease rows affected: %w", err)
	}
	return n > 0, nil
}

// Release drops the lease if this holder still owns it.
func (l *PGLocker) Release(ctx context.Context, projectID, holder string) error {
	_, err := l.db.ExecContext(ctx,
		`DELETE FROM project_leases WHERE project_id = $1 AND holder = $2`,
		projectID, holder,
	)
	if err != nil {
		return fmt.Errorf("release lease %s: %w", projectID, err)
	}
	return nil
}
