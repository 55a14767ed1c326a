package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// ArchiveClient abstracts blob storage for full breakdown documents. The
// ledger row carries only the subscores and composite; the complete audit
// document (per-dimension contributions, effective weights, floor flag)
// is archived as a JSON blob referenced by storage_ref.
type ArchiveClient interface {
	PutBreakdown(ctx context.Context, projectID, snapshotID string, data []byte) error
	GetBreakdown(ctx context.Context, projectID, snapshotID string) ([]byte, error)
}

// StorageRef is the canonical object reference recorded on a ledger row.
func StorageRef(projectID, snapshotID string) string {
	return fmt.Sprintf("breakdowns/%s/%s.json", projectID, snapshotID)
}

// LocalArchive implements ArchiveClient on the local filesystem. Useful
// for development and testing.
type LocalArchive struct {
	BaseDir string
}

// NewLocalArchive creates a LocalArchive rooted at the given directory.
func NewLocalArchive(baseDir string) *LocalArchive {
	return &LocalArchive{BaseDir: baseDir}
}

func (a *LocalArchive) path(projectID, snapshotID string) string {
	return filepath.Join(a.BaseDir, projectID, "breakdowns", snapshotID+".json")
}

// PutBreakdown stores a breakdown blob.
func (a *LocalArchive) PutBreakdown(ctx context.Context, projectID, snapshotID string, data []byte) error {
	p := a.path(projectID, snapshotID)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(p, data, 0o644)
}

// GetBreakdown retrieves a breakdown blob.
func (a *LocalArchive) GetBreakdown(ctx context.Context, projectID, snapshotID string) ([]byte, error) {
	return os.ReadFile(a.path(projectID, snapshotID))
}
