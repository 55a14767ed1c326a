package history

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
)

// GCSArchive implements ArchiveClient using Google Cloud Storage.
type GCSArchive struct {
	client *gcs.Client
	bucket string
}

// NewGCSArchive creates a GCS-backed ArchiveClient. It uses Application
// Default Credentials (works with Workload Identity, SA keys, gcloud auth).
func NewGCSArchive(ctx context.Context, bucket string) (*GCSArchive, error) {
	client, err := gcs.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCSArchive{client: client, bucket: bucket}, nil
}

func (a *GCSArchive) key(projectID, snapshotID string) string {
	return projectID + "/breakdowns/" + snapshotID + ".json"
}

// PutBreakdown stores a breakdown blob.
func (a *GCSArchive) PutBreakdown(ctx context.Context, projectID, snapshotID string, data []byte) error {
	key := a.key(projectID, snapshotID)
	w := a.client.Bucket(a.bucket).Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("gcs write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs close %s: %w", key, err)
	}
	return nil
}

// GetBreakdown retrieves a breakdown blob.
func (a *GCSArchive) GetBreakdown(ctx context.Context, projectID, snapshotID string) ([]byte, error) {
	key := a.key(projectID, snapshotID)
	r, err := a.client.Bucket(a.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("gcs read %s: %w", key, err)
	}
	defer r.Close()
	return io.ReadAll(r)
}
