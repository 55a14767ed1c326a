package history

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"
)

// Cursors encode (snapshot_at, id) so pagination restarts exactly where
// the previous page ended, regardless of inserts happening in between.

func encodeCursor(at time.Time, id string) string {
	raw := at.UTC().Format(time.RFC3339Nano) + "|" + id
	return base64.URLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(cursor string) (time.Time, string, error) {
	if cursor == "" {
		// Sorts before every real (timestamp, uuid) pair.
		return time.Time{}, "", nil
	}

	raw, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("decode cursor: %w", err)
	}
	at, id, ok := strings.Cut(string(raw), "|")
	if !ok {
		return time.Time{}, "", fmt.Errorf("malformed cursor %q", cursor)
	}
	ts, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return time.Time{}, "", fmt.Errorf("malformed cursor timestamp: %w", err)
	}
	return ts, id, nil
}
