package ports

import (
	"context"
	"time"
)

// SyncRecord captures the last successful expansion of one directive.
type SyncRecord struct {
	Location string
	SyncedAt time.Time
}

// ManifestRepository persists sync records across runs.
type ManifestRepository interface {
	Record(ctx context.Context, records []SyncRecord) error
	List(ctx context.Context) ([]SyncRecord, error)
}

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
