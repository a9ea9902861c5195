package ports

import (
	"context"

	"github.com/bnema/profile-sync/internal/lines"
)

// Fetcher retrieves raw profile text from one class of external location.
// Fetch performs the full retrieval on every call and streams the referenced
// file's lines; a failure mid-retrieval surfaces as an error rather than a
// silently truncated sequence.
type Fetcher interface {
	Fetch(ctx context.Context, location string, params map[string]string) (lines.Reader, error)
}

// FetcherFactory pairs a location predicate with a constructor for its
// fetcher. CanHandle must be pure (no I/O); New prepares persistent scratch
// state under workPath but performs no network I/O.
type FetcherFactory interface {
	CanHandle(location string) bool
	New(workPath string) (Fetcher, error)
}
