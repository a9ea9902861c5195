// Package httpsfile fetches profile data from a plain file served over
// HTTPS. It keeps no state in the scratch directory; every fetch is a full
// GET of the referenced file.
package httpsfile

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/profile-sync/internal/lines"
	"github.com/bnema/profile-sync/internal/ports"
	"github.com/rs/zerolog"
)

// Factory builds Fetchers for https:// locations.
type Factory struct {
	client *http.Client
	logger zerolog.Logger
}

var _ ports.FetcherFactory = Factory{}

func NewFactory(client *http.Client, logger zerolog.Logger) Factory {
	if client == nil {
		client = http.DefaultClient
	}
	return Factory{client: client, logger: logger}
}

func (Factory) CanHandle(location string) bool {
	return strings.HasPrefix(location, "https://")
}

func (f Factory) New(string) (ports.Fetcher, error) {
	return &Fetcher{client: f.client, logger: f.logger}, nil
}

type Fetcher struct {
	client *http.Client
	logger zerolog.Logger
}

var _ ports.Fetcher = (*Fetcher)(nil)

// Fetch streams the body of a GET on location. It accepts no parameters.
func (f *Fetcher) Fetch(ctx context.Context, location string, params map[string]string) (lines.Reader, error) {
	for key := range params {
		return nil, fmt.Errorf("fetch %s: unknown parameter %q", location, key)
	}

	f.logger.Info().Str("location", location).Msg("Downloading file")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, fmt.Errorf("build request for %s: %w", location, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: unexpected status %s", location, resp.Status)
	}

	return lines.FromReadCloser(resp.Body), nil
}
