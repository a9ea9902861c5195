// Package toml persists the sync manifest: one record per directive location
// from the last successful run, stored as a TOML file in the scratch
// directory.
package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/profile-sync/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	manifestFileName = "manifest.toml"
	manifestFileMode = 0o600
	manifestDirMode  = 0o700
	tempFilePattern  = ".manifest-*.toml.tmp"
)

type Repository struct {
	manifestPath string
	mu           *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.ManifestRepository = (*Repository)(nil)

// NewRepository stores the manifest under workPath.
func NewRepository(workPath string) (*Repository, error) {
	manifestPath, err := filepath.Abs(filepath.Join(workPath, manifestFileName))
	if err != nil {
		return nil, fmt.Errorf("resolve manifest path: %w", err)
	}
	manifestPath = filepath.Clean(manifestPath)

	return &Repository{manifestPath: manifestPath, mu: lockForPath(manifestPath)}, nil
}

// Record upserts records by location and rewrites the manifest atomically.
func (r *Repository) Record(ctx context.Context, records []ports.SyncRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}
	file.applyDefaults()

	for _, record := range records {
		encoded := toSchema(record)
		updated := false
		for i := range file.Syncs {
			if file.Syncs[i].Location == encoded.Location {
				file.Syncs[i] = encoded
				updated = true
				break
			}
		}
		if !updated {
			file.Syncs = append(file.Syncs, encoded)
		}
	}

	return r.writeSchema(file)
}

func (r *Repository) List(ctx context.Context) ([]ports.SyncRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return nil, err
	}
	file.applyDefaults()

	records := make([]ports.SyncRecord, 0, len(file.Syncs))
	for _, entry := range file.Syncs {
		records = append(records, fromSchema(entry))
	}

	return records, nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.manifestPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read manifest file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode manifest file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode manifest file: %w", err)
	}

	dir := filepath.Dir(r.manifestPath)
	if err := os.MkdirAll(dir, manifestDirMode); err != nil {
		return fmt.Errorf("create manifest directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp manifest file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp manifest file: %w", err)
	}
	if err := tmp.Chmod(manifestFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp manifest file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp manifest file: %w", err)
	}

	if err := os.Rename(tmpName, r.manifestPath); err != nil {
		return fmt.Errorf("replace manifest file: %w", err)
	}
	cleanup = false

	return nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
