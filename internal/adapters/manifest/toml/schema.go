package toml

import (
	"fmt"
	"time"

	"github.com/bnema/profile-sync/internal/ports"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	Syncs   []syncSchema `toml:"syncs"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported manifest schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

type syncSchema struct {
	Location string    `toml:"location"`
	SyncedAt time.Time `toml:"synced_at"`
}

func toSchema(record ports.SyncRecord) syncSchema {
	return syncSchema{
		Location: record.Location,
		SyncedAt: record.SyncedAt.UTC(),
	}
}

func fromSchema(entry syncSchema) ports.SyncRecord {
	return ports.SyncRecord{
		Location: entry.Location,
		SyncedAt: entry.SyncedAt,
	}
}
