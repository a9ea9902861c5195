package application

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/bnema/profile-sync/internal/domain"
	"github.com/bnema/profile-sync/internal/ports"
	"github.com/rs/zerolog"
)

// SyncDirName is the fixed name of the scratch directory kept beside the
// credentials file for fetcher-owned state.
const SyncDirName = "sync"

// Service runs the credentials file synchronization.
type Service struct {
	registry     *Registry
	manifest     ports.ManifestRepository
	clock        ports.Clock
	logger       zerolog.Logger
	magicStart   string
	magicStop    string
	missingLevel zerolog.Level
}

// Options configures a Service. Zero values select the defaults: standard
// sentinels, missing-override treated as an error, system clock, no
// manifest.
type Options struct {
	Manifest    ports.ManifestRepository
	Clock       ports.Clock
	MagicStart  string
	MagicStop   string
	WarnMissing bool
}

func NewService(registry *Registry, logger zerolog.Logger, opts Options) *Service {
	if opts.MagicStart == "" {
		opts.MagicStart = domain.DefaultMagicStart
	}
	if opts.MagicStop == "" {
		opts.MagicStop = domain.DefaultMagicStop
	}
	if opts.Clock == nil {
		opts.Clock = ports.SystemClock{}
	}

	missingLevel := zerolog.ErrorLevel
	if opts.WarnMissing {
		missingLevel = zerolog.WarnLevel
	}

	return &Service{
		registry:     registry,
		manifest:     opts.Manifest,
		clock:        opts.Clock,
		logger:       logger,
		magicStart:   opts.MagicStart,
		magicStop:    opts.MagicStop,
		missingLevel: missingLevel,
	}
}

// DryRun expands credentialsPath onto out without touching the file.
func (s *Service) DryRun(ctx context.Context, credentialsPath string, out io.Writer) error {
	s.logger.Info().Str("path", credentialsPath).Msg("Reading credentials file")

	src, err := os.Open(credentialsPath)
	if err != nil {
		return fmt.Errorf("open credentials file: %w", err)
	}
	defer src.Close()

	_, err = s.generate(ctx, src, out, workPathFor(credentialsPath))
	return err
}

// Sync regenerates credentialsPath in place. The new content is written to a
// temp sibling first; only after full success is the original moved to the
// backup path and the temp file moved into place. A crash between the two
// renames leaves the original only at the backup path.
func (s *Service) Sync(ctx context.Context, credentialsPath string) error {
	s.logger.Info().Str("path", credentialsPath).Msg("Reading credentials file")

	src, err := os.Open(credentialsPath)
	if err != nil {
		return fmt.Errorf("open credentials file: %w", err)
	}
	defer src.Close()

	tempPath := credentialsPath + ".temp"
	backupPath := credentialsPath + ".backup"

	s.logger.Info().Str("path", tempPath).Msg("Writing new credentials file")

	temp, err := os.OpenFile(tempPath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create temp credentials file: %w", err)
	}

	expanded, genErr := s.generate(ctx, src, temp, workPathFor(credentialsPath))
	closeErr := temp.Close()
	if genErr == nil {
		genErr = closeErr
	}
	if genErr != nil {
		_ = os.Remove(tempPath)
		return genErr
	}

	s.logger.Info().Str("path", backupPath).Msg("Backing up previous credentials file")
	if err := os.Rename(credentialsPath, backupPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("back up credentials file: %w", err)
	}

	s.logger.Info().Str("path", credentialsPath).Msg("Moving new credentials file into place")
	if err := os.Rename(tempPath, credentialsPath); err != nil {
		return fmt.Errorf("replace credentials file: %w", err)
	}

	s.recordSyncs(ctx, expanded)

	return nil
}

// recordSyncs is bookkeeping after a successful swap; a manifest failure
// must not fail the sync itself.
func (s *Service) recordSyncs(ctx context.Context, locations []string) {
	if s.manifest == nil || len(locations) == 0 {
		return
	}

	records := make([]ports.SyncRecord, 0, len(locations))
	now := s.clock.Now()
	for _, location := range locations {
		records = append(records, ports.SyncRecord{Location: location, SyncedAt: now})
	}

	if err := s.manifest.Record(ctx, records); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record sync manifest")
	}
}

func workPathFor(credentialsPath string) string {
	return filepath.Join(filepath.Dir(credentialsPath), SyncDirName)
}
