package cmd

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	gitsshfetch "github.com/bnema/profile-sync/internal/adapters/fetch/gitssh"
	httpsfetch "github.com/bnema/profile-sync/internal/adapters/fetch/httpsfile"
	manifestrepo "github.com/bnema/profile-sync/internal/adapters/manifest/toml"
	"github.com/bnema/profile-sync/internal/application"
	"github.com/bnema/profile-sync/internal/domain"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	configName = "profile-sync"
	configType = "toml"
	configDir  = ".aws"

	credentialsPathKey = "credentials.path"
	logLevelKey        = "log.level"
	warnMissingKey     = "warn_missing"
	magicStartKey      = "magic.start"
	magicStopKey       = "magic.stop"
)

type app struct {
	service *application.Service
	logger  zerolog.Logger
}

func loadConfig() (*viper.Viper, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	cfg := viper.New()
	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(filepath.Join(homeDir, configDir))
	cfg.SetDefault(credentialsPathKey, filepath.Join(homeDir, configDir, "credentials"))
	cfg.SetDefault(logLevelKey, "info")
	cfg.SetDefault(warnMissingKey, false)
	cfg.SetDefault(magicStartKey, domain.DefaultMagicStart)
	cfg.SetDefault(magicStopKey, domain.DefaultMagicStop)

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return cfg, nil
}

// wireApp assembles the service for one run. Handler registration happens
// here, once, in a fixed order; the registry is immutable afterwards.
func wireApp(cfg *viper.Viper, credentialsPath string, level zerolog.Level, warnMissing bool) (*app, error) {
	logger := newLogger(level)

	registry := application.NewRegistry(
		gitsshfetch.NewFactory(logger),
		httpsfetch.NewFactory(http.DefaultClient, logger),
	)

	workPath := filepath.Join(filepath.Dir(credentialsPath), application.SyncDirName)
	manifest, err := manifestrepo.NewRepository(workPath)
	if err != nil {
		return nil, fmt.Errorf("wire sync manifest: %w", err)
	}

	service := application.NewService(registry, logger, application.Options{
		Manifest:    manifest,
		MagicStart:  cfg.GetString(magicStartKey),
		MagicStop:   cfg.GetString(magicStopKey),
		WarnMissing: warnMissing,
	})

	return &app{service: service, logger: logger}, nil
}

func newLogger(level zerolog.Level) zerolog.Logger {
	writer := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	}

	return zerolog.New(writer).With().Timestamp().Logger().Level(level)
}
