package cmd

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	var (
		credentialsFile string
		dryRun          bool
		logLevel        string
		warnMissing     bool
	)

	rootCmd := &cobra.Command{
		Use:           "profile-sync",
		Short:         "Synchronize credentials profiles from remote sources",
		Long:          "profile-sync expands #!profile-sync directives embedded in a credentials file: it fetches shared named profiles from the referenced remote sources, applies field overrides, and rewrites the generated regions in place.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cfg, err := loadConfig()
	if err != nil {
		rootCmd.RunE = func(_ *cobra.Command, _ []string) error {
			return err
		}
		return rootCmd
	}

	rootCmd.RunE = func(cmd *cobra.Command, _ []string) error {
		level, err := parseLogLevel(logLevel)
		if err != nil {
			return err
		}

		app, err := wireApp(cfg, credentialsFile, level, warnMissing)
		if err != nil {
			return err
		}

		if dryRun {
			app.logger.Info().Msg("Dry run, writing credentials file to standard out")
			return app.service.DryRun(cmd.Context(), credentialsFile, cmd.OutOrStdout())
		}

		return app.service.Sync(cmd.Context(), credentialsFile)
	}

	rootCmd.Flags().StringVarP(&credentialsFile, "credentials-file", "c", cfg.GetString(credentialsPathKey), "Credentials file to update")
	rootCmd.Flags().BoolVarP(&dryRun, "dry-run", "d", false, "Print the generated file instead of writing it")
	rootCmd.Flags().StringVar(&logLevel, "log-level", cfg.GetString(logLevelKey), "Log level: debug, info, warn or error")
	rootCmd.Flags().BoolVarP(&warnMissing, "warn-missing", "w", cfg.GetBool(warnMissingKey), "Treat missing overrides as a warning instead of an error")

	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func parseLogLevel(value string) (zerolog.Level, error) {
	switch strings.ToLower(value) {
	case "debug":
		return zerolog.DebugLevel, nil
	case "info":
		return zerolog.InfoLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	default:
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: possible values are debug, info, warn and error", value)
	}
}
