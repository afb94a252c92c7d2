package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/privacygrade/internal/config"
	"github.com/nao1215/privacygrade/internal/log"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for privacygrade.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "privacygrade",
		Short: "Grade how much a web page tracks you",
		Long: `privacygrade inspects what a web page does while it runs and grades its
privacy from A+ to F.

It counts third-party trackers, tracking cookies, fingerprinting probes and
device permission requests. Pages can be graded from recorded event captures,
by loading them in headless Chrome, or live through a local API that a
browser extension reports to.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("config", "c", "",
		"Configuration file path (default: .privacygrade in current or home directory)")

	cmd.AddCommand(NewGradeCmd())
	cmd.AddCommand(NewBrowseCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getConfigFlag retrieves the config flag from the command or its parent.
func getConfigFlag(cmd *cobra.Command) string {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		path, err = cmd.Root().PersistentFlags().GetString("config")
		if err != nil {
			return ""
		}
	}
	return path
}

// loadConfig returns the defaults overlaid with the configuration file.
// A config path given on the command line must exist; otherwise a missing
// file is not an error.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.ConfigFilePath = getConfigFlag(cmd)

	path := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case path != "":
		f, err := config.LoadConfigFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		cfg.ApplyFile(f)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	}
	return cfg, nil
}

// setupLogger creates the masking logger for the command and makes it the
// default.
func setupLogger(verbose bool) *slog.Logger {
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)
	return logger
}

// errNoTargets is returned when a command needs arguments and got none.
var errNoTargets = errors.New("no targets provided")
