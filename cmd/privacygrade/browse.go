package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"

	"github.com/chromedp/chromedp"
	"github.com/nao1215/privacygrade/internal/browser"
	"github.com/nao1215/privacygrade/internal/config"
	"github.com/nao1215/privacygrade/internal/report"
	"github.com/spf13/cobra"
)

// NewBrowseCmd creates the browse command.
func NewBrowseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse [url...]",
		Short: "Load pages in headless Chrome and grade them",
		Long: `Browse opens each URL in headless Chrome, watches the requests, cookies,
fingerprinting calls and permission prompts the page makes while it settles,
then merges a fresh look at the rendered page into the grade.

Chrome or Chromium must be installed.

Examples:
  # Grade a page
  privacygrade browse https://news.example

  # Let the page run longer and write JSON
  privacygrade browse --settle 10s -j https://news.example

  # Reuse a browser profile kept under the XDG cache directory
  privacygrade browse --persist-profile https://news.example`,
		Args: cobra.ArbitraryArgs,
		RunE: runBrowseCmd,
	}

	cmd.Flags().DurationP("settle", "s", config.DefaultSettleDelay,
		"How long each page runs before it is graded")
	cmd.Flags().String("chrome", "",
		"Path to the Chrome or Chromium executable")
	cmd.Flags().Bool("no-sandbox", false,
		"Disable the Chrome sandbox (needed in some containers)")
	cmd.Flags().Bool("persist-profile", false,
		"Keep the browser profile between runs so consent choices are remembered")
	addReportFlags(cmd)

	return cmd
}

// browseOptions are the Chrome launch settings.
type browseOptions struct {
	chromePath     string
	noSandbox      bool
	persistProfile bool
}

// runBrowseCmd executes the browse command.
func runBrowseCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("settle") {
		cfg.SettleDelay, err = cmd.Flags().GetDuration("settle")
		if err != nil {
			return err
		}
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	cfg.Targets = args
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	var opts browseOptions
	if opts.chromePath, err = cmd.Flags().GetString("chrome"); err != nil {
		return err
	}
	if opts.noSandbox, err = cmd.Flags().GetBool("no-sandbox"); err != nil {
		return err
	}
	if opts.persistProfile, err = cmd.Flags().GetBool("persist-profile"); err != nil {
		return err
	}

	logger := setupLogger(cfg.Verbose)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runBrowse(ctx, cmd, cfg, opts, logger)
}

// allocatorOptions returns the Chrome launch options.
func allocatorOptions(opts browseOptions) []chromedp.ExecAllocatorOption {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	if opts.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.chromePath))
	}
	if opts.noSandbox {
		allocOpts = append(allocOpts, chromedp.NoSandbox)
	}
	if opts.persistProfile {
		allocOpts = append(allocOpts, chromedp.UserDataDir(filepath.Join(config.XDGCacheDir(), "chrome")))
	}
	return allocOpts
}

// validateURL accepts absolute http and https URLs.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid URL %q: missing host", raw)
	}
	return nil
}

// runBrowse grades the URLs one after another. Each page gets its own
// browser and monitor.
func runBrowse(ctx context.Context, cmd *cobra.Command, cfg *config.Config, opts browseOptions, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("%w (specify one or more URLs as arguments)", errNoTargets)
	}
	for _, target := range cfg.Targets {
		if err := validateURL(target); err != nil {
			return err
		}
	}

	c, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}

	observer := browser.NewObserver(
		browser.WithAllocatorOptions(allocatorOptions(opts)...),
		browser.WithSettleDelay(cfg.SettleDelay),
		browser.WithCollector(c.collector),
		browser.WithLogger(logger),
	)

	entries := make([]report.Entry, 0, len(cfg.Targets))
	failed := 0
	for i, target := range cfg.Targets {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Grading %s...\n", target)
		entry := report.Entry{Source: target}
		rep, err := observer.Observe(ctx, c.newMonitorWith(observer), i+1, target)
		if err != nil {
			logger.Error("grading failed", "url", target, "error", err)
			entry.Error = err.Error()
			failed++
		} else {
			entry.Report = rep
		}
		entries = append(entries, entry)
	}

	if err := writeEntries(cmd, cfg, entries); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d pages could not be graded", failed, len(entries))
	}
	return nil
}

