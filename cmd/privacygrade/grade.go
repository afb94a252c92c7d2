package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/nao1215/privacygrade/internal/config"
	"github.com/nao1215/privacygrade/internal/pipeline"
	"github.com/nao1215/privacygrade/internal/report"
	"github.com/spf13/cobra"
)

// NewGradeCmd creates the grade command.
func NewGradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade [capture.jsonl...]",
		Short: "Grade recorded page visits",
		Long: `Grade replays recorded browser events and grades the page they belong to.

A capture is a JSON Lines file with one event per line, as posted to the
serve API. When an HTML file with the same base name sits next to a capture
(news.jsonl and news.html), it is parsed as a fresh observation and merged
into the grade.

Examples:
  # Grade one capture
  privacygrade grade news.jsonl

  # Grade a capture with an explicit page snapshot
  privacygrade grade --html page.html news.jsonl

  # Grade many captures concurrently and write Markdown
  privacygrade grade -m -o grades.md captures/*.jsonl

  # Use the gentler third-party penalties
  privacygrade grade --penalties continuous news.jsonl`,
		Args: cobra.ArbitraryArgs,
		RunE: runGradeCmd,
	}

	cmd.Flags().String("html", "",
		"HTML snapshot of the page, merged as the fresh observation (single capture only)")
	cmd.Flags().Int("tab", 0,
		"Tab to grade (default: the tab of the last page load)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of captures graded concurrently")
	cmd.Flags().String("penalties", "",
		"Third-party penalty profile: on-demand or continuous")
	cmd.Flags().String("merge", "",
		"How fresh observations are merged: largest or union")
	addReportFlags(cmd)

	return cmd
}

// runGradeCmd executes the grade command.
func runGradeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildGradeConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runGrade(ctx, cmd, cfg, logger)
}

// buildGradeConfig creates a Config from the file and the grade flags.
func buildGradeConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	cfg.Document, err = cmd.Flags().GetString("html")
	if err != nil {
		return nil, err
	}
	cfg.TabID, err = cmd.Flags().GetInt("tab")
	if err != nil {
		return nil, err
	}
	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	profile, err := cmd.Flags().GetString("penalties")
	if err != nil {
		return nil, err
	}
	if profile != "" {
		cfg.PenaltyProfile = profile
		cfg.PenaltyTiers = nil
	}

	merge, err := cmd.Flags().GetString("merge")
	if err != nil {
		return nil, err
	}
	if merge != "" {
		cfg.MergeStrategy = merge
	}

	if err := readReportFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Targets = args
	return cfg, nil
}

// runGrade grades every capture and writes the report.
func runGrade(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return fmt.Errorf("%w (specify one or more capture files as arguments)", errNoTargets)
	}
	if cfg.Document != "" && len(cfg.Targets) > 1 {
		return errors.New("--html can only be used with a single capture")
	}

	c, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			return pipeline.NewGradePipeline(c.collector, logger)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
		pipeline.WithJobFactory(func(capture string) *pipeline.Job {
			job := pipeline.NewJob(capture, c.newMonitor())
			job.TabID = cfg.TabID
			job.Document = documentFor(capture, cfg.Document)
			return job
		}),
	)

	jobs, err := bp.ProcessBatch(ctx, cfg.Targets)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	entries := entriesFromJobs(cfg.Targets, jobs)
	if writeErr := writeEntries(cmd, cfg, entries); writeErr != nil {
		return writeErr
	}
	if err != nil {
		return err
	}

	failed := 0
	for _, e := range entries {
		if e.Failed() {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d captures could not be graded", failed, len(entries))
	}
	return nil
}

// documentFor returns the HTML snapshot for a capture: the explicit one,
// or a sibling file with the same base name and an .html extension.
func documentFor(capture, explicit string) string {
	if explicit != "" {
		return explicit
	}
	sibling := strings.TrimSuffix(capture, filepath.Ext(capture)) + ".html"
	if sibling == capture {
		return ""
	}
	if info, err := os.Stat(sibling); err == nil && !info.IsDir() {
		return sibling
	}
	return ""
}

// entriesFromJobs converts finished jobs into report entries. A nil job
// was never started because the batch was cancelled.
func entriesFromJobs(captures []string, jobs []*pipeline.Job) []report.Entry {
	entries := make([]report.Entry, len(captures))
	for i, capture := range captures {
		entries[i].Source = capture

		var job *pipeline.Job
		if i < len(jobs) {
			job = jobs[i]
		}
		switch {
		case job == nil, job.TimedOut:
			entries[i].Error = "cancelled"
		case job.Failed():
			entries[i].Error = job.ErrorMessage
			if entries[i].Error == "" {
				entries[i].Error = job.Error.Error()
			}
		default:
			entries[i].Report = job.Report
		}
	}
	return entries
}

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}
