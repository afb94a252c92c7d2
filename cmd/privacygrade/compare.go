package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nao1215/privacygrade/internal/config"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/pipeline"
	"github.com/nao1215/privacygrade/internal/report"
	"github.com/spf13/cobra"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <previous> <current>",
		Short: "Compare the grades of two observations of a page",
		Long: `Compare shows how a page's privacy changed between two observations, for
example before and after a site update.

Each argument is either a capture (graded like 'privacygrade grade') or a
JSON report written by 'privacygrade grade --json'. The comparison shows:
- The grade and score change
- Points gained or lost per factor
- Trackers and fingerprinting techniques that appeared or went away

Examples:
  # Compare two captures
  privacygrade compare before.jsonl after.jsonl

  # Compare saved reports and include a line diff of the text reports
  privacygrade compare --diff before.json after.json

  # Output the comparison as Markdown
  privacygrade compare -m before.jsonl after.jsonl`,
		Args: cobra.ExactArgs(2),
		RunE: runCompareCmd,
	}

	cmd.Flags().Int("tab", 0,
		"Tab to grade in captures (default: the tab of the last page load)")
	cmd.Flags().BoolP("diff", "d", false,
		"Include a line diff of the two text reports")
	addReportFlags(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cfg.TabID, err = cmd.Flags().GetInt("tab"); err != nil {
		return err
	}
	if err := readReportFlags(cmd, cfg); err != nil {
		return err
	}
	withDiff, err := cmd.Flags().GetBool("diff")
	if err != nil {
		return err
	}
	cfg.Targets = args
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cfg.Verbose)

	ctx, cancel := signalContext(logger)
	defer cancel()

	return runCompare(ctx, cmd, cfg, withDiff, logger)
}

// runCompare grades or loads both sources and writes the comparison.
func runCompare(ctx context.Context, cmd *cobra.Command, cfg *config.Config, withDiff bool, logger *slog.Logger) error {
	if len(cfg.Targets) != 2 {
		return fmt.Errorf("%w (specify exactly two sources)", errNoTargets)
	}

	c, err := newComponents(cfg, logger)
	if err != nil {
		return err
	}

	entries := make([]report.Entry, 2)
	for i, source := range cfg.Targets {
		rep, err := loadReport(ctx, c, source, cfg.TabID)
		if err != nil {
			return fmt.Errorf("failed to grade %s: %w", source, err)
		}
		entries[i] = report.Entry{Source: source, Report: rep}
	}

	comparison := report.Compare(entries[0], entries[1], report.WithReportDiff(withDiff))

	w, closeOutput, err := openOutput(cmd, cfg)
	if err != nil {
		return err
	}
	var writer report.ComparisonWriter
	switch {
	case cfg.JSONReport:
		writer = report.NewJSONWriter(w, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(w)
	default:
		writer = report.NewSimpleWriter(w)
	}
	_, err = writer.WriteComparison(comparison)
	if closeErr := closeOutput(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write comparison: %w", err)
	}
	return nil
}

// loadReport reads a saved JSON report, or grades a capture.
func loadReport(ctx context.Context, c *components, source string, tabID int) (model.DetailedReport, error) {
	if strings.EqualFold(filepath.Ext(source), ".json") {
		data, err := os.ReadFile(source) //nolint:gosec // user-provided report path
		if err != nil {
			return model.DetailedReport{}, err
		}
		var rep model.DetailedReport
		if err := json.Unmarshal(data, &rep); err != nil {
			return model.DetailedReport{}, fmt.Errorf("invalid report: %w", err)
		}
		return rep, nil
	}

	job := pipeline.NewJob(source, c.newMonitor())
	job.TabID = tabID
	job.Document = documentFor(source, "")
	if err := pipeline.NewGradePipeline(c.collector, c.logger).Execute(ctx, job); err != nil {
		return model.DetailedReport{}, err
	}
	return job.Report, nil
}
