package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nao1215/privacygrade/internal/collect"
	"github.com/nao1215/privacygrade/internal/monitor"
)

// ReplayStep feeds the job's capture into its monitor.
type ReplayStep struct {
	logger *slog.Logger
}

// NewReplayStep creates a ReplayStep.
func NewReplayStep(logger *slog.Logger) *ReplayStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplayStep{logger: logger}
}

// Name returns the step name.
func (s *ReplayStep) Name() string {
	return "replay"
}

// Do replays the capture. When the job names no tab it takes the tab of
// the last page load.
func (s *ReplayStep) Do(_ context.Context, job *Job) error {
	f, err := os.Open(job.Capture)
	if err != nil {
		return fmt.Errorf("failed to open capture: %w", err)
	}
	defer f.Close()

	events, err := monitor.ParseEvents(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", job.Capture, err)
	}
	if err := job.monitor.ApplyAll(events); err != nil {
		return fmt.Errorf("failed to replay %s: %w", job.Capture, err)
	}

	if job.TabID == 0 {
		for _, ev := range events {
			if ev.Type == monitor.EventLoad {
				job.TabID = ev.TabID
			}
		}
		if job.TabID == 0 {
			return ErrNoPageLoad
		}
	}

	s.logger.Debug("replayed capture",
		"capture", job.Capture,
		"events", len(events),
		"tab", job.TabID,
	)
	return nil
}

// FreshStep merges a fresh observation of the job's document into the
// report. Jobs without a document are left alone.
type FreshStep struct {
	collector *collect.Collector
	logger    *slog.Logger
}

// NewFreshStep creates a FreshStep. A nil collector gets the default one.
func NewFreshStep(c *collect.Collector, logger *slog.Logger) *FreshStep {
	if logger == nil {
		logger = slog.Default()
	}
	if c == nil {
		c = collect.NewCollector(collect.WithLogger(logger))
	}
	return &FreshStep{collector: c, logger: logger}
}

// Name returns the step name.
func (s *FreshStep) Name() string {
	return "fresh"
}

// Do collects the document and reports on the merged observation.
func (s *FreshStep) Do(ctx context.Context, job *Job) error {
	if job.Document == "" {
		s.logger.Debug("no document, skipping fresh observation", "capture", job.Capture)
		return nil
	}

	body, err := os.ReadFile(job.Document)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	report, err := job.monitor.FreshReport(ctx, job.TabID, s.collector.CollectFunc(body))
	if err != nil {
		return fmt.Errorf("failed to grade %s: %w", job.Document, err)
	}
	job.Report = report
	job.Fresh = true
	return nil
}

// ReportStep builds the detailed report from the live evidence unless a
// fresh report is already present.
type ReportStep struct{}

// NewReportStep creates a ReportStep.
func NewReportStep() *ReportStep {
	return &ReportStep{}
}

// Name returns the step name.
func (s *ReportStep) Name() string {
	return "report"
}

// Do fills in the report.
func (s *ReportStep) Do(_ context.Context, job *Job) error {
	if !job.Fresh {
		job.Report = job.monitor.GetDetailedReport(job.TabID)
	}
	return nil
}

// NewGradePipeline creates the standard replay, fresh and report pipeline.
func NewGradePipeline(c *collect.Collector, logger *slog.Logger) *Pipeline {
	p := New(WithLogger(logger))
	p.AddSteps(
		NewReplayStep(logger),
		NewFreshStep(c, logger),
		NewReportStep(),
	)
	return p
}
