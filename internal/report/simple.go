package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/nao1215/privacygrade/internal/model"
)

// SimpleWriter outputs plain text reports for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have nothing in them.
	showEmpty bool

	// verbose adds tracker domains and the score breakdown.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty prints empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose adds detail to the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *SimpleWriter) Write(report *model.DetailedReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeScore(&sb, report)
	w.writeEvidence(&sb, report)
	w.writeRecommendations(&sb, report)

	return io.WriteString(w.output, sb.String())
}

func rule(sb *strings.Builder, heading string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(heading)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.DetailedReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                       PRIVACY GRADE REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	domain := report.Domain
	if domain == "" {
		domain = "(untracked)"
	}
	fmt.Fprintf(sb, "Domain:   %s\n", domain)
	if report.URL != "" {
		fmt.Fprintf(sb, "URL:      %s\n", report.URL)
	}
	fmt.Fprintf(sb, "Date:     %s\n", report.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(sb, "Grade:    %s  (%d/100, %s risk)\n", report.Grade, report.FinalScore, report.Summary.RiskLevel)

	if len(report.Badges) > 0 {
		texts := make([]string, len(report.Badges))
		for i, b := range report.Badges {
			texts[i] = "[" + b.Text + "]"
		}
		fmt.Fprintf(sb, "Badges:   %s\n", strings.Join(texts, " "))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeScore(sb *strings.Builder, report *model.DetailedReport) {
	rule(sb, "SCORE")

	for _, b := range report.Breakdown {
		fmt.Fprintf(sb, "  %-15s %3d/%-3d  %-10s\n", title(string(b.Factor))+":", b.Points, b.Max, title(string(b.Level)))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  %-15s %3d\n", "Raw score:", report.RawScore)
	if report.ThirdPartyPenalty > 0 || w.verbose {
		fmt.Fprintf(sb, "  %-15s -%d\n", "Request penalty:", report.ThirdPartyPenalty)
	}
	fmt.Fprintf(sb, "  %-15s %3d\n\n", "Final score:", report.FinalScore)
}

func (w *SimpleWriter) writeEvidence(sb *strings.Builder, report *model.DetailedReport) {
	s := report.Summary
	if s.Trackers+s.Cookies+s.FingerprintSignals+s.Permissions+s.ThirdPartyRequests == 0 && !w.showEmpty {
		return
	}

	rule(sb, "EVIDENCE")
	fmt.Fprintf(sb, "  Trackers:             %d\n", s.Trackers)
	fmt.Fprintf(sb, "  Cookies:              %d (%d tracking, %d long-term)\n", s.Cookies, report.Cookies.Tracking, report.Cookies.LongTerm)
	fmt.Fprintf(sb, "  Fingerprint signals:  %d\n", s.FingerprintSignals)
	fmt.Fprintf(sb, "  Permissions:          %d\n", s.Permissions)
	fmt.Fprintf(sb, "  Third-party requests: %d\n", s.ThirdPartyRequests)
	sb.WriteString("\n")

	if len(report.Trackers.ByCategory) > 0 {
		sb.WriteString("  Trackers by category:\n")
		categories := make([]model.Category, 0, len(report.Trackers.ByCategory))
		for c := range report.Trackers.ByCategory {
			categories = append(categories, c)
		}
		slices.Sort(categories)
		for _, c := range categories {
			fmt.Fprintf(sb, "    %-16s %d\n", title(string(c)), report.Trackers.ByCategory[c])
		}
		sb.WriteString("\n")
	}

	if w.verbose && len(report.Trackers.UniqueDomains) > 0 {
		sb.WriteString("  Tracker domains:\n")
		for _, d := range report.Trackers.UniqueDomains {
			fmt.Fprintf(sb, "    [+] %s\n", d)
		}
		sb.WriteString("\n")
	}

	if len(report.Fingerprinting.Detected) > 0 {
		sb.WriteString("  Fingerprinting techniques:\n")
		for _, d := range report.Fingerprinting.Detected {
			fmt.Fprintf(sb, "    %-10s %3d calls, %3.0f%% confidence, %s risk\n",
				title(string(d.Technique)), d.Count, d.Confidence*100, d.Risk)
		}
		sb.WriteString("\n")
	}
}

func (w *SimpleWriter) writeRecommendations(sb *strings.Builder, report *model.DetailedReport) {
	if len(report.Recommendations) == 0 && !w.showEmpty {
		return
	}

	rule(sb, "RECOMMENDATIONS")
	if len(report.Recommendations) == 0 {
		sb.WriteString("  Nothing to improve\n\n")
		return
	}
	for _, r := range report.Recommendations {
		fmt.Fprintf(sb, "  [%s] %s\n", strings.ToUpper(r.Priority.String()), r.Message)
	}
	sb.WriteString("\n")
}

// WriteBatch outputs one line per entry followed by the grade distribution.
func (w *SimpleWriter) WriteBatch(entries []Entry) (int, error) {
	var sb strings.Builder

	rule(&sb, "PRIVACY GRADES")
	failed := 0
	for _, e := range entries {
		if e.Failed() {
			failed++
			fmt.Fprintf(&sb, "  %-3s %-40s %s\n", "!", truncateString(e.Source, 40), e.Error)
			continue
		}
		fmt.Fprintf(&sb, "  %-3s %-40s %3d  %s\n", e.Report.Grade, truncateString(e.Source, 40), e.Report.FinalScore, e.Report.Domain)
	}
	sb.WriteString("\n")

	counts := gradeCounts(entries)
	parts := make([]string, 0, len(counts))
	for _, g := range model.Grades() {
		if counts[g] > 0 {
			parts = append(parts, fmt.Sprintf("%s: %d", g, counts[g]))
		}
	}
	fmt.Fprintf(&sb, "  Graded: %d  Failed: %d", len(entries)-failed, failed)
	if len(parts) > 0 {
		fmt.Fprintf(&sb, "  (%s)", strings.Join(parts, ", "))
	}
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}
