package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/privacygrade/internal/model"
)

// MarkdownWriter outputs reports as GitHub flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the report.
func (w *MarkdownWriter) Write(report *model.DetailedReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeScore(md, report)
	w.writeEvidence(md, report)
	w.writeRecommendations(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.DetailedReport) {
	md.H1("Privacy Grade Report")
	md.PlainText("")

	domain := report.Domain
	if domain == "" {
		domain = "(untracked)"
	}
	rows := [][]string{
		{"Domain", "`" + domain + "`"},
		{"Grade", "**" + string(report.Grade) + "**"},
		{"Score", strconv.Itoa(report.FinalScore) + "/100"},
		{"Risk", title(report.Summary.RiskLevel)},
		{"Date", report.Timestamp.Format("2006-01-02 15:04:05 MST")},
	}
	if report.URL != "" {
		rows = append(rows, []string{"URL", report.URL})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(report.Badges) > 0 {
		badges := make([]string, len(report.Badges))
		for i, b := range report.Badges {
			badges[i] = badgeIcon(b.Kind) + " " + b.Text
		}
		md.BulletList(badges...)
		md.PlainText("")
	}

	w.writeAlert(md, report)
}

func badgeIcon(kind model.BadgeKind) string {
	switch kind {
	case model.BadgeDanger:
		return "🔴"
	case model.BadgeWarning:
		return "🟡"
	default:
		return "🔵"
	}
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, report *model.DetailedReport) {
	switch report.Grade {
	case model.GradeF:
		md.Cautionf("This page scores %d/100. It tracks visitors heavily.", report.FinalScore)
	case model.GradeD:
		md.Warningf("This page scores %d/100. Expect significant tracking.", report.FinalScore)
	case model.GradeC, model.GradeB:
		md.Importantf("This page scores %d/100. Some tracking was observed.", report.FinalScore)
	case model.GradeA:
		md.Note("Little tracking was observed on this page.")
	default:
		md.Tip("No significant tracking was observed on this page.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeScore(md *markdown.Markdown, report *model.DetailedReport) {
	md.H2("Score Breakdown")
	md.PlainText("")

	rows := make([][]string, 0, len(report.Breakdown)+3)
	for _, b := range report.Breakdown {
		rows = append(rows, []string{
			title(string(b.Factor)),
			fmt.Sprintf("%d/%d", b.Points, b.Max),
			strconv.Itoa(b.Percentage) + "%",
			title(string(b.Level)),
		})
	}
	rows = append(rows,
		[]string{"Raw score", strconv.Itoa(report.RawScore), "-", "-"},
		[]string{"Request penalty", "-" + strconv.Itoa(report.ThirdPartyPenalty), "-", "-"},
		[]string{"**Final score**", "**" + strconv.Itoa(report.FinalScore) + "**", "-", "-"},
	)
	md.Table(markdown.TableSet{
		Header: []string{"Factor", "Points", "Percentage", "Level"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeLostPoints(md, report)
}

// writeLostPoints charts where the page lost points.
func (w *MarkdownWriter) writeLostPoints(md *markdown.Markdown, report *model.DetailedReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Points Lost by Factor"),
		piechart.WithShowData(true),
	)
	lost := false
	for _, b := range report.Breakdown {
		if missing := b.Max - b.Points; missing > 0 {
			chart.LabelAndIntValue(title(string(b.Factor)), uint64(missing))
			lost = true
		}
	}
	if !lost {
		return
	}
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeEvidence(md *markdown.Markdown, report *model.DetailedReport) {
	md.H2("Evidence")
	md.PlainText("")

	s := report.Summary
	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Count"},
		Rows: [][]string{
			{"Trackers", strconv.Itoa(s.Trackers)},
			{"Cookies", strconv.Itoa(s.Cookies)},
			{"Tracking cookies", strconv.Itoa(report.Cookies.Tracking)},
			{"Long-term cookies", strconv.Itoa(report.Cookies.LongTerm)},
			{"Fingerprint signals", strconv.Itoa(s.FingerprintSignals)},
			{"Permissions", strconv.Itoa(s.Permissions)},
			{"Third-party requests", strconv.Itoa(s.ThirdPartyRequests)},
		},
	})
	md.PlainText("")

	if len(report.Trackers.UniqueDomains) > 0 {
		md.H3("Tracker Domains")
		md.PlainText("")
		domains := make([]string, len(report.Trackers.UniqueDomains))
		for i, d := range report.Trackers.UniqueDomains {
			domains[i] = "`" + d + "`"
		}
		md.BulletList(domains...)
		md.PlainText("")
	}

	if len(report.Fingerprinting.Detected) > 0 {
		md.H3("Fingerprinting")
		md.PlainText("")
		rows := make([][]string, len(report.Fingerprinting.Detected))
		for i, d := range report.Fingerprinting.Detected {
			rows[i] = []string{
				title(string(d.Technique)),
				strconv.Itoa(d.Count),
				fmt.Sprintf("%.0f%%", d.Confidence*100),
				title(d.Risk.String()),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"Technique", "Calls", "Confidence", "Risk"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeRecommendations(md *markdown.Markdown, report *model.DetailedReport) {
	md.H2("Recommendations")
	md.PlainText("")

	if len(report.Recommendations) == 0 {
		md.PlainText("Nothing to improve.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.Recommendations))
	for i, r := range report.Recommendations {
		rows[i] = []string{title(r.Priority.String()), title(string(r.Factor)), r.Message}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Priority", "Factor", "Recommendation"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [privacygrade](https://github.com/nao1215/privacygrade)*")
}

// WriteBatch outputs a table of grades with their distribution.
func (w *MarkdownWriter) WriteBatch(entries []Entry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Privacy Grades")
	md.PlainText("")

	rows := make([][]string, len(entries))
	for i, e := range entries {
		if e.Failed() {
			rows[i] = []string{"`" + truncateString(e.Source, 50) + "`", "-", "-", "-", "❌ " + truncateString(e.Error, 60)}
			continue
		}
		rows[i] = []string{
			"`" + truncateString(e.Source, 50) + "`",
			e.Report.Domain,
			"**" + string(e.Report.Grade) + "**",
			strconv.Itoa(e.Report.FinalScore),
			strconv.Itoa(e.Report.Summary.Trackers) + " trackers",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Source", "Domain", "Grade", "Score", "Notes"},
		Rows:   rows,
	})
	md.PlainText("")

	counts := gradeCounts(entries)
	if len(counts) > 0 {
		chart := piechart.NewPieChart(
			io.Discard,
			piechart.WithTitle("Grade Distribution"),
			piechart.WithShowData(true),
		)
		for _, g := range model.Grades() {
			if counts[g] > 0 {
				chart.LabelAndIntValue(string(g), uint64(counts[g]))
			}
		}
		md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
		md.PlainText("")
	}

	w.writeFooter(md)
	return len(md.String()), md.Build()
}
