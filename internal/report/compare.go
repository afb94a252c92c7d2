package report

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Direction tells whether a page's privacy got better or worse.
type Direction string

// Directions of a score change.
const (
	DirectionImproved  Direction = "improved"
	DirectionWorsened  Direction = "worsened"
	DirectionUnchanged Direction = "unchanged"
)

// FactorDelta is the change of one factor's points.
type FactorDelta struct {
	Factor   model.Factor `json:"factor"`
	Previous int          `json:"previous"`
	Current  int          `json:"current"`
	Delta    int          `json:"delta"`
}

// DiffLine is one line of a text diff. Op is "+", "-" or " ".
type DiffLine struct {
	Op   string `json:"op"`
	Text string `json:"text"`
}

// Comparison describes how the grade of a page changed between two
// observations, such as before and after a site update.
type Comparison struct {
	PreviousSource string `json:"previous_source"`
	CurrentSource  string `json:"current_source"`

	PreviousGrade model.Grade `json:"previous_grade"`
	CurrentGrade  model.Grade `json:"current_grade"`
	PreviousScore int         `json:"previous_score"`
	CurrentScore  int         `json:"current_score"`
	ScoreDelta    int         `json:"score_delta"`
	Direction     Direction   `json:"direction"`

	Factors []FactorDelta `json:"factors"`

	AddedTrackers     []string          `json:"added_trackers,omitempty"`
	RemovedTrackers   []string          `json:"removed_trackers,omitempty"`
	AddedTechniques   []model.Technique `json:"added_techniques,omitempty"`
	RemovedTechniques []model.Technique `json:"removed_techniques,omitempty"`

	// Diff is a line diff of the two text reports. It is only filled in
	// by WithReportDiff.
	Diff []DiffLine `json:"diff,omitempty"`
}

// CompareOption configures Compare.
type CompareOption func(*compareOptions)

type compareOptions struct {
	reportDiff bool
}

// WithReportDiff adds a line diff of the two text reports.
func WithReportDiff(enabled bool) CompareOption {
	return func(o *compareOptions) {
		o.reportDiff = enabled
	}
}

// Compare describes the change from previous to current.
func Compare(previous, current Entry, opts ...CompareOption) *Comparison {
	var o compareOptions
	for _, opt := range opts {
		opt(&o)
	}

	prev, cur := previous.Report, current.Report
	c := &Comparison{
		PreviousSource: previous.Source,
		CurrentSource:  current.Source,
		PreviousGrade:  prev.Grade,
		CurrentGrade:   cur.Grade,
		PreviousScore:  prev.FinalScore,
		CurrentScore:   cur.FinalScore,
		ScoreDelta:     cur.FinalScore - prev.FinalScore,
	}
	switch {
	case c.ScoreDelta > 0:
		c.Direction = DirectionImproved
	case c.ScoreDelta < 0:
		c.Direction = DirectionWorsened
	default:
		c.Direction = DirectionUnchanged
	}

	for _, f := range model.Factors() {
		p, q := prev.Categories.Points(f), cur.Categories.Points(f)
		c.Factors = append(c.Factors, FactorDelta{Factor: f, Previous: p, Current: q, Delta: q - p})
	}

	c.AddedTrackers, c.RemovedTrackers = setChanges(prev.Trackers.UniqueDomains, cur.Trackers.UniqueDomains)
	c.AddedTechniques, c.RemovedTechniques = setChanges(techniques(prev), techniques(cur))

	if o.reportDiff {
		c.Diff = LineDiff(plainText(&prev), plainText(&cur))
	}
	return c
}

func techniques(r model.DetailedReport) []model.Technique {
	out := make([]model.Technique, 0, len(r.Fingerprinting.Detected))
	for _, d := range r.Fingerprinting.Detected {
		out = append(out, d.Technique)
	}
	return out
}

// setChanges returns the sorted items only in current and only in previous.
func setChanges[T ~string](previous, current []T) (added, removed []T) {
	for _, item := range current {
		if !slices.Contains(previous, item) && !slices.Contains(added, item) {
			added = append(added, item)
		}
	}
	for _, item := range previous {
		if !slices.Contains(current, item) && !slices.Contains(removed, item) {
			removed = append(removed, item)
		}
	}
	slices.Sort(added)
	slices.Sort(removed)
	return added, removed
}

// plainText renders a report as verbose text without the date line.
func plainText(r *model.DetailedReport) string {
	var sb strings.Builder
	_, _ = NewSimpleWriter(&sb, WithVerbose(true)).Write(r)
	lines := strings.Split(sb.String(), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if !strings.HasPrefix(line, "Date:") {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

// LineDiff returns a line-level diff from a to b.
func LineDiff(a, b string) []DiffLine {
	dmp := diffmatchpatch.New()
	chars1, chars2, lineArray := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(chars1, chars2, false), lineArray)

	var out []DiffLine
	for _, d := range diffs {
		op := " "
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = "+"
		case diffmatchpatch.DiffDelete:
			op = "-"
		case diffmatchpatch.DiffEqual:
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Op: op, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// ComparisonWriter writes comparisons.
type ComparisonWriter interface {
	WriteComparison(c *Comparison) (int, error)
}

func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}

// WriteComparison outputs the comparison as text. Only changed diff lines
// are printed.
func (w *SimpleWriter) WriteComparison(c *Comparison) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n                       PRIVACY GRADE COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
	fmt.Fprintf(&sb, "Previous: %s  %s (%d/100)\n", c.PreviousSource, c.PreviousGrade, c.PreviousScore)
	fmt.Fprintf(&sb, "Current:  %s  %s (%d/100)\n", c.CurrentSource, c.CurrentGrade, c.CurrentScore)
	fmt.Fprintf(&sb, "Change:   %s (%s)\n\n", formatDelta(c.ScoreDelta), c.Direction)

	rule(&sb, "FACTORS")
	for _, f := range c.Factors {
		fmt.Fprintf(&sb, "  %-15s %3d -> %3d  %s\n", title(string(f.Factor))+":", f.Previous, f.Current, formatDelta(f.Delta))
	}
	sb.WriteString("\n")

	if len(c.AddedTrackers)+len(c.RemovedTrackers)+len(c.AddedTechniques)+len(c.RemovedTechniques) > 0 {
		rule(&sb, "CHANGES")
		for _, d := range c.AddedTrackers {
			fmt.Fprintf(&sb, "  [+] tracker %s\n", d)
		}
		for _, d := range c.RemovedTrackers {
			fmt.Fprintf(&sb, "  [-] tracker %s\n", d)
		}
		for _, t := range c.AddedTechniques {
			fmt.Fprintf(&sb, "  [+] fingerprinting %s\n", t)
		}
		for _, t := range c.RemovedTechniques {
			fmt.Fprintf(&sb, "  [-] fingerprinting %s\n", t)
		}
		sb.WriteString("\n")
	}

	if len(c.Diff) > 0 {
		rule(&sb, "REPORT DIFF")
		for _, line := range c.Diff {
			if line.Op != " " {
				fmt.Fprintf(&sb, "%s %s\n", line.Op, line.Text)
			}
		}
		sb.WriteString("\n")
	}

	return io.WriteString(w.output, sb.String())
}

// WriteComparison outputs the comparison as JSON.
func (w *JSONWriter) WriteComparison(c *Comparison) (int, error) {
	return w.writeJSON(c)
}

// WriteComparison outputs the comparison as Markdown.
func (w *MarkdownWriter) WriteComparison(c *Comparison) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Privacy Grade Comparison")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"", "Source", "Grade", "Score"},
		Rows: [][]string{
			{"Previous", "`" + c.PreviousSource + "`", "**" + string(c.PreviousGrade) + "**", strconv.Itoa(c.PreviousScore)},
			{"Current", "`" + c.CurrentSource + "`", "**" + string(c.CurrentGrade) + "**", strconv.Itoa(c.CurrentScore)},
		},
	})
	md.PlainText("")

	switch c.Direction {
	case DirectionWorsened:
		md.Warningf("The score dropped by %d points.", -c.ScoreDelta)
	case DirectionImproved:
		md.Tipf("The score rose by %d points.", c.ScoreDelta)
	default:
		md.Note("The score did not change.")
	}
	md.PlainText("")

	md.H2("Factors")
	md.PlainText("")
	rows := make([][]string, 0, len(c.Factors))
	for _, f := range c.Factors {
		rows = append(rows, []string{title(string(f.Factor)), strconv.Itoa(f.Previous), strconv.Itoa(f.Current), formatDelta(f.Delta)})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Factor", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(c.AddedTrackers)+len(c.RemovedTrackers) > 0 {
		md.H2("Tracker Changes")
		md.PlainText("")
		items := make([]string, 0, len(c.AddedTrackers)+len(c.RemovedTrackers))
		for _, d := range c.AddedTrackers {
			items = append(items, "➕ `"+d+"`")
		}
		for _, d := range c.RemovedTrackers {
			items = append(items, "➖ `"+d+"`")
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(c.AddedTechniques)+len(c.RemovedTechniques) > 0 {
		md.H2("Fingerprinting Changes")
		md.PlainText("")
		items := make([]string, 0, len(c.AddedTechniques)+len(c.RemovedTechniques))
		for _, t := range c.AddedTechniques {
			items = append(items, "➕ "+title(string(t)))
		}
		for _, t := range c.RemovedTechniques {
			items = append(items, "➖ "+title(string(t)))
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(c.Diff) > 0 {
		var sb strings.Builder
		for _, line := range c.Diff {
			sb.WriteString(line.Op + " " + line.Text + "\n")
		}
		md.H2("Report Diff")
		md.PlainText("")
		md.CodeBlocks(markdown.SyntaxHighlight("diff"), strings.TrimSuffix(sb.String(), "\n"))
		md.PlainText("")
	}

	return len(md.String()), md.Build()
}
