package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/score"
)

var reportTime = time.Date(2026, time.March, 14, 9, 26, 53, 0, time.UTC)

// createTestReport grades a page with trackers, cookies and a canvas probe.
func createTestReport() *model.DetailedReport {
	engine := score.New(
		score.WithClock(func() time.Time { return reportTime }),
		score.WithIDGenerator(func() string { return "report-1" }),
	)
	snap := model.Snapshot{
		Domain: "news.example",
		URL:    "https://news.example/today",
		Trackers: []string{
			"advertising:stats.doubleclick.net",
			"analytics:www.google-analytics.com",
			"social:connect.facebook.net",
		},
		Cookies: []model.Cookie{
			{Name: "_ga", Value: "GA1.2.3", Expires: reportTime.Add(400 * 24 * time.Hour).Format(time.RFC3339)},
			{Name: "sid", Value: "abc"},
		},
		Fingerprinting: map[model.Technique]int{model.TechniqueCanvas: 4},
		Permissions:    []string{"geolocation"},
		Requests:       model.RequestCounts{Total: 40, ThirdParty: 30},
	}
	report := engine.DetailedReport(snap)
	return &report
}

func createTestEntries() []Entry {
	report := createTestReport()
	clean := score.New().DefaultReport()
	return []Entry{
		{Source: "captures/news.jsonl", Report: *report},
		{Source: "captures/blank.jsonl", Report: clean},
		{Source: "captures/broken.jsonl", Error: "capture contains no page load"},
	}
}

func TestSimpleWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes header, score and evidence", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		if _, err := NewSimpleWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"PRIVACY GRADE REPORT",
			"news.example",
			"Grade:    " + string(report.Grade),
			"SCORE",
			"Fingerprinting:",
			"EVIDENCE",
			"Trackers:             3",
			"Advertising",
			"Canvas",
			"RECOMMENDATIONS",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("lists tracker domains only when verbose", func(t *testing.T) {
		t.Parallel()

		var quiet, verbose bytes.Buffer
		report := createTestReport()
		if _, err := NewSimpleWriter(&quiet).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := NewSimpleWriter(&verbose, WithVerbose(true)).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if strings.Contains(quiet.String(), "[+] stats.doubleclick.net") {
			t.Error("expected no tracker domains without verbose")
		}
		if !strings.Contains(verbose.String(), "[+] stats.doubleclick.net") {
			t.Error("expected tracker domains with verbose")
		}
	})

	t.Run("hides empty sections unless asked", func(t *testing.T) {
		t.Parallel()

		report := score.New().DefaultReport()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).Write(&report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "EVIDENCE") || strings.Contains(buf.String(), "RECOMMENDATIONS") {
			t.Error("expected empty sections to be hidden")
		}
		if !strings.Contains(buf.String(), "(untracked)") {
			t.Error("expected the untracked marker")
		}

		buf.Reset()
		if _, err := NewSimpleWriter(&buf, WithShowEmpty(true)).Write(&report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "Nothing to improve") {
			t.Error("expected empty sections to be shown")
		}
	})

	t.Run("writes a batch summary", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewSimpleWriter(&buf).WriteBatch(createTestEntries()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		if !strings.Contains(output, "captures/broken.jsonl") || !strings.Contains(output, "capture contains no page load") {
			t.Error("expected the failed entry with its error")
		}
		if !strings.Contains(output, "Graded: 2  Failed: 1") {
			t.Errorf("expected graded and failed counts, got:\n%s", output)
		}
		if !strings.Contains(output, "A+: 1") {
			t.Error("expected the grade distribution")
		}
	})
}

func TestJSONWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes the report as compact JSON", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		if _, err := NewJSONWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Count(buf.String(), "\n") != 1 {
			t.Error("expected compact single-line output")
		}

		var decoded model.DetailedReport
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.ID != "report-1" || decoded.Grade != report.Grade || len(decoded.Badges) != len(report.Badges) {
			t.Errorf("unexpected decoded report %+v", decoded)
		}
	})

	t.Run("pretty prints when asked", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(createTestReport()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(buf.String(), "\n  \"id\": \"report-1\"") {
			t.Errorf("expected indented output, got:\n%s", buf.String())
		}
	})

	t.Run("writes a batch as an array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteBatch(createTestEntries()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		var decoded []Entry
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(decoded) != 3 || !decoded[2].Failed() || decoded[0].Report.Domain != "news.example" {
			t.Errorf("unexpected entries %+v", decoded)
		}
	})

	t.Run("empty batch is an empty array", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewJSONWriter(&buf).WriteBatch(nil); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := strings.TrimSpace(buf.String()); got != "[]" {
			t.Errorf("expected [], got %s", got)
		}
	})
}

func TestFullJSONWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewFullJSONWriter(&buf, "v1.2.3").Write(createTestReport()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded VersionedReport
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Version != "v1.2.3" || decoded.Report == nil || decoded.Report.Domain != "news.example" {
		t.Errorf("unexpected wrapper %+v", decoded)
	}
}

func TestMarkdownWriter(t *testing.T) {
	t.Parallel()

	t.Run("writes report sections and charts", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		report := createTestReport()
		if _, err := NewMarkdownWriter(&buf).Write(report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{
			"# Privacy Grade Report",
			"`news.example`",
			"## Score Breakdown",
			"```mermaid",
			"Points Lost by Factor",
			"## Evidence",
			"### Tracker Domains",
			"`stats.doubleclick.net`",
			"### Fingerprinting",
			"## Recommendations",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})

	t.Run("clean page has no chart", func(t *testing.T) {
		t.Parallel()

		report := score.New().DefaultReport()
		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).Write(&report); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if strings.Contains(buf.String(), "```mermaid") {
			t.Error("expected no chart when no points were lost")
		}
		if !strings.Contains(buf.String(), "Nothing to improve.") {
			t.Error("expected the empty recommendations note")
		}
	})

	t.Run("writes a batch with grade distribution", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		if _, err := NewMarkdownWriter(&buf).WriteBatch(createTestEntries()); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		output := buf.String()
		for _, want := range []string{"# Privacy Grades", "Grade Distribution", "`captures/broken.jsonl`", "**A+**"} {
			if !strings.Contains(output, want) {
				t.Errorf("expected output to contain %q", want)
			}
		}
	})
}

func TestTitle(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		expected string
	}{
		{"trackers", "Trackers"},
		{"long_term", "Long Term"},
		{"", ""},
	}
	for _, tc := range testCases {
		if got := title(tc.input); got != tc.expected {
			t.Errorf("title(%q): expected %q, got %q", tc.input, tc.expected, got)
		}
	}
}

func TestTruncateString(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is too long", 10, "this is..."},
		{"abcdef", 3, "abc"},
	}
	for _, tc := range testCases {
		if got := truncateString(tc.input, tc.maxLen); got != tc.expected {
			t.Errorf("truncateString(%q, %d): expected %q, got %q", tc.input, tc.maxLen, tc.expected, got)
		}
	}
}
