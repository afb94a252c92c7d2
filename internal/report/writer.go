package report

import (
	"io"
	"strings"

	"github.com/nao1215/privacygrade/internal/model"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Writer writes graded pages.
type Writer interface {
	// Write outputs one detailed report.
	Write(report *model.DetailedReport) (int, error)

	// WriteBatch outputs the results of grading several captures.
	WriteBatch(entries []Entry) (int, error)
}

// Entry is one graded source in a batch.
type Entry struct {
	// Source names what was graded, such as a capture path or a URL.
	Source string               `json:"source"`
	Report model.DetailedReport `json:"report"`
	Error  string               `json:"error,omitempty"`
}

// Failed reports whether grading the source failed.
func (e Entry) Failed() bool {
	return e.Error != ""
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// title turns identifiers like "long_term" into "Long Term".
func title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// gradeCounts counts the successful entries per grade.
func gradeCounts(entries []Entry) map[model.Grade]int {
	counts := make(map[model.Grade]int)
	for _, e := range entries {
		if !e.Failed() {
			counts[e.Report.Grade]++
		}
	}
	return counts
}

// truncateString shortens s to maxLen bytes with an ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
