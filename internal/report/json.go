package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/privacygrade/internal/model"
)

// JSONWriter outputs reports as JSON.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint indents with two spaces.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the report.
func (w *JSONWriter) Write(report *model.DetailedReport) (int, error) {
	return w.writeJSON(report)
}

// WriteBatch outputs the entries as an array.
func (w *JSONWriter) WriteBatch(entries []Entry) (int, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return w.writeJSON(entries)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}
	data = append(data, '\n')
	return w.output.Write(data)
}

// VersionedReport wraps a report with the version that produced it.
type VersionedReport struct {
	Version string                `json:"version"`
	Report  *model.DetailedReport `json:"report,omitempty"`
	Entries []Entry               `json:"entries,omitempty"`
}

// FullJSONWriter outputs reports wrapped with version metadata.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a FullJSONWriter.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the report with its version.
func (w *FullJSONWriter) Write(report *model.DetailedReport) (int, error) {
	return w.writeJSON(VersionedReport{Version: w.version, Report: report})
}

// WriteBatch outputs the entries with the version.
func (w *FullJSONWriter) WriteBatch(entries []Entry) (int, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return w.writeJSON(VersionedReport{Version: w.version, Entries: entries})
}
