package pipeline

import (
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/monitor"
)

// Job is one capture being graded. Steps fill in the report as they run.
type Job struct {
	// Capture is the path of the JSON Lines event capture.
	Capture string `json:"capture"`

	// Document is the path of the page's HTML, used for the fresh
	// observation. Empty skips it.
	Document string `json:"document,omitempty"`

	// TabID selects the graded tab. Zero means the tab of the last page
	// load in the capture.
	TabID int `json:"tab_id"`

	Report model.DetailedReport `json:"report"`

	// Fresh is true when Report includes a fresh observation.
	Fresh bool `json:"fresh"`

	PerformedSteps []string `json:"performed_steps"`

	Error        error  `json:"-"`
	ErrorMessage string `json:"error,omitempty"`
	TimedOut     bool   `json:"timed_out,omitempty"`

	monitor *monitor.Monitor
}

// NewJob creates a Job that replays into m. A nil m gets a default
// monitor.
func NewJob(capture string, m *monitor.Monitor) *Job {
	if m == nil {
		m = monitor.New()
	}
	return &Job{
		Capture:        capture,
		PerformedSteps: make([]string, 0),
		monitor:        m,
	}
}

// Monitor returns the monitor the job replays into.
func (j *Job) Monitor() *monitor.Monitor {
	return j.monitor
}

// Failed reports whether a step failed.
func (j *Job) Failed() bool {
	return j.Error != nil || j.ErrorMessage != ""
}
