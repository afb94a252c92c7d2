package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/privacygrade/internal/fingerprint"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/observe"
	"github.com/nao1215/privacygrade/internal/score"
)

// DefaultRepaintInterval is the minimum time between two grade
// recomputations for the same tab.
const DefaultRepaintInterval = 5 * time.Second

// Painter displays a recomputed grade, for example as a toolbar badge.
type Painter interface {
	Paint(tabID int, grade model.Grade, score int)
}

// PainterFunc adapts a function to Painter.
type PainterFunc func(tabID int, grade model.Grade, score int)

// Paint calls f.
func (f PainterFunc) Paint(tabID int, grade model.Grade, score int) {
	f(tabID, grade, score)
}

// CollectFunc takes a point-in-time observation of the page at pageURL.
type CollectFunc func(ctx context.Context, pageURL string) (model.Snapshot, error)

// Monitor routes events into a registry and answers queries.
type Monitor struct {
	registry *observe.Registry

	// engine answers on-demand queries; background scores repaints.
	engine     *score.Engine
	background *score.Engine

	painter  Painter
	interval time.Duration
	strategy observe.MergeStrategy
	logger   *slog.Logger
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithRegistry sets the registry. By default a Monitor owns a new one.
func WithRegistry(r *observe.Registry) Option {
	return func(m *Monitor) {
		m.registry = r
	}
}

// WithEngine sets the engine used for GetScore, GetDetailedReport and
// FreshReport.
func WithEngine(e *score.Engine) Option {
	return func(m *Monitor) {
		m.engine = e
	}
}

// WithBackgroundEngine sets the engine used for repaints.
func WithBackgroundEngine(e *score.Engine) Option {
	return func(m *Monitor) {
		m.background = e
	}
}

// WithPainter sets where repainted grades go.
func WithPainter(p Painter) Option {
	return func(m *Monitor) {
		m.painter = p
	}
}

// WithRepaintInterval sets the repaint debounce interval.
func WithRepaintInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d >= 0 {
			m.interval = d
		}
	}
}

// WithMergeStrategy sets how fresh observations are merged.
func WithMergeStrategy(s observe.MergeStrategy) Option {
	return func(m *Monitor) {
		m.strategy = s
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// New creates a Monitor. Without options it scores queries with the
// on-demand penalty table and repaints with the continuous one.
func New(opts ...Option) *Monitor {
	m := &Monitor{
		interval: DefaultRepaintInterval,
		strategy: observe.MergeLargest,
	}
	for _, opt := range opts {
		opt(m)
	}

	if m.logger == nil {
		m.logger = slog.Default()
	}
	if m.registry == nil {
		m.registry = observe.NewRegistry(observe.WithLogger(m.logger))
	}
	if m.engine == nil {
		m.engine = score.New()
	}
	if m.background == nil {
		m.background = score.New(score.WithPenalties(score.ContinuousPenalties()))
	}
	if m.painter == nil {
		m.painter = PainterFunc(func(int, model.Grade, int) {})
	}
	return m
}

// Registry returns the monitor's registry.
func (m *Monitor) Registry() *observe.Registry {
	return m.registry
}

// OnTabLoadStarted starts a new page visit for the tab.
func (m *Monitor) OnTabLoadStarted(tabID int, url string) {
	m.registry.Open(tabID, url)
}

// OnTabClosed ends the tab's page visit.
func (m *Monitor) OnTabClosed(tabID int) {
	m.registry.Close(tabID)
}

// OnRequestObserved attributes a network request to the tab.
func (m *Monitor) OnRequestObserved(tabID int, url string) {
	if out := m.registry.RecordRequest(tabID, url); out.NewTracker {
		m.repaint(tabID)
	}
}

// OnResponseHeadersObserved records the Set-Cookie headers of a response.
func (m *Monitor) OnResponseHeadersObserved(tabID int, headers []model.Header) {
	if m.registry.RecordResponseHeaders(tabID, headers) > 0 {
		m.repaint(tabID)
	}
}

// OnFingerprintSignal counts one fingerprinting signal.
func (m *Monitor) OnFingerprintSignal(tabID int, sig fingerprint.Signal) {
	if out := m.registry.RecordFingerprintSignal(tabID, sig); out.Alert {
		m.repaint(tabID)
	}
}

// OnFormsObserved records form field totals for the tab.
func (m *Monitor) OnFormsObserved(tabID int, forms model.FormSignal) {
	m.registry.RecordFormSignal(tabID, forms)
}

// OnPermissionRequested records a device permission request.
func (m *Monitor) OnPermissionRequested(tabID int, name string) {
	if m.registry.RecordPermission(tabID, name) {
		m.repaint(tabID)
	}
}

// repaint recomputes and paints the tab's grade unless the debounce
// interval has not elapsed.
func (m *Monitor) repaint(tabID int) {
	var result model.ScoreResult
	grade, painted := m.registry.Repaint(tabID, m.interval, func(s model.Snapshot) model.Grade {
		result = m.background.Score(s)
		return result.Grade
	})
	if !painted {
		return
	}
	m.logger.Debug("repainting grade", "tab", tabID, "grade", grade, "score", result.FinalScore)
	m.painter.Paint(tabID, grade, result.FinalScore)
}

// GetScore scores the tab's current page. An untracked tab gets the
// default A+ verdict.
func (m *Monitor) GetScore(tabID int) model.ScoreResult {
	snap, ok := m.registry.Snapshot(tabID)
	if !ok {
		return score.Default()
	}
	return m.engine.Score(snap)
}

// GetDetailedReport builds the full report for the tab's current page.
func (m *Monitor) GetDetailedReport(tabID int) model.DetailedReport {
	snap, ok := m.registry.Snapshot(tabID)
	if !ok {
		return m.engine.DefaultReport()
	}
	return m.engine.DetailedReport(snap)
}

// FreshReport collects a fresh observation of the tab's page, merges it
// with the live evidence and reports on the result. The live page is not
// changed. It returns observe.ErrStaleTab if the tab closed or navigated
// while collect ran.
func (m *Monitor) FreshReport(ctx context.Context, tabID int, collect CollectFunc) (model.DetailedReport, error) {
	tok, ok := m.registry.Begin(tabID)
	if !ok {
		return model.DetailedReport{}, ErrUntrackedTab
	}

	fresh, err := collect(ctx, tok.URL)
	if err != nil {
		return model.DetailedReport{}, fmt.Errorf("failed to collect %s: %w", tok.URL, err)
	}

	merged, err := m.registry.MergeFresh(tok, fresh, m.strategy)
	if err != nil {
		return model.DetailedReport{}, err
	}

	m.logger.Debug("merged fresh observation",
		"tab", tabID,
		"strategy", m.strategy,
		"trackers", len(merged.Trackers),
		"cookies", len(merged.Cookies),
	)
	return m.engine.DetailedReport(merged), nil
}
