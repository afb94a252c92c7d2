package score

import (
	"time"

	"github.com/google/uuid"
	"github.com/nao1215/privacygrade/internal/cookie"
	"github.com/nao1215/privacygrade/internal/fingerprint"
	"github.com/nao1215/privacygrade/internal/model"
	"github.com/nao1215/privacygrade/internal/tracker"
)

// Engine scores snapshots. It holds only configuration and is safe for
// concurrent use.
//
// Design decision: The engine never sees a live page, only a Snapshot
// copied out of the registry. Scoring is then a pure function of the
// snapshot plus the penalty table, so the same evidence always yields the
// same grade, and one Engine can serve every tab. Two engines with
// different penalty tables are how queries and background repaints differ.
//
// The clock and the ID generator are injected so reports can be compared
// byte for byte in tests.
type Engine struct {
	penalties  PenaltyTable
	thresholds fingerprint.Thresholds
	now        func() time.Time
	newID      func() string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPenalties sets the third-party penalty table.
func WithPenalties(t PenaltyTable) Option {
	return func(e *Engine) {
		e.penalties = t
	}
}

// WithThresholds sets the fingerprint thresholds used in detailed reports.
func WithThresholds(t fingerprint.Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = t
	}
}

// WithClock sets the clock used for cookie expiry and report timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithIDGenerator sets the function that assigns report identifiers.
func WithIDGenerator(newID func() string) Option {
	return func(e *Engine) {
		e.newID = newID
	}
}

// New creates an Engine with the on-demand penalty table.
func New(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}

	if e.penalties == nil {
		e.penalties = OnDemandPenalties()
	}
	if e.thresholds == nil {
		e.thresholds = fingerprint.DefaultThresholds()
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// Penalties returns the engine's penalty table.
func (e *Engine) Penalties() PenaltyTable {
	return e.penalties
}

// Default returns the verdict for a page with no observations.
func Default() model.ScoreResult {
	return result(model.CategoryScores{
		Trackers:       model.FactorTrackers.MaxPoints(),
		Cookies:        model.FactorCookies.MaxPoints(),
		Fingerprinting: model.FactorFingerprinting.MaxPoints(),
		Permissions:    model.FactorPermissions.MaxPoints(),
		Forms:          model.FactorForms.MaxPoints(),
	}, 0)
}

// Score computes the weighted score of a snapshot.
func (e *Engine) Score(s model.Snapshot) model.ScoreResult {
	analyzer := cookie.NewAnalyzer(cookie.WithClock(e.now))
	categories := model.CategoryScores{
		Trackers:       trackerPoints(s),
		Cookies:        cookiePoints(s.Cookies, analyzer),
		Fingerprinting: fingerprintPoints(s.Fingerprinting),
		Permissions:    permissionPoints(s.Permissions),
		Forms:          formPoints(s.Forms),
	}
	return result(categories, e.penalties.Penalty(s.Requests.ThirdParty))
}

// Grade returns only the letter grade of a snapshot.
func (e *Engine) Grade(s model.Snapshot) model.Grade {
	return e.Score(s).Grade
}

func result(categories model.CategoryScores, penalty int) model.ScoreResult {
	raw := categories.Total()
	final := min(max(raw-penalty, 0), 100)
	return model.ScoreResult{
		Categories:        categories,
		RawScore:          raw,
		ThirdPartyPenalty: penalty,
		FinalScore:        final,
		Grade:             model.GradeFor(final),
		Breakdown:         breakdown(categories),
		Recommendations:   recommendations(categories),
	}
}

// breakdown computes each factor's rounded percentage of max and level.
func breakdown(c model.CategoryScores) []model.FactorBreakdown {
	out := make([]model.FactorBreakdown, 0, len(model.Factors()))
	for _, f := range model.Factors() {
		points, maxPoints := c.Points(f), f.MaxPoints()
		percentage := (points*100 + maxPoints/2) / maxPoints
		out = append(out, model.FactorBreakdown{
			Factor:     f,
			Points:     points,
			Max:        maxPoints,
			Percentage: percentage,
			Level:      model.LevelFor(percentage),
		})
	}
	return out
}

// DetailedReport scores a snapshot and adds the summary and statistics.
func (e *Engine) DetailedReport(s model.Snapshot) model.DetailedReport {
	r := e.Score(s)
	analyzer := cookie.NewAnalyzer(cookie.WithClock(e.now))

	return model.DetailedReport{
		ID:                e.newID(),
		Domain:            s.Domain,
		URL:               s.URL,
		Tracked:           true,
		Grade:             r.Grade,
		Color:             r.Grade.Color(),
		FinalScore:        r.FinalScore,
		RawScore:          r.RawScore,
		ThirdPartyPenalty: r.ThirdPartyPenalty,
		Categories:        r.Categories,
		Breakdown:         r.Breakdown,
		Recommendations:   r.Recommendations,
		Summary: model.Summary{
			Grade:              r.Grade,
			Trackers:           len(s.Trackers),
			Cookies:            len(s.Cookies),
			FingerprintSignals: s.FingerprintSignals(),
			Permissions:        len(s.Permissions),
			ThirdPartyRequests: s.Requests.ThirdParty,
			RiskLevel:          r.Grade.RiskLevel(),
		},
		Badges:         Badges(s),
		Trackers:       tracker.Summarize(s.Trackers),
		Cookies:        analyzer.Summarize(s.Cookies),
		Fingerprinting: e.thresholds.Report(s.Fingerprinting, s.CanvasEntropy),
		Timestamp:      e.now(),
	}
}

// DefaultReport returns the detailed report of an untracked page.
func (e *Engine) DefaultReport() model.DetailedReport {
	r := Default()
	return model.DetailedReport{
		ID:              e.newID(),
		Grade:           r.Grade,
		Color:           r.Grade.Color(),
		FinalScore:      r.FinalScore,
		RawScore:        r.RawScore,
		Categories:      r.Categories,
		Breakdown:       r.Breakdown,
		Recommendations: r.Recommendations,
		Summary: model.Summary{
			Grade:     r.Grade,
			RiskLevel: r.Grade.RiskLevel(),
		},
		Badges:         Badges(model.Snapshot{}),
		Trackers:       tracker.Summarize(nil),
		Fingerprinting: model.FingerprintReport{Detected: []model.DetectedTechnique{}},
		Timestamp:      e.now(),
	}
}
