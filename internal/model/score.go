package model

import "time"

// Factor is one of the five weighted areas that make up a privacy score.
type Factor string

// Scoring factors in report order.
const (
	FactorTrackers       Factor = "trackers"
	FactorCookies        Factor = "cookies"
	FactorFingerprinting Factor = "fingerprinting"
	FactorPermissions    Factor = "permissions"
	FactorForms          Factor = "forms"
)

// Factors returns every factor in report order.
func Factors() []Factor {
	return []Factor{
		FactorTrackers,
		FactorCookies,
		FactorFingerprinting,
		FactorPermissions,
		FactorForms,
	}
}

// MaxPoints returns the weight of the factor.
func (f Factor) MaxPoints() int {
	switch f {
	case FactorTrackers:
		return 40
	case FactorCookies, FactorFingerprinting:
		return 20
	case FactorPermissions, FactorForms:
		return 10
	default:
		return 0
	}
}

// CategoryScores holds the points earned per factor.
type CategoryScores struct {
	Trackers       int `json:"trackers"`
	Cookies        int `json:"cookies"`
	Fingerprinting int `json:"fingerprinting"`
	Permissions    int `json:"permissions"`
	Forms          int `json:"forms"`
}

// Points returns the points earned for a factor.
func (c CategoryScores) Points(f Factor) int {
	switch f {
	case FactorTrackers:
		return c.Trackers
	case FactorCookies:
		return c.Cookies
	case FactorFingerprinting:
		return c.Fingerprinting
	case FactorPermissions:
		return c.Permissions
	case FactorForms:
		return c.Forms
	default:
		return 0
	}
}

// Total returns the sum of all factor points.
func (c CategoryScores) Total() int {
	return c.Trackers + c.Cookies + c.Fingerprinting + c.Permissions + c.Forms
}

// Level is the qualitative bucket of a factor's percentage of max.
type Level string

// Levels from best to worst.
const (
	LevelExcellent  Level = "excellent"
	LevelGood       Level = "good"
	LevelModerate   Level = "moderate"
	LevelConcerning Level = "concerning"
	LevelPoor       Level = "poor"
)

// LevelFor buckets a percentage of max into a Level.
func LevelFor(percentage int) Level {
	switch {
	case percentage >= 80:
		return LevelExcellent
	case percentage >= 60:
		return LevelGood
	case percentage >= 40:
		return LevelModerate
	case percentage >= 20:
		return LevelConcerning
	default:
		return LevelPoor
	}
}

// FactorBreakdown describes how one factor scored.
type FactorBreakdown struct {
	Factor     Factor `json:"factor"`
	Points     int    `json:"points"`
	Max        int    `json:"max"`
	Percentage int    `json:"percentage"`
	Level      Level  `json:"level"`
}

// Recommendation is advice emitted for a poorly scoring factor.
type Recommendation struct {
	Factor   Factor `json:"factor"`
	Priority Risk   `json:"priority"`
	Message  string `json:"message"`
}

// ScoreResult is the outcome of scoring one Snapshot.
type ScoreResult struct {
	Categories CategoryScores `json:"categories"`

	// RawScore is the category sum before the third-party penalty.
	RawScore int `json:"raw_score"`

	// ThirdPartyPenalty is the number of points subtracted for request volume.
	ThirdPartyPenalty int `json:"third_party_penalty"`

	// FinalScore is clamped to [0, 100].
	FinalScore int   `json:"final_score"`
	Grade      Grade `json:"grade"`

	Breakdown       []FactorBreakdown `json:"breakdown"`
	Recommendations []Recommendation  `json:"recommendations"`
}

// Summary is the short digest shown next to a grade.
type Summary struct {
	Grade              Grade  `json:"grade"`
	Trackers           int    `json:"trackers"`
	Cookies            int    `json:"cookies"`
	FingerprintSignals int    `json:"fingerprint_signals"`
	Permissions        int    `json:"permissions"`
	ThirdPartyRequests int    `json:"third_party_requests"`
	RiskLevel          string `json:"risk_level"`
}

// BadgeKind is the severity styling of a Badge.
type BadgeKind string

// Badge kinds from mildest to worst.
const (
	BadgeInfo    BadgeKind = "info"
	BadgeWarning BadgeKind = "warning"
	BadgeDanger  BadgeKind = "danger"
)

// Badge is a short label highlighting one aspect of a page, such as
// "Heavy Tracking (12)".
type Badge struct {
	Text string    `json:"text"`
	Kind BadgeKind `json:"kind"`
}

// TrackerStats summarizes the trackers of a page.
type TrackerStats struct {
	Total         int              `json:"total"`
	ByCategory    map[Category]int `json:"by_category"`
	ByRisk        map[Risk]int     `json:"by_risk"`
	UniqueDomains []string         `json:"unique_domains"`
}

// DetectedTechnique is one fingerprinting technique that crossed its threshold.
type DetectedTechnique struct {
	Technique  Technique `json:"technique"`
	Count      int       `json:"count"`
	Confidence float64   `json:"confidence"`
	Risk       Risk      `json:"risk"`
}

// FingerprintReport summarizes fingerprinting evidence on a page.
type FingerprintReport struct {
	Detected          []DetectedTechnique `json:"detected"`
	RiskScore         int                 `json:"risk_score"`
	AverageConfidence float64             `json:"average_confidence"`
}

// DetailedReport is the full verdict for a page.
type DetailedReport struct {
	ID     string `json:"id"`
	Domain string `json:"domain"`
	URL    string `json:"url,omitempty"`

	// Tracked is false when the page was never observed and the
	// report carries the default verdict.
	Tracked bool `json:"tracked"`

	Grade             Grade             `json:"grade"`
	Color             string            `json:"color"`
	FinalScore        int               `json:"final_score"`
	RawScore          int               `json:"raw_score"`
	ThirdPartyPenalty int               `json:"third_party_penalty"`
	Categories        CategoryScores    `json:"categories"`
	Breakdown         []FactorBreakdown `json:"breakdown"`
	Recommendations   []Recommendation  `json:"recommendations"`
	Summary           Summary           `json:"summary"`
	Badges            []Badge           `json:"badges"`

	Trackers       TrackerStats      `json:"tracker_stats"`
	Cookies        CookieStats       `json:"cookie_stats"`
	Fingerprinting FingerprintReport `json:"fingerprinting"`

	Timestamp time.Time `json:"timestamp"`
}
