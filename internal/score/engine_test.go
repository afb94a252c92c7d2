package score

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/nao1215/privacygrade/internal/model"
)

var fixedNow = time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)

func newTestEngine(opts ...Option) *Engine {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "report-1" }),
	}
	return New(append(base, opts...)...)
}

// heuristicTrackers returns n low-risk tracker tags.
func heuristicTrackers(n int) []string {
	tags := make([]string, 0, n)
	for i := range n {
		tags = append(tags, fmt.Sprintf("heuristic:metrics%d.example", i))
	}
	return tags
}

// plainCookies returns n non-tracking session cookies.
func plainCookies(n int) []model.Cookie {
	cookies := make([]model.Cookie, 0, n)
	for i := range n {
		cookies = append(cookies, model.Cookie{Name: fmt.Sprintf("pref%d", i), Value: "1"})
	}
	return cookies
}

func TestTrackerPoints(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		count    int
		expected int
	}{
		{0, 40}, {1, 40}, {2, 40},
		{3, 12}, {5, 12},
		{6, 8}, {9, 8},
		{10, 0}, {25, 0},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d trackers", tc.count), func(t *testing.T) {
			t.Parallel()
			got := trackerPoints(model.Snapshot{Trackers: heuristicTrackers(tc.count)})
			if got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestTrackerPoints_HighRiskCap(t *testing.T) {
	t.Parallel()

	t.Run("single fingerprinting tracker caps at 5", func(t *testing.T) {
		t.Parallel()
		got := trackerPoints(model.Snapshot{Trackers: []string{"fingerprinting:evil.com"}})
		if got != 5 {
			t.Errorf("expected 5, got %d", got)
		}
	})

	t.Run("advertising tracker caps at 5", func(t *testing.T) {
		t.Parallel()
		tags := append(heuristicTrackers(3), "advertising:ads.example")
		if got := trackerPoints(model.Snapshot{Trackers: tags}); got != 5 {
			t.Errorf("expected 5, got %d", got)
		}
	})

	t.Run("cap does not raise a lower count score", func(t *testing.T) {
		t.Parallel()
		tags := append(heuristicTrackers(11), "advertising:ads.example")
		if got := trackerPoints(model.Snapshot{Trackers: tags}); got != 0 {
			t.Errorf("expected 0, got %d", got)
		}
	})

	t.Run("social tracker is not capped", func(t *testing.T) {
		t.Parallel()
		if got := trackerPoints(model.Snapshot{Trackers: []string{"social:twitter.com"}}); got != 40 {
			t.Errorf("expected 40, got %d", got)
		}
	})
}

func TestCookiePoints(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	longTerm := func(n int) []model.Cookie {
		cookies := plainCookies(n)
		for i := range cookies {
			cookies[i].Expires = "2027-01-01T00:00:00Z"
		}
		return cookies
	}

	testCases := []struct {
		name     string
		cookies  []model.Cookie
		expected int
	}{
		{"no cookies", nil, 20},
		{"one cookie", plainCookies(1), 4},
		{"five cookies", plainCookies(5), 4},
		{"six cookies", plainCookies(6), 2},
		{"ten cookies", plainCookies(10), 1},
		{"twenty cookies", plainCookies(20), 0},
		{"one tracking cookie caps at 1", []model.Cookie{{Name: "_ga", Value: "1"}}, 1},
		{"five long-term cookies are not capped", longTerm(5), 4},
		{"six long-term cookies cap at 2", longTerm(6), 2},
		{"session cookies are short-term", plainCookies(7), 2},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := e.Score(model.Snapshot{Cookies: tc.cookies}).Categories.Cookies
			if got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestCookiePoints_CapsCombine(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	cookies := plainCookies(7)
	for i := range cookies {
		cookies[i].Expires = "2027-01-01T00:00:00Z"
	}
	cookies = append(cookies, model.Cookie{Name: "_fbp", Value: "fb.1"})

	if got := e.Score(model.Snapshot{Cookies: cookies}).Categories.Cookies; got != 1 {
		t.Errorf("expected the tracking cap of 1 to win, got %d", got)
	}
}

func TestFingerprintPoints(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		counts   map[model.Technique]int
		expected int
	}{
		{"no signals", nil, 20},
		{"zero counts are ignored", map[model.Technique]int{model.TechniqueCanvas: 0}, 20},
		{"one moderate technique", map[model.Technique]int{model.TechniqueFonts: 1}, 6},
		{"two moderate techniques", map[model.Technique]int{model.TechniqueFonts: 1, model.TechniqueScreen: 2}, 6},
		{"three moderate techniques", map[model.Technique]int{
			model.TechniqueFonts: 1, model.TechniqueScreen: 1, model.TechniqueTimezone: 1,
		}, 3},
		{"canvas forces zero", map[model.Technique]int{model.TechniqueCanvas: 1}, 0},
		{"webgl overrides moderate evidence", map[model.Technique]int{
			model.TechniqueWebGL: 1, model.TechniqueFonts: 30, model.TechniqueNavigator: 9, model.TechniqueScreen: 9,
		}, 0},
		{"audio forces zero", map[model.Technique]int{model.TechniqueAudio: 1}, 0},
		{"unknown technique is ignored", map[model.Technique]int{"battery": 4}, 20},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := fingerprintPoints(tc.counts); got != tc.expected {
				t.Errorf("expected %d, got %d", tc.expected, got)
			}
		})
	}
}

func TestPermissionPoints(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		permissions []string
		expected    int
	}{
		{nil, 10},
		{[]string{"midi"}, 10},
		{[]string{"notifications"}, 2},
		{[]string{"persistent-storage"}, 2},
		{[]string{"geolocation"}, 0},
		{[]string{"notifications", "camera"}, 0},
		{[]string{"microphone"}, 0},
		{[]string{"clipboard-read"}, 0},
	}

	for _, tc := range testCases {
		if got := permissionPoints(tc.permissions); got != tc.expected {
			t.Errorf("%v: expected %d, got %d", tc.permissions, tc.expected, got)
		}
	}
}

func TestFormPoints(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		forms    model.FormSignal
		expected int
	}{
		{model.FormSignal{}, 10},
		{model.FormSignal{Fields: 10}, 10},
		{model.FormSignal{Fields: 11}, 5},
		{model.FormSignal{Fields: 2, Sensitive: 1}, 3},
		{model.FormSignal{Fields: 3, Sensitive: 3}, 1},
		{model.FormSignal{Fields: 6, Sensitive: 6}, 0},
	}

	for _, tc := range testCases {
		if got := formPoints(tc.forms); got != tc.expected {
			t.Errorf("%+v: expected %d, got %d", tc.forms, tc.expected, got)
		}
	}
}

func TestPenaltyTables(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		thirdParty int
		onDemand   int
		continuous int
	}{
		{0, 0, 0},
		{6, 0, 0},
		{7, 0, 3},
		{8, 0, 3},
		{9, 10, 3},
		{12, 10, 3},
		{13, 10, 8},
		{15, 10, 8},
		{16, 20, 8},
		{20, 20, 8},
		{21, 20, 15},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%d third-party requests", tc.thirdParty), func(t *testing.T) {
			t.Parallel()
			if got := OnDemandPenalties().Penalty(tc.thirdParty); got != tc.onDemand {
				t.Errorf("on-demand: expected %d, got %d", tc.onDemand, got)
			}
			if got := ContinuousPenalties().Penalty(tc.thirdParty); got != tc.continuous {
				t.Errorf("continuous: expected %d, got %d", tc.continuous, got)
			}
		})
	}
}

func TestPenaltiesFor(t *testing.T) {
	t.Parallel()

	if table, err := PenaltiesFor("continuous"); err != nil || len(table) != 3 {
		t.Errorf("expected continuous table, got %v (%v)", table, err)
	}
	if table, err := PenaltiesFor(""); err != nil || len(table) != 2 {
		t.Errorf("expected on-demand table by default, got %v (%v)", table, err)
	}
	if _, err := PenaltiesFor("strict"); err == nil {
		t.Error("expected error for unknown profile")
	}
}

func TestScore_CleanPageIsAPlus(t *testing.T) {
	t.Parallel()

	r := newTestEngine().Score(model.Snapshot{Domain: "quiet.example"})
	if r.FinalScore != 100 || r.Grade != model.GradeAPlus {
		t.Errorf("expected 100 / A+, got %d / %s", r.FinalScore, r.Grade)
	}
	if len(r.Recommendations) != 0 {
		t.Errorf("expected no recommendations, got %v", r.Recommendations)
	}
	if diff := cmp.Diff(Default(), r); diff != "" {
		t.Errorf("clean page must match the default verdict (-want +got):\n%s", diff)
	}
}

func TestScore_HeavilyTrackedPageIsF(t *testing.T) {
	t.Parallel()

	cookies := plainCookies(25)
	trackers := append(heuristicTrackers(11), "advertising:ads.example")

	r := newTestEngine().Score(model.Snapshot{
		Trackers:       trackers,
		Cookies:        cookies,
		Fingerprinting: map[model.Technique]int{model.TechniqueCanvas: 2},
		Permissions:    []string{"geolocation"},
		Forms:          model.FormSignal{Fields: 12, Sensitive: 8},
		Requests:       model.RequestCounts{Total: 40, ThirdParty: 18},
	})

	want := model.CategoryScores{Trackers: 0, Cookies: 0, Fingerprinting: 0, Permissions: 0, Forms: 0}
	// Twelve trackers score 0 by count alone, below the cap of 5.
	if diff := cmp.Diff(want, r.Categories); diff != "" {
		t.Errorf("category mismatch (-want +got):\n%s", diff)
	}
	if r.ThirdPartyPenalty != 20 || r.FinalScore != 0 || r.Grade != model.GradeF {
		t.Errorf("expected penalty 20, score 0, grade F; got %d, %d, %s", r.ThirdPartyPenalty, r.FinalScore, r.Grade)
	}
	if len(r.Recommendations) != len(recommendationRules) {
		t.Errorf("expected every recommendation, got %d", len(r.Recommendations))
	}
}

func TestScore_CappedTrackersScenario(t *testing.T) {
	t.Parallel()

	// Two trackers, one advertising: the count alone would score 40.
	r := newTestEngine().Score(model.Snapshot{
		Trackers:       []string{"advertising:ads.example", "social:twitter.com"},
		Cookies:        plainCookies(25),
		Fingerprinting: map[model.Technique]int{model.TechniqueCanvas: 2},
		Permissions:    []string{"geolocation"},
		Forms:          model.FormSignal{Sensitive: 8},
		Requests:       model.RequestCounts{ThirdParty: 18},
	})

	if r.Categories.Trackers != 5 || r.RawScore != 5 {
		t.Errorf("expected capped trackers 5 and subtotal 5, got %d and %d", r.Categories.Trackers, r.RawScore)
	}
	if r.FinalScore != 0 || r.Grade != model.GradeF {
		t.Errorf("expected clamped 0 / F, got %d / %s", r.FinalScore, r.Grade)
	}
}

func TestScore_GradeBoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	e := newTestEngine(WithPenalties(ContinuousPenalties()))
	sevenThirdParty := model.RequestCounts{ThirdParty: 7}

	// 40 + 20 + 20 + 10 + 3 - 3 = 90
	at90 := e.Score(model.Snapshot{Forms: model.FormSignal{Sensitive: 1}, Requests: sevenThirdParty})
	if at90.FinalScore != 90 || at90.Grade != model.GradeAPlus {
		t.Errorf("expected 90 / A+, got %d / %s", at90.FinalScore, at90.Grade)
	}

	// 40 + 20 + 20 + 2 + 10 - 3 = 89
	at89 := e.Score(model.Snapshot{Permissions: []string{"notifications"}, Requests: sevenThirdParty})
	if at89.FinalScore != 89 || at89.Grade != model.GradeA {
		t.Errorf("expected 89 / A, got %d / %s", at89.FinalScore, at89.Grade)
	}
}

func TestScore_Breakdown(t *testing.T) {
	t.Parallel()

	r := newTestEngine().Score(model.Snapshot{
		Trackers:       heuristicTrackers(3),
		Cookies:        plainCookies(1),
		Fingerprinting: map[model.Technique]int{model.TechniqueFonts: 2},
		Permissions:    []string{"notifications"},
		Forms:          model.FormSignal{Fields: 12},
	})

	want := []model.FactorBreakdown{
		{Factor: model.FactorTrackers, Points: 12, Max: 40, Percentage: 30, Level: model.LevelConcerning},
		{Factor: model.FactorCookies, Points: 4, Max: 20, Percentage: 20, Level: model.LevelConcerning},
		{Factor: model.FactorFingerprinting, Points: 6, Max: 20, Percentage: 30, Level: model.LevelConcerning},
		{Factor: model.FactorPermissions, Points: 2, Max: 10, Percentage: 20, Level: model.LevelConcerning},
		{Factor: model.FactorForms, Points: 5, Max: 10, Percentage: 50, Level: model.LevelModerate},
	}
	if diff := cmp.Diff(want, r.Breakdown); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestRecommendations(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		scores   model.CategoryScores
		expected []model.Factor
	}{
		{
			name:     "perfect scores yield no advice",
			scores:   model.CategoryScores{Trackers: 40, Cookies: 20, Fingerprinting: 20, Permissions: 10, Forms: 10},
			expected: nil,
		},
		{
			name:     "three trackers are within tolerance",
			scores:   model.CategoryScores{Trackers: 20, Cookies: 20, Fingerprinting: 20, Permissions: 10, Forms: 10},
			expected: nil,
		},
		{
			name:     "heavy tracking and any fingerprinting",
			scores:   model.CategoryScores{Trackers: 12, Cookies: 20, Fingerprinting: 6, Permissions: 10, Forms: 10},
			expected: []model.Factor{model.FactorTrackers, model.FactorFingerprinting},
		},
		{
			name:     "cookies, permissions and sensitive forms",
			scores:   model.CategoryScores{Trackers: 40, Cookies: 4, Fingerprinting: 20, Permissions: 2, Forms: 3},
			expected: []model.Factor{model.FactorCookies, model.FactorPermissions, model.FactorForms},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var got []model.Factor
			for _, rec := range recommendations(tc.scores) {
				got = append(got, rec.Factor)
			}
			if diff := cmp.Diff(tc.expected, got); diff != "" {
				t.Errorf("recommendations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDetailedReport(t *testing.T) {
	t.Parallel()

	e := newTestEngine()
	report := e.DetailedReport(model.Snapshot{
		Domain:         "shop.example",
		URL:            "https://shop.example/",
		Trackers:       []string{"advertising:doubleclick.net", "analytics:www.google-analytics.com"},
		Cookies:        []model.Cookie{{Name: "_ga", Value: "1", Expires: "2027-06-01T00:00:00Z"}},
		Fingerprinting: map[model.Technique]int{model.TechniqueCanvas: 2, model.TechniqueFonts: 1},
		Requests:       model.RequestCounts{Total: 10, ThirdParty: 4},
	})

	if report.ID != "report-1" || !report.Tracked {
		t.Errorf("unexpected identity: %q tracked=%v", report.ID, report.Tracked)
	}
	if report.Timestamp != fixedNow {
		t.Errorf("expected timestamp %v, got %v", fixedNow, report.Timestamp)
	}

	// trackers 5 + cookies 1 + fingerprinting 0 + permissions 10 + forms 10
	if report.FinalScore != 26 || report.Grade != model.GradeF || report.Color != "#F44336" {
		t.Errorf("unexpected verdict %d %s %s", report.FinalScore, report.Grade, report.Color)
	}

	wantSummary := model.Summary{
		Grade:              model.GradeF,
		Trackers:           2,
		Cookies:            1,
		FingerprintSignals: 3,
		ThirdPartyRequests: 4,
		RiskLevel:          "severe",
	}
	if diff := cmp.Diff(wantSummary, report.Summary); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}
	if report.Cookies != (model.CookieStats{Total: 1, Tracking: 1, LongTerm: 1}) {
		t.Errorf("unexpected cookie stats %+v", report.Cookies)
	}
	if report.Trackers.ByRisk[model.RiskHigh] != 1 {
		t.Errorf("unexpected tracker stats %+v", report.Trackers)
	}
	if len(report.Fingerprinting.Detected) != 1 || report.Fingerprinting.RiskScore != 20 {
		t.Errorf("unexpected fingerprint report %+v", report.Fingerprinting)
	}
}

func TestDefaultReport(t *testing.T) {
	t.Parallel()

	report := newTestEngine().DefaultReport()
	if report.Tracked {
		t.Error("default report must not be marked as tracked")
	}
	if report.Grade != model.GradeAPlus || report.FinalScore != 100 {
		t.Errorf("expected A+ / 100, got %s / %d", report.Grade, report.FinalScore)
	}
	if report.Categories.Total() != 100 {
		t.Errorf("expected full category points, got %+v", report.Categories)
	}
}

func TestBadges(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		snapshot model.Snapshot
		expected []model.Badge
	}{
		{
			name:     "quiet page is privacy friendly",
			snapshot: model.Snapshot{},
			expected: []model.Badge{{Text: "Privacy Friendly", Kind: model.BadgeInfo}},
		},
		{
			name: "light tracking with a few cookies",
			snapshot: model.Snapshot{
				Trackers: heuristicTrackers(2),
				Cookies:  plainCookies(3),
			},
			expected: []model.Badge{
				{Text: "Light Tracking (2)", Kind: model.BadgeInfo},
				{Text: "3 Cookies", Kind: model.BadgeInfo},
			},
		},
		{
			name: "heavy tracking, excessive cookies and fingerprinting",
			snapshot: model.Snapshot{
				Trackers:       heuristicTrackers(11),
				Cookies:        plainCookies(21),
				Fingerprinting: map[model.Technique]int{model.TechniqueFonts: 1},
			},
			expected: []model.Badge{
				{Text: "Heavy Tracking (11)", Kind: model.BadgeDanger},
				{Text: "Excessive Cookies (21)", Kind: model.BadgeDanger},
				{Text: "Fingerprinting Detected", Kind: model.BadgeWarning},
			},
		},
		{
			name: "moderate tracking and many cookies",
			snapshot: model.Snapshot{
				Trackers: heuristicTrackers(6),
				Cookies:  plainCookies(11),
			},
			expected: []model.Badge{
				{Text: "Moderate Tracking (6)", Kind: model.BadgeWarning},
				{Text: "Many Cookies (11)", Kind: model.BadgeWarning},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if diff := cmp.Diff(tc.expected, Badges(tc.snapshot)); diff != "" {
				t.Errorf("badges mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
